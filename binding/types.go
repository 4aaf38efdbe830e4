package binding

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Identity is implemented by identity types. Identity types are empty
// structs embedding BaseIdentity.
type Identity interface {
	baseIdentity()
}

// BaseIdentity marks a struct as an identity.
type BaseIdentity struct{}

func (BaseIdentity) baseIdentity() {}

var identityType = reflect.TypeFor[Identity]()

// IsIdentity reports whether t is an identity type.
func IsIdentity(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.Implements(identityType)
}

// Deref strips pointer indirections from t.
func Deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// TypeName returns the name a binding type is registered under: its package
// path and type name joined by a dot. Pointers are stripped.
func TypeName(t reflect.Type) string {
	t = Deref(t)
	if t == nil {
		return "<nil>"
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// ShortName returns the type name without its package path, for messages.
func ShortName(t reflect.Type) string {
	n := TypeName(t)
	if i := strings.LastIndexByte(n, '/'); i >= 0 {
		return n[i+1:]
	}
	return n
}

// KeyType returns the key type of a keyed list entry type, which has a
// method Key on its pointer returning a struct.
func KeyType(t reflect.Type) (reflect.Type, bool) {
	t = Deref(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, false
	}
	m, ok := reflect.PointerTo(t).MethodByName("Key")
	if !ok || m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return nil, false
	}
	kt := m.Type.Out(0)
	if kt.Kind() != reflect.Struct || !kt.Comparable() {
		return nil, false
	}
	return kt, true
}

// KeyOf calls the Key method of a keyed list entry.
func KeyOf(entry any) (any, bool) {
	v := reflect.ValueOf(entry)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, false
	}
	if _, ok := KeyType(v.Type()); !ok {
		return nil, false
	}
	return v.MethodByName("Key").Call(nil)[0].Interface(), true
}

// NonNull returns p, or a fresh empty value when p is nil.
func NonNull[T any](p *T) *T {
	if p != nil {
		return p
	}
	return new(T)
}

// Augmentable holds the augmentations of a binding object, keyed by their
// struct type. The zero value is empty.
type Augmentable struct {
	augs map[reflect.Type]any
}

var augmentableType = reflect.TypeFor[Augmentable]()

// Augmented is implemented by pointers to structs embedding Augmentable.
type Augmented interface {
	Augmentation(t reflect.Type) any
	SetAugmentation(aug any)
	Augmentations() []any
}

// SetAugmentation stores aug, a pointer to an augmentation struct,
// replacing any augmentation of the same type. A nil pointer removes it.
func (a *Augmentable) SetAugmentation(aug any) {
	v := reflect.ValueOf(aug)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.Type().Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("binding: augmentation must be a pointer to a struct, got %T", aug))
	}
	t := v.Type().Elem()
	if v.IsNil() {
		delete(a.augs, t)
		return
	}
	if a.augs == nil {
		a.augs = make(map[reflect.Type]any)
	}
	a.augs[t] = aug
}

// Augmentation returns the augmentation of struct type t, or nil.
func (a *Augmentable) Augmentation(t reflect.Type) any {
	return a.augs[Deref(t)]
}

// Augmentations returns the stored augmentations ordered by type name.
func (a *Augmentable) Augmentations() []any {
	out := make([]any, 0, len(a.augs))
	for _, v := range a.augs {
		out = append(out, v)
	}
	slices.SortFunc(out, func(x, y any) int {
		return strings.Compare(TypeName(reflect.TypeOf(x)), TypeName(reflect.TypeOf(y)))
	})
	return out
}

func (a *Augmentable) Len() int {
	return len(a.augs)
}

// GetAugmentation returns the augmentation of type T held by obj.
func GetAugmentation[T any](obj Augmented) (*T, bool) {
	aug, ok := obj.Augmentation(reflect.TypeFor[T]()).(*T)
	return aug, ok && aug != nil
}
