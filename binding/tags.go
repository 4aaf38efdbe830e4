package binding

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag key naming the schema child a field holds.
const TagName = "yang"

// Field describes one tagged field of a binding struct.
type Field struct {
	// Name is the Go field name.
	Name string
	// Local is the local name of the schema child.
	Local string
	Index []int
	Type  reflect.Type
}

// StructInfo describes the tagged fields of a binding struct type.
type StructInfo struct {
	Type   reflect.Type
	Fields []Field
	// Augmentable is the index of the embedded Augmentable, or nil.
	Augmentable []int

	byLocal map[string]int
}

// Field returns the field holding the schema child with the given local
// name.
func (s *StructInfo) Field(local string) (*Field, bool) {
	i, ok := s.byLocal[local]
	if !ok {
		return nil, false
	}
	return &s.Fields[i], true
}

var structCache sync.Map // map[reflect.Type]*StructInfo

// Struct returns the field layout of struct type t. Pointers are stripped.
// Results are cached.
func Struct(t reflect.Type) (*StructInfo, error) {
	t = Deref(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("binding: %v is not a struct type", t)
	}
	if v, ok := structCache.Load(t); ok {
		return v.(*StructInfo), nil
	}
	info, err := parseStruct(t)
	if err != nil {
		return nil, err
	}
	v, _ := structCache.LoadOrStore(t, info)
	return v.(*StructInfo), nil
}

func parseStruct(t reflect.Type) (*StructInfo, error) {
	info := &StructInfo{Type: t, byLocal: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == augmentableType {
			info.Augmentable = f.Index
			continue
		}
		tag, ok := f.Tag.Lookup(TagName)
		if !ok || !f.IsExported() {
			continue
		}
		local, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("binding: field %s.%s: %w", t.Name(), f.Name, err)
		}
		if local == "" {
			continue
		}
		if prev, dup := info.byLocal[local]; dup {
			return nil, fmt.Errorf("binding: fields %s and %s of %s both hold %q", info.Fields[prev].Name, f.Name, t.Name(), local)
		}
		info.byLocal[local] = len(info.Fields)
		info.Fields = append(info.Fields, Field{Name: f.Name, Local: local, Index: f.Index, Type: f.Type})
	}
	return info, nil
}

// parseTag returns the local name of a tag. "-" skips the field. Options
// after a comma are reserved and must be empty.
func parseTag(tag string) (string, error) {
	name, opts, _ := strings.Cut(strings.TrimSpace(tag), ",")
	if name == "-" {
		return "", nil
	}
	if name == "" {
		return "", fmt.Errorf("empty %s tag", TagName)
	}
	if strings.TrimSpace(opts) != "" {
		return "", fmt.Errorf("unknown %s tag options %q", TagName, opts)
	}
	return name, nil
}

// AugmentableOf returns the Augmentable embedded in the struct v points to,
// or nil.
func AugmentableOf(v reflect.Value) *Augmentable {
	v = reflect.Indirect(v)
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil
	}
	info, err := Struct(v.Type())
	if err != nil || info.Augmentable == nil || !v.CanAddr() {
		return nil
	}
	return v.FieldByIndex(info.Augmentable).Addr().Interface().(*Augmentable)
}
