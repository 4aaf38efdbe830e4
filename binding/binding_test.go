package binding

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opendaylight/yangtools-sub038/schema"
)

type top struct {
	Augmentable

	Name  *string  `yang:"name"`
	Items []*entry `yang:"entry"`
	Tags  []string `yang:"tag"`
	Skip  string   `yang:"-"`
}

type entry struct {
	ID    *string `yang:"id"`
	Value *int32  `yang:"value"`
}

type entryKey struct {
	ID string `yang:"id"`
}

func (e *entry) Key() entryKey {
	return entryKey{ID: *e.ID}
}

type topAug struct {
	Extra *string `yang:"extra"`
}

type ident struct{ BaseIdentity }

func ptr[T any](v T) *T { return &v }

func TestStructInfo(t *testing.T) {
	info, err := Struct(reflect.TypeFor[*top]())
	if err != nil {
		t.Fatal(err)
	}
	var locals []string
	for _, f := range info.Fields {
		locals = append(locals, f.Local)
	}
	if diff := cmp.Diff([]string{"name", "entry", "tag"}, locals); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if info.Augmentable == nil {
		t.Errorf("expected embedded Augmentable to be found")
	}
	if f, ok := info.Field("entry"); !ok || f.Name != "Items" {
		t.Errorf("unexpected field for entry: %+v", f)
	}

	type dup struct {
		A *string `yang:"x"`
		B *string `yang:"x"`
	}
	if _, err := Struct(reflect.TypeFor[dup]()); err == nil {
		t.Errorf("expected duplicate tags to fail")
	}
}

func TestEqualAndHash(t *testing.T) {
	mk := func(extra string) *top {
		v := &top{
			Name:  ptr("a"),
			Items: []*entry{{ID: ptr("x"), Value: ptr[int32](1)}},
			Tags:  []string{"t1"},
		}
		v.SetAugmentation(&topAug{Extra: ptr(extra)})
		return v
	}
	tests := []struct {
		name string
		a, b *top
		want bool
	}{
		{name: "equal", a: mk("e"), b: mk("e"), want: true},
		{name: "augmentation differs", a: mk("e"), b: mk("f"), want: false},
		{name: "nil and empty slices", a: &top{Tags: nil}, b: &top{Tags: []string{}}, want: true},
		{name: "missing augmentation", a: mk("e"), b: &top{Name: ptr("a"), Items: mk("e").Items, Tags: []string{"t1"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
			if tt.want && Hash(tt.a) != Hash(tt.b) {
				t.Errorf("equal values hash differently")
			}
		})
	}
}

func TestAugmentable(t *testing.T) {
	v := &top{}
	if _, ok := GetAugmentation[topAug](v); ok {
		t.Fatalf("expected no augmentation")
	}
	v.SetAugmentation(&topAug{Extra: ptr("x")})
	aug, ok := GetAugmentation[topAug](v)
	if !ok || *aug.Extra != "x" {
		t.Fatalf("augmentation not found")
	}
	v.SetAugmentation((*topAug)(nil))
	if v.Len() != 0 {
		t.Errorf("expected augmentation removed")
	}
	if AugmentableOf(reflect.ValueOf(v)) != &v.Augmentable {
		t.Errorf("AugmentableOf should return the embedded holder")
	}
}

func TestInstanceIdentifier(t *testing.T) {
	topT := reflect.TypeFor[top]()
	entryT := reflect.TypeFor[*entry]()
	a := New(topT).Keyed(entryT, entryKey{ID: "x"}).Build()
	b := FromSteps(NodeStep{Type: reflect.TypeFor[*top]()}, KeyStep{Type: entryT, Key: entryKey{ID: "x"}})
	if !a.Equal(b) {
		t.Errorf("%s != %s", a, b)
	}
	if a.TargetType() != reflect.TypeFor[entry]() {
		t.Errorf("unexpected target type %v", a.TargetType())
	}
	if a.IsWildcarded() {
		t.Errorf("keyed path must not be wildcarded")
	}
	w := New(topT).Child(entryT).Build()
	if !w.IsWildcarded() {
		t.Errorf("list step without key must be wildcarded")
	}
	if a.Equal(New(topT).Keyed(entryT, entryKey{ID: "y"}).Build()) {
		t.Errorf("different keys must differ")
	}
	if got, want := a.String(), "/binding.top/binding.entry[id=x]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !a.Parent().Equal(New(topT).Build()) {
		t.Errorf("unexpected parent %s", a.Parent())
	}
}

func TestKeyOf(t *testing.T) {
	k, ok := KeyOf(&entry{ID: ptr("z")})
	if !ok || k != (entryKey{ID: "z"}) {
		t.Errorf("KeyOf = %v, %v", k, ok)
	}
	if _, ok := KeyType(reflect.TypeFor[top]()); ok {
		t.Errorf("top has no key")
	}
	if !IsIdentity(reflect.TypeFor[ident]()) || IsIdentity(reflect.TypeFor[top]()) {
		t.Errorf("identity detection is wrong")
	}
}

func TestTypeRegistry(t *testing.T) {
	r, err := NewTypeRegistry(reflect.TypeFor[top](), reflect.TypeFor[*entry]())
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.LoadType(TypeName(reflect.TypeFor[entry]()))
	if err != nil || got != reflect.TypeFor[entry]() {
		t.Fatalf("LoadType = %v, %v", got, err)
	}
	if err := r.Register(reflect.TypeFor[top]()); err != nil {
		t.Errorf("re-registration should be idempotent: %v", err)
	}
	if _, err := r.LoadType("example.com/missing.Type"); !errors.Is(err, schema.ErrTypeNotLoaded) {
		t.Errorf("expected ErrTypeNotLoaded, got %v", err)
	}

	name := TypeName(reflect.TypeFor[top]())
	l := NewRestrictedLoader(r)
	if _, err := l.LoadType(name); !errors.Is(err, schema.ErrTypeNotLoaded) {
		t.Errorf("expected refusal, got %v", err)
	}
	l.Allow(name)
	if _, err := l.LoadType(name); err != nil {
		t.Errorf("expected type after Allow, got %v", err)
	}
	l.Revoke(name)
	if _, err := l.LoadType(name); err == nil {
		t.Errorf("expected refusal after Revoke")
	}
}

func TestNonNull(t *testing.T) {
	var p *entry
	if NonNull(p) == nil {
		t.Errorf("NonNull must never return nil")
	}
	e := &entry{}
	if NonNull(e) != e {
		t.Errorf("NonNull must return a present value as is")
	}
}
