package schema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opendaylight/yangtools-sub038/internal/testmodel"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

const pkg = "github.com/opendaylight/yangtools-sub038/internal/testmodel."

var (
	q   = testmodel.Q
	aug = testmodel.AugQ
)

func TestResolveSchemaNode(t *testing.T) {
	c := testmodel.MustLoad()
	tests := []struct {
		name string
		path schema.Path
		kind schema.Kind
		want schema.Path
	}{
		{name: "top", path: schema.NewPath(q("top")), kind: schema.KindContainer},
		{name: "list key", path: schema.NewPath(q("top"), q("item"), q("name")), kind: schema.KindLeaf},
		{
			name: "through choice",
			path: schema.NewPath(q("top"), q("throttle"), q("rate")),
			kind: schema.KindLeaf,
			want: schema.NewPath(q("top"), q("mode"), q("slow"), q("throttle"), q("rate")),
		},
		{name: "named choice", path: schema.NewPath(q("top"), q("mode"), q("fast"), q("speed")), kind: schema.KindLeaf},
		{name: "augmented leaf", path: schema.NewPath(q("top"), aug("extra")), kind: schema.KindLeaf},
		{
			name: "augmented case",
			path: schema.NewPath(q("top"), aug("level")),
			kind: schema.KindLeaf,
			want: schema.NewPath(q("top"), q("mode"), aug("medium"), aug("level")),
		},
		{name: "action input", path: schema.NewPath(q("top"), q("reset"), q("input"), q("delay")), kind: schema.KindLeaf},
		{name: "rpc", path: schema.NewPath(q("ping"), q("output")), kind: schema.KindOutput},
		{name: "notification", path: schema.NewPath(q("alarm"), q("source"), q("id")), kind: schema.KindLeaf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := c.ResolveSchemaNode(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if n.Kind != tt.kind {
				t.Errorf("kind %s, want %s", n.Kind, tt.kind)
			}
			want := tt.want
			if want == nil {
				want = tt.path
			}
			if got := n.Path(); !got.Equal(want) {
				t.Errorf("path %s, want %s", got, want)
			}
		})
	}
}

func TestResolveSchemaNodeErrors(t *testing.T) {
	c := testmodel.MustLoad()
	missing := qname.Of(qname.NewModule("urn:missing", ""), "top")
	for _, p := range []schema.Path{
		schema.NewPath(missing),
		schema.NewPath(q("bottom")),
		schema.NewPath(q("top"), q("nothing")),
	} {
		if _, err := c.ResolveSchemaNode(p); !errors.Is(err, schema.ErrNotFound) {
			t.Errorf("%s: got %v, want ErrNotFound", p, err)
		}
	}
	if _, err := c.ResolveSchemaNode(nil); err == nil {
		t.Error("expected an error for an empty path")
	}
}

func TestChoiceCases(t *testing.T) {
	c := testmodel.MustLoad()
	mode, err := c.ResolveSchemaNode(schema.NewPath(q("top"), q("mode")))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, cs := range mode.Cases() {
		names = append(names, cs.QName.LocalName())
	}
	if diff := cmp.Diff([]string{"fast", "slow", "medium"}, names); diff != "" {
		t.Errorf("cases mismatch (-want +got):\n%s", diff)
	}
	cs, ok := mode.CaseOf(aug("level"))
	if !ok || cs.QName != aug("medium") {
		t.Errorf("CaseOf(level) = %v, %v", cs, ok)
	}
	if _, ok := mode.CaseOf(q("name")); ok {
		t.Error("name belongs to no case")
	}

	level, _ := c.ResolveSchemaNode(schema.NewPath(q("top"), aug("level")))
	if p := level.DataParent(); p == nil || p.QName != q("top") {
		t.Errorf("DataParent(level) = %v", p)
	}
	top, _ := c.TopLevel(q("top"))
	if a, ok := top.AugmentationFor(aug("extras")); !ok || a.Module.Name != "test-aug" {
		t.Errorf("AugmentationFor(extras) = %v, %v", a, ok)
	}
	if _, ok := top.OwnChild(aug("extra")); ok {
		t.Error("augmented child reported as own child")
	}
}

func TestModules(t *testing.T) {
	c := testmodel.MustLoad()
	if got := len(c.Modules()); got != 4 {
		t.Errorf("%d modules, want 4", got)
	}
	m, ok := c.ModuleByName("test-top")
	if !ok || m.Prefix != "tt" || m.QName != testmodel.TopModule {
		t.Fatalf("ModuleByName(test-top) = %v, %v", m, ok)
	}
	if found, ok := c.FindModule(testmodel.TopModule); !ok || found != m {
		t.Errorf("FindModule = %v, %v", found, ok)
	}
	if found, ok := c.ModuleByNamespace("urn:test:aug"); !ok || found.Name != "test-aug" {
		t.Errorf("ModuleByNamespace = %v, %v", found, ok)
	}
	if _, ok := c.FindModule(qname.NewModule("urn:test:top", "1999-01-01")); ok {
		t.Error("found a module by the wrong revision")
	}
}

func TestBindings(t *testing.T) {
	c := testmodel.MustLoad()
	n, err := c.ResolveBinding(pkg + "Item")
	if err != nil {
		t.Fatal(err)
	}
	if n.QName != q("item") || !n.Keyed() {
		t.Errorf("ResolveBinding(Item) = %v", n)
	}
	keys, err := c.KeyFieldsOf(pkg + "Stage")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != q("id") {
		t.Errorf("KeyFieldsOf(Stage) = %v", keys)
	}
	if _, err := c.KeyFieldsOf(pkg + "Top"); err == nil {
		t.Error("Top is not a keyed list")
	}
	if got := len(c.BindingNodes(pkg + "Shared")); got != 2 {
		t.Errorf("Shared is bound to %d nodes, want 2", got)
	}
	if _, err := c.ResolveBinding(pkg + "Nothing"); !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if _, err := c.LoadType(pkg + "Top"); err != nil {
		t.Errorf("LoadType(Top): %v", err)
	}
}

func TestIdentities(t *testing.T) {
	c := testmodel.MustLoad()
	id, err := c.Identity(q("ethernet"))
	if err != nil {
		t.Fatal(err)
	}
	if len(id.Bases) != 1 || id.Bases[0] != q("interface-type") {
		t.Errorf("bases %v", id.Bases)
	}
	byBinding, err := c.IdentityByBinding(pkg + "Loopback")
	if err != nil {
		t.Fatal(err)
	}
	if byBinding.QName != q("loopback") {
		t.Errorf("IdentityByBinding(Loopback) = %v", byBinding)
	}
	if _, err := c.Identity(q("token-ring")); !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestTypes(t *testing.T) {
	c := testmodel.MustLoad()
	leaf := func(local string) *schema.Type {
		t.Helper()
		n, err := c.ResolveSchemaNode(schema.NewPath(q("top"), q(local)))
		if err != nil {
			t.Fatal(err)
		}
		return n.Type
	}
	if got := leaf("ratio"); got.Kind != schema.TypeDecimal64 || got.FractionDigits != 2 {
		t.Errorf("ratio type %v", got)
	}
	if got := leaf("kind"); got.Base != q("interface-type") {
		t.Errorf("kind base %v", got.Base)
	}
	if got, want := leaf("address").String(), "union(int32|enumeration|string)"; got != want {
		t.Errorf("address type %s, want %s", got, want)
	}
	if got := leaf("color"); got.Binding != pkg+"Color" {
		t.Errorf("color binding %q", got.Binding)
	}
	for _, name := range []string{"instance-identifier", "uint64", "empty"} {
		k, ok := schema.ParseTypeKind(name)
		if !ok || k.String() != name {
			t.Errorf("ParseTypeKind(%q) = %v, %v", name, k, ok)
		}
	}
	if _, ok := schema.ParseTypeKind("float"); ok {
		t.Error("float is not a type")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{
			name: "unknown field",
			doc:  "modules:\n  - name: m\n    prefix: m\n    namespace: urn:m\n    colour: red\n",
		},
		{
			name: "no prefix",
			doc:  "modules:\n  - name: m\n    namespace: urn:m\n",
		},
		{
			name: "duplicate prefix",
			doc:  "modules:\n  - {name: a, prefix: p, namespace: 'urn:a'}\n  - {name: b, prefix: p, namespace: 'urn:b'}\n",
		},
		{
			name: "bad revision",
			doc:  "modules:\n  - {name: a, prefix: a, namespace: 'urn:a', revision: yesterday}\n",
		},
		{
			name: "two kinds",
			doc:  "modules:\n  - name: a\n    prefix: a\n    namespace: urn:a\n    data:\n      - {container: c, leaf: l}\n",
		},
		{
			name: "decimal digits",
			doc:  "modules:\n  - name: a\n    prefix: a\n    namespace: urn:a\n    data:\n      - {leaf: l, type: {name: decimal64}}\n",
		},
		{
			name: "unknown type",
			doc:  "modules:\n  - name: a\n    prefix: a\n    namespace: urn:a\n    data:\n      - {leaf: l, type: {name: float}}\n",
		},
		{
			name: "leaf without type",
			doc:  "modules:\n  - name: a\n    prefix: a\n    namespace: urn:a\n    data:\n      - {leaf: l}\n",
		},
		{
			name: "key not a leaf",
			doc:  "modules:\n  - name: a\n    prefix: a\n    namespace: urn:a\n    data:\n      - {list: l, key: [k], children: [{container: k}]}\n",
		},
		{
			name: "missing target",
			doc:  "modules:\n  - name: a\n    prefix: a\n    namespace: urn:a\n    augments:\n      - {target: '/a:nowhere', children: [{leaf: x, type: {name: string}}]}\n",
			is:   schema.ErrNotFound,
		},
		{
			name: "unknown prefix",
			doc:  "modules:\n  - name: a\n    prefix: a\n    namespace: urn:a\n    augments:\n      - {target: '/zz:top'}\n",
			is:   schema.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Load(nil, []byte(tt.doc))
			var se *schema.SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("got %v, want a *schema.SchemaError", err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("got %v, want %v", err, tt.is)
			}
		})
	}
}

func TestAugmentRedefinition(t *testing.T) {
	doc := `
modules:
  - name: base
    prefix: b
    namespace: urn:b
    data:
      - container: c
        children:
          - {leaf: x, type: {name: string}}
    augments:
      - target: /b:c
        children:
          - {leaf: x, type: {name: string}}
`
	_, err := schema.Load(nil, []byte(doc))
	var se *schema.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want a *schema.SchemaError", err)
	}
	if got, want := se.Name, "(urn:b)x"; got != want {
		t.Errorf("error names %q, want %q", got, want)
	}
}

func TestLoadTypeWithoutLoader(t *testing.T) {
	c, err := schema.Load(nil, testmodel.Schema())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.LoadType(pkg + "Top"); !errors.Is(err, schema.ErrTypeNotLoaded) {
		t.Errorf("got %v, want ErrTypeNotLoaded", err)
	}
}
