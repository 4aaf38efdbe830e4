package encode_test

import (
	"bytes"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/opendaylight/yangtools-sub038/binfmt"
	"github.com/opendaylight/yangtools-sub038/config"
	"github.com/opendaylight/yangtools-sub038/encode"
	"github.com/opendaylight/yangtools-sub038/internal/testmodel"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
)

var (
	q   = testmodel.Q
	aug = testmodel.AugQ
)

func item(name string, value int32, extra ...normalized.Node) *normalized.MapEntry {
	id := normalized.NewNodeIdentifierWithPredicates(q("item"), normalized.KV(q("name"), name))
	kids := append([]normalized.Node{
		normalized.NewLeaf(q("name"), name),
		normalized.NewLeaf(q("value"), value),
	}, extra...)
	return normalized.NewMapEntry(id, kids...)
}

func stage(id uint16, label string) *normalized.MapEntry {
	return normalized.NewMapEntry(
		normalized.NewNodeIdentifierWithPredicates(q("stage"), normalized.KV(q("id"), id)),
		normalized.NewLeaf(q("id"), id),
		normalized.NewLeaf(q("label"), label),
	)
}

func sampleTop() normalized.Node {
	ref := normalized.NewInstanceIdentifier(
		normalized.NewNodeIdentifier(q("top")),
		normalized.NewNodeIdentifier(q("item")),
		normalized.NewNodeIdentifierWithPredicates(q("item"), normalized.KV(q("name"), "a")),
		normalized.NewNodeIdentifier(q("detail")),
	)
	return normalized.NewContainer(q("top"),
		normalized.NewLeaf(q("name"), "router"),
		normalized.NewLeaf(q("count"), uint32(7)),
		normalized.NewLeaf(q("ratio"), normalized.Decimal64{Unscaled: 1250, Scale: 2}),
		normalized.NewLeaf(q("enabled"), true),
		normalized.NewLeaf(q("flag"), normalized.Empty{}),
		normalized.NewLeaf(q("blob"), []byte{1, 2, 3}),
		normalized.NewLeaf(q("color"), "green"),
		normalized.NewLeaf(q("perms"), normalized.NewBits("read", "exec")),
		normalized.NewLeaf(q("kind"), q("ethernet")),
		normalized.NewLeaf(q("address"), int32(8080)),
		normalized.NewLeaf(q("ref"), ref),
		normalized.LeafSetOf(q("tag"), "a", "b"),
		normalized.NewOrderedLeafSet(q("priority"),
			normalized.NewLeafSetEntry(q("priority"), uint8(3)),
			normalized.NewLeafSetEntry(q("priority"), uint8(1)),
		),
		normalized.NewAnyXML(q("data"), "<x/>"),
		normalized.NewContainer(q("inner"), normalized.NewLeaf(q("value"), "v")),
		normalized.NewMap(q("item"),
			item("a", 1, normalized.NewLeaf(aug("weight"), uint16(5))),
			item("b", -2, normalized.NewContainer(q("detail"), normalized.NewLeaf(q("note"), "n"))),
		),
		normalized.NewOrderedMap(q("stage"), stage(2, "two"), stage(1, "one")),
		normalized.NewUnkeyedList(q("log"),
			normalized.NewUnkeyedListEntry(q("log"), normalized.NewLeaf(q("line"), "first")),
			normalized.NewUnkeyedListEntry(q("log"), normalized.NewLeaf(q("line"), "second")),
		),
		normalized.NewChoice(q("mode"), normalized.NewLeaf(aug("level"), int8(-3))),
		normalized.NewLeaf(aug("extra"), "more"),
		normalized.NewContainer(aug("extras"), normalized.NewLeaf(aug("note"), "n")),
	)
}

func newRegistry(t *testing.T) *encode.Registry {
	t.Helper()
	r, err := encode.NewRegistry(testmodel.MustLoad())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCodecRoundTrip(t *testing.T) {
	r := newRegistry(t)
	trees := map[string]normalized.Node{
		"sample": sampleTop(),
		"slow case": normalized.NewContainer(q("top"),
			normalized.NewChoice(q("mode"),
				normalized.NewContainer(q("throttle"), normalized.NewLeaf(q("rate"), int32(-9))),
			),
		),
		"union enum":   normalized.NewContainer(q("top"), normalized.NewLeaf(q("address"), "auto")),
		"union string": normalized.NewContainer(q("top"), normalized.NewLeaf(q("address"), "db.example")),
		"empty top":    normalized.NewContainer(q("top")),
	}
	for _, ct := range r.ContentTypes() {
		c := r.Get(ct)
		for name, tree := range trees {
			t.Run(ct+"/"+name, func(t *testing.T) {
				data, err := c.Marshal(tree)
				if err != nil {
					t.Fatal(err)
				}
				got, err := c.Unmarshal(data)
				if err != nil {
					t.Fatal(err)
				}
				if !normalized.Equal(tree, got) {
					t.Errorf("round trip mismatch\nwant %v\ngot  %v", tree, got)
				}
			})
		}
	}
}

func TestJSONShape(t *testing.T) {
	c := encode.JSON(testmodel.MustLoad())
	tree := normalized.NewContainer(q("top"),
		normalized.NewLeaf(q("count"), uint32(7)),
		normalized.NewLeaf(q("ratio"), normalized.Decimal64{Unscaled: 1250, Scale: 2}),
		normalized.NewLeaf(q("flag"), normalized.Empty{}),
		normalized.NewLeaf(q("kind"), q("loopback")),
		normalized.NewLeaf(q("perms"), normalized.NewBits("write", "read")),
		normalized.NewLeaf(q("blob"), []byte("hi")),
		normalized.NewChoice(q("mode"), normalized.NewLeaf(q("speed"), uint32(10))),
		normalized.NewLeaf(aug("extra"), "more"),
		normalized.NewContainer(aug("extras"), normalized.NewLeaf(aug("note"), "n")),
		normalized.NewMap(q("item"), item("a", 1, normalized.NewLeaf(aug("weight"), uint16(5)))),
	)
	want := `{
		"test-top:top": {
			"count": 7,
			"ratio": "12.50",
			"flag": [null],
			"kind": "test-top:loopback",
			"perms": "read write",
			"blob": "aGk=",
			"speed": 10,
			"test-aug:extra": "more",
			"test-aug:extras": {"note": "n"},
			"item": [{"name": "a", "value": 1, "test-aug:weight": 5}]
		}
	}`
	data, err := c.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	var gotDoc, wantDoc any
	if err := json.Unmarshal(data, &gotDoc); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(want), &wantDoc); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wantDoc, gotDoc); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestUnionDecoding(t *testing.T) {
	c := encode.JSON(testmodel.MustLoad())
	tests := []struct {
		in   string
		want any
	}{
		{in: `42`, want: int32(42)},
		{in: `"42"`, want: "42"},
		{in: `"manual"`, want: "manual"},
		{in: `"gateway"`, want: "gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := c.Unmarshal([]byte(`{"test-top:top":{"address":` + tt.in + `}}`))
			if err != nil {
				t.Fatal(err)
			}
			leaf, ok := n.(*normalized.Container).Child(normalized.NewNodeIdentifier(q("address")))
			if !ok {
				t.Fatal("address leaf missing")
			}
			if got := leaf.(*normalized.Leaf).Value(); got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	c := encode.JSON(testmodel.MustLoad())
	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "unknown child", in: `{"test-top:top":{"bogus":1}}`, want: encode.ErrUnknownMember},
		{name: "unknown top", in: `{"test-top:bottom":{}}`, want: encode.ErrUnknownMember},
		{name: "unqualified top", in: `{"top":{}}`, want: encode.ErrUnknownMember},
		{name: "unknown module", in: `{"nope:top":{}}`, want: encode.ErrMissingModule},
		{name: "two roots", in: `{"test-top:top":{},"test-top:alarm":{}}`, want: encode.ErrUnsupportedRoot},
		{name: "quoted uint32", in: `{"test-top:top":{"count":"7"}}`, want: encode.ErrBadValue},
		{name: "overflow", in: `{"test-top:top":{"priority":[300]}}`, want: encode.ErrBadValue},
		{name: "enum", in: `{"test-top:top":{"color":"purple"}}`, want: encode.ErrBadValue},
		{name: "bits", in: `{"test-top:top":{"perms":"read fly"}}`, want: encode.ErrBadValue},
		{name: "empty", in: `{"test-top:top":{"flag":true}}`, want: encode.ErrBadValue},
		{name: "identity", in: `{"test-top:top":{"kind":"test-top:token-ring"}}`, want: encode.ErrBadValue},
		{name: "decimal digits", in: `{"test-top:top":{"ratio":"1.234"}}`, want: encode.ErrBadValue},
		{name: "missing key", in: `{"test-top:top":{"item":[{"value":1}]}}`, want: encode.ErrBadValue},
		{name: "container as leaf", in: `{"test-top:top":{"inner":"x"}}`, want: encode.ErrBadValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Unmarshal([]byte(tt.in))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			var e *encode.Error
			if !errors.As(err, &e) {
				t.Errorf("%v is not an *encode.Error", err)
			}
		})
	}
}

func TestMarshalErrors(t *testing.T) {
	r := newRegistry(t)
	foreign := qname.Of(qname.NewModule("urn:elsewhere", ""), "thing")
	tests := []struct {
		name string
		node normalized.Node
		want error
	}{
		{name: "map entry", node: item("a", 1), want: encode.ErrUnsupportedRoot},
		{name: "choice", node: normalized.NewChoice(q("mode")), want: encode.ErrUnsupportedRoot},
		{name: "leaf-list entry", node: normalized.NewLeafSetEntry(q("tag"), "x"), want: encode.ErrUnsupportedRoot},
		{name: "foreign module", node: normalized.NewContainer(foreign), want: encode.ErrMissingModule},
		{name: "foreign identity", node: normalized.NewContainer(q("top"), normalized.NewLeaf(q("kind"), foreign)), want: encode.ErrMissingModule},
	}
	for _, ct := range []string{encode.ContentTypeJSON, encode.ContentTypeCBOR, encode.ContentTypeProto} {
		for _, tt := range tests {
			t.Run(ct+"/"+tt.name, func(t *testing.T) {
				_, err := r.Get(ct).Marshal(tt.node)
				if !errors.Is(err, tt.want) {
					t.Fatalf("got %v, want %v", err, tt.want)
				}
			})
		}
	}
}

func TestRegistry(t *testing.T) {
	r := newRegistry(t)
	want := []string{encode.ContentTypeJSON, encode.ContentTypeProto, encode.ContentTypeCBOR, encode.ContentTypeBinary}
	if diff := cmp.Diff(want, r.ContentTypes()); diff != "" {
		t.Errorf("content types mismatch (-want +got):\n%s", diff)
	}
	for _, ct := range want {
		if c := r.Get(ct); c == nil || c.ContentType() != ct {
			t.Errorf("Get(%q) = %v", ct, c)
		}
	}
	if c := r.Get("text/plain"); c != nil {
		t.Errorf("Get(text/plain) = %v, want nil", c)
	}

	r.Register(encode.JSON(testmodel.MustLoad()))
	if got := len(r.ContentTypes()); got != len(want) {
		t.Errorf("re-registering grew the registry to %d types", got)
	}
}

func TestBinaryVersion(t *testing.T) {
	if _, err := encode.Binary(binfmt.Lithium); err == nil {
		t.Fatal("lithium is not writable")
	}
	r, err := encode.NewRegistry(testmodel.MustLoad(), encode.WithStreamVersion(binfmt.Magnesium))
	if err != nil {
		t.Fatal(err)
	}
	data, err := r.Get(encode.ContentTypeBinary).Marshal(sampleTop())
	if err != nil {
		t.Fatal(err)
	}
	rd, err := binfmt.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if got := rd.StreamVersion(); got != binfmt.Magnesium {
		t.Errorf("stream version %s, want %s", got, binfmt.Magnesium)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Stream.Version = "magnesium"
	if _, err := encode.FromConfig(cfg, testmodel.MustLoad()); err != nil {
		t.Fatal(err)
	}
	cfg.Stream.Version = "lithium"
	if _, err := encode.FromConfig(cfg, testmodel.MustLoad()); err == nil {
		t.Fatal("expected an error for a read-only stream version")
	}
}
