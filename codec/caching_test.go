package codec_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/codec"
	"github.com/opendaylight/yangtools-sub038/config"
	"github.com/opendaylight/yangtools-sub038/debug"
	"github.com/opendaylight/yangtools-sub038/internal/testmodel"
	"github.com/opendaylight/yangtools-sub038/normalized"
)

func TestNonCachingCodec(t *testing.T) {
	ctx := newContext(t)
	node, err := ctx.SubtreeCodec(topPath())
	if err != nil {
		t.Fatal(err)
	}
	cc := node.CreateCachingCodec()
	if _, ok := cc.(*codec.NonCachingCodec); !ok {
		t.Fatalf("got %T, want *codec.NonCachingCodec", cc)
	}
	obj := &testmodel.Top{Inner: &testmodel.Inner{Value: ptr("v")}}
	a, err := cc.Serialize(obj)
	if err != nil {
		t.Fatal(err)
	}
	cc.Close()
	b, err := cc.Serialize(obj)
	if err != nil {
		t.Fatal(err)
	}
	if child(t, a, "inner") == child(t, b, "inner") {
		t.Errorf("non-caching codec reused a node")
	}
	if !normalized.Equal(a, b) {
		t.Errorf("serializations differ")
	}
}

func TestCachingCodecContainers(t *testing.T) {
	ctx := newContext(t)
	node, err := ctx.SubtreeCodec(topPath())
	if err != nil {
		t.Fatal(err)
	}
	cc := node.CreateCachingCodec(innerType, detailType)
	defer cc.Close()

	first, err := cc.Serialize(&testmodel.Top{
		Name:  ptr("one"),
		Inner: &testmodel.Inner{Value: ptr("v")},
		Items: []*testmodel.Item{
			{Name: ptr("a"), Detail: &testmodel.Detail{Note: ptr("n")}},
			{Name: ptr("b"), Detail: &testmodel.Detail{Note: ptr("n")}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := cc.Serialize(&testmodel.Top{
		Name:  ptr("one"),
		Inner: &testmodel.Inner{Value: ptr("v")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if child(t, first, "inner") != child(t, second, "inner") {
		t.Errorf("equal containers were not shared")
	}
	if child(t, first, "name") == child(t, second, "name") {
		t.Errorf("uncached leaf type was shared")
	}

	items := child(t, first, "item").(*normalized.Map).Entries()
	if child(t, items[0], "detail") != child(t, items[1], "detail") {
		t.Errorf("equal details in distinct entries were not shared")
	}

	third, err := cc.Serialize(&testmodel.Top{Inner: &testmodel.Inner{Value: ptr("w")}})
	if err != nil {
		t.Fatal(err)
	}
	if child(t, first, "inner") == child(t, third, "inner") {
		t.Errorf("distinct containers were shared")
	}

	cc.Close()
	fourth, err := cc.Serialize(&testmodel.Top{Inner: &testmodel.Inner{Value: ptr("v")}})
	if err != nil {
		t.Fatal(err)
	}
	if child(t, first, "inner") == child(t, fourth, "inner") {
		t.Errorf("node survived Close")
	}
	if !normalized.Equal(child(t, first, "inner"), child(t, fourth, "inner")) {
		t.Errorf("rebuilt node differs")
	}
}

func TestCachingCodecLeaves(t *testing.T) {
	ctx := newContext(t)
	node, err := ctx.SubtreeCodec(binding.New(topType).Keyed(itemType, testmodel.ItemKey{Name: "a"}).Build())
	if err != nil {
		t.Fatal(err)
	}
	cc := node.CreateCachingCodec(reflect.TypeFor[int32]())
	defer cc.Close()

	a, err := cc.Serialize(&testmodel.Item{Name: ptr("a"), Value: ptr[int32](5)})
	if err != nil {
		t.Fatal(err)
	}
	b, err := cc.Serialize(&testmodel.Item{Name: ptr("b"), Value: ptr[int32](5)})
	if err != nil {
		t.Fatal(err)
	}
	if child(t, a, "value") != child(t, b, "value") {
		t.Errorf("equal leaf values in distinct parents were not shared")
	}
	if child(t, a, "name") == child(t, b, "name") {
		t.Errorf("uncached leaf type was shared")
	}

	obj, err := cc.Deserialize(a)
	if err != nil {
		t.Fatal(err)
	}
	if !binding.Equal(&testmodel.Item{Name: ptr("a"), Value: ptr[int32](5)}, obj) {
		t.Errorf("deserialized %+v", obj)
	}
}

func TestCachingCodecFor(t *testing.T) {
	ctx := newContext(t)
	cc, err := ctx.CachingCodecFor(topPath(), binding.TypeName(innerType))
	if err != nil {
		t.Fatal(err)
	}
	defer cc.Close()
	obj := &testmodel.Top{Inner: &testmodel.Inner{Value: ptr("v")}}
	a, err := cc.Serialize(obj)
	if err != nil {
		t.Fatal(err)
	}
	b, err := cc.Serialize(obj)
	if err != nil {
		t.Fatal(err)
	}
	if child(t, a, "inner") != child(t, b, "inner") {
		t.Errorf("inner was not cached")
	}

	if _, err := ctx.CachingCodecFor(topPath(), "example.com/none.Missing"); err == nil {
		t.Errorf("unknown type name accepted")
	}
}

func loadConfig(t *testing.T, lines ...string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yangtools.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestCachingCodecFromConfig(t *testing.T) {
	cfg := loadConfig(t,
		"log:",
		"  level: error",
		"codec:",
		"  cache_types:",
		"    - "+binding.TypeName(innerType),
	)
	ctx, err := codec.FromConfig(cfg, testmodel.MustLoad())
	if err != nil {
		t.Fatal(err)
	}
	cc, err := ctx.CachingCodecFor(topPath())
	if err != nil {
		t.Fatal(err)
	}
	defer cc.Close()
	if _, ok := cc.(*codec.NonCachingCodec); ok {
		t.Fatal("configured cache types were ignored")
	}
	obj := &testmodel.Top{Inner: &testmodel.Inner{Value: ptr("v")}}
	a, err := cc.Serialize(obj)
	if err != nil {
		t.Fatal(err)
	}
	b, err := cc.Serialize(&testmodel.Top{Inner: &testmodel.Inner{Value: ptr("v")}})
	if err != nil {
		t.Fatal(err)
	}
	if child(t, a, "inner") != child(t, b, "inner") {
		t.Errorf("configured type inner was not cached")
	}

	// explicit names replace the configured ones
	cc, err = ctx.CachingCodecFor(topPath(), binding.TypeName(detailType))
	if err != nil {
		t.Fatal(err)
	}
	a, _ = cc.Serialize(obj)
	b, _ = cc.Serialize(obj)
	if child(t, a, "inner") == child(t, b, "inner") {
		t.Errorf("inner cached although only detail was asked for")
	}
}

func TestCachingCodecFromConfigUnknownType(t *testing.T) {
	cfg := loadConfig(t,
		"log:",
		"  level: error",
		"codec:",
		"  cache_types: [example.com/none.Missing]",
	)
	_, err := codec.FromConfig(cfg, testmodel.MustLoad())
	var mcl *codec.MissingClassInLoadingStrategyError
	if !errors.As(err, &mcl) {
		t.Errorf("got %v, want a MissingClassInLoadingStrategyError", err)
	}
}

func TestCachingCodecTrace(t *testing.T) {
	var b strings.Builder
	defer debug.Override(true, false, true, &b)()

	ctx := newContext(t)
	cc, err := ctx.CachingCodecFor(topPath(), binding.TypeName(innerType))
	if err != nil {
		t.Fatal(err)
	}
	obj := &testmodel.Top{Inner: &testmodel.Inner{Value: ptr("v")}}
	for range 2 {
		if _, err := cc.Serialize(obj); err != nil {
			t.Fatal(err)
		}
	}
	got := b.String()
	for _, want := range []string{
		"yt: codec: built data node",
		"yt: cache: miss inner",
		"yt: cache: hit inner",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("trace lacks %q:\n%s", want, got)
		}
	}
}
