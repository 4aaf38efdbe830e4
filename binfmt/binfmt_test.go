package binfmt_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/opendaylight/yangtools-sub038/binfmt"
	"github.com/opendaylight/yangtools-sub038/debug"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

var (
	mod   = qname.NewModule("urn:test:binfmt", "2024-03-01")
	other = qname.NewModule("urn:test:binfmt:other", "")
)

func q(local string) qname.QName { return qname.Of(mod, local) }

var allVersions = []binfmt.Version{
	binfmt.Lithium,
	binfmt.NeonSR2,
	binfmt.SodiumSR1,
	binfmt.Magnesium,
	binfmt.Potassium,
}

func openWriter(t *testing.T, buf *bytes.Buffer, v binfmt.Version) *binfmt.Writer {
	t.Helper()
	w, err := binfmt.NewLegacyWriter(buf, v)
	if err != nil {
		t.Fatalf("open %s writer: %v", v, err)
	}
	return w
}

func openReader(t *testing.T, buf *bytes.Buffer) *binfmt.Reader {
	t.Helper()
	r, err := binfmt.NewReader(buf)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	return r
}

func entry(name string, v int32) *normalized.MapEntry {
	return normalized.NewMapEntry(
		normalized.NewNodeIdentifierWithPredicates(q("item"), normalized.KV(q("name"), name)),
		normalized.NewLeaf(q("name"), name),
		normalized.NewLeaf(q("value"), v),
	)
}

func sampleTree(unsigned bool) normalized.Node {
	iid := normalized.NewInstanceIdentifier(
		normalized.NewNodeIdentifier(q("top")),
		normalized.NewNodeIdentifier(q("item")),
		normalized.NewNodeIdentifierWithPredicates(q("item"), normalized.KV(q("name"), "a")),
		normalized.NewNodeWithValue(q("tag"), "x"),
	)
	leaves := []normalized.Node{
		normalized.NewLeaf(q("text"), "hello"),
		normalized.NewLeaf(q("empty-text"), ""),
		normalized.NewLeaf(q("long-text"), strings.Repeat("z", 70000)),
		normalized.NewLeaf(q("flag"), true),
		normalized.NewLeaf(q("off"), false),
		normalized.NewLeaf(q("i8"), int8(-5)),
		normalized.NewLeaf(q("i8-zero"), int8(0)),
		normalized.NewLeaf(q("i16"), int16(-300)),
		normalized.NewLeaf(q("i32-small"), int32(1000)),
		normalized.NewLeaf(q("i32-big"), int32(-2000000)),
		normalized.NewLeaf(q("i64-small"), int64(70000)),
		normalized.NewLeaf(q("i64-big"), int64(math.MinInt64)),
		normalized.NewLeaf(q("price"), normalized.Decimal64{Unscaled: 12345, Scale: 2}),
		normalized.NewLeaf(q("marker"), normalized.Empty{}),
		normalized.NewLeaf(q("small-blob"), []byte{1, 2, 3}),
		normalized.NewLeaf(q("blob"), bytes.Repeat([]byte{7}, 300)),
		normalized.NewLeaf(q("bits"), normalized.NewBits("read", "write")),
		normalized.NewLeaf(q("ident"), qname.Of(other, "identity")),
		normalized.NewLeaf(q("ref"), iid),
	}
	if unsigned {
		leaves = append(leaves,
			normalized.NewLeaf(q("u8"), uint8(200)),
			normalized.NewLeaf(q("u16"), uint16(60000)),
			normalized.NewLeaf(q("u32"), uint32(4000000000)),
			normalized.NewLeaf(q("u64"), uint64(math.MaxUint64)),
			normalized.NewLeaf(q("u64-zero"), uint64(0)),
		)
	}
	kids := append(leaves,
		normalized.NewMap(q("item"), entry("a", 1), entry("b", 2)),
		normalized.NewOrderedMap(q("pair"),
			normalized.NewMapEntry(
				normalized.NewNodeIdentifierWithPredicates(q("pair"),
					normalized.KV(q("left"), "l"), normalized.KV(q("right"), int16(3))),
				normalized.NewLeaf(q("left"), "l"),
				normalized.NewLeaf(q("right"), int16(3)),
				normalized.NewLeaf(q("note"), "paired"),
			),
		),
		normalized.NewUnkeyedList(q("log"),
			normalized.NewUnkeyedListEntry(q("log"), normalized.NewLeaf(q("line"), "first")),
			normalized.NewUnkeyedListEntry(q("log"), normalized.NewLeaf(q("line"), "second")),
		),
		normalized.LeafSetOf(q("tag"), "x", "y"),
		normalized.NewOrderedLeafSet(q("rank"),
			normalized.NewLeafSetEntry(q("rank"), int32(2)),
			normalized.NewLeafSetEntry(q("rank"), int32(1)),
		),
		normalized.NewChoice(q("mode"), normalized.NewLeaf(q("fast"), normalized.Empty{})),
		normalized.NewAnyXML(q("payload"), "<data xmlns=\"urn:x\"/>"),
		normalized.NewContainer(q("nested"), normalized.NewContainer(q("nested"))),
	)
	return normalized.NewContainer(q("top"), kids...)
}

// wideTree names more nodes than fit one-byte references.
func wideTree() normalized.Node {
	first := make([]normalized.Node, 0, 300)
	second := make([]normalized.Node, 0, 300)
	for i := range 300 {
		name := q(fmt.Sprintf("leaf-%d", i))
		first = append(first, normalized.NewLeaf(name, fmt.Sprintf("v%d", i)))
		second = append(second, normalized.NewLeaf(name, int32(i)))
	}
	return normalized.NewContainer(q("wide"),
		normalized.NewContainer(q("first"), first...),
		normalized.NewContainer(q("second"), second...),
	)
}

func TestRoundTrip(t *testing.T) {
	for _, v := range allVersions {
		t.Run(v.String(), func(t *testing.T) {
			unsigned := v >= binfmt.Magnesium
			trees := []normalized.Node{sampleTree(unsigned), wideTree(), sampleTree(unsigned)}

			var buf bytes.Buffer
			w := openWriter(t, &buf, v)
			for _, n := range trees {
				if err := w.WriteNode(n); err != nil {
					t.Fatalf("WriteNode: %v", err)
				}
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}

			r := openReader(t, &buf)
			if r.StreamVersion() != v {
				t.Fatalf("StreamVersion() = %s, want %s", r.StreamVersion(), v)
			}
			for i, want := range trees {
				got, err := r.ReadNode()
				if err != nil {
					t.Fatalf("ReadNode %d: %v", i, err)
				}
				if !normalized.Equal(want, got) {
					t.Errorf("tree %d mismatch:\n%s", i, debug.DiffDump(want, got))
				}
			}
			if buf.Len() != 0 {
				t.Errorf("%d bytes left unread", buf.Len())
			}
		})
	}
}

func TestAtomsRoundTrip(t *testing.T) {
	aid := normalized.NewAugmentationIdentifier(q("b"), q("a"))
	args := []normalized.PathArgument{
		normalized.NewNodeIdentifier(q("top")),
		normalized.NewNodeIdentifierWithPredicates(q("item"), normalized.KV(q("name"), "a")),
		normalized.NewNodeWithValue(q("tag"), int64(9)),
	}
	path := schema.NewPath(q("top"), q("item"), qname.Of(other, "leaf"))

	for _, v := range allVersions {
		t.Run(v.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := openWriter(t, &buf, v)
			for range 2 {
				if err := w.WriteQName(q("top")); err != nil {
					t.Fatal(err)
				}
				for _, a := range args {
					if err := w.WritePathArgument(a); err != nil {
						t.Fatal(err)
					}
				}
				if v < binfmt.Potassium {
					if err := w.WritePathArgument(aid); err != nil {
						t.Fatal(err)
					}
				}
				if err := w.WriteInstanceIdentifier(normalized.NewInstanceIdentifier(args...)); err != nil {
					t.Fatal(err)
				}
				if err := w.WriteSchemaPath(path); err != nil {
					t.Fatal(err)
				}
			}
			if err := w.WriteByte(0x7F); err != nil {
				t.Fatal(err)
			}
			if err := w.WriteUint32(123456); err != nil {
				t.Fatal(err)
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}

			r := openReader(t, &buf)
			for pass := range 2 {
				gq, err := r.ReadQName()
				if err != nil {
					t.Fatal(err)
				}
				if gq != q("top") {
					t.Errorf("pass %d: ReadQName() = %s", pass, gq)
				}
				for _, want := range args {
					got, err := r.ReadPathArgument()
					if err != nil {
						t.Fatal(err)
					}
					if !normalized.ArgEqual(want, got) {
						t.Errorf("pass %d: ReadPathArgument() = %s, want %s", pass, got, want)
					}
				}
				if v < binfmt.Potassium {
					got, err := r.ReadPathArgument()
					if err != nil {
						t.Fatal(err)
					}
					if !normalized.ArgEqual(aid, got) {
						t.Errorf("pass %d: augmentation = %s, want %s", pass, got, aid)
					}
				}
				id, err := r.ReadInstanceIdentifier()
				if err != nil {
					t.Fatal(err)
				}
				if want := normalized.NewInstanceIdentifier(args...); !want.Equal(id) {
					t.Errorf("pass %d: ReadInstanceIdentifier() = %s, want %s", pass, id, want)
				}
				gp, err := r.ReadSchemaPath()
				if err != nil {
					t.Fatal(err)
				}
				if !path.Equal(gp) {
					t.Errorf("pass %d: ReadSchemaPath() = %v, want %v", pass, gp, path)
				}
			}
			b, err := r.ReadByte()
			if err != nil || b != 0x7F {
				t.Errorf("ReadByte() = %#x, %v", b, err)
			}
			u, err := r.ReadUint32()
			if err != nil || u != 123456 {
				t.Errorf("ReadUint32() = %d, %v", u, err)
			}
		})
	}
}

func TestOptionalNode(t *testing.T) {
	var buf bytes.Buffer
	w, err := binfmt.NewWriter(&buf, binfmt.DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	leaf := normalized.NewLeaf(q("x"), "y")
	if err := w.WriteOptionalNode(nil); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteOptionalNode(leaf); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := openReader(t, &buf)
	got, err := r.ReadOptionalNode()
	if err != nil || got != nil {
		t.Fatalf("first ReadOptionalNode() = %v, %v, want nil", got, err)
	}
	got, err = r.ReadOptionalNode()
	if err != nil {
		t.Fatal(err)
	}
	if !normalized.Equal(leaf, got) {
		t.Errorf("second ReadOptionalNode() = %s, want %s", got, leaf)
	}
}

func TestUnsignedWidening(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{uint8(200), int16(200)},
		{uint16(60000), int32(60000)},
		{uint32(4000000000), int64(4000000000)},
		{uint64(math.MaxUint64), new(big.Int).SetUint64(math.MaxUint64)},
	}
	for _, v := range []binfmt.Version{binfmt.Lithium, binfmt.NeonSR2, binfmt.SodiumSR1} {
		t.Run(v.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := openWriter(t, &buf, v)
			for _, tt := range tests {
				if err := w.WriteValue(tt.in); err != nil {
					t.Fatalf("WriteValue(%T): %v", tt.in, err)
				}
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}
			r := openReader(t, &buf)
			for _, tt := range tests {
				got, err := r.ReadValue()
				if err != nil {
					t.Fatal(err)
				}
				if !normalized.ValueEqual(tt.want, got) {
					t.Errorf("%T widened to %T(%v), want %T(%v)", tt.in, got, got, tt.want, tt.want)
				}
			}
		})
	}
}

func TestBigIntegers(t *testing.T) {
	n, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	var buf bytes.Buffer
	w, err := binfmt.NewWriter(&buf, binfmt.Magnesium)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteValue(n); err != nil {
		t.Fatalf("magnesium WriteValue: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	got, err := openReader(t, &buf).ReadValue()
	if err != nil {
		t.Fatal(err)
	}
	if !normalized.ValueEqual(n, got) {
		t.Errorf("ReadValue() = %v, want %v", got, n)
	}

	buf.Reset()
	w, err = binfmt.NewWriter(&buf, binfmt.Potassium)
	if err != nil {
		t.Fatal(err)
	}
	err = w.WriteValue(n)
	var uv *binfmt.UnsupportedValueError
	if !errors.As(err, &uv) {
		t.Fatalf("potassium WriteValue(*big.Int) = %v, want UnsupportedValueError", err)
	}
	if uv.Version != binfmt.Potassium {
		t.Errorf("error version = %s", uv.Version)
	}
}

func TestPotassiumRejectsAugmentationIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	w, err := binfmt.NewWriter(&buf, binfmt.Potassium)
	if err != nil {
		t.Fatal(err)
	}
	err = w.WritePathArgument(normalized.NewAugmentationIdentifier(q("a")))
	var uv *binfmt.UnsupportedValueError
	if !errors.As(err, &uv) {
		t.Fatalf("WritePathArgument(augmentation) = %v, want UnsupportedValueError", err)
	}
}

func TestNewWriterVersions(t *testing.T) {
	for _, v := range allVersions {
		t.Run(v.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := binfmt.NewWriter(&buf, v)
			if v.Writable() {
				if err != nil {
					t.Fatalf("NewWriter: %v", err)
				}
				if w.Version() != v {
					t.Errorf("Version() = %s", w.Version())
				}
				return
			}
			var uv *binfmt.UnsupportedVersionError
			if !errors.As(err, &uv) || uv.Version != uint16(v) {
				t.Fatalf("NewWriter(%s) = %v, want UnsupportedVersionError", v, err)
			}
		})
	}
}

func TestReaderHeader(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		invalid bool
		version bool
	}{
		{name: "empty", in: nil, invalid: true},
		{name: "bad signature", in: []byte{0x00, 0x00, 0x05}, invalid: true},
		{name: "short version", in: []byte{binfmt.Signature, 0x00}, invalid: true},
		{name: "zero version", in: []byte{binfmt.Signature, 0x00, 0x00}, version: true},
		{name: "future version", in: []byte{binfmt.Signature, 0x00, 0x09}, version: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := binfmt.NewReader(bytes.NewReader(tt.in))
			if got := errors.Is(err, binfmt.ErrInvalidStream); got != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalidStream) = %v, want %v", err, got, tt.invalid)
			}
			var uv *binfmt.UnsupportedVersionError
			if got := errors.As(err, &uv); got != tt.version {
				t.Errorf("errors.As(%v, UnsupportedVersionError) = %v, want %v", err, got, tt.version)
			}
		})
	}
}

func TestInvalidReferences(t *testing.T) {
	header := func(v binfmt.Version, body ...byte) []byte {
		return append([]byte{binfmt.Signature, 0x00, byte(v)}, body...)
	}
	tests := []struct {
		name string
		in   []byte
		msg  string
	}{
		{
			name: "lithium string",
			in:   header(binfmt.Lithium, binfmt.TagStringCode, 0, 0, 0, 7),
			msg:  "Invalid String reference 7",
		},
		{
			name: "neon qname",
			in:   header(binfmt.NeonSR2, binfmt.TagQNameCode, 0, 0, 0, 3),
			msg:  "Invalid QName reference 3",
		},
		{
			name: "neon module",
			in: header(binfmt.NeonSR2, binfmt.TagQNameValue,
				binfmt.TagStringValue, 0, 0, 0, 1, 'a',
				binfmt.TagModuleCode, 0, 0, 0, 2),
			msg: "Invalid QNameModule reference 2",
		},
		{
			name: "sodium qname",
			in:   header(binfmt.SodiumSR1, binfmt.TagQNameRef1B, 9),
			msg:  "Invalid QName reference 9",
		},
		{
			name: "magnesium qname",
			in:   header(binfmt.Magnesium, binfmt.TagQNameRef1B, 5),
			msg:  "Invalid QName reference 5",
		},
		{
			name: "potassium module",
			in:   header(binfmt.Potassium, binfmt.TagQName, binfmt.TagModRef1B, 4),
			msg:  "Invalid QNameModule reference 4",
		},
		{
			name: "potassium string",
			in:   header(binfmt.Potassium, binfmt.TagQName, binfmt.TagStringRef1B, 2),
			msg:  "Invalid String reference 2",
		},
		{
			name: "unknown qname tag",
			in:   header(binfmt.SodiumSR1, 0xFF),
			msg:  "Unexpected QName type 255",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := binfmt.NewReader(bytes.NewReader(tt.in))
			if err != nil {
				t.Fatal(err)
			}
			_, err = r.ReadQName()
			if !errors.Is(err, binfmt.ErrInvalidStream) {
				t.Fatalf("ReadQName() = %v, want an invalid stream", err)
			}
			if err.Error() != tt.msg {
				t.Errorf("error = %q, want %q", err, tt.msg)
			}
		})
	}
}

func TestTruncatedStream(t *testing.T) {
	for _, v := range allVersions {
		t.Run(v.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := openWriter(t, &buf, v)
			if err := w.WriteNode(sampleTree(false)); err != nil {
				t.Fatal(err)
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}
			data := buf.Bytes()
			for _, cut := range []int{4, len(data) / 2, len(data) - 1} {
				r, err := binfmt.NewReader(bytes.NewReader(data[:cut]))
				if err != nil {
					t.Fatal(err)
				}
				_, err = r.ReadNode()
				if !errors.Is(err, binfmt.ErrInvalidStream) || !errors.Is(err, io.ErrUnexpectedEOF) {
					t.Errorf("cut at %d: ReadNode() = %v, want unexpected end of stream", cut, err)
				}
			}
		})
	}
}

func TestPotassiumOmitsKeyLeafValues(t *testing.T) {
	const key = "a-rather-distinctive-key"
	tree := normalized.NewMap(q("item"),
		normalized.NewMapEntry(
			normalized.NewNodeIdentifierWithPredicates(q("item"), normalized.KV(q("name"), key)),
			normalized.NewLeaf(q("value"), int32(1)),
			normalized.NewLeaf(q("name"), key),
		),
	)
	tests := []struct {
		version binfmt.Version
		count   int
	}{
		{binfmt.Magnesium, 2},
		{binfmt.Potassium, 1},
	}
	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := openWriter(t, &buf, tt.version)
			if err := w.WriteNode(tree); err != nil {
				t.Fatal(err)
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}
			if got := bytes.Count(buf.Bytes(), []byte(key)); got != tt.count {
				t.Errorf("key written %d times, want %d", got, tt.count)
			}
			got, err := openReader(t, &buf).ReadNode()
			if err != nil {
				t.Fatal(err)
			}
			if !normalized.Equal(tree, got) {
				t.Errorf("mismatch:\n%s", debug.DiffDump(tree, got))
			}
		})
	}
}

func TestAugmentationNodesAreFlattened(t *testing.T) {
	aid := normalized.NewAugmentationIdentifier(q("extra"), q("more"))
	kids := []normalized.Node{
		normalized.NewLeaf(q("extra"), "e"),
		normalized.NewContainer(q("more"), normalized.NewLeaf(q("inner"), int8(1))),
	}
	want := normalized.NewContainer(q("top"),
		normalized.NewLeaf(q("plain"), "p"),
		kids[0],
		kids[1],
	)
	for _, v := range allVersions {
		t.Run(v.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := openWriter(t, &buf, v)
			ev := binfmt.Events(w)
			if err := ev.StartContainer(normalized.NewNodeIdentifier(q("top")), 2); err != nil {
				t.Fatal(err)
			}
			if err := normalized.Write(ev, normalized.NewLeaf(q("plain"), "p")); err != nil {
				t.Fatal(err)
			}
			if err := binfmt.WriteAugmentation(w, aid, kids...); err != nil {
				t.Fatal(err)
			}
			if err := ev.EndNode(); err != nil {
				t.Fatal(err)
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}
			got, err := openReader(t, &buf).ReadNode()
			if err != nil {
				t.Fatal(err)
			}
			if !normalized.Equal(want, got) {
				t.Errorf("mismatch:\n%s", debug.DiffDump(want, got))
			}
		})
	}
}

func TestUnbalancedEndNode(t *testing.T) {
	for _, v := range allVersions {
		t.Run(v.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := openWriter(t, &buf, v)
			err := binfmt.Events(w).EndNode()
			if !errors.Is(err, normalized.ErrUnbalanced) {
				t.Errorf("EndNode() = %v, want ErrUnbalanced", err)
			}
		})
	}
}

func TestUnsupportedValue(t *testing.T) {
	for _, v := range allVersions {
		t.Run(v.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := openWriter(t, &buf, v)
			err := w.WriteValue(struct{}{})
			var uv *binfmt.UnsupportedValueError
			if !errors.As(err, &uv) {
				t.Fatalf("WriteValue(struct{}{}) = %v, want UnsupportedValueError", err)
			}
			if want := v.String() + " streams cannot encode struct {}"; err.Error() != want {
				t.Errorf("error = %q, want %q", err, want)
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    binfmt.Version
		wantErr bool
	}{
		{in: "potassium", want: binfmt.Potassium},
		{in: "Magnesium", want: binfmt.Magnesium},
		{in: "neon_sr2", want: binfmt.NeonSR2},
		{in: "sodium-sr1", want: binfmt.SodiumSR1},
		{in: "lithium", want: binfmt.Lithium},
		{in: "calcium", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := binfmt.ParseVersion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v", tt.in, err)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseVersion(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
	if got := binfmt.Version(42).String(); got != "version(42)" {
		t.Errorf("String() = %q", got)
	}
}

func TestStreamTrace(t *testing.T) {
	var buf bytes.Buffer
	w := openWriter(t, &buf, binfmt.Potassium)
	tree := sampleTree(false)
	if err := w.WriteNode(tree); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	var trace strings.Builder
	defer debug.Override(false, true, false, &trace)()
	n, err := openReader(t, &buf).ReadNode()
	if err != nil {
		t.Fatal(err)
	}
	got := trace.String()
	if !strings.Contains(got, "yt: stream reader "+binfmt.Potassium.String()) {
		t.Errorf("trace lacks the stream header:\n%s", got)
	}
	if !strings.HasSuffix(got, debug.Sprint(n)) {
		t.Errorf("trace does not end with the decoded node:\n%s", got)
	}
}
