package candidate_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opendaylight/yangtools-sub038/binfmt"
	"github.com/opendaylight/yangtools-sub038/candidate"
	"github.com/opendaylight/yangtools-sub038/normalized"
)

func writeCandidate(t *testing.T, v binfmt.Version, c *candidate.Candidate) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := binfmt.NewWriter(&buf, v)
	if err != nil {
		t.Fatal(err)
	}
	if err := candidate.Write(w, c); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readCandidate(t *testing.T, data []byte) *candidate.Candidate {
	t.Helper()
	r, err := binfmt.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	c, err := candidate.Read(r)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestStreamRoundTrip(t *testing.T) {
	before := top(
		normalized.NewLeaf(q("name"), "a"),
		normalized.NewLeaf(q("count"), uint32(1)),
		normalized.NewMap(q("item"), item("a", 1), item("b", 2)),
		normalized.NewContainer(q("inner"), normalized.NewLeaf(q("value"), "v")),
	)
	after := top(
		normalized.NewLeaf(q("name"), "b"),
		normalized.NewMap(q("item"), item("a", 7), item("c", 3)),
		normalized.NewContainer(q("inner"), normalized.NewLeaf(q("value"), "v")),
	)
	cases := map[string]*candidate.Candidate{
		"subtree": mustDiff(t, before, after),
		"write":   mustDiff(t, nil, after),
		"delete":  mustDiff(t, before, nil),
		"unmodified": {
			RootPath: topPath,
			Root:     &candidate.Node{Name: normalized.NewNodeIdentifier(q("top")), Type: candidate.Unmodified},
		},
		"appeared": {
			RootPath: topPath,
			Root: &candidate.Node{Name: normalized.NewNodeIdentifier(q("top")), Type: candidate.Appeared, Children: []*candidate.Node{
				{Name: normalized.NewNodeIdentifier(q("name")), Type: candidate.Write, After: normalized.NewLeaf(q("name"), "x")},
				{Name: normalized.NewNodeIdentifier(q("inner")), Type: candidate.Unmodified},
			}},
		},
	}
	for _, v := range []binfmt.Version{binfmt.Magnesium, binfmt.Potassium} {
		for name, c := range cases {
			t.Run(v.String()+"/"+name, func(t *testing.T) {
				got := readCandidate(t, writeCandidate(t, v, c))
				if !got.RootPath.Equal(c.RootPath) {
					t.Errorf("root path %v, want %v", got.RootPath, c.RootPath)
				}
				want := summarize(c.Root)
				want.Children = dropUnmodified(want.Children)
				if diff := cmp.Diff(want, summarize(got.Root)); diff != "" {
					t.Errorf("candidate mismatch (-want +got):\n%s", diff)
				}
				checkImages(t, c.Root, got.Root)
			})
		}
	}
}

func dropUnmodified(cs []change) []change {
	var out []change
	for _, c := range cs {
		if c.Type != candidate.Unmodified {
			c.Children = dropUnmodified(c.Children)
			out = append(out, c)
		}
	}
	return out
}

// checkImages verifies read nodes are detached, keep after-images of
// written nodes and drop every before-image.
func checkImages(t *testing.T, want, got *candidate.Node) {
	t.Helper()
	if !got.Detached() {
		t.Errorf("%v is not detached", got)
	}
	if got.Before != nil {
		t.Errorf("%v kept a before-image", got)
	}
	if want.Type == candidate.Write && !normalized.Equal(want.After, got.After) {
		t.Errorf("%v after-image %v, want %v", got, got.After, want.After)
	}
	if _, err := got.Child(want.Name); !errors.Is(err, candidate.ErrDetached) {
		t.Errorf("child lookup on %v: got %v", got, err)
	}
	kept := want.Children[:0:0]
	for _, c := range want.Children {
		if c.Type != candidate.Unmodified {
			kept = append(kept, c)
		}
	}
	for i := range min(len(kept), len(got.Children)) {
		checkImages(t, kept[i], got.Children[i])
	}
}

func TestReadUnknownTag(t *testing.T) {
	var buf bytes.Buffer
	w, err := binfmt.NewWriter(&buf, binfmt.DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteInstanceIdentifier(topPath); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteByte(9); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	r, err := binfmt.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	_, err = candidate.Read(r)
	if !errors.Is(err, binfmt.ErrInvalidStream) {
		t.Fatalf("got %v, want an invalid stream error", err)
	}
	if got, want := err.Error(), "Unhandled node type 9"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAggregateDetached(t *testing.T) {
	written := readCandidate(t, writeCandidate(t, binfmt.Potassium, mustDiff(t, nil, top(normalized.NewLeaf(q("name"), "a")))))
	modified := readCandidate(t, writeCandidate(t, binfmt.Potassium, mustDiff(t,
		top(normalized.NewLeaf(q("name"), "a")),
		top(normalized.NewLeaf(q("name"), "b")))))
	if _, err := candidate.Aggregate(written, modified); !errors.Is(err, candidate.ErrDetached) {
		t.Errorf("got %v, want ErrDetached", err)
	}
}
