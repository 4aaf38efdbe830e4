package candidate_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opendaylight/yangtools-sub038/candidate"
	"github.com/opendaylight/yangtools-sub038/normalized"
)

func mustDiff(t *testing.T, before, after normalized.Node) *candidate.Candidate {
	t.Helper()
	c, err := candidate.Diff(topPath, before, after)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestAggregate(t *testing.T) {
	name := func(v string) normalized.Node { return normalized.NewLeaf(q("name"), v) }
	count := func(v uint32) normalized.Node { return normalized.NewLeaf(q("count"), v) }

	tests := []struct {
		name  string
		trees []normalized.Node
		want  change
	}{
		{
			name:  "created then deleted",
			trees: []normalized.Node{nil, top(name("a")), nil},
			want:  change{Name: arg("top"), Type: candidate.Unmodified},
		},
		{
			name:  "deleted then written",
			trees: []normalized.Node{top(name("a")), nil, top(name("b"))},
			want:  change{Name: arg("top"), Type: candidate.Write},
		},
		{
			name:  "written then modified",
			trees: []normalized.Node{nil, top(name("a")), top(name("b"))},
			want:  change{Name: arg("top"), Type: candidate.Write},
		},
		{
			name:  "modified then deleted",
			trees: []normalized.Node{top(name("a")), top(name("b")), nil},
			want:  change{Name: arg("top"), Type: candidate.Delete},
		},
		{
			name:  "separate children",
			trees: []normalized.Node{top(name("a"), count(1)), top(name("b"), count(1)), top(name("b"), count(2))},
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("name"), Type: candidate.Write},
				{Name: arg("count"), Type: candidate.Write},
			}},
		},
		{
			name:  "child created then removed",
			trees: []normalized.Node{top(name("a")), top(name("a"), count(1)), top(name("a"))},
			want:  change{Name: arg("top"), Type: candidate.Unmodified},
		},
		{
			name:  "child removed then recreated",
			trees: []normalized.Node{top(name("a"), count(1)), top(name("a")), top(name("a"), count(2))},
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("count"), Type: candidate.Write},
			}},
		},
		{
			name: "three steps",
			trees: []normalized.Node{
				top(name("a")),
				top(name("a"), count(1)),
				top(name("b"), count(1)),
				top(name("b")),
			},
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("name"), Type: candidate.Write},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cs []*candidate.Candidate
			for i := 1; i < len(tt.trees); i++ {
				cs = append(cs, mustDiff(t, tt.trees[i-1], tt.trees[i]))
			}
			got, err := candidate.Aggregate(cs...)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, summarize(got.Root)); diff != "" {
				t.Errorf("aggregate mismatch (-want +got):\n%s", diff)
			}
			last := tt.trees[len(tt.trees)-1]
			if got.Root.Type != candidate.Unmodified && !normalized.Equal(got.Root.After, last) {
				t.Errorf("after-image %v, want %v", got.Root.After, last)
			}
			if got.Root.Type != candidate.Unmodified && !normalized.Equal(got.Root.Before, tt.trees[0]) {
				t.Errorf("before-image %v, want %v", got.Root.Before, tt.trees[0])
			}
		})
	}
}

func TestAggregateStructural(t *testing.T) {
	inner := normalized.NewNodeIdentifier(q("inner"))
	value := normalized.NewNodeIdentifier(q("value"))
	withValue := normalized.NewContainer(q("inner"), normalized.NewLeaf(q("value"), "v"))
	root := func(kids ...*candidate.Node) *candidate.Candidate {
		return &candidate.Candidate{RootPath: topPath, Root: &candidate.Node{
			Name:     normalized.NewNodeIdentifier(q("top")),
			Type:     candidate.SubtreeModified,
			Before:   top(),
			After:    top(),
			Children: kids,
		}}
	}
	appeared := root(&candidate.Node{Name: inner, Type: candidate.Appeared, After: withValue, Children: []*candidate.Node{
		{Name: value, Type: candidate.Write, After: normalized.NewLeaf(q("value"), "v")},
	}})
	disappeared := root(&candidate.Node{Name: inner, Type: candidate.Disappeared, Before: withValue, Children: []*candidate.Node{
		{Name: value, Type: candidate.Delete, Before: normalized.NewLeaf(q("value"), "v")},
	}})

	got, err := candidate.Aggregate(appeared, disappeared)
	if err != nil {
		t.Fatal(err)
	}
	if got.Root.Type != candidate.Unmodified {
		t.Errorf("appeared then disappeared: got %s", got.Root.Type)
	}

	got, err = candidate.Aggregate(disappeared, appeared)
	if err != nil {
		t.Fatal(err)
	}
	want := change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
		{Name: arg("inner"), Type: candidate.SubtreeModified, Children: []change{
			{Name: arg("value"), Type: candidate.Write},
		}},
	}}
	if diff := cmp.Diff(want, summarize(got.Root)); diff != "" {
		t.Errorf("disappeared then appeared mismatch (-want +got):\n%s", diff)
	}

	// inputs are left untouched
	if n := len(appeared.Root.Children[0].Children); n != 1 {
		t.Errorf("input candidate changed: %d children", n)
	}
}

func TestAggregateErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := candidate.Aggregate(); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("single", func(t *testing.T) {
		c := mustDiff(t, nil, top())
		got, err := candidate.Aggregate(c)
		if err != nil || got != c {
			t.Errorf("got %v, %v", got, err)
		}
	})
	t.Run("root mismatch", func(t *testing.T) {
		a := mustDiff(t, nil, top())
		b := &candidate.Candidate{RootPath: normalized.NewInstanceIdentifier(), Root: a.Root}
		if _, err := candidate.Aggregate(a, b); !errors.Is(err, candidate.ErrRootMismatch) {
			t.Errorf("got %v", err)
		}
	})
	t.Run("double delete", func(t *testing.T) {
		a := mustDiff(t, top(), nil)
		_, err := candidate.Aggregate(a, a)
		var ime *candidate.IllegalModificationError
		if !errors.As(err, &ime) {
			t.Fatalf("got %v", err)
		}
		if got, want := ime.Error(), "DELETE modification event on DELETE node"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
	t.Run("modify deleted", func(t *testing.T) {
		a := mustDiff(t, top(normalized.NewLeaf(q("name"), "a")), nil)
		b := mustDiff(t, top(normalized.NewLeaf(q("name"), "a")), top(normalized.NewLeaf(q("name"), "b")))
		var ime *candidate.IllegalModificationError
		if _, err := candidate.Aggregate(a, b); !errors.As(err, &ime) {
			t.Fatalf("got %v", err)
		}
	})
}
