package candidate_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opendaylight/yangtools-sub038/candidate"
	"github.com/opendaylight/yangtools-sub038/internal/testmodel"
	"github.com/opendaylight/yangtools-sub038/normalized"
)

var q = testmodel.Q

// change is a comparable view of a candidate node.
type change struct {
	Name     string
	Type     candidate.ModificationType
	Children []change
}

func summarize(n *candidate.Node) change {
	c := change{Type: n.Type}
	if n.Name != nil {
		c.Name = n.Name.String()
	}
	for _, k := range n.Children {
		c.Children = append(c.Children, summarize(k))
	}
	return c
}

func arg(q string) string { return testmodel.Q(q).String() }

func item(name string, value int32) *normalized.MapEntry {
	return normalized.NewMapEntry(
		normalized.NewNodeIdentifierWithPredicates(q("item"), normalized.KV(q("name"), name)),
		normalized.NewLeaf(q("name"), name),
		normalized.NewLeaf(q("value"), value),
	)
}

func itemArg(name string) string {
	return normalized.NewNodeIdentifierWithPredicates(q("item"), normalized.KV(q("name"), name)).String()
}

func stage(id uint16) *normalized.MapEntry {
	return normalized.NewMapEntry(
		normalized.NewNodeIdentifierWithPredicates(q("stage"), normalized.KV(q("id"), id)),
		normalized.NewLeaf(q("id"), id),
	)
}

func stageArg(id uint16) string {
	return normalized.NewNodeIdentifierWithPredicates(q("stage"), normalized.KV(q("id"), id)).String()
}

func top(kids ...normalized.Node) *normalized.Container {
	return normalized.NewContainer(q("top"), kids...)
}

var topPath = normalized.NewInstanceIdentifier(normalized.NewNodeIdentifier(q("top")))

func TestDiff(t *testing.T) {
	tests := []struct {
		name          string
		before, after normalized.Node
		want          change
	}{
		{
			name:   "equal",
			before: top(normalized.NewLeaf(q("name"), "a")),
			after:  top(normalized.NewLeaf(q("name"), "a")),
			want:   change{Name: arg("top"), Type: candidate.Unmodified},
		},
		{
			name:  "created",
			after: top(),
			want:  change{Name: arg("top"), Type: candidate.Write},
		},
		{
			name:   "removed",
			before: top(),
			want:   change{Name: arg("top"), Type: candidate.Delete},
		},
		{
			name:   "leaf changed",
			before: top(normalized.NewLeaf(q("name"), "a"), normalized.NewLeaf(q("count"), uint32(1))),
			after:  top(normalized.NewLeaf(q("name"), "b"), normalized.NewLeaf(q("count"), uint32(1))),
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("name"), Type: candidate.Write},
			}},
		},
		{
			name:   "leaf replaced by another",
			before: top(normalized.NewLeaf(q("name"), "a")),
			after:  top(normalized.NewLeaf(q("count"), uint32(1))),
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("name"), Type: candidate.Delete},
				{Name: arg("count"), Type: candidate.Write},
			}},
		},
		{
			name:   "map entries",
			before: top(normalized.NewMap(q("item"), item("a", 1), item("b", 2))),
			after:  top(normalized.NewMap(q("item"), item("c", 3), item("a", 5))),
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("item"), Type: candidate.SubtreeModified, Children: []change{
					{Name: itemArg("a"), Type: candidate.SubtreeModified, Children: []change{
						{Name: arg("value"), Type: candidate.Write},
					}},
					{Name: itemArg("b"), Type: candidate.Delete},
					{Name: itemArg("c"), Type: candidate.Write},
				}},
			}},
		},
		{
			name:   "ordered map insert",
			before: top(normalized.NewOrderedMap(q("stage"), stage(1), stage(3))),
			after:  top(normalized.NewOrderedMap(q("stage"), stage(1), stage(2), stage(3))),
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("stage"), Type: candidate.SubtreeModified, Children: []change{
					{Name: stageArg(2), Type: candidate.Write},
				}},
			}},
		},
		{
			name:   "ordered map reorder",
			before: top(normalized.NewOrderedMap(q("stage"), stage(1), stage(2))),
			after:  top(normalized.NewOrderedMap(q("stage"), stage(2), stage(1))),
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("stage"), Type: candidate.Write},
			}},
		},
		{
			name: "ordered leaf-list",
			before: top(normalized.NewOrderedLeafSet(q("priority"),
				normalized.NewLeafSetEntry(q("priority"), uint8(1)),
				normalized.NewLeafSetEntry(q("priority"), uint8(2)))),
			after: top(normalized.NewOrderedLeafSet(q("priority"),
				normalized.NewLeafSetEntry(q("priority"), uint8(2)))),
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("priority"), Type: candidate.SubtreeModified, Children: []change{
					{Name: normalized.NewNodeWithValue(q("priority"), uint8(1)).String(), Type: candidate.Delete},
				}},
			}},
		},
		{
			name: "unkeyed list",
			before: top(normalized.NewUnkeyedList(q("log"),
				normalized.NewUnkeyedListEntry(q("log"), normalized.NewLeaf(q("line"), "a")))),
			after: top(normalized.NewUnkeyedList(q("log"),
				normalized.NewUnkeyedListEntry(q("log"), normalized.NewLeaf(q("line"), "b")))),
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("log"), Type: candidate.Write},
			}},
		},
		{
			name:   "choice case switch",
			before: top(normalized.NewChoice(q("mode"), normalized.NewLeaf(q("speed"), uint32(1)))),
			after: top(normalized.NewChoice(q("mode"),
				normalized.NewContainer(q("throttle"), normalized.NewLeaf(q("rate"), int32(2))))),
			want: change{Name: arg("top"), Type: candidate.SubtreeModified, Children: []change{
				{Name: arg("mode"), Type: candidate.SubtreeModified, Children: []change{
					{Name: arg("speed"), Type: candidate.Delete},
					{Name: arg("throttle"), Type: candidate.Write},
				}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := candidate.Diff(topPath, tt.before, tt.after)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, summarize(c.Root)); diff != "" {
				t.Errorf("candidate mismatch (-want +got):\n%s", diff)
			}
			if !normalized.Equal(c.Root.Before, tt.before) || !normalized.Equal(c.Root.After, tt.after) {
				t.Errorf("root images do not match the compared trees")
			}
		})
	}
}

func TestDiffErrors(t *testing.T) {
	if _, err := candidate.Diff(topPath, nil, nil); err == nil {
		t.Error("expected an error comparing nothing")
	}
	if _, err := candidate.Diff(topPath, top(), normalized.NewContainer(q("inner"))); err == nil {
		t.Error("expected an error comparing different nodes")
	}
}

func TestChildLookup(t *testing.T) {
	c, err := candidate.Diff(topPath,
		top(normalized.NewLeaf(q("name"), "a")),
		top(normalized.NewLeaf(q("name"), "b")))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Root.Child(normalized.NewNodeIdentifier(q("name")))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Type != candidate.Write {
		t.Errorf("Child(name) = %v", got)
	}
	if got, _ := c.Root.Child(normalized.NewNodeIdentifier(q("count"))); got != nil {
		t.Errorf("Child(count) = %v, want nil", got)
	}
}

func TestModificationTypeString(t *testing.T) {
	if got := candidate.SubtreeModified.String(); got != "SUBTREE_MODIFIED" {
		t.Errorf("got %s", got)
	}
	if got := candidate.ModificationType(42).String(); got != "ModificationType(42)" {
		t.Errorf("got %s", got)
	}
}
