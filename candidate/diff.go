package candidate

import (
	"errors"
	"fmt"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/opendaylight/yangtools-sub038/normalized"
)

// Diff returns the candidate turning before into after, both rooted at
// path. Either side may be nil, not both.
//
// Leaves, anyxml nodes and unkeyed lists are replaced as a whole. Entries
// of ordered maps and leaf-lists are aligned by identifier; an ordered
// collection whose surviving entries changed places is written as a whole.
func Diff(path normalized.InstanceIdentifier, before, after normalized.Node) (*Candidate, error) {
	var name normalized.PathArgument
	switch {
	case before == nil && after == nil:
		return nil, errors.New("candidate: nothing to compare")
	case before == nil:
		name = after.Name()
	default:
		name = before.Name()
		if after != nil && !normalized.ArgEqual(name, after.Name()) {
			return nil, fmt.Errorf("candidate: cannot compare %v with %v", name, after.Name())
		}
	}
	return &Candidate{RootPath: path, Root: diffNode(name, before, after)}, nil
}

func diffNode(name normalized.PathArgument, before, after normalized.Node) *Node {
	n := &Node{Name: name, Before: before, After: after}
	switch {
	case before == nil && after == nil:
		n.Type = Unmodified
		return n
	case before == nil:
		n.Type = Write
		return n
	case after == nil:
		n.Type = Delete
		return n
	}
	if normalized.Equal(before, after) {
		n.Type = Unmodified
		return n
	}
	kids, ok := childDiffs(before, after)
	switch {
	case !ok:
		n.Type = Write
	case len(kids) == 0:
		n.Type = Unmodified
	default:
		n.Type = SubtreeModified
		n.Children = kids
	}
	return n
}

// childDiffs compares the children of two nodes of the same identifier.
// It reports false when the nodes must be replaced as a whole.
func childDiffs(before, after normalized.Node) ([]*Node, bool) {
	if before.Kind() != after.Kind() {
		return nil, false
	}
	switch x := before.(type) {
	case *normalized.Container, *normalized.Choice, *normalized.MapEntry:
		return keyed(x.(normalized.DataContainer).Children(), after.(normalized.DataContainer).Children()), true
	case *normalized.Map:
		y := after.(*normalized.Map)
		if x.Ordered() != y.Ordered() {
			return nil, false
		}
		bk, ak := nodes(x.Entries()), nodes(y.Entries())
		if x.Ordered() {
			return aligned(bk, ak)
		}
		return keyed(bk, ak), true
	case *normalized.LeafSet:
		y := after.(*normalized.LeafSet)
		if x.Ordered() != y.Ordered() {
			return nil, false
		}
		bk, ak := nodes(x.Entries()), nodes(y.Entries())
		if x.Ordered() {
			return aligned(bk, ak)
		}
		return keyed(bk, ak), true
	}
	return nil, false
}

func nodes[T normalized.Node](in []T) []normalized.Node {
	out := make([]normalized.Node, len(in))
	for i, n := range in {
		out[i] = n
	}
	return out
}

func index(ns []normalized.Node) map[string]normalized.Node {
	m := make(map[string]normalized.Node, len(ns))
	for _, n := range ns {
		m[normalized.ArgKey(n.Name())] = n
	}
	return m
}

// keyed matches children by identifier regardless of their position.
func keyed(before, after []normalized.Node) []*Node {
	am := index(after)
	var out []*Node
	for _, b := range before {
		d := diffNode(b.Name(), b, am[normalized.ArgKey(b.Name())])
		if d.Type != Unmodified {
			out = append(out, d)
		}
	}
	bm := index(before)
	for _, a := range after {
		if _, ok := bm[normalized.ArgKey(a.Name())]; !ok {
			out = append(out, diffNode(a.Name(), nil, a))
		}
	}
	return out
}

// aligned diffs the identifier sequences of two ordered collections.
func aligned(before, after []normalized.Node) ([]*Node, bool) {
	runes := map[string]rune{}
	fromRunes := keyRunes(runes, before)
	toRunes := keyRunes(runes, after)
	bm, am := index(before), index(after)

	diffs := diffpatch.New().DiffMainRunes(fromRunes, toRunes, false)
	var out []*Node
	fi, ti := 0, 0
	for i := range diffs {
		diff := &diffs[i]
		for range []rune(diff.Text) {
			switch diff.Type {
			case diffpatch.DiffDelete:
				b := before[fi]
				if _, moved := am[normalized.ArgKey(b.Name())]; moved {
					return nil, false
				}
				out = append(out, diffNode(b.Name(), b, nil))
				fi++
			case diffpatch.DiffInsert:
				a := after[ti]
				if _, moved := bm[normalized.ArgKey(a.Name())]; moved {
					return nil, false
				}
				out = append(out, diffNode(a.Name(), nil, a))
				ti++
			case diffpatch.DiffEqual:
				if d := diffNode(before[fi].Name(), before[fi], after[ti]); d.Type != Unmodified {
					out = append(out, d)
				}
				fi++
				ti++
			}
		}
	}
	return out, true
}

func keyRunes(m map[string]rune, ns []normalized.Node) []rune {
	rs := make([]rune, len(ns))
	for i, n := range ns {
		k := normalized.ArgKey(n.Name())
		r, ok := m[k]
		if !ok {
			r = rune(len(m))
			m[k] = r
		}
		rs[i] = r
	}
	return rs
}
