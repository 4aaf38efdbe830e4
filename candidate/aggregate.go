package candidate

import (
	"errors"
	"fmt"

	"github.com/opendaylight/yangtools-sub038/normalized"
)

// Aggregate folds consecutive candidates of one root path into a single
// candidate with the same effect. A single candidate is returned as is.
func Aggregate(candidates ...*Candidate) (*Candidate, error) {
	if len(candidates) == 0 {
		return nil, errors.New("candidate: nothing to aggregate")
	}
	first := candidates[0]
	if len(candidates) == 1 {
		return first, nil
	}
	root := first.Root
	for _, c := range candidates[1:] {
		if !c.RootPath.Equal(first.RootPath) {
			return nil, fmt.Errorf("%w: expecting %v, encountered %v", ErrRootMismatch, first.RootPath, c.RootPath)
		}
		next, err := merge(root, c.Root)
		if err != nil {
			return nil, err
		}
		root = next
	}
	root, changed := cleanUp(root)
	if !changed {
		root.Type = Unmodified
		root.Children = nil
		if !root.existsAfter() {
			root.After = nil
		}
	}
	return &Candidate{RootPath: first.RootPath, Root: root}, nil
}

// merge combines modification a with the later modification b of the same
// node.
func merge(a, b *Node) (*Node, error) {
	typ, err := compress(a.Type, b.Type, !a.existsAfter())
	if err != nil {
		return nil, err
	}
	out := &Node{
		Name:     a.Name,
		Type:     typ,
		Before:   a.Before,
		After:    b.After,
		prior:    presenceOf(a.existedBefore()),
		detached: a.detached || b.detached,
	}
	if b.Type == Unmodified {
		out.After = a.After
	}
	switch typ {
	case Write:
		if out.After == nil {
			return nil, fmt.Errorf("%w: no data written to %v", ErrDetached, a.Name)
		}
		return out, nil
	case Delete, Unmodified:
		out.After = nil
		if typ == Unmodified && out.prior == presencePresent {
			out.After = a.After
		}
		return out, nil
	}

	// SubtreeModified, Appeared and Disappeared keep per child changes.
	out.Children = make([]*Node, 0, len(a.Children)+len(b.Children))
	later := make(map[string]*Node, len(b.Children))
	for _, c := range b.Children {
		later[normalized.ArgKey(c.Name)] = c
	}
	for _, c := range a.Children {
		k := normalized.ArgKey(c.Name)
		lc, ok := later[k]
		if !ok {
			out.Children = append(out.Children, c)
			continue
		}
		delete(later, k)
		m, err := merge(c, lc)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, m)
	}
	for _, c := range b.Children {
		if _, ok := later[normalized.ArgKey(c.Name)]; ok {
			out.Children = append(out.Children, c)
		}
	}
	return out, nil
}

// compress returns the single modification equivalent to first followed
// by second. absent is set when the node held no data after first.
func compress(first, second ModificationType, absent bool) (ModificationType, error) {
	illegal := func(event, on ModificationType) (ModificationType, error) {
		return 0, &IllegalModificationError{Event: event, On: on}
	}
	switch first {
	case Unmodified:
		if absent {
			switch second {
			case Delete, Disappeared, SubtreeModified:
				return illegal(second, Delete)
			}
			return second, nil
		}
		if second == Appeared {
			return illegal(Appeared, Write)
		}
		return second, nil
	case Write:
		switch second {
		case Delete, Disappeared:
			return second, nil
		case Appeared:
			return illegal(Appeared, first)
		}
		return Write, nil
	case Delete:
		switch second {
		case Unmodified:
			return Delete, nil
		case Write, Appeared:
			return Write, nil
		}
		return illegal(second, first)
	case Appeared:
		switch second {
		case Unmodified, SubtreeModified:
			return Appeared, nil
		case Delete, Disappeared:
			return Unmodified, nil
		case Write:
			return Write, nil
		}
		return illegal(Appeared, first)
	case Disappeared:
		switch second {
		case Unmodified, Write:
			return second, nil
		case Appeared:
			return SubtreeModified, nil
		}
		return illegal(second, first)
	case SubtreeModified:
		switch second {
		case Unmodified, SubtreeModified:
			return SubtreeModified, nil
		case Appeared:
			return illegal(Appeared, first)
		}
		return second, nil
	}
	return 0, fmt.Errorf("candidate: unsupported modification type %s", first)
}

// cleanUp returns a copy of n without the children whose changes
// cancelled out, and whether n itself still records a change.
func cleanUp(n *Node) (*Node, bool) {
	out := *n
	out.Children = nil
	for _, c := range n.Children {
		if cc, ok := cleanUp(c); ok {
			out.Children = append(out.Children, cc)
		}
	}
	switch n.Type {
	case Unmodified:
		return &out, false
	case Delete:
		return &out, n.existedBefore()
	case Appeared, Disappeared, SubtreeModified:
		return &out, len(out.Children) > 0
	}
	return &out, true
}
