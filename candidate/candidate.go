// Package candidate describes modifications of normalized trees.
//
// A Candidate pairs the path of a modified subtree with a tree of Nodes,
// each recording how one node changed. Candidates are computed with Diff,
// folded with Aggregate, rendered as JSON merge patches with MergePatch and
// carried over binfmt streams with Write and Read.
//
// Candidates read from a stream are detached: they hold after-images only
// where a node was written, never before-images, and they cannot look up
// children by identifier.
package candidate

import (
	"errors"
	"fmt"

	"github.com/opendaylight/yangtools-sub038/normalized"
)

// ModificationType is the kind of change recorded for a node.
type ModificationType uint8

const (
	// Unmodified nodes did not change.
	Unmodified ModificationType = iota
	// Write replaced the node, or created it.
	Write
	// Delete removed the node.
	Delete
	// SubtreeModified nodes kept their identity while some descendants
	// changed.
	SubtreeModified
	// Appeared nodes came into existence as a side effect of a
	// descendant being written.
	Appeared
	// Disappeared nodes vanished because their last descendant was
	// removed.
	Disappeared
)

var typeNames = [...]string{
	Unmodified:      "UNMODIFIED",
	Write:           "WRITE",
	Delete:          "DELETE",
	SubtreeModified: "SUBTREE_MODIFIED",
	Appeared:        "APPEARED",
	Disappeared:     "DISAPPEARED",
}

func (t ModificationType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("ModificationType(%d)", uint8(t))
}

var (
	// ErrDetached is returned for operations needing data a candidate read
	// from a stream does not keep.
	ErrDetached = errors.New("candidate node is detached")
	// ErrRootMismatch is returned when candidates of different roots are
	// combined.
	ErrRootMismatch = errors.New("candidate root paths differ")
)

// IllegalModificationError reports a modification which cannot follow
// another, such as deleting a node which was already deleted.
type IllegalModificationError struct {
	Event ModificationType
	On    ModificationType
}

func (e *IllegalModificationError) Error() string {
	return fmt.Sprintf("%s modification event on %s node", e.Event, e.On)
}

// Node is the modification of one node. Before and After hold the data on
// either side of the change, nil where the node did not exist.
type Node struct {
	Name     normalized.PathArgument
	Type     ModificationType
	Before   normalized.Node
	After    normalized.Node
	Children []*Node

	detached bool
	prior    presence
}

// presence records whether a node held data before a change when neither
// its before-image nor its type tells.
type presence uint8

const (
	presenceUnknown presence = iota
	presenceAbsent
	presencePresent
)

func presenceOf(existed bool) presence {
	if existed {
		return presencePresent
	}
	return presenceAbsent
}

// Detached reports whether n was read from a stream.
func (n *Node) Detached() bool { return n.detached }

// Child returns the modification of child arg.
func (n *Node) Child(arg normalized.PathArgument) (*Node, error) {
	if n.detached {
		return nil, ErrDetached
	}
	for _, c := range n.Children {
		if normalized.ArgEqual(c.Name, arg) {
			return c, nil
		}
	}
	return nil, nil
}

// existedBefore reports whether the node held data before the change.
func (n *Node) existedBefore() bool {
	if n.Before != nil {
		return true
	}
	if n.prior != presenceUnknown {
		return n.prior == presencePresent
	}
	switch n.Type {
	case Delete, Disappeared, SubtreeModified:
		return true
	}
	return false
}

// existsAfter reports whether the node holds data after the change.
func (n *Node) existsAfter() bool {
	switch n.Type {
	case Delete, Disappeared:
		return false
	case Write, Appeared, SubtreeModified:
		return true
	}
	return n.After != nil || n.existedBefore()
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%v)", n.Type, n.Name)
}

// Candidate is a modification of the subtree at RootPath.
type Candidate struct {
	RootPath normalized.InstanceIdentifier
	Root     *Node
}

func (c *Candidate) String() string {
	return fmt.Sprintf("candidate %v %s", c.RootPath, c.Root)
}

// FromNode returns a candidate writing n at path.
func FromNode(path normalized.InstanceIdentifier, n normalized.Node) *Candidate {
	return &Candidate{RootPath: path, Root: &Node{Name: n.Name(), Type: Write, After: n}}
}
