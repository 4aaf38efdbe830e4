package candidate

import (
	"fmt"

	"github.com/opendaylight/yangtools-sub038/binfmt"
	"github.com/opendaylight/yangtools-sub038/normalized"
)

// Stream tags of the modification types.
const (
	tagDelete          = 0
	tagSubtreeModified = 1
	tagUnmodified      = 2
	tagWrite           = 3
	tagAppeared        = 4
	tagDisappeared     = 5
)

var typeTags = map[ModificationType]byte{
	Delete:          tagDelete,
	SubtreeModified: tagSubtreeModified,
	Unmodified:      tagUnmodified,
	Write:           tagWrite,
	Appeared:        tagAppeared,
	Disappeared:     tagDisappeared,
}

// Write puts c on w: the root path, then the root modification. Written
// nodes carry their after-image; unmodified children are left out. The
// caller flushes w.
func Write(w *binfmt.Writer, c *Candidate) error {
	if err := w.WriteInstanceIdentifier(c.RootPath); err != nil {
		return err
	}
	root := c.Root
	if err := w.WriteByte(typeTags[root.Type]); err != nil {
		return err
	}
	switch root.Type {
	case Appeared, Disappeared, SubtreeModified:
		return writeChildren(w, root.Children)
	case Write:
		if root.After == nil {
			return fmt.Errorf("candidate: written root %v has no data", root.Name)
		}
		return w.WriteNode(root.After)
	}
	return nil
}

func writeChildren(w *binfmt.Writer, kids []*Node) error {
	count := 0
	for _, k := range kids {
		if k.Type != Unmodified {
			count++
		}
	}
	if err := w.WriteUint32(uint32(count)); err != nil {
		return err
	}
	for _, k := range kids {
		if err := writeNode(w, k); err != nil {
			return err
		}
	}
	return nil
}

func writeNode(w *binfmt.Writer, n *Node) error {
	switch n.Type {
	case Unmodified:
		return nil
	case Write:
		if n.After == nil {
			return fmt.Errorf("candidate: written node %v has no data", n.Name)
		}
		if err := w.WriteByte(tagWrite); err != nil {
			return err
		}
		return w.WriteNode(n.After)
	}
	if err := w.WriteByte(typeTags[n.Type]); err != nil {
		return err
	}
	if err := w.WritePathArgument(n.Name); err != nil {
		return err
	}
	if n.Type == Delete {
		return nil
	}
	return writeChildren(w, n.Children)
}

// Read takes a candidate written by Write from r. The result is detached.
func Read(r *binfmt.Reader) (*Candidate, error) {
	path, err := r.ReadInstanceIdentifier()
	if err != nil {
		return nil, err
	}
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	name, _ := path.LastArg()
	root := &Node{Name: name, detached: true}
	switch tag {
	case tagAppeared, tagDisappeared, tagSubtreeModified:
		root.Type = tagType(tag)
		if root.Children, err = readChildren(r); err != nil {
			return nil, err
		}
	case tagDelete:
		root.Type = Delete
	case tagUnmodified:
		root.Type = Unmodified
	case tagWrite:
		root.Type = Write
		if root.After, err = r.ReadNode(); err != nil {
			return nil, err
		}
		root.Name = root.After.Name()
	default:
		return nil, &binfmt.InvalidStreamError{Msg: fmt.Sprintf("Unhandled node type %d", tag)}
	}
	return &Candidate{RootPath: path, Root: root}, nil
}

func tagType(tag byte) ModificationType {
	for t, b := range typeTags {
		if b == tag {
			return t
		}
	}
	panic(fmt.Sprintf("unknown modification tag %d", tag))
}

func readChildren(r *binfmt.Reader) ([]*Node, error) {
	count, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	var kids []*Node
	for range count {
		k, err := readNode(r)
		if err != nil {
			return nil, err
		}
		kids = append(kids, k)
	}
	return kids, nil
}

func readNode(r *binfmt.Reader) (*Node, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	n := &Node{detached: true}
	switch tag {
	case tagAppeared, tagDisappeared, tagSubtreeModified:
		n.Type = tagType(tag)
		if n.Name, err = r.ReadPathArgument(); err != nil {
			return nil, err
		}
		if n.Children, err = readChildren(r); err != nil {
			return nil, err
		}
	case tagDelete:
		n.Type = Delete
		if n.Name, err = r.ReadPathArgument(); err != nil {
			return nil, err
		}
	case tagWrite:
		n.Type = Write
		var after normalized.Node
		if after, err = r.ReadNode(); err != nil {
			return nil, err
		}
		n.Name, n.After = after.Name(), after
	default:
		return nil, &binfmt.InvalidStreamError{Msg: fmt.Sprintf("Unhandled node type %d", tag)}
	}
	return n, nil
}
