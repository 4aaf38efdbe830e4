package normalized

import (
	"encoding/binary"
	"hash/maphash"
)

// Equal reports whether two trees are equal. Unordered maps and leaf sets
// compare by key, ordered ones by position. Container-like children compare
// by name regardless of insertion order.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || !ArgEqual(a.Name(), b.Name()) {
		return false
	}
	switch x := a.(type) {
	case *Leaf:
		return ValueEqual(x.value, b.(*Leaf).value)
	case *LeafSetEntry:
		return true
	case *AnyXML:
		return x.body == b.(*AnyXML).body
	case *Container:
		return childrenEqual(&x.children, &b.(*Container).children)
	case *Choice:
		return childrenEqual(&x.children, &b.(*Choice).children)
	case *MapEntry:
		return childrenEqual(&x.children, &b.(*MapEntry).children)
	case *UnkeyedListEntry:
		return childrenEqual(&x.children, &b.(*UnkeyedListEntry).children)
	case *Map:
		y := b.(*Map)
		if x.ordered != y.ordered || len(x.entries) != len(y.entries) {
			return false
		}
		for i, e := range x.entries {
			other := y.entries[i]
			if !x.ordered {
				var ok bool
				if other, ok = y.Entry(e.name); !ok {
					return false
				}
			}
			if !Equal(e, other) {
				return false
			}
		}
		return true
	case *UnkeyedList:
		y := b.(*UnkeyedList)
		if len(x.entries) != len(y.entries) {
			return false
		}
		for i := range x.entries {
			if !Equal(x.entries[i], y.entries[i]) {
				return false
			}
		}
		return true
	case *LeafSet:
		y := b.(*LeafSet)
		if x.ordered != y.ordered || len(x.entries) != len(y.entries) {
			return false
		}
		for i, e := range x.entries {
			if x.ordered {
				if !ValueEqual(e.Value(), y.entries[i].Value()) {
					return false
				}
			} else if _, ok := y.Entry(e.Value()); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func childrenEqual(a, b *children) bool {
	if len(a.list) != len(b.list) {
		return false
	}
	for _, ca := range a.list {
		cb, ok := b.Child(ca.Name())
		if !ok || !Equal(ca, cb) {
			return false
		}
	}
	return true
}

var hashSeed = maphash.MakeSeed()

// Hash returns a structural hash consistent with Equal within one process.
func Hash(n Node) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	hashNode(&h, n)
	return h.Sum64()
}

func hashNode(h *maphash.Hash, n Node) {
	if n == nil {
		h.WriteByte(0xff)
		return
	}
	h.WriteByte(byte(n.Kind()))
	h.WriteString(n.Name().key())
	switch x := n.(type) {
	case *Leaf:
		h.WriteString(FormatValue(x.value))
	case *AnyXML:
		h.WriteString(x.body)
	case *Container:
		hashUnordered(h, x.list)
	case *Choice:
		hashUnordered(h, x.list)
	case *MapEntry:
		hashUnordered(h, x.list)
	case *UnkeyedListEntry:
		hashUnordered(h, x.list)
	case *Map:
		nodes := make([]Node, len(x.entries))
		for i, e := range x.entries {
			nodes[i] = e
		}
		if x.ordered {
			hashOrdered(h, nodes)
		} else {
			hashUnordered(h, nodes)
		}
	case *UnkeyedList:
		nodes := make([]Node, len(x.entries))
		for i, e := range x.entries {
			nodes[i] = e
		}
		hashOrdered(h, nodes)
	case *LeafSet:
		nodes := make([]Node, len(x.entries))
		for i, e := range x.entries {
			nodes[i] = e
		}
		if x.ordered {
			hashOrdered(h, nodes)
		} else {
			hashUnordered(h, nodes)
		}
	}
}

func hashOrdered(h *maphash.Hash, nodes []Node) {
	var b [8]byte
	for _, n := range nodes {
		binary.LittleEndian.PutUint64(b[:], Hash(n))
		h.Write(b[:])
	}
}

// hashUnordered combines child hashes with addition so that order does not
// matter.
func hashUnordered(h *maphash.Hash, nodes []Node) {
	var sum uint64
	for _, n := range nodes {
		sum += Hash(n)
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], sum)
	h.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], uint64(len(nodes)))
	h.Write(b[:])
}
