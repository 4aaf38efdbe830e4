package normalized

import (
	"slices"
	"strings"

	"github.com/opendaylight/yangtools-sub038/qname"
)

// PathArgument is one step of an InstanceIdentifier and the name of a node
// within its parent.
type PathArgument interface {
	NodeType() qname.QName
	String() string
	key() string
}

// NodeIdentifier names containers, lists, leaves, leaf sets, choices, anyxml
// nodes and unkeyed list entries.
type NodeIdentifier struct {
	QName qname.QName
}

func NewNodeIdentifier(q qname.QName) NodeIdentifier {
	return NodeIdentifier{QName: q}
}

func (n NodeIdentifier) NodeType() qname.QName { return n.QName }
func (n NodeIdentifier) String() string        { return n.QName.String() }
func (n NodeIdentifier) key() string           { return "n" + n.QName.String() }

// KeyValue is one key predicate of a map entry.
type KeyValue struct {
	Key   qname.QName
	Value any
}

func KV(k qname.QName, v any) KeyValue {
	return KeyValue{Key: k, Value: v}
}

// NodeIdentifierWithPredicates names a map entry. Predicates keep the order
// they were given in, which is the schema key order when built by a codec.
// Equality ignores that order.
type NodeIdentifierWithPredicates struct {
	QName qname.QName
	preds []KeyValue
}

// NewNodeIdentifierWithPredicates returns an identifier with the predicates
// in the given order. A repeated key keeps its last value.
func NewNodeIdentifierWithPredicates(q qname.QName, preds ...KeyValue) NodeIdentifierWithPredicates {
	out := make([]KeyValue, 0, len(preds))
	for _, p := range preds {
		if i := slices.IndexFunc(out, func(kv KeyValue) bool { return kv.Key == p.Key }); i >= 0 {
			out[i] = p
			continue
		}
		out = append(out, p)
	}
	return NodeIdentifierWithPredicates{QName: q, preds: out}
}

func (n NodeIdentifierWithPredicates) NodeType() qname.QName { return n.QName }

// Size returns the number of key predicates.
func (n NodeIdentifierWithPredicates) Size() int { return len(n.preds) }

// Predicates returns the key predicates in order. The slice must not be
// modified.
func (n NodeIdentifierWithPredicates) Predicates() []KeyValue { return n.preds }

// Value returns the value of the key predicate for k.
func (n NodeIdentifierWithPredicates) Value(k qname.QName) (any, bool) {
	for _, p := range n.preds {
		if p.Key == k {
			return p.Value, true
		}
	}
	return nil, false
}

// Equal compares name and predicates, ignoring predicate order.
func (n NodeIdentifierWithPredicates) Equal(o NodeIdentifierWithPredicates) bool {
	if n.QName != o.QName || len(n.preds) != len(o.preds) {
		return false
	}
	for _, p := range n.preds {
		v, ok := o.Value(p.Key)
		if !ok || !ValueEqual(p.Value, v) {
			return false
		}
	}
	return true
}

func (n NodeIdentifierWithPredicates) String() string {
	var b strings.Builder
	b.WriteString(n.QName.String())
	b.WriteByte('[')
	for i, p := range n.preds {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Key.LocalName())
		b.WriteByte('=')
		b.WriteString(FormatValue(p.Value))
	}
	b.WriteByte(']')
	return b.String()
}

func (n NodeIdentifierWithPredicates) key() string {
	sorted := slices.Clone(n.preds)
	slices.SortFunc(sorted, func(a, b KeyValue) int { return qname.Compare(a.Key, b.Key) })
	var b strings.Builder
	b.WriteString("p")
	b.WriteString(n.QName.String())
	for _, p := range sorted {
		b.WriteByte(0)
		b.WriteString(p.Key.String())
		b.WriteByte(0)
		b.WriteString(FormatValue(p.Value))
	}
	return b.String()
}

// NodeWithValue names a leaf-set entry.
type NodeWithValue struct {
	QName qname.QName
	Value any
}

func NewNodeWithValue(q qname.QName, v any) NodeWithValue {
	return NodeWithValue{QName: q, Value: v}
}

func (n NodeWithValue) NodeType() qname.QName { return n.QName }

func (n NodeWithValue) String() string {
	return n.QName.String() + "[" + FormatValue(n.Value) + "]"
}

func (n NodeWithValue) key() string {
	return "v" + n.QName.String() + "\x00" + FormatValue(n.Value)
}

// AugmentationIdentifier is the legacy name of an augmentation node. Only
// readers of older stream generations produce it.
type AugmentationIdentifier struct {
	children []qname.QName
}

// NewAugmentationIdentifier returns an identifier over the sorted, distinct
// child names.
func NewAugmentationIdentifier(children ...qname.QName) AugmentationIdentifier {
	c := slices.Clone(children)
	slices.SortFunc(c, qname.Compare)
	return AugmentationIdentifier{children: slices.Compact(c)}
}

func (a AugmentationIdentifier) ChildNames() []qname.QName { return a.children }

// NodeType has no meaning for augmentation identifiers and returns the zero
// QName.
func (a AugmentationIdentifier) NodeType() qname.QName { return qname.QName{} }

func (a AugmentationIdentifier) String() string {
	parts := make([]string, len(a.children))
	for i, c := range a.children {
		parts[i] = c.String()
	}
	return "AugmentationIdentifier{" + strings.Join(parts, ",") + "}"
}

func (a AugmentationIdentifier) key() string {
	return "a" + a.String()
}

// ArgEqual reports whether two path arguments are equal.
func ArgEqual(a, b PathArgument) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case NodeIdentifier:
		y, ok := b.(NodeIdentifier)
		return ok && x == y
	case NodeIdentifierWithPredicates:
		y, ok := b.(NodeIdentifierWithPredicates)
		return ok && x.Equal(y)
	case NodeWithValue:
		y, ok := b.(NodeWithValue)
		return ok && x.QName == y.QName && ValueEqual(x.Value, y.Value)
	case AugmentationIdentifier:
		y, ok := b.(AugmentationIdentifier)
		return ok && slices.Equal(x.children, y.children)
	}
	return false
}

// ArgKey returns a string usable as a map key for arg; equal arguments have
// equal keys.
func ArgKey(arg PathArgument) string {
	return arg.key()
}
