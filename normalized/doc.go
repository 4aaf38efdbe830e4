// Package normalized provides the generic, schema-aligned tree model.
//
// # Overview
//
// A normalized tree is a tagged union of node kinds: containers, keyed maps
// and their entries, unkeyed lists and their entries, leaves, leaf sets and
// their entries, choices and anyxml nodes. Every node carries a PathArgument
// naming it within its parent. Composite nodes keep their children keyed by
// that identifier, so a parent never holds two children with the same name.
//
// # Path Arguments
//
// There are three path argument kinds:
//
//   - NodeIdentifier: a plain qualified name
//   - NodeIdentifierWithPredicates: a qualified name plus the ordered key
//     values of a map entry
//   - NodeWithValue: a qualified name plus the value of a leaf-set entry
//
// AugmentationIdentifier is a fourth, legacy kind. It only appears when
// reading streams written by older format generations and never names a node
// in a tree.
//
// An InstanceIdentifier is an ordered sequence of path arguments addressing a
// node from the root.
//
// # Values
//
// Leaf values are plain Go values: string, bool, the sized integer types,
// Decimal64, Empty, []byte, Bits, qname.QName and InstanceIdentifier. A
// *big.Int only appears in trees read from the oldest stream generations.
//
// # Building and Walking
//
// Trees are immutable once built. They can be assembled with the New*
// constructors or streamed into a Builder through the StreamWriter event
// interface. Write walks a tree and replays it as StreamWriter events, which
// is how serializers consume trees.
package normalized
