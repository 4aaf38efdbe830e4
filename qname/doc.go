// Package qname provides qualified names for schema nodes.
//
// # Overview
//
// A QName identifies a schema node by the namespace of its defining module, an
// optional module revision and a local name. A Module is the namespace and
// revision pair on its own.
//
// QNames are interned: two QNames built from the same parts share storage and
// compare equal with ==, which makes them cheap map keys.
//
// # Ordering
//
// Compare defines a total order: namespace first, then revision (a missing
// revision sorts before any revision), then local name.
//
// # Text Form
//
// String renders the canonical form
//
//	(urn:example:foo?revision=2024-01-01)bar
//
// and Parse accepts it back. Without a revision the form is (urn:example:foo)bar.
package qname
