// Package binfmt reads and writes normalized trees, instance identifiers,
// QNames and schema paths as a compact binary stream.
//
// A stream starts with a signature byte followed by a big-endian uint16
// version token. The version selects one of five generations:
//
//	lithium     strings coded through a per-stream dictionary
//	neon-sr2    adds module, QName and augmentation dictionaries
//	sodium-sr1  references sized 1, 2 or 4 bytes, compact values
//	magnesium   native unsigned integers
//	potassium   one header byte per node, no augmentation nodes
//
// Every generation can be read. Only magnesium and potassium can be
// written; potassium is the default.
//
// Dictionaries are scoped to one Reader or Writer. Entries are numbered in
// the order they are first written, so a reader must consume a stream in
// the order it was produced. Neither type is safe for concurrent use.
package binfmt
