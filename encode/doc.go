// Package encode renders normalized trees in interchange formats and reads
// them back with the help of a schema registry.
//
// # Formats
//
//	application/yang-data+json   RFC 7951 JSON
//	application/yang-data+cbor   the RFC 7951 document model in canonical CBOR
//	application/x-protobuf       the document model as a google.protobuf.Struct
//	application/x-yang-binfmt    the binfmt stream
//
// The JSON, CBOR and protobuf codecs share one document model: member
// names are module qualified where the namespace changes, choices are
// transparent, lists and leaf-lists are arrays, 64-bit integers and
// decimals are strings and empty leaves are [null]. Decoding walks the
// schema, so a document can only be read against the registry describing
// it.
//
// # Usage
//
//	reg, _ := encode.NewRegistry(schemaContext)
//	data, err := reg.Get(encode.ContentTypeJSON).Marshal(node)
//	back, err := reg.Get(encode.ContentTypeJSON).Unmarshal(data)
package encode
