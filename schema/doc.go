// Package schema provides the schema and type registry consulted by the
// binding codec and the tree encoders.
//
// # Descriptors
//
// A schema is a set of [Module] values. Each module carries its top level
// data nodes, RPCs, notifications, augmentations and identities as [Node]
// and [Identity] descriptors. A [Node] records its [Kind], its qualified
// name, the name of the Go type bound to it (for containers, lists, cases,
// augmentations, notifications and operation input/output) and its
// children. Leaves and leaf-lists carry a [Type].
//
// # Registry
//
// [Registry] is the contract consumed by the codec: it resolves schema
// paths, binding type names, list key fields and identities, and it loads
// Go types through a [TypeLoader]. Loaders may refuse a type; such a refusal
// wraps [ErrTypeNotLoaded] and is never remembered, so a later call may
// succeed.
//
// [Context] is the in-memory Registry. It is built from descriptors with
// [NewContext] or from YAML documents with [Load]:
//
//	modules:
//	  - name: example
//	    prefix: ex
//	    namespace: urn:example
//	    revision: 2024-01-01
//	    package: example.com/model
//	    data:
//	      - container: top
//	        binding: Top
//	        children:
//	          - leaf: name
//	            type: {name: string}
//
// A Context is immutable once built and safe for concurrent use.
package schema
