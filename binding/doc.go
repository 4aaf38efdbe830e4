// Package binding is the runtime support for Go types bound to schema nodes.
//
// A binding type is a struct whose exported fields carry a `yang` tag naming
// the local name of the schema child they hold:
//
//	type Top struct {
//		binding.Augmentable
//
//		Name  *string          `yang:"name"`
//		Inner *Inner           `yang:"inner"`
//		Items []*Item          `yang:"item"`
//		Tags  []string         `yang:"tag"`
//		Mode  ModeChoice       `yang:"mode"`
//		Kind  binding.Identity `yang:"kind"`
//	}
//
// Containers are pointers to structs, lists are slices of pointers to
// structs and leaf-lists are slices of scalars. Leaves are pointers to
// scalars, typedef'd scalars, enumerations implementing
// encoding.TextMarshaler and encoding.TextUnmarshaler, identities or union
// structs. A choice is an interface type implemented by its case structs.
// Entries of keyed lists have a Key method returning a comparable key
// struct whose fields are tagged like the key leaves.
//
// Structs which may be augmented embed [Augmentable]; augmentations are
// structs stored in it by type.
//
// [InstanceIdentifier] addresses a binding object from the schema root.
// [TypeRegistry] and [RestrictedLoader] are schema.TypeLoader
// implementations resolving binding type names to Go types.
package binding
