package schema

import (
	"slices"
	"strings"

	"github.com/opendaylight/yangtools-sub038/qname"
)

// Kind is the kind of a schema node.
type Kind uint8

const (
	KindContainer Kind = iota
	KindList
	KindLeaf
	KindLeafList
	KindChoice
	KindCase
	KindAnyXML
	KindAugmentation
	KindRPC
	KindAction
	KindInput
	KindOutput
	KindNotification
)

var kindNames = [...]string{
	KindContainer:    "container",
	KindList:         "list",
	KindLeaf:         "leaf",
	KindLeafList:     "leaf-list",
	KindChoice:       "choice",
	KindCase:         "case",
	KindAnyXML:       "anyxml",
	KindAugmentation: "augmentation",
	KindRPC:          "rpc",
	KindAction:       "action",
	KindInput:        "input",
	KindOutput:       "output",
	KindNotification: "notification",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Module is a schema module.
type Module struct {
	Name   string
	Prefix string
	QName  qname.Module

	Data          []*Node
	RPCs          []*Node
	Notifications []*Node
	Augments      []*Node
	Identities    []*Identity
}

func (m *Module) String() string {
	return m.Name + "@" + m.QName.String()
}

// Node describes one schema node.
type Node struct {
	QName   qname.QName
	Kind    Kind
	Binding string

	// Ordered is set for user-ordered lists and leaf-lists.
	Ordered bool
	// Keys lists the key leaves of a keyed list in declaration order.
	Keys []qname.QName
	Type *Type

	// Children holds data children; for a choice it holds the cases.
	Children []*Node
	Input    *Node
	Output   *Node
	Actions  []*Node

	// Target is the path augmented by an augmentation node.
	Target Path

	Module *Module
	// Parent is the enclosing node. For an augmentation it is the augmented
	// node; children of an augmentation have the augmentation as parent.
	Parent *Node

	augments []*Node
	index    map[qname.QName]*Node
}

func (n *Node) String() string {
	if n.Kind == KindAugmentation {
		return "augmentation " + n.Target.String()
	}
	return n.Kind.String() + " " + n.QName.String()
}

// IsDataContainer reports whether n holds data children.
func (n *Node) IsDataContainer() bool {
	switch n.Kind {
	case KindContainer, KindList, KindCase, KindAugmentation, KindInput, KindOutput, KindNotification:
		return true
	}
	return false
}

// IsOperation reports whether n is an RPC or an action.
func (n *Node) IsOperation() bool {
	return n.Kind == KindRPC || n.Kind == KindAction
}

// Keyed reports whether n is a list with key leaves.
func (n *Node) Keyed() bool {
	return n.Kind == KindList && len(n.Keys) > 0
}

// Augmentations returns the augmentations applied to n.
func (n *Node) Augmentations() []*Node {
	return n.augments
}

// OwnChild returns a child declared by n itself, excluding augmentations.
func (n *Node) OwnChild(q qname.QName) (*Node, bool) {
	c, ok := n.index[q]
	return c, ok
}

// DataChild returns a child of n, including children added by
// augmentations. For a choice the children are its cases.
func (n *Node) DataChild(q qname.QName) (*Node, bool) {
	if c, ok := n.index[q]; ok {
		return c, true
	}
	for _, a := range n.augments {
		if c, ok := a.index[q]; ok {
			return c, true
		}
	}
	return nil, false
}

// AllChildren returns the own children of n followed by the children of
// its augmentations.
func (n *Node) AllChildren() []*Node {
	if len(n.augments) == 0 {
		return n.Children
	}
	out := slices.Clone(n.Children)
	for _, a := range n.augments {
		out = append(out, a.Children...)
	}
	return out
}

// AugmentationFor returns the augmentation of n declaring child q.
func (n *Node) AugmentationFor(q qname.QName) (*Node, bool) {
	for _, a := range n.augments {
		if _, ok := a.index[q]; ok {
			return a, true
		}
	}
	return nil, false
}

// Cases returns the cases of a choice, including cases added through
// augmentations.
func (n *Node) Cases() []*Node {
	if n.Kind != KindChoice {
		return nil
	}
	return n.AllChildren()
}

// CaseOf returns the case of choice n declaring data child q.
func (n *Node) CaseOf(q qname.QName) (*Node, bool) {
	for _, c := range n.Cases() {
		if _, ok := c.DataChild(q); ok {
			return c, true
		}
	}
	return nil, false
}

// Action returns the action q declared by n.
func (n *Node) Action(q qname.QName) (*Node, bool) {
	for _, a := range n.Actions {
		if a.QName == q {
			return a, true
		}
	}
	return nil, false
}

// Path returns the absolute schema path of n. Augmentation nodes do not
// contribute a step; choices and cases do.
func (n *Node) Path() Path {
	var rev []qname.QName
	for c := n; c != nil; c = c.Parent {
		if c.Kind != KindAugmentation {
			rev = append(rev, c.QName)
		}
	}
	slices.Reverse(rev)
	return Path(rev)
}

// DataParent returns the nearest ancestor which is neither a choice, a case
// nor an augmentation.
func (n *Node) DataParent() *Node {
	p := n.Parent
	for p != nil && (p.Kind == KindChoice || p.Kind == KindCase || p.Kind == KindAugmentation) {
		p = p.Parent
	}
	return p
}

func (n *Node) link(m *Module, parent *Node) {
	n.Module = m
	n.Parent = parent
	n.index = make(map[qname.QName]*Node, len(n.Children))
	for _, c := range n.Children {
		n.index[c.QName] = c
		c.link(m, n)
	}
	if n.Input != nil {
		n.Input.link(m, n)
	}
	if n.Output != nil {
		n.Output.link(m, n)
	}
	for _, a := range n.Actions {
		a.link(m, n)
	}
}

// Path is an absolute schema node path.
type Path []qname.QName

func NewPath(qs ...qname.QName) Path {
	return Path(slices.Clone(qs))
}

func (p Path) Equal(o Path) bool {
	return slices.Equal(p, o)
}

// Child returns a new path with q appended.
func (p Path) Child(q qname.QName) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, q)
}

func (p Path) String() string {
	var b strings.Builder
	for _, q := range p {
		b.WriteByte('/')
		b.WriteString(q.String())
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// TypeKind is the kind of a leaf type.
type TypeKind uint8

const (
	TypeString TypeKind = iota
	TypeBoolean
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeDecimal64
	TypeEmpty
	TypeBinary
	TypeBits
	TypeEnumeration
	TypeIdentityRef
	TypeUnion
	TypeInstanceIdentifier
)

var typeNames = [...]string{
	TypeString:             "string",
	TypeBoolean:            "boolean",
	TypeInt8:               "int8",
	TypeInt16:              "int16",
	TypeInt32:              "int32",
	TypeInt64:              "int64",
	TypeUint8:              "uint8",
	TypeUint16:             "uint16",
	TypeUint32:             "uint32",
	TypeUint64:             "uint64",
	TypeDecimal64:          "decimal64",
	TypeEmpty:              "empty",
	TypeBinary:             "binary",
	TypeBits:               "bits",
	TypeEnumeration:        "enumeration",
	TypeIdentityRef:        "identityref",
	TypeUnion:              "union",
	TypeInstanceIdentifier: "instance-identifier",
}

func (k TypeKind) String() string {
	if int(k) < len(typeNames) {
		return typeNames[k]
	}
	return "unknown"
}

// ParseTypeKind maps a built-in type name to its kind.
func ParseTypeKind(name string) (TypeKind, bool) {
	for i, n := range typeNames {
		if n == name {
			return TypeKind(i), true
		}
	}
	return 0, false
}

// Type is the type of a leaf or leaf-list.
type Type struct {
	Kind TypeKind
	// Binding optionally names the Go type the value is bound to.
	Binding        string
	FractionDigits uint8
	Bits           []string
	Enum           []string
	// Base is the base identity of an identityref.
	Base    qname.QName
	Members []*Type
}

func (t *Type) String() string {
	if t.Kind == TypeUnion {
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.String()
		}
		return "union(" + strings.Join(parts, "|") + ")"
	}
	return t.Kind.String()
}

// Identity describes an identity.
type Identity struct {
	QName   qname.QName
	Bases   []qname.QName
	Binding string
}

func (i *Identity) String() string {
	return "identity " + i.QName.String()
}
