package normalized

import (
	"strings"

	"github.com/opendaylight/yangtools-sub038/qname"
)

// Kind is the kind of a normalized node.
type Kind uint8

const (
	KindContainer Kind = iota
	KindMap
	KindMapEntry
	KindUnkeyedList
	KindUnkeyedListEntry
	KindLeaf
	KindLeafSet
	KindLeafSetEntry
	KindChoice
	KindAnyXML
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "ContainerNode"
	case KindMap:
		return "MapNode"
	case KindMapEntry:
		return "MapEntryNode"
	case KindUnkeyedList:
		return "UnkeyedListNode"
	case KindUnkeyedListEntry:
		return "UnkeyedListEntryNode"
	case KindLeaf:
		return "LeafNode"
	case KindLeafSet:
		return "LeafSetNode"
	case KindLeafSetEntry:
		return "LeafSetEntryNode"
	case KindChoice:
		return "ChoiceNode"
	case KindAnyXML:
		return "AnyxmlNode"
	default:
		return "Unknown"
	}
}

// Node is a node of a normalized tree.
type Node interface {
	Name() PathArgument
	Kind() Kind
	String() string
}

// DataContainer is implemented by nodes whose children are keyed by name:
// containers, map entries, unkeyed list entries and choices.
type DataContainer interface {
	Node
	Children() []Node
	Child(arg PathArgument) (Node, bool)
}

type children struct {
	list  []Node
	index map[string]int
}

// set adds or replaces a child, reporting whether it replaced one.
func (c *children) set(n Node) bool {
	k := n.Name().key()
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[k]; ok {
		c.list[i] = n
		return true
	}
	c.index[k] = len(c.list)
	c.list = append(c.list, n)
	return false
}

func (c *children) has(arg PathArgument) bool {
	_, ok := c.index[arg.key()]
	return ok
}

// Children returns the children in insertion order. The slice must not be
// modified.
func (c *children) Children() []Node { return c.list }

func (c *children) Child(arg PathArgument) (Node, bool) {
	i, ok := c.index[arg.key()]
	if !ok {
		return nil, false
	}
	return c.list[i], true
}

// ChildByName looks up a child named by a plain node identifier.
func (c *children) ChildByName(q qname.QName) (Node, bool) {
	return c.Child(NodeIdentifier{QName: q})
}

func (c *children) Len() int { return len(c.list) }

func (c *children) format(b *strings.Builder) {
	b.WriteString(" {")
	for i, ch := range c.list {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(ch.String())
	}
	b.WriteString(" }")
}

// Container is a container node.
type Container struct {
	name NodeIdentifier
	children
}

func NewContainer(q qname.QName, kids ...Node) *Container {
	c := &Container{name: NodeIdentifier{QName: q}}
	for _, k := range kids {
		c.set(k)
	}
	return c
}

func (c *Container) Name() PathArgument         { return c.name }
func (c *Container) Identifier() NodeIdentifier { return c.name }
func (c *Container) Kind() Kind                 { return KindContainer }

func (c *Container) String() string {
	var b strings.Builder
	b.WriteString("container " + c.name.String())
	c.format(&b)
	return b.String()
}

// Choice is a choice node; its children are the data of the active case.
type Choice struct {
	name NodeIdentifier
	children
}

func NewChoice(q qname.QName, kids ...Node) *Choice {
	c := &Choice{name: NodeIdentifier{QName: q}}
	for _, k := range kids {
		c.set(k)
	}
	return c
}

func (c *Choice) Name() PathArgument         { return c.name }
func (c *Choice) Identifier() NodeIdentifier { return c.name }
func (c *Choice) Kind() Kind                 { return KindChoice }

func (c *Choice) String() string {
	var b strings.Builder
	b.WriteString("choice " + c.name.String())
	c.format(&b)
	return b.String()
}

// MapEntry is an entry of a keyed list.
type MapEntry struct {
	name NodeIdentifierWithPredicates
	children
}

func NewMapEntry(id NodeIdentifierWithPredicates, kids ...Node) *MapEntry {
	e := &MapEntry{name: id}
	for _, k := range kids {
		e.set(k)
	}
	return e
}

func (e *MapEntry) Name() PathArgument                       { return e.name }
func (e *MapEntry) Identifier() NodeIdentifierWithPredicates { return e.name }
func (e *MapEntry) Kind() Kind                               { return KindMapEntry }

func (e *MapEntry) String() string {
	var b strings.Builder
	b.WriteString("entry " + e.name.String())
	e.format(&b)
	return b.String()
}

// UnkeyedListEntry is an entry of an unkeyed list.
type UnkeyedListEntry struct {
	name NodeIdentifier
	children
}

func NewUnkeyedListEntry(q qname.QName, kids ...Node) *UnkeyedListEntry {
	e := &UnkeyedListEntry{name: NodeIdentifier{QName: q}}
	for _, k := range kids {
		e.set(k)
	}
	return e
}

func (e *UnkeyedListEntry) Name() PathArgument         { return e.name }
func (e *UnkeyedListEntry) Identifier() NodeIdentifier { return e.name }
func (e *UnkeyedListEntry) Kind() Kind                 { return KindUnkeyedListEntry }

func (e *UnkeyedListEntry) String() string {
	var b strings.Builder
	b.WriteString("item " + e.name.String())
	e.format(&b)
	return b.String()
}

// Map is a keyed list. Ordered maps compare entries by position, unordered
// maps by key.
type Map struct {
	name    NodeIdentifier
	ordered bool
	entries []*MapEntry
	index   map[string]int
}

func NewMap(q qname.QName, entries ...*MapEntry) *Map {
	return newMap(q, false, entries)
}

func NewOrderedMap(q qname.QName, entries ...*MapEntry) *Map {
	return newMap(q, true, entries)
}

func newMap(q qname.QName, ordered bool, entries []*MapEntry) *Map {
	m := &Map{name: NodeIdentifier{QName: q}, ordered: ordered, index: make(map[string]int, len(entries))}
	for _, e := range entries {
		m.set(e)
	}
	return m
}

func (m *Map) set(e *MapEntry) bool {
	k := e.name.key()
	if i, ok := m.index[k]; ok {
		m.entries[i] = e
		return true
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, e)
	return false
}

func (m *Map) Name() PathArgument         { return m.name }
func (m *Map) Identifier() NodeIdentifier { return m.name }
func (m *Map) Kind() Kind                 { return KindMap }
func (m *Map) Ordered() bool              { return m.ordered }
func (m *Map) Len() int                   { return len(m.entries) }

// Entries returns the entries in insertion order. The slice must not be
// modified.
func (m *Map) Entries() []*MapEntry { return m.entries }

func (m *Map) Entry(id NodeIdentifierWithPredicates) (*MapEntry, bool) {
	i, ok := m.index[id.key()]
	if !ok {
		return nil, false
	}
	return m.entries[i], true
}

func (m *Map) String() string {
	var b strings.Builder
	if m.ordered {
		b.WriteString("ordered-")
	}
	b.WriteString("map " + m.name.String() + " [")
	for i, e := range m.entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(e.String())
	}
	b.WriteString(" ]")
	return b.String()
}

// UnkeyedList is a list without keys; entries are positional.
type UnkeyedList struct {
	name    NodeIdentifier
	entries []*UnkeyedListEntry
}

func NewUnkeyedList(q qname.QName, entries ...*UnkeyedListEntry) *UnkeyedList {
	return &UnkeyedList{name: NodeIdentifier{QName: q}, entries: entries}
}

func (l *UnkeyedList) Name() PathArgument            { return l.name }
func (l *UnkeyedList) Identifier() NodeIdentifier    { return l.name }
func (l *UnkeyedList) Kind() Kind                    { return KindUnkeyedList }
func (l *UnkeyedList) Len() int                      { return len(l.entries) }
func (l *UnkeyedList) Entries() []*UnkeyedListEntry  { return l.entries }
func (l *UnkeyedList) Entry(i int) *UnkeyedListEntry { return l.entries[i] }

func (l *UnkeyedList) String() string {
	var b strings.Builder
	b.WriteString("list " + l.name.String() + " [")
	for i, e := range l.entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(e.String())
	}
	b.WriteString(" ]")
	return b.String()
}

// Leaf is a leaf node carrying a scalar value.
type Leaf struct {
	name  NodeIdentifier
	value any
}

func NewLeaf(q qname.QName, v any) *Leaf {
	return &Leaf{name: NodeIdentifier{QName: q}, value: v}
}

func (l *Leaf) Name() PathArgument         { return l.name }
func (l *Leaf) Identifier() NodeIdentifier { return l.name }
func (l *Leaf) Kind() Kind                 { return KindLeaf }
func (l *Leaf) Value() any                 { return l.value }

func (l *Leaf) String() string {
	return "leaf " + l.name.String() + "=" + FormatValue(l.value)
}

// LeafSetEntry is an entry of a leaf-list; its name carries its value.
type LeafSetEntry struct {
	name NodeWithValue
}

func NewLeafSetEntry(q qname.QName, v any) *LeafSetEntry {
	return &LeafSetEntry{name: NodeWithValue{QName: q, Value: v}}
}

func (e *LeafSetEntry) Name() PathArgument        { return e.name }
func (e *LeafSetEntry) Identifier() NodeWithValue { return e.name }
func (e *LeafSetEntry) Kind() Kind                { return KindLeafSetEntry }
func (e *LeafSetEntry) Value() any                { return e.name.Value }

func (e *LeafSetEntry) String() string {
	return FormatValue(e.name.Value)
}

// LeafSet is a leaf-list.
type LeafSet struct {
	name    NodeIdentifier
	ordered bool
	entries []*LeafSetEntry
	index   map[string]int
}

func NewLeafSet(q qname.QName, entries ...*LeafSetEntry) *LeafSet {
	return newLeafSet(q, false, entries)
}

func NewOrderedLeafSet(q qname.QName, entries ...*LeafSetEntry) *LeafSet {
	return newLeafSet(q, true, entries)
}

// LeafSetOf builds an unordered leaf set from plain values.
func LeafSetOf(q qname.QName, values ...any) *LeafSet {
	entries := make([]*LeafSetEntry, len(values))
	for i, v := range values {
		entries[i] = NewLeafSetEntry(q, v)
	}
	return newLeafSet(q, false, entries)
}

func newLeafSet(q qname.QName, ordered bool, entries []*LeafSetEntry) *LeafSet {
	s := &LeafSet{name: NodeIdentifier{QName: q}, ordered: ordered, index: make(map[string]int, len(entries))}
	for _, e := range entries {
		s.set(e)
	}
	return s
}

func (s *LeafSet) set(e *LeafSetEntry) bool {
	k := e.name.key()
	if i, ok := s.index[k]; ok {
		s.entries[i] = e
		return true
	}
	s.index[k] = len(s.entries)
	s.entries = append(s.entries, e)
	return false
}

func (s *LeafSet) Name() PathArgument         { return s.name }
func (s *LeafSet) Identifier() NodeIdentifier { return s.name }
func (s *LeafSet) Kind() Kind                 { return KindLeafSet }
func (s *LeafSet) Ordered() bool              { return s.ordered }
func (s *LeafSet) Len() int                   { return len(s.entries) }
func (s *LeafSet) Entries() []*LeafSetEntry   { return s.entries }

func (s *LeafSet) Entry(v any) (*LeafSetEntry, bool) {
	i, ok := s.index[NodeWithValue{QName: s.name.QName, Value: v}.key()]
	if !ok {
		return nil, false
	}
	return s.entries[i], true
}

func (s *LeafSet) String() string {
	var b strings.Builder
	if s.ordered {
		b.WriteString("ordered-")
	}
	b.WriteString("leaf-list " + s.name.String() + " [")
	for i, e := range s.entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		b.WriteString(e.String())
	}
	b.WriteString(" ]")
	return b.String()
}

// AnyXML carries an opaque XML document body.
type AnyXML struct {
	name NodeIdentifier
	body string
}

func NewAnyXML(q qname.QName, body string) *AnyXML {
	return &AnyXML{name: NodeIdentifier{QName: q}, body: body}
}

func (a *AnyXML) Name() PathArgument         { return a.name }
func (a *AnyXML) Identifier() NodeIdentifier { return a.name }
func (a *AnyXML) Kind() Kind                 { return KindAnyXML }
func (a *AnyXML) Body() string               { return a.body }

func (a *AnyXML) String() string {
	return "anyxml " + a.name.String()
}
