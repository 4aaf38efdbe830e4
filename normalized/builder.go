package normalized

import "fmt"

// Builder is a StreamWriter which assembles an immutable tree. It tracks open
// nodes with an explicit stack; Result returns the tree once the outermost
// node has ended.
type Builder struct {
	stack  []*frame
	result Node
}

type frame struct {
	kind    Kind
	name    PathArgument
	ordered bool

	kids    children
	entries []*MapEntry
	items   []*UnkeyedListEntry
	leaves  []*LeafSetEntry
	seen    map[string]struct{}

	value    any
	hasValue bool
}

var _ StreamWriter = (*Builder)(nil)
var _ ChildAdder = (*Builder)(nil)

func NewBuilder() *Builder {
	return &Builder{}
}

// Result returns the built tree.
func (b *Builder) Result() (Node, error) {
	if len(b.stack) != 0 {
		return nil, &WriterError{Message: fmt.Sprintf("%d nodes still open", len(b.stack)), Err: ErrUnbalanced}
	}
	if b.result == nil {
		return nil, ErrNoResult
	}
	return b.result, nil
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.stack = b.stack[:0]
	b.result = nil
}

func (b *Builder) Depth() int {
	return len(b.stack)
}

func (b *Builder) current() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) accepts(event string, k Kind) error {
	cur := b.current()
	if cur == nil {
		if b.result != nil {
			return &WriterError{Event: event, Message: "result already built"}
		}
		return nil
	}
	ok := false
	switch cur.kind {
	case KindContainer, KindChoice, KindMapEntry, KindUnkeyedListEntry:
		switch k {
		case KindMapEntry, KindUnkeyedListEntry, KindLeafSetEntry:
		default:
			ok = true
		}
	case KindMap:
		ok = k == KindMapEntry
	case KindUnkeyedList:
		ok = k == KindUnkeyedListEntry
	case KindLeafSet:
		ok = k == KindLeafSetEntry
	}
	if !ok {
		return &WriterError{Event: event, Message: fmt.Sprintf("%s cannot hold a %s", cur.kind, k)}
	}
	return nil
}

func (b *Builder) push(event string, k Kind, name PathArgument, ordered bool) error {
	if err := b.accepts(event, k); err != nil {
		return err
	}
	b.stack = append(b.stack, &frame{kind: k, name: name, ordered: ordered})
	return nil
}

func (b *Builder) StartContainer(name NodeIdentifier, _ int) error {
	return b.push("StartContainer", KindContainer, name, false)
}

func (b *Builder) StartChoice(name NodeIdentifier, _ int) error {
	return b.push("StartChoice", KindChoice, name, false)
}

func (b *Builder) StartMap(name NodeIdentifier, _ int) error {
	return b.push("StartMap", KindMap, name, false)
}

func (b *Builder) StartOrderedMap(name NodeIdentifier, _ int) error {
	return b.push("StartOrderedMap", KindMap, name, true)
}

func (b *Builder) StartMapEntry(name NodeIdentifierWithPredicates, _ int) error {
	return b.push("StartMapEntry", KindMapEntry, name, false)
}

func (b *Builder) StartUnkeyedList(name NodeIdentifier, _ int) error {
	return b.push("StartUnkeyedList", KindUnkeyedList, name, false)
}

func (b *Builder) StartUnkeyedListItem(name NodeIdentifier, _ int) error {
	return b.push("StartUnkeyedListItem", KindUnkeyedListEntry, name, false)
}

func (b *Builder) StartLeafSet(name NodeIdentifier, _ int) error {
	return b.push("StartLeafSet", KindLeafSet, name, false)
}

func (b *Builder) StartOrderedLeafSet(name NodeIdentifier, _ int) error {
	return b.push("StartOrderedLeafSet", KindLeafSet, name, true)
}

func (b *Builder) StartLeafSetEntry(name NodeWithValue) error {
	return b.push("StartLeafSetEntry", KindLeafSetEntry, name, false)
}

func (b *Builder) StartLeaf(name NodeIdentifier) error {
	return b.push("StartLeaf", KindLeaf, name, false)
}

func (b *Builder) StartAnyXML(name NodeIdentifier) error {
	return b.push("StartAnyXML", KindAnyXML, name, false)
}

func (b *Builder) Value(v any) error {
	cur := b.current()
	if cur == nil || (cur.kind != KindLeaf && cur.kind != KindLeafSetEntry) {
		return &WriterError{Event: "Value", Message: "no open leaf or leaf-set entry"}
	}
	if cur.hasValue {
		return &WriterError{Event: "Value", Message: "value already set for " + cur.name.String()}
	}
	cur.value, cur.hasValue = v, true
	return nil
}

func (b *Builder) AnyXMLValue(body string) error {
	cur := b.current()
	if cur == nil || cur.kind != KindAnyXML {
		return &WriterError{Event: "AnyXMLValue", Message: "no open anyxml node"}
	}
	cur.value, cur.hasValue = body, true
	return nil
}

func (b *Builder) EndNode() error {
	cur := b.current()
	if cur == nil {
		return &WriterError{Event: "EndNode", Message: "no open node", Err: ErrUnbalanced}
	}
	b.stack = b.stack[:len(b.stack)-1]
	n, err := cur.build()
	if err != nil {
		return err
	}
	return b.attach("EndNode", n)
}

// AddChild attaches an already built node to the open parent, keeping the
// node instance.
func (b *Builder) AddChild(n Node) error {
	if err := b.accepts("AddChild", n.Kind()); err != nil {
		return err
	}
	return b.attach("AddChild", n)
}

func (b *Builder) attach(event string, n Node) error {
	parent := b.current()
	if parent == nil {
		b.result = n
		return nil
	}
	switch parent.kind {
	case KindMap:
		e := n.(*MapEntry)
		if !parent.see(e.name) {
			return &WriterError{Event: event, Message: e.name.String(), Err: ErrDuplicate}
		}
		parent.entries = append(parent.entries, e)
	case KindUnkeyedList:
		parent.items = append(parent.items, n.(*UnkeyedListEntry))
	case KindLeafSet:
		e := n.(*LeafSetEntry)
		if !parent.see(e.name) {
			return &WriterError{Event: event, Message: e.name.String(), Err: ErrDuplicate}
		}
		parent.leaves = append(parent.leaves, e)
	default:
		if parent.kids.has(n.Name()) {
			return &WriterError{Event: event, Message: n.Name().String() + " in " + parent.name.String(), Err: ErrDuplicate}
		}
		parent.kids.set(n)
	}
	return nil
}

// see records arg, reporting false when it was already recorded.
func (f *frame) see(arg PathArgument) bool {
	if f.seen == nil {
		f.seen = make(map[string]struct{})
	}
	k := arg.key()
	if _, dup := f.seen[k]; dup {
		return false
	}
	f.seen[k] = struct{}{}
	return true
}

func (f *frame) build() (Node, error) {
	switch f.kind {
	case KindContainer:
		return &Container{name: f.name.(NodeIdentifier), children: f.kids}, nil
	case KindChoice:
		return &Choice{name: f.name.(NodeIdentifier), children: f.kids}, nil
	case KindMapEntry:
		return &MapEntry{name: f.name.(NodeIdentifierWithPredicates), children: f.kids}, nil
	case KindUnkeyedListEntry:
		return &UnkeyedListEntry{name: f.name.(NodeIdentifier), children: f.kids}, nil
	case KindMap:
		return newMap(f.name.NodeType(), f.ordered, f.entries), nil
	case KindUnkeyedList:
		return &UnkeyedList{name: f.name.(NodeIdentifier), entries: f.items}, nil
	case KindLeafSet:
		return newLeafSet(f.name.NodeType(), f.ordered, f.leaves), nil
	case KindLeaf:
		if !f.hasValue {
			return nil, &WriterError{Event: "EndNode", Message: "leaf " + f.name.String() + " has no value"}
		}
		return &Leaf{name: f.name.(NodeIdentifier), value: f.value}, nil
	case KindLeafSetEntry:
		name := f.name.(NodeWithValue)
		if f.hasValue {
			name.Value = f.value
		}
		return &LeafSetEntry{name: name}, nil
	case KindAnyXML:
		body, _ := f.value.(string)
		return &AnyXML{name: f.name.(NodeIdentifier), body: body}, nil
	}
	return nil, &WriterError{Event: "EndNode", Message: "unhandled kind " + f.kind.String(), Err: ErrUnsupported}
}
