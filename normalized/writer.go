package normalized

// UnknownSize is the child hint passed when the number of children is not
// known in advance.
const UnknownSize = -1

// StreamWriter receives a normalized tree as a sequence of events. Every
// Start call is balanced by an EndNode call. Leaves and leaf-set entries get
// their value through Value, anyxml nodes through AnyXMLValue.
type StreamWriter interface {
	StartContainer(name NodeIdentifier, childHint int) error
	StartChoice(name NodeIdentifier, childHint int) error
	StartMap(name NodeIdentifier, childHint int) error
	StartOrderedMap(name NodeIdentifier, childHint int) error
	StartMapEntry(name NodeIdentifierWithPredicates, childHint int) error
	StartUnkeyedList(name NodeIdentifier, childHint int) error
	StartUnkeyedListItem(name NodeIdentifier, childHint int) error
	StartLeafSet(name NodeIdentifier, childHint int) error
	StartOrderedLeafSet(name NodeIdentifier, childHint int) error
	StartLeafSetEntry(name NodeWithValue) error
	StartLeaf(name NodeIdentifier) error
	StartAnyXML(name NodeIdentifier) error
	Value(v any) error
	AnyXMLValue(body string) error
	EndNode() error
}

// ChildAdder is implemented by writers which accept an already built subtree
// in place of the events describing it. The subtree is kept by reference.
type ChildAdder interface {
	AddChild(n Node) error
}

// AddOrWrite hands n to w by reference when w is a ChildAdder and replays it
// as events otherwise.
func AddOrWrite(w StreamWriter, n Node) error {
	if a, ok := w.(ChildAdder); ok {
		return a.AddChild(n)
	}
	return Write(w, n)
}
