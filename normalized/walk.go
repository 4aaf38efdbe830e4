package normalized

import "fmt"

// Write replays n as events on w. Map entry children which are key leaves
// are written before the remaining children.
func Write(w StreamWriter, n Node) error {
	switch x := n.(type) {
	case *Container:
		if err := w.StartContainer(x.name, len(x.list)); err != nil {
			return err
		}
		return writeChildren(w, x.list)
	case *Choice:
		if err := w.StartChoice(x.name, len(x.list)); err != nil {
			return err
		}
		return writeChildren(w, x.list)
	case *MapEntry:
		if err := w.StartMapEntry(x.name, len(x.list)); err != nil {
			return err
		}
		return writeChildren(w, keysFirst(x))
	case *UnkeyedListEntry:
		if err := w.StartUnkeyedListItem(x.name, len(x.list)); err != nil {
			return err
		}
		return writeChildren(w, x.list)
	case *Map:
		var err error
		if x.ordered {
			err = w.StartOrderedMap(x.name, len(x.entries))
		} else {
			err = w.StartMap(x.name, len(x.entries))
		}
		if err != nil {
			return err
		}
		for _, e := range x.entries {
			if err := Write(w, e); err != nil {
				return err
			}
		}
		return w.EndNode()
	case *UnkeyedList:
		if err := w.StartUnkeyedList(x.name, len(x.entries)); err != nil {
			return err
		}
		for _, e := range x.entries {
			if err := Write(w, e); err != nil {
				return err
			}
		}
		return w.EndNode()
	case *LeafSet:
		var err error
		if x.ordered {
			err = w.StartOrderedLeafSet(x.name, len(x.entries))
		} else {
			err = w.StartLeafSet(x.name, len(x.entries))
		}
		if err != nil {
			return err
		}
		for _, e := range x.entries {
			if err := Write(w, e); err != nil {
				return err
			}
		}
		return w.EndNode()
	case *LeafSetEntry:
		if err := w.StartLeafSetEntry(x.name); err != nil {
			return err
		}
		if err := w.Value(x.name.Value); err != nil {
			return err
		}
		return w.EndNode()
	case *Leaf:
		if err := w.StartLeaf(x.name); err != nil {
			return err
		}
		if err := w.Value(x.value); err != nil {
			return err
		}
		return w.EndNode()
	case *AnyXML:
		if err := w.StartAnyXML(x.name); err != nil {
			return err
		}
		if err := w.AnyXMLValue(x.body); err != nil {
			return err
		}
		return w.EndNode()
	}
	return fmt.Errorf("%w: %T", ErrUnsupported, n)
}

func writeChildren(w StreamWriter, kids []Node) error {
	for _, k := range kids {
		if err := Write(w, k); err != nil {
			return err
		}
	}
	return w.EndNode()
}

func keysFirst(e *MapEntry) []Node {
	if len(e.name.preds) == 0 {
		return e.list
	}
	out := make([]Node, 0, len(e.list))
	for _, p := range e.name.preds {
		if k, ok := e.ChildByName(p.Key); ok {
			out = append(out, k)
		}
	}
	for _, k := range e.list {
		if _, isKey := e.name.Value(k.Name().NodeType()); isKey && k.Kind() == KindLeaf {
			continue
		}
		out = append(out, k)
	}
	return out
}
