package binfmt

import (
	"github.com/opendaylight/yangtools-sub038/normalized"
)

// tokenWriter streams nodes the way every generation before potassium
// does: a node token, the node's path argument, then either a value or the
// children and an end token.
type tokenWriter struct {
	out   *dataOutput
	atoms atomEncoder
	// closed records, per open node, whether EndNode emits an end token.
	closed []bool
}

var _ normalized.StreamWriter = (*tokenWriter)(nil)

func (w *tokenWriter) start(tok byte, arg normalized.PathArgument, closed bool) error {
	w.out.writeByte(tok)
	if err := w.atoms.writePathArgument(arg); err != nil {
		return err
	}
	w.closed = append(w.closed, closed)
	return w.out.err
}

func (w *tokenWriter) StartContainer(name normalized.NodeIdentifier, _ int) error {
	return w.start(tokContainer, name, true)
}

func (w *tokenWriter) StartChoice(name normalized.NodeIdentifier, _ int) error {
	return w.start(tokChoice, name, true)
}

func (w *tokenWriter) StartMap(name normalized.NodeIdentifier, _ int) error {
	return w.start(tokMap, name, true)
}

func (w *tokenWriter) StartOrderedMap(name normalized.NodeIdentifier, _ int) error {
	return w.start(tokOrderedMap, name, true)
}

func (w *tokenWriter) StartMapEntry(name normalized.NodeIdentifierWithPredicates, _ int) error {
	return w.start(tokMapEntry, name, true)
}

func (w *tokenWriter) StartUnkeyedList(name normalized.NodeIdentifier, _ int) error {
	return w.start(tokUnkeyedList, name, true)
}

func (w *tokenWriter) StartUnkeyedListItem(name normalized.NodeIdentifier, _ int) error {
	return w.start(tokUnkeyedListItem, name, true)
}

func (w *tokenWriter) StartLeafSet(name normalized.NodeIdentifier, _ int) error {
	return w.start(tokLeafSet, name, true)
}

func (w *tokenWriter) StartOrderedLeafSet(name normalized.NodeIdentifier, _ int) error {
	return w.start(tokOrderedLeafSet, name, true)
}

// StartLeafSetEntry writes the entry name only; its value follows through
// Value.
func (w *tokenWriter) StartLeafSetEntry(name normalized.NodeWithValue) error {
	return w.start(tokLeafSetEntry, normalized.NewNodeIdentifier(name.QName), false)
}

func (w *tokenWriter) StartLeaf(name normalized.NodeIdentifier) error {
	return w.start(tokLeaf, name, false)
}

func (w *tokenWriter) StartAnyXML(name normalized.NodeIdentifier) error {
	return w.start(tokAnyXML, name, false)
}

func (w *tokenWriter) Value(v any) error {
	return w.atoms.writeValue(v)
}

func (w *tokenWriter) AnyXMLValue(body string) error {
	return w.atoms.writeValue(body)
}

func (w *tokenWriter) EndNode() error {
	n := len(w.closed)
	if n == 0 {
		return &normalized.WriterError{Event: "EndNode", Message: "no open node", Err: normalized.ErrUnbalanced}
	}
	closed := w.closed[n-1]
	w.closed = w.closed[:n-1]
	if closed {
		w.out.writeByte(tokEndNode)
	}
	return w.out.err
}

// tokenReader replays nodes written by tokenWriter. Augmentation nodes,
// which older writers emitted, are dissolved into their parent.
type tokenReader struct {
	in    *dataInput
	atoms atomDecoder
}

func (r *tokenReader) readNode(w normalized.StreamWriter) error {
	tok, err := r.in.readByte()
	if err != nil {
		return err
	}
	if tok == tokAugmentation {
		return invalidf("Unexpected augmentation node at stream top level")
	}
	return r.streamNode(w, tok)
}

func (r *tokenReader) streamNode(w normalized.StreamWriter, tok byte) error {
	switch tok {
	case tokLeaf:
		id, err := r.nodeIdentifier()
		if err != nil {
			return err
		}
		v, err := r.atoms.readValue()
		if err != nil {
			return err
		}
		return emitLeaf(w, id, v)
	case tokLeafSetEntry:
		id, err := r.nodeIdentifier()
		if err != nil {
			return err
		}
		v, err := r.atoms.readValue()
		if err != nil {
			return err
		}
		return emitLeafSetEntry(w, normalized.NewNodeWithValue(id.QName, v))
	case tokAnyXML:
		id, err := r.nodeIdentifier()
		if err != nil {
			return err
		}
		body, err := readText(r.atoms)
		if err != nil {
			return err
		}
		return emitAnyXML(w, id, body)
	case tokMapEntry:
		arg, err := r.atoms.readPathArgument()
		if err != nil {
			return err
		}
		id, ok := arg.(normalized.NodeIdentifierWithPredicates)
		if !ok {
			return invalidf("Expected a map entry identifier, got %s", arg)
		}
		if err := w.StartMapEntry(id, normalized.UnknownSize); err != nil {
			return err
		}
		return r.children(w, true)
	case tokAugmentation:
		arg, err := r.atoms.readPathArgument()
		if err != nil {
			return err
		}
		if _, ok := arg.(normalized.AugmentationIdentifier); !ok {
			return invalidf("Expected an augmentation identifier, got %s", arg)
		}
		return r.children(w, false)
	}

	start, ok := tokenStarts[tok]
	if !ok {
		return invalidf("Unexpected node token %d", tok)
	}
	id, err := r.nodeIdentifier()
	if err != nil {
		return err
	}
	if err := start(w, id); err != nil {
		return err
	}
	return r.children(w, true)
}

// children streams child nodes up to the end token. Children of a
// dissolved augmentation go straight to the enclosing node, which is not
// ended here.
func (r *tokenReader) children(w normalized.StreamWriter, end bool) error {
	for {
		tok, err := r.in.readByte()
		if err != nil {
			return err
		}
		if tok == tokEndNode {
			if end {
				return w.EndNode()
			}
			return nil
		}
		if err := r.streamNode(w, tok); err != nil {
			return err
		}
	}
}

func (r *tokenReader) nodeIdentifier() (normalized.NodeIdentifier, error) {
	arg, err := r.atoms.readPathArgument()
	if err != nil {
		return normalized.NodeIdentifier{}, err
	}
	id, ok := arg.(normalized.NodeIdentifier)
	if !ok {
		return normalized.NodeIdentifier{}, invalidf("Expected a node identifier, got %s", arg)
	}
	return id, nil
}

type startFunc func(w normalized.StreamWriter, id normalized.NodeIdentifier) error

var tokenStarts = map[byte]startFunc{
	tokContainer:       startContainer,
	tokChoice:          startChoice,
	tokMap:             startMap,
	tokOrderedMap:      startOrderedMap,
	tokUnkeyedList:     startUnkeyedList,
	tokUnkeyedListItem: startUnkeyedListItem,
	tokLeafSet:         startLeafSet,
	tokOrderedLeafSet:  startOrderedLeafSet,
}

func startContainer(w normalized.StreamWriter, id normalized.NodeIdentifier) error {
	return w.StartContainer(id, normalized.UnknownSize)
}

func startChoice(w normalized.StreamWriter, id normalized.NodeIdentifier) error {
	return w.StartChoice(id, normalized.UnknownSize)
}

func startMap(w normalized.StreamWriter, id normalized.NodeIdentifier) error {
	return w.StartMap(id, normalized.UnknownSize)
}

func startOrderedMap(w normalized.StreamWriter, id normalized.NodeIdentifier) error {
	return w.StartOrderedMap(id, normalized.UnknownSize)
}

func startUnkeyedList(w normalized.StreamWriter, id normalized.NodeIdentifier) error {
	return w.StartUnkeyedList(id, normalized.UnknownSize)
}

func startUnkeyedListItem(w normalized.StreamWriter, id normalized.NodeIdentifier) error {
	return w.StartUnkeyedListItem(id, normalized.UnknownSize)
}

func startLeafSet(w normalized.StreamWriter, id normalized.NodeIdentifier) error {
	return w.StartLeafSet(id, normalized.UnknownSize)
}

func startOrderedLeafSet(w normalized.StreamWriter, id normalized.NodeIdentifier) error {
	return w.StartOrderedLeafSet(id, normalized.UnknownSize)
}

func emitLeaf(w normalized.StreamWriter, id normalized.NodeIdentifier, v any) error {
	if err := w.StartLeaf(id); err != nil {
		return err
	}
	if err := w.Value(v); err != nil {
		return err
	}
	return w.EndNode()
}

func emitLeafSetEntry(w normalized.StreamWriter, id normalized.NodeWithValue) error {
	if err := w.StartLeafSetEntry(id); err != nil {
		return err
	}
	if err := w.Value(id.Value); err != nil {
		return err
	}
	return w.EndNode()
}

func emitAnyXML(w normalized.StreamWriter, id normalized.NodeIdentifier, body string) error {
	if err := w.StartAnyXML(id); err != nil {
		return err
	}
	if err := w.AnyXMLValue(body); err != nil {
		return err
	}
	return w.EndNode()
}
