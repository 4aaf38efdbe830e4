package binfmt

import (
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
)

type frameState uint8

const (
	// frameNode is an open node closed by an end marker.
	frameNode frameState = iota
	// frameKeyLeaf is a map entry key leaf; its value is implied by the
	// entry predicates and is not written again.
	frameKeyLeaf
	// frameNoEnd is a simple node without an end marker.
	frameNoEnd
)

type frame struct {
	arg   normalized.PathArgument
	state frameState
}

// potassiumWriter folds node type and identifier addressing into one header
// byte per node. Nodes whose name equals the enclosing node's name (list
// entries, map entries, leaf-set entries) inherit it.
type potassiumWriter struct {
	*compactEncoder
	stack []frame
}

var _ normalized.StreamWriter = (*potassiumWriter)(nil)

func newPotassiumWriter(out *dataOutput) *potassiumWriter {
	return &potassiumWriter{compactEncoder: newCompactEncoder(out, Potassium)}
}

func (w *potassiumWriter) top() frame {
	if len(w.stack) == 0 {
		return frame{}
	}
	return w.stack[len(w.stack)-1]
}

func (w *potassiumWriter) push(arg normalized.PathArgument, state frameState) {
	w.stack = append(w.stack, frame{arg: arg, state: state})
}

func (w *potassiumWriter) matchesParent(q qname.QName) bool {
	id, ok := w.top().arg.(normalized.NodeIdentifier)
	return ok && id.QName == q
}

func (w *potassiumWriter) writeQNameNode(typ byte, q qname.QName) {
	code, ok := w.qnames.lookup(q)
	switch {
	case !ok:
		w.out.writeByte(typ | pnAddrDefine)
		w.encodeQName(q)
	case code < ref1Limit:
		w.out.writeByte(typ | pnAddrLookup1B)
		w.out.writeByte(byte(code))
	default:
		w.out.writeByte(typ | pnAddrLookup4B)
		w.out.writeUint32(uint32(code))
	}
}

func (w *potassiumWriter) startQName(typ byte, arg normalized.PathArgument) error {
	w.writeQNameNode(typ, arg.NodeType())
	w.push(arg, frameNode)
	return w.out.err
}

func (w *potassiumWriter) startInherited(typ byte, arg normalized.PathArgument) {
	if q := arg.NodeType(); w.matchesParent(q) {
		w.out.writeByte(typ | pnAddrParent)
	} else {
		w.writeQNameNode(typ, q)
	}
	w.push(arg, frameNode)
}

func (w *potassiumWriter) startSimple(typ byte, arg normalized.PathArgument) error {
	w.writeQNameNode(typ, arg.NodeType())
	w.push(nil, frameNoEnd)
	return w.out.err
}

func (w *potassiumWriter) StartContainer(name normalized.NodeIdentifier, _ int) error {
	return w.startQName(pnContainer, name)
}

func (w *potassiumWriter) StartChoice(name normalized.NodeIdentifier, _ int) error {
	return w.startQName(pnChoice, name)
}

func (w *potassiumWriter) StartMap(name normalized.NodeIdentifier, _ int) error {
	return w.startQName(pnMap, name)
}

func (w *potassiumWriter) StartOrderedMap(name normalized.NodeIdentifier, _ int) error {
	return w.startQName(pnOrderedMap, name)
}

func (w *potassiumWriter) StartUnkeyedList(name normalized.NodeIdentifier, _ int) error {
	return w.startQName(pnUnkeyedList, name)
}

func (w *potassiumWriter) StartLeafSet(name normalized.NodeIdentifier, _ int) error {
	return w.startQName(pnLeafSet, name)
}

func (w *potassiumWriter) StartOrderedLeafSet(name normalized.NodeIdentifier, _ int) error {
	return w.startQName(pnOrderedLeafSet, name)
}

func (w *potassiumWriter) StartUnkeyedListItem(name normalized.NodeIdentifier, _ int) error {
	w.startInherited(pnListEntry, name)
	return w.out.err
}

func (w *potassiumWriter) StartMapEntry(name normalized.NodeIdentifierWithPredicates, _ int) error {
	switch n := name.Size(); {
	case n == 0:
		w.startInherited(pnMapEntry|pnPredicateZero, name)
	case n == 1:
		w.startInherited(pnMapEntry|pnPredicateOne, name)
	case n < 1<<8:
		w.startInherited(pnMapEntry|pnPredicate1B, name)
		w.out.writeByte(byte(n))
	default:
		w.startInherited(pnMapEntry|pnPredicate4B, name)
		w.out.writeUint32(uint32(n))
	}
	for _, p := range name.Predicates() {
		w.writeQName(p.Key)
		if err := w.writeValue(p.Value); err != nil {
			return err
		}
	}
	return w.out.err
}

func (w *potassiumWriter) StartLeafSetEntry(name normalized.NodeWithValue) error {
	if w.matchesParent(name.QName) {
		w.out.writeByte(pnLeafSetEntry | pnAddrParent)
		w.push(nil, frameNoEnd)
		return w.out.err
	}
	return w.startSimple(pnLeafSetEntry, name)
}

func (w *potassiumWriter) StartLeaf(name normalized.NodeIdentifier) error {
	if id, ok := w.top().arg.(normalized.NodeIdentifierWithPredicates); ok {
		if _, key := id.Value(name.QName); key {
			w.writeQNameNode(pnLeaf|pnPredicateOne, name.QName)
			w.push(nil, frameKeyLeaf)
			return w.out.err
		}
	}
	return w.startSimple(pnLeaf, name)
}

func (w *potassiumWriter) StartAnyXML(name normalized.NodeIdentifier) error {
	return w.startSimple(pnAnyXML, name)
}

func (w *potassiumWriter) Value(v any) error {
	if w.top().state == frameKeyLeaf {
		return nil
	}
	return w.writeValue(v)
}

func (w *potassiumWriter) AnyXMLValue(body string) error {
	w.writeString(body)
	return w.out.err
}

func (w *potassiumWriter) EndNode() error {
	n := len(w.stack)
	if n == 0 {
		return &normalized.WriterError{Event: "EndNode", Message: "no open node", Err: normalized.ErrUnbalanced}
	}
	f := w.stack[n-1]
	w.stack = w.stack[:n-1]
	if f.state == frameNode {
		w.out.writeByte(pnEnd)
	}
	return w.out.err
}

// potassiumReader replays nodes written by potassiumWriter.
type potassiumReader struct {
	*compactDecoder
}

func newPotassiumReader(in *dataInput) *potassiumReader {
	return &potassiumReader{compactDecoder: newCompactDecoder(in, Potassium)}
}

func (r *potassiumReader) readNode(w normalized.StreamWriter) error {
	h, err := r.in.readByte()
	if err != nil {
		return err
	}
	if h&pnTypeMask == pnAugmentation {
		return invalidf("Unexpected augmentation node at stream top level")
	}
	return r.streamNode(w, nil, h)
}

func (r *potassiumReader) streamNode(w normalized.StreamWriter, parent normalized.PathArgument, h byte) error {
	switch h & pnTypeMask {
	case pnLeaf:
		return r.streamLeaf(w, parent, h)
	case pnAnyXML:
		id, err := r.nodeIdentifier(h, nil)
		if err != nil {
			return err
		}
		body, err := readText(r)
		if err != nil {
			return err
		}
		return emitAnyXML(w, id, body)
	case pnLeafSetEntry:
		id, err := r.nodeIdentifier(h, parent)
		if err != nil {
			return err
		}
		v, err := r.readValue()
		if err != nil {
			return err
		}
		return emitLeafSetEntry(w, normalized.NewNodeWithValue(id.QName, v))
	case pnListEntry:
		id, err := r.nodeIdentifier(h, parent)
		if err != nil {
			return err
		}
		if err := w.StartUnkeyedListItem(id, normalized.UnknownSize); err != nil {
			return err
		}
		return r.children(w, id)
	case pnMapEntry:
		return r.streamMapEntry(w, parent, h)
	case pnAugmentation:
		if _, err := r.augmentationNode(h); err != nil {
			return err
		}
		for {
			c, err := r.in.readByte()
			if err != nil {
				return err
			}
			if c == pnEnd {
				return nil
			}
			if err := r.streamNode(w, nil, c); err != nil {
				return err
			}
		}
	}

	start, ok := potassiumStarts[h&pnTypeMask]
	if !ok {
		return invalidf("Unexpected node header %d", h)
	}
	id, err := r.nodeIdentifier(h, nil)
	if err != nil {
		return err
	}
	if err := start(w, id); err != nil {
		return err
	}
	return r.children(w, id)
}

var potassiumStarts = map[byte]startFunc{
	pnContainer:      startContainer,
	pnChoice:         startChoice,
	pnMap:            startMap,
	pnOrderedMap:     startOrderedMap,
	pnUnkeyedList:    startUnkeyedList,
	pnLeafSet:        startLeafSet,
	pnOrderedLeafSet: startOrderedLeafSet,
}

func (r *potassiumReader) children(w normalized.StreamWriter, parent normalized.PathArgument) error {
	for {
		h, err := r.in.readByte()
		if err != nil {
			return err
		}
		if h == pnEnd {
			return w.EndNode()
		}
		if err := r.streamNode(w, parent, h); err != nil {
			return err
		}
	}
}

func (r *potassiumReader) streamLeaf(w normalized.StreamWriter, parent normalized.PathArgument, h byte) error {
	id, err := r.nodeIdentifier(h, nil)
	if err != nil {
		return err
	}
	if h&pnPredicateOne == 0 {
		v, err := r.readValue()
		if err != nil {
			return err
		}
		return emitLeaf(w, id, v)
	}
	entry, ok := parent.(normalized.NodeIdentifierWithPredicates)
	if !ok {
		return invalidf("Invalid predicate leaf %s in parent %v", id, parent)
	}
	v, ok := entry.Value(id.QName)
	if !ok {
		return invalidf("Failed to find predicate leaf %s in parent %s", id, entry)
	}
	return emitLeaf(w, id, v)
}

func (r *potassiumReader) streamMapEntry(w normalized.StreamWriter, parent normalized.PathArgument, h byte) error {
	id, err := r.nodeIdentifier(h, parent)
	if err != nil {
		return err
	}
	var n int
	switch h & pnPredicateMask {
	case pnPredicateZero:
	case pnPredicateOne:
		n = 1
	case pnPredicate1B:
		b, err := r.in.readByte()
		if err != nil {
			return err
		}
		n = int(b)
	default:
		v, err := r.in.readUint32()
		if err != nil {
			return err
		}
		n = int(v)
	}
	entry, err := r.predicates(id.QName, n)
	if err != nil {
		return err
	}
	if err := w.StartMapEntry(entry, normalized.UnknownSize); err != nil {
		return err
	}
	return r.children(w, entry)
}

// nodeIdentifier decodes the identifier addressed by h. Parent addressing
// is valid only below a node named by a plain identifier.
func (r *potassiumReader) nodeIdentifier(h byte, parent normalized.PathArgument) (normalized.NodeIdentifier, error) {
	var idx uint64
	switch h & pnAddrMask {
	case pnAddrDefine:
		q, err := r.decodeQName()
		if err != nil {
			return normalized.NodeIdentifier{}, err
		}
		return normalized.NewNodeIdentifier(q), nil
	case pnAddrLookup1B:
		b, err := r.in.readByte()
		if err != nil {
			return normalized.NodeIdentifier{}, err
		}
		idx = uint64(b)
	case pnAddrLookup4B:
		v, err := r.in.readUint32()
		if err != nil {
			return normalized.NodeIdentifier{}, err
		}
		idx = uint64(v)
	default:
		if id, ok := parent.(normalized.NodeIdentifier); ok {
			return id, nil
		}
		return normalized.NodeIdentifier{}, invalidf("Invalid node identifier reference to parent %v", parent)
	}
	q, err := r.qnames.get(idx)
	if err != nil {
		return normalized.NodeIdentifier{}, err
	}
	return normalized.NewNodeIdentifier(q), nil
}

func (r *potassiumReader) augmentationNode(h byte) (normalized.AugmentationIdentifier, error) {
	var idx uint64
	switch h & pnAddrMask {
	case pnAddrDefine:
		n, err := r.in.readUint32()
		if err != nil {
			return normalized.AugmentationIdentifier{}, err
		}
		aid, err := r.augmentationBody(int(n))
		if err != nil {
			return normalized.AugmentationIdentifier{}, err
		}
		r.augments.add(aid)
		return aid, nil
	case pnAddrLookup1B:
		b, err := r.in.readByte()
		if err != nil {
			return normalized.AugmentationIdentifier{}, err
		}
		idx = uint64(b)
	case pnAddrLookup4B:
		v, err := r.in.readUint32()
		if err != nil {
			return normalized.AugmentationIdentifier{}, err
		}
		idx = uint64(v)
	default:
		return normalized.AugmentationIdentifier{}, invalidf("Unexpected augmentation identifier addressing in header %d", h)
	}
	return r.augments.get(idx)
}
