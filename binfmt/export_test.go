package binfmt

import (
	"io"

	"github.com/opendaylight/yangtools-sub038/normalized"
)

// Tags used by tests that hand-craft corrupt streams.
const (
	TagQName       = cvQName
	TagQNameRef1B  = cvQNameRef1B
	TagModRef1B    = cvModRef1B
	TagStringRef1B = cvStringRef1B
	TagStringCode  = isStringCode
	TagStringValue = isStringValue
	TagQNameCode   = isQNameCode
	TagQNameValue  = isQNameValue
	TagModuleCode  = isModuleCode
	Signature      = signature
)

// NewLegacyWriter opens a writer for any known generation, including those
// NewWriter refuses.
func NewLegacyWriter(w io.Writer, v Version) (*Writer, error) {
	return newWriter(w, v)
}

// Events exposes the node event sink of w.
func Events(w *Writer) normalized.StreamWriter {
	return w.nodes
}

// WriteAugmentation emits an augmentation node holding kids, the way older
// writers did, at the current position of w.
func WriteAugmentation(w *Writer, aid normalized.AugmentationIdentifier, kids ...normalized.Node) error {
	switch nw := w.nodes.(type) {
	case *tokenWriter:
		w.out.writeByte(tokAugmentation)
		if err := nw.atoms.writePathArgument(aid); err != nil {
			return err
		}
		for _, k := range kids {
			if err := normalized.Write(nw, k); err != nil {
				return err
			}
		}
		w.out.writeByte(tokEndNode)
	case *potassiumWriter:
		names := aid.ChildNames()
		w.out.writeByte(pnAugmentation | pnAddrDefine)
		w.out.writeUint32(uint32(len(names)))
		for _, q := range names {
			nw.writeQName(q)
		}
		for _, k := range kids {
			if err := normalized.Write(nw, k); err != nil {
				return err
			}
		}
		w.out.writeByte(pnEnd)
	}
	return w.out.err
}
