package binfmt

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/opendaylight/yangtools-sub038/debug"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

// Reader decodes a stream produced by a Writer of any generation. Items
// must be read in the order they were written.
type Reader struct {
	version Version
	in      *dataInput
	atoms   atomDecoder
	nodes   nodeDecoder
	log     *zap.Logger
}

// NewReader reads the stream header from r and returns a Reader for the
// generation it names.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	o := buildOptions(opts)
	in := newDataInput(r)
	sig, err := in.readByte()
	if err != nil {
		return nil, err
	}
	if sig != signature {
		return nil, invalidf("Invalid signature marker: %d", sig)
	}
	tok, err := in.readUint16()
	if err != nil {
		return nil, err
	}

	v := Version(tok)
	sr := &Reader{version: v, in: in, log: o.log}
	switch {
	case v == Potassium:
		p := newPotassiumReader(in)
		sr.atoms, sr.nodes = p, p
	case v >= SodiumSR1 && v.Known():
		c := newCompactDecoder(in, v)
		sr.atoms, sr.nodes = c, &tokenReader{in: in, atoms: c}
	case v.Known():
		c := newClassicDecoder(in, v)
		sr.atoms, sr.nodes = c, &tokenReader{in: in, atoms: c}
	default:
		return nil, &UnsupportedVersionError{Version: tok}
	}
	sr.log.Debug("stream reader opened", zap.Stringer("version", v))
	if debug.Stream() {
		debug.Logf("stream reader %s", v)
	}
	return sr, nil
}

// StreamVersion returns the generation named by the stream header.
func (r *Reader) StreamVersion() Version {
	return r.version
}

// StreamNode replays the next node as events on w.
func (r *Reader) StreamNode(w normalized.StreamWriter) error {
	return r.nodes.readNode(w)
}

// ReadNode reads the next node into a tree. A structurally invalid event
// sequence is reported as an invalid stream.
func (r *Reader) ReadNode() (normalized.Node, error) {
	b := normalized.NewBuilder()
	if err := r.StreamNode(b); err != nil {
		var we *normalized.WriterError
		if errors.As(err, &we) {
			return nil, &InvalidStreamError{Msg: "Malformed node", Err: err}
		}
		return nil, err
	}
	n, err := b.Result()
	if err != nil {
		return nil, &InvalidStreamError{Msg: "Malformed node", Err: err}
	}
	if debug.Stream() {
		debug.Logf("stream %s node", r.version)
		debug.Dump(n)
	}
	return n, nil
}

// ReadOptionalNode reads a presence byte and, when set, the node after it.
// An absent node is returned as nil.
func (r *Reader) ReadOptionalNode() (normalized.Node, error) {
	b, err := r.in.readByte()
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, nil
	}
	return r.ReadNode()
}

func (r *Reader) ReadInstanceIdentifier() (normalized.InstanceIdentifier, error) {
	return r.atoms.readInstanceIdentifier()
}

func (r *Reader) ReadPathArgument() (normalized.PathArgument, error) {
	return r.atoms.readPathArgument()
}

func (r *Reader) ReadQName() (qname.QName, error) {
	return r.atoms.readQName()
}

func (r *Reader) ReadSchemaPath() (schema.Path, error) {
	n, err := r.in.readUint32()
	if err != nil {
		return nil, err
	}
	qs := make([]qname.QName, 0, capHint(int(n)))
	for range n {
		q, err := r.atoms.readQName()
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return schema.NewPath(qs...), nil
}

// ReadValue reads a single leaf value.
func (r *Reader) ReadValue() (any, error) {
	return r.atoms.readValue()
}

func (r *Reader) ReadByte() (byte, error) {
	return r.in.readByte()
}

func (r *Reader) ReadUint32() (uint32, error) {
	return r.in.readUint32()
}
