package binfmt

import (
	"io"

	"go.uber.org/zap"

	"github.com/opendaylight/yangtools-sub038/debug"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

type options struct {
	log *zap.Logger
}

// Option configures a Writer or a Reader.
type Option func(*options)

// WithLogger sets the logger stream lifecycle events go to. The default
// discards them.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Writer encodes normalized data onto a stream. Output is buffered; call
// Flush once the last item is written. Dictionaries grow with every item,
// so one Writer must not be shared between streams.
type Writer struct {
	version Version
	out     *dataOutput
	atoms   atomEncoder
	nodes   normalized.StreamWriter
	log     *zap.Logger
}

// NewWriter writes the stream header for v to w and returns a Writer for
// the rest of the stream. Only magnesium and potassium streams can be
// written.
func NewWriter(w io.Writer, v Version, opts ...Option) (*Writer, error) {
	if !v.Writable() {
		return nil, &UnsupportedVersionError{Version: uint16(v)}
	}
	return newWriter(w, v, opts...)
}

func newWriter(w io.Writer, v Version, opts ...Option) (*Writer, error) {
	o := buildOptions(opts)
	out := newDataOutput(w)
	out.writeByte(signature)
	out.writeUint16(uint16(v))
	if out.err != nil {
		return nil, out.err
	}

	sw := &Writer{version: v, out: out, log: o.log}
	switch {
	case v == Potassium:
		p := newPotassiumWriter(out)
		sw.atoms, sw.nodes = p, p
	case v >= SodiumSR1:
		c := newCompactEncoder(out, v)
		sw.atoms, sw.nodes = c, &tokenWriter{out: out, atoms: c}
	case v.Known():
		c := newClassicEncoder(out, v)
		sw.atoms, sw.nodes = c, &tokenWriter{out: out, atoms: c}
	default:
		return nil, &UnsupportedVersionError{Version: uint16(v)}
	}
	sw.log.Debug("stream writer opened", zap.Stringer("version", v))
	if debug.Stream() {
		debug.Logf("stream writer %s", v)
	}
	return sw, nil
}

// Version returns the stream generation being written.
func (w *Writer) Version() Version {
	return w.version
}

// WriteNode writes the tree rooted at n.
func (w *Writer) WriteNode(n normalized.Node) error {
	if err := normalized.Write(w.nodes, n); err != nil {
		return err
	}
	return w.out.err
}

// WriteOptionalNode writes a presence byte followed by n when n is not nil.
func (w *Writer) WriteOptionalNode(n normalized.Node) error {
	if n == nil {
		w.out.writeByte(0)
		return w.out.err
	}
	w.out.writeByte(1)
	return w.WriteNode(n)
}

func (w *Writer) WriteInstanceIdentifier(id normalized.InstanceIdentifier) error {
	if err := w.atoms.writeInstanceIdentifier(id); err != nil {
		return err
	}
	return w.out.err
}

func (w *Writer) WritePathArgument(arg normalized.PathArgument) error {
	if err := w.atoms.writePathArgument(arg); err != nil {
		return err
	}
	return w.out.err
}

func (w *Writer) WriteQName(q qname.QName) error {
	w.atoms.writeQName(q)
	return w.out.err
}

// WriteSchemaPath writes p as its step count followed by each step.
func (w *Writer) WriteSchemaPath(p schema.Path) error {
	w.out.writeUint32(uint32(len(p)))
	for _, q := range p {
		w.atoms.writeQName(q)
	}
	return w.out.err
}

// WriteValue writes a single leaf value.
func (w *Writer) WriteValue(v any) error {
	if err := w.atoms.writeValue(v); err != nil {
		return err
	}
	return w.out.err
}

func (w *Writer) WriteByte(b byte) error {
	w.out.writeByte(b)
	return w.out.err
}

func (w *Writer) WriteUint32(v uint32) error {
	w.out.writeUint32(v)
	return w.out.err
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.out.flush()
}
