package binfmt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// dataOutput writes big-endian primitives. The first write error sticks and
// turns later writes into no-ops.
type dataOutput struct {
	w   *bufio.Writer
	buf []byte
	err error
}

func newDataOutput(w io.Writer) *dataOutput {
	return &dataOutput{w: bufio.NewWriter(w), buf: make([]byte, 0, 8)}
}

func (o *dataOutput) writeByte(b byte) {
	if o.err == nil {
		o.err = o.w.WriteByte(b)
	}
}

func (o *dataOutput) writeUint16(v uint16) {
	o.write(binary.BigEndian.AppendUint16(o.buf[:0], v))
}

func (o *dataOutput) writeUint32(v uint32) {
	o.write(binary.BigEndian.AppendUint32(o.buf[:0], v))
}

func (o *dataOutput) writeUint64(v uint64) {
	o.write(binary.BigEndian.AppendUint64(o.buf[:0], v))
}

func (o *dataOutput) write(p []byte) {
	if o.err == nil {
		_, o.err = o.w.Write(p)
	}
}

func (o *dataOutput) flush() error {
	if o.err != nil {
		return o.err
	}
	o.err = o.w.Flush()
	return o.err
}

// readChunk bounds allocations driven by lengths read from the stream.
const readChunk = 64 << 10

// dataInput reads big-endian primitives. A short read is reported as an
// InvalidStreamError wrapping io.ErrUnexpectedEOF.
type dataInput struct {
	r   *bufio.Reader
	buf [8]byte
}

func newDataInput(r io.Reader) *dataInput {
	return &dataInput{r: bufio.NewReader(r)}
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &InvalidStreamError{Msg: "unexpected end of stream", Err: io.ErrUnexpectedEOF}
	}
	return err
}

func (in *dataInput) readByte() (byte, error) {
	b, err := in.r.ReadByte()
	if err != nil {
		return 0, truncated(err)
	}
	return b, nil
}

func (in *dataInput) readFull(n int) ([]byte, error) {
	if _, err := io.ReadFull(in.r, in.buf[:n]); err != nil {
		return nil, truncated(err)
	}
	return in.buf[:n], nil
}

func (in *dataInput) readUint16() (uint16, error) {
	b, err := in.readFull(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (in *dataInput) readUint32() (uint32, error) {
	b, err := in.readFull(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (in *dataInput) readUint64() (uint64, error) {
	b, err := in.readFull(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// readBytes reads n bytes. Large lengths are read incrementally so that a
// corrupt length fails on the short read rather than on the allocation.
func (in *dataInput) readBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, invalidf("Invalid length %d", n)
	}
	if n <= readChunk {
		p := make([]byte, n)
		if _, err := io.ReadFull(in.r, p); err != nil {
			return nil, truncated(err)
		}
		return p, nil
	}
	var b bytes.Buffer
	b.Grow(readChunk)
	if _, err := io.CopyN(&b, in.r, int64(n)); err != nil {
		return nil, truncated(err)
	}
	return b.Bytes(), nil
}

// capHint limits the initial capacity of a slice sized by a stream count.
func capHint(n int) int {
	return min(n, 64)
}
