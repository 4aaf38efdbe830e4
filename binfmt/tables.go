package binfmt

import "fmt"

// dictionary numbers written entries in definition order.
type dictionary[K comparable] struct {
	codes map[K]int
}

func (d *dictionary[K]) lookup(k K) (int, bool) {
	c, ok := d.codes[k]
	return c, ok
}

// define assigns the next code to k. Defining an entry twice is a coding
// error in the writer and panics.
func (d *dictionary[K]) define(k K) int {
	if d.codes == nil {
		d.codes = make(map[K]int)
	}
	if prev, ok := d.codes[k]; ok {
		panic(fmt.Sprintf("binfmt: attempted to re-encode %v, already encoded as %d", k, prev))
	}
	c := len(d.codes)
	d.codes[k] = c
	return c
}

// table is the reader side of a dictionary.
type table[T any] struct {
	kind    string
	entries []T
}

func (t *table[T]) add(v T) {
	t.entries = append(t.entries, v)
}

func (t *table[T]) get(index uint64) (T, error) {
	if index >= uint64(len(t.entries)) {
		var zero T
		return zero, invalidf("Invalid %s reference %d", t.kind, index)
	}
	return t.entries[index], nil
}

// Sized references: codes below 256 take one byte, codes below 65792 take
// two bytes holding code-256, anything else four bytes.
const (
	ref1Limit = 256
	ref2Limit = 65792
)

type refWidth uint8

const (
	ref1B refWidth = iota
	ref2B
	ref4B
)

func widthOf(code int) refWidth {
	switch {
	case code < ref1Limit:
		return ref1B
	case code < ref2Limit:
		return ref2B
	}
	return ref4B
}

func (o *dataOutput) writeRef(w refWidth, code int) {
	switch w {
	case ref1B:
		o.writeByte(byte(code))
	case ref2B:
		o.writeUint16(uint16(code - ref1Limit))
	default:
		o.writeUint32(uint32(code))
	}
}

func (in *dataInput) readRef(w refWidth) (uint64, error) {
	switch w {
	case ref1B:
		b, err := in.readByte()
		return uint64(b), err
	case ref2B:
		v, err := in.readUint16()
		return uint64(v) + ref1Limit, err
	}
	v, err := in.readUint32()
	return uint64(v), err
}
