package binfmt

import (
	"math/big"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
)

// compactEncoder writes the atoms of sodium-sr1 and later streams. Strings,
// modules, QNames and augmentation identifiers are coded once and then
// referenced by index.
type compactEncoder struct {
	out     *dataOutput
	version Version

	strings  dictionary[string]
	modules  dictionary[qname.Module]
	qnames   dictionary[qname.QName]
	augments dictionary[string]
}

var _ atomEncoder = (*compactEncoder)(nil)

func newCompactEncoder(out *dataOutput, v Version) *compactEncoder {
	return &compactEncoder{out: out, version: v}
}

// Sodium-sr1 predates native unsigned integers; potassium dropped
// arbitrary precision integers.
func (e *compactEncoder) nativeUnsigned() bool { return e.version >= Magnesium }
func (e *compactEncoder) bigIntegers() bool    { return e.version < Potassium }

// writeTaggedRef writes code after tag base, base+1 or base+2 for a one,
// two or four byte reference.
func (e *compactEncoder) writeTaggedRef(base byte, code int) {
	w := widthOf(code)
	e.out.writeByte(base + byte(w))
	e.out.writeRef(w, code)
}

func (e *compactEncoder) writeQName(q qname.QName) {
	if code, ok := e.qnames.lookup(q); ok {
		e.writeTaggedRef(cvQNameRef1B, code)
		return
	}
	e.out.writeByte(cvQName)
	e.encodeQName(q)
}

// encodeQName defines q: its module, coded or literal, then its local name.
func (e *compactEncoder) encodeQName(q qname.QName) {
	e.qnames.define(q)
	m := q.Module()
	if code, ok := e.modules.lookup(m); ok {
		e.writeTaggedRef(cvModRef1B, code)
	} else {
		e.modules.define(m)
		e.encodeString(m.Namespace)
		e.encodeString(string(m.Revision))
	}
	e.encodeString(q.LocalName())
}

func (e *compactEncoder) encodeString(s string) {
	if s == "" {
		e.out.writeByte(cvStringEmpty)
		return
	}
	if code, ok := e.strings.lookup(s); ok {
		e.writeTaggedRef(cvStringRef1B, code)
		return
	}
	e.strings.define(s)
	e.writeString(s)
}

func (e *compactEncoder) writeString(s string) {
	switch n := len(s); {
	case n == 0:
		e.out.writeByte(cvStringEmpty)
		return
	case n < 1<<8:
		e.out.writeByte(cvString1B)
		e.out.writeByte(byte(n))
	case n < 1<<16:
		e.out.writeByte(cvString2B)
		e.out.writeUint16(uint16(n))
	default:
		e.out.writeByte(cvString4B)
		e.out.writeUint32(uint32(n))
	}
	e.out.write([]byte(s))
}

func (e *compactEncoder) writeValue(v any) error {
	switch x := v.(type) {
	case string:
		e.writeString(x)
	case bool:
		if x {
			e.out.writeByte(cvTrue)
		} else {
			e.out.writeByte(cvFalse)
		}
	case int8:
		if x == 0 {
			e.out.writeByte(cvInt8Zero)
		} else {
			e.out.writeByte(cvInt8)
			e.out.writeByte(byte(x))
		}
	case int16:
		if x == 0 {
			e.out.writeByte(cvInt16Zero)
		} else {
			e.out.writeByte(cvInt16)
			e.out.writeUint16(uint16(x))
		}
	case int32:
		switch {
		case x == 0:
			e.out.writeByte(cvInt32Zero)
		case uint32(x)&0xFFFF0000 == 0:
			e.out.writeByte(cvInt32In2)
			e.out.writeUint16(uint16(x))
		default:
			e.out.writeByte(cvInt32)
			e.out.writeUint32(uint32(x))
		}
	case int64:
		switch {
		case x == 0:
			e.out.writeByte(cvInt64Zero)
		case uint64(x)&0xFFFFFFFF00000000 == 0:
			e.out.writeByte(cvInt64In4)
			e.out.writeUint32(uint32(x))
		default:
			e.out.writeByte(cvInt64)
			e.out.writeUint64(uint64(x))
		}
	case uint8, uint16, uint32, uint64:
		return e.writeUnsigned(x)
	case *big.Int:
		if !e.bigIntegers() {
			return &UnsupportedValueError{Version: e.version, Value: v}
		}
		e.out.writeByte(cvBigInteger)
		e.writeString(x.String())
	case normalized.Decimal64:
		e.out.writeByte(cvDecimal64)
		e.out.writeByte(x.Scale)
		e.out.writeUint64(uint64(x.Unscaled))
	case normalized.Empty:
		e.out.writeByte(cvEmpty)
	case []byte:
		e.writeBinary(x)
	case normalized.Bits:
		e.writeBits(x)
	case qname.QName:
		e.writeQName(x)
	case normalized.InstanceIdentifier:
		return e.writeInstanceIdentifier(x)
	default:
		return &UnsupportedValueError{Version: e.version, Value: v}
	}
	return e.out.err
}

func (e *compactEncoder) writeUnsigned(v any) error {
	if !e.nativeUnsigned() {
		// Widened to the next signed type, uint64 to an arbitrary precision
		// integer.
		switch x := v.(type) {
		case uint8:
			return e.writeValue(int16(x))
		case uint16:
			return e.writeValue(int32(x))
		case uint32:
			return e.writeValue(int64(x))
		case uint64:
			return e.writeValue(new(big.Int).SetUint64(x))
		}
	}
	switch x := v.(type) {
	case uint8:
		if x == 0 {
			e.out.writeByte(cvUint8Zero)
		} else {
			e.out.writeByte(cvUint8)
			e.out.writeByte(x)
		}
	case uint16:
		if x == 0 {
			e.out.writeByte(cvUint16Zero)
		} else {
			e.out.writeByte(cvUint16)
			e.out.writeUint16(x)
		}
	case uint32:
		switch {
		case x == 0:
			e.out.writeByte(cvUint32Zero)
		case x&0xFFFF0000 == 0:
			e.out.writeByte(cvUint32In2)
			e.out.writeUint16(uint16(x))
		default:
			e.out.writeByte(cvUint32)
			e.out.writeUint32(x)
		}
	case uint64:
		switch {
		case x == 0:
			e.out.writeByte(cvUint64Zero)
		case x&0xFFFFFFFF00000000 == 0:
			e.out.writeByte(cvUint64In4)
			e.out.writeUint32(uint32(x))
		default:
			e.out.writeByte(cvUint64)
			e.out.writeUint64(x)
		}
	}
	return e.out.err
}

func (e *compactEncoder) writeBinary(b []byte) {
	switch n := len(b); {
	case n <= cvBinaryMax:
		e.out.writeByte(cvBinary0 + byte(n))
	case n < cvBinary2Off:
		e.out.writeByte(cvBinary1B)
		e.out.writeByte(byte(n - cvBinary1Off))
	case n < cvBinary2Off+1<<16:
		e.out.writeByte(cvBinary2B)
		e.out.writeUint16(uint16(n - cvBinary2Off))
	default:
		e.out.writeByte(cvBinary4B)
		e.out.writeUint32(uint32(n))
	}
	e.out.write(b)
}

func (e *compactEncoder) writeBits(bits normalized.Bits) {
	switch n := len(bits); {
	case n <= cvBitsMax:
		e.out.writeByte(cvBits0 + byte(n))
	case n < cvBits2Off:
		e.out.writeByte(cvBits1B)
		e.out.writeByte(byte(n - cvBits1Off))
	case n < cvBits2Off+1<<16:
		e.out.writeByte(cvBits2B)
		e.out.writeUint16(uint16(n - cvBits2Off))
	default:
		e.out.writeByte(cvBits4B)
		e.out.writeUint32(uint32(n))
	}
	for _, b := range bits {
		e.encodeString(b)
	}
}

func (e *compactEncoder) writeInstanceIdentifier(id normalized.InstanceIdentifier) error {
	if n := id.Len(); n <= cvIdentifierMax {
		e.out.writeByte(cvIdentifier0 + byte(n))
	} else {
		e.out.writeByte(cvIdentifier)
		e.out.writeUint32(uint32(n))
	}
	for _, arg := range id.Args() {
		if err := e.writePathArgument(arg); err != nil {
			return err
		}
	}
	return e.out.err
}

func (e *compactEncoder) writePathArgument(arg normalized.PathArgument) error {
	switch a := arg.(type) {
	case normalized.NodeIdentifier:
		e.writePathQName(cpNodeIdentifier, a.QName)
	case normalized.NodeIdentifierWithPredicates:
		e.writeSized(cpWithPredicates, a.Size(), func(h byte) { e.writePathQName(h, a.QName) })
		for _, p := range a.Predicates() {
			e.writeQName(p.Key)
			if err := e.writeValue(p.Value); err != nil {
				return err
			}
		}
	case normalized.NodeWithValue:
		e.writePathQName(cpWithValue, a.QName)
		return e.writeValue(a.Value)
	case normalized.AugmentationIdentifier:
		if e.version >= Potassium {
			return &UnsupportedValueError{Version: e.version, Value: arg}
		}
		key := normalized.ArgKey(a)
		if code, ok := e.augments.lookup(key); ok {
			w := widthOf(code)
			e.out.writeByte(cpAugmentation | (cpQNameRef1B + byte(w)<<2))
			e.out.writeRef(w, code)
			break
		}
		e.augments.define(key)
		names := a.ChildNames()
		e.writeSized(cpAugmentation|cpQNameDef, len(names), e.out.writeByte)
		for _, q := range names {
			e.writeQName(q)
		}
	default:
		return &UnsupportedValueError{Version: e.version, Value: arg}
	}
	return e.out.err
}

// writeSized emits header with n folded into its high nibble, or with a
// width marker followed by n.
func (e *compactEncoder) writeSized(header byte, n int, emit func(byte)) {
	switch {
	case n <= cpSizeMax:
		emit(header | byte(n)<<cpSizeShift)
	case n < 1<<8:
		emit(header | cpSize1B)
		e.out.writeByte(byte(n))
	case n < 1<<16:
		emit(header | cpSize2B)
		e.out.writeUint16(uint16(n))
	default:
		emit(header | cpSize4B)
		e.out.writeUint32(uint32(n))
	}
}

func (e *compactEncoder) writePathQName(header byte, q qname.QName) {
	if code, ok := e.qnames.lookup(q); ok {
		w := widthOf(code)
		e.out.writeByte(header | (cpQNameRef1B + byte(w)<<2))
		e.out.writeRef(w, code)
		return
	}
	e.out.writeByte(header | cpQNameDef)
	e.encodeQName(q)
}
