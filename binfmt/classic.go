package binfmt

import (
	"math/big"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
)

// classicEncoder writes the atoms of lithium and neon-sr2 streams. Every
// value carries a type byte and every reference is four bytes wide.
// Lithium codes strings only; neon-sr2 also codes modules, QNames and
// augmentation identifiers.
type classicEncoder struct {
	out     *dataOutput
	version Version

	strings  dictionary[string]
	modules  dictionary[qname.Module]
	qnames   dictionary[qname.QName]
	augments dictionary[string]
}

var _ atomEncoder = (*classicEncoder)(nil)

func newClassicEncoder(out *dataOutput, v Version) *classicEncoder {
	return &classicEncoder{out: out, version: v}
}

func (e *classicEncoder) coded() bool { return e.version >= NeonSR2 }

func (e *classicEncoder) writeString(s string) {
	if code, ok := e.strings.lookup(s); ok {
		e.out.writeByte(isStringCode)
		e.out.writeUint32(uint32(code))
		return
	}
	e.strings.define(s)
	e.out.writeByte(isStringValue)
	e.writeBytes([]byte(s))
}

func (e *classicEncoder) writeOptString(s string) {
	if s == "" {
		e.out.writeByte(isNullValue)
		return
	}
	e.writeString(s)
}

func (e *classicEncoder) writeBytes(b []byte) {
	e.out.writeUint32(uint32(len(b)))
	e.out.write(b)
}

func (e *classicEncoder) writeQName(q qname.QName) {
	if !e.coded() {
		e.writeString(q.LocalName())
		e.writeString(q.Namespace())
		e.writeOptString(string(q.Revision()))
		return
	}
	if code, ok := e.qnames.lookup(q); ok {
		e.out.writeByte(isQNameCode)
		e.out.writeUint32(uint32(code))
		return
	}
	e.qnames.define(q)
	e.out.writeByte(isQNameValue)
	e.writeString(q.LocalName())
	e.writeModule(q.Module())
}

func (e *classicEncoder) writeModule(m qname.Module) {
	if code, ok := e.modules.lookup(m); ok {
		e.out.writeByte(isModuleCode)
		e.out.writeUint32(uint32(code))
		return
	}
	e.modules.define(m)
	e.out.writeByte(isModuleValue)
	e.writeString(m.Namespace)
	e.writeOptString(string(m.Revision))
}

func (e *classicEncoder) writeValue(v any) error {
	switch x := v.(type) {
	case string:
		if len(x) < 1<<16 {
			e.out.writeByte(vtString)
			e.out.writeUint16(uint16(len(x)))
			e.out.write([]byte(x))
		} else {
			e.out.writeByte(vtStringBytes)
			e.writeBytes([]byte(x))
		}
	case bool:
		e.out.writeByte(vtBool)
		if x {
			e.out.writeByte(1)
		} else {
			e.out.writeByte(0)
		}
	case int8:
		e.out.writeByte(vtByte)
		e.out.writeByte(byte(x))
	case int16:
		e.out.writeByte(vtShort)
		e.out.writeUint16(uint16(x))
	case int32:
		e.out.writeByte(vtInt)
		e.out.writeUint32(uint32(x))
	case int64:
		e.out.writeByte(vtLong)
		e.out.writeUint64(uint64(x))
	case uint8:
		return e.writeValue(int16(x))
	case uint16:
		return e.writeValue(int32(x))
	case uint32:
		return e.writeValue(int64(x))
	case uint64:
		return e.writeValue(new(big.Int).SetUint64(x))
	case *big.Int:
		e.out.writeByte(vtBigInteger)
		e.writeBytes([]byte(x.String()))
	case normalized.Decimal64:
		e.out.writeByte(vtDecimal)
		e.out.writeByte(x.Scale)
		e.out.writeUint64(uint64(x.Unscaled))
	case normalized.Empty:
		e.out.writeByte(vtEmpty)
	case []byte:
		e.out.writeByte(vtBinary)
		e.writeBytes(x)
	case normalized.Bits:
		e.out.writeByte(vtBits)
		e.out.writeUint32(uint32(len(x)))
		for _, b := range x {
			e.writeString(b)
		}
	case qname.QName:
		e.out.writeByte(vtQName)
		e.writeQName(x)
	case normalized.InstanceIdentifier:
		e.out.writeByte(vtIdentifier)
		return e.writeInstanceIdentifier(x)
	default:
		return &UnsupportedValueError{Version: e.version, Value: v}
	}
	return e.out.err
}

func (e *classicEncoder) writeInstanceIdentifier(id normalized.InstanceIdentifier) error {
	e.out.writeUint32(uint32(id.Len()))
	for _, arg := range id.Args() {
		if err := e.writePathArgument(arg); err != nil {
			return err
		}
	}
	return e.out.err
}

func (e *classicEncoder) writePathArgument(arg normalized.PathArgument) error {
	switch a := arg.(type) {
	case normalized.NodeIdentifier:
		e.out.writeByte(paNodeIdentifier)
		e.writeQName(a.QName)
	case normalized.NodeIdentifierWithPredicates:
		e.out.writeByte(paNodeWithPredics)
		e.writeQName(a.QName)
		e.out.writeUint32(uint32(a.Size()))
		for _, p := range a.Predicates() {
			e.writeQName(p.Key)
			if err := e.writeValue(p.Value); err != nil {
				return err
			}
		}
	case normalized.NodeWithValue:
		e.out.writeByte(paNodeWithValue)
		e.writeQName(a.QName)
		return e.writeValue(a.Value)
	case normalized.AugmentationIdentifier:
		e.out.writeByte(paAugmentation)
		e.writeAugmentation(a)
	default:
		return &UnsupportedValueError{Version: e.version, Value: arg}
	}
	return e.out.err
}

func (e *classicEncoder) writeAugmentation(a normalized.AugmentationIdentifier) {
	if e.coded() {
		key := normalized.ArgKey(a)
		if code, ok := e.augments.lookup(key); ok {
			e.out.writeByte(isAugmentCode)
			e.out.writeUint32(uint32(code))
			return
		}
		e.augments.define(key)
		e.out.writeByte(isAugmentValue)
	}
	names := a.ChildNames()
	e.out.writeUint32(uint32(len(names)))
	for _, q := range names {
		e.writeQName(q)
	}
}

// classicDecoder reads the atoms written by classicEncoder.
type classicDecoder struct {
	in      *dataInput
	version Version

	strings  table[string]
	modules  table[qname.Module]
	qnames   table[qname.QName]
	augments table[normalized.AugmentationIdentifier]
}

var _ atomDecoder = (*classicDecoder)(nil)

func newClassicDecoder(in *dataInput, v Version) *classicDecoder {
	return &classicDecoder{
		in:       in,
		version:  v,
		strings:  table[string]{kind: "String"},
		modules:  table[qname.Module]{kind: "QNameModule"},
		qnames:   table[qname.QName]{kind: "QName"},
		augments: table[normalized.AugmentationIdentifier]{kind: "augmentation identifier"},
	}
}

func (d *classicDecoder) coded() bool { return d.version >= NeonSR2 }

func (d *classicDecoder) readString() (string, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return "", err
	}
	return d.stringOf(tag)
}

func (d *classicDecoder) stringOf(tag byte) (string, error) {
	switch tag {
	case isStringCode:
		idx, err := d.in.readUint32()
		if err != nil {
			return "", err
		}
		return d.strings.get(uint64(idx))
	case isStringValue:
		b, err := d.readBytes()
		if err != nil {
			return "", err
		}
		s := string(b)
		d.strings.add(s)
		return s, nil
	}
	return "", invalidf("Unexpected String type %d", tag)
}

func (d *classicDecoder) readOptString() (string, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return "", err
	}
	if tag == isNullValue {
		return "", nil
	}
	return d.stringOf(tag)
}

func (d *classicDecoder) readBytes() ([]byte, error) {
	n, err := d.in.readUint32()
	if err != nil {
		return nil, err
	}
	return d.in.readBytes(int(n))
}

func (d *classicDecoder) readQName() (qname.QName, error) {
	if !d.coded() {
		local, err := d.readString()
		if err != nil {
			return qname.QName{}, err
		}
		ns, err := d.readString()
		if err != nil {
			return qname.QName{}, err
		}
		rev, err := d.readOptString()
		if err != nil {
			return qname.QName{}, err
		}
		m, err := newModule(ns, rev)
		if err != nil {
			return qname.QName{}, err
		}
		return newQName(m, local)
	}
	tag, err := d.in.readByte()
	if err != nil {
		return qname.QName{}, err
	}
	switch tag {
	case isQNameCode:
		idx, err := d.in.readUint32()
		if err != nil {
			return qname.QName{}, err
		}
		return d.qnames.get(uint64(idx))
	case isQNameValue:
		local, err := d.readString()
		if err != nil {
			return qname.QName{}, err
		}
		m, err := d.readModule()
		if err != nil {
			return qname.QName{}, err
		}
		q, err := newQName(m, local)
		if err != nil {
			return qname.QName{}, err
		}
		d.qnames.add(q)
		return q, nil
	}
	return qname.QName{}, invalidf("Unexpected QName type %d", tag)
}

func (d *classicDecoder) readModule() (qname.Module, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return qname.Module{}, err
	}
	switch tag {
	case isModuleCode:
		idx, err := d.in.readUint32()
		if err != nil {
			return qname.Module{}, err
		}
		return d.modules.get(uint64(idx))
	case isModuleValue:
		ns, err := d.readString()
		if err != nil {
			return qname.Module{}, err
		}
		rev, err := d.readOptString()
		if err != nil {
			return qname.Module{}, err
		}
		m, err := newModule(ns, rev)
		if err != nil {
			return qname.Module{}, err
		}
		d.modules.add(m)
		return m, nil
	}
	return qname.Module{}, invalidf("Unexpected QNameModule type %d", tag)
}

func (d *classicDecoder) readValue() (any, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case vtString:
		n, err := d.in.readUint16()
		if err != nil {
			return nil, err
		}
		b, err := d.in.readBytes(int(n))
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case vtStringBytes:
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case vtBool:
		b, err := d.in.readByte()
		return b != 0, err
	case vtByte:
		b, err := d.in.readByte()
		return int8(b), err
	case vtShort:
		v, err := d.in.readUint16()
		return int16(v), err
	case vtInt:
		v, err := d.in.readUint32()
		return int32(v), err
	case vtLong:
		v, err := d.in.readUint64()
		return int64(v), err
	case vtBigInteger:
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		v, ok := new(big.Int).SetString(string(b), 10)
		if !ok {
			return nil, invalidf("Invalid integer %q", b)
		}
		return v, nil
	case vtDecimal:
		scale, err := d.in.readByte()
		if err != nil {
			return nil, err
		}
		u, err := d.in.readUint64()
		if err != nil {
			return nil, err
		}
		return normalized.Decimal64{Unscaled: int64(u), Scale: scale}, nil
	case vtEmpty:
		return normalized.Empty{}, nil
	case vtBinary:
		return d.readBytes()
	case vtBits:
		n, err := d.in.readUint32()
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, capHint(int(n)))
		for range n {
			s, err := d.readString()
			if err != nil {
				return nil, err
			}
			names = append(names, s)
		}
		return normalized.NewBits(names...), nil
	case vtQName:
		return d.readQName()
	case vtIdentifier:
		return d.readInstanceIdentifier()
	}
	return nil, invalidf("Invalid value type %d", tag)
}

func (d *classicDecoder) readInstanceIdentifier() (normalized.InstanceIdentifier, error) {
	n, err := d.in.readUint32()
	if err != nil {
		return normalized.InstanceIdentifier{}, err
	}
	args := make([]normalized.PathArgument, 0, capHint(int(n)))
	for range n {
		arg, err := d.readPathArgument()
		if err != nil {
			return normalized.InstanceIdentifier{}, err
		}
		args = append(args, arg)
	}
	return normalized.NewInstanceIdentifier(args...), nil
}

func (d *classicDecoder) readPathArgument() (normalized.PathArgument, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case paNodeIdentifier:
		q, err := d.readQName()
		if err != nil {
			return nil, err
		}
		return normalized.NewNodeIdentifier(q), nil
	case paNodeWithPredics:
		q, err := d.readQName()
		if err != nil {
			return nil, err
		}
		n, err := d.in.readUint32()
		if err != nil {
			return nil, err
		}
		kvs := make([]normalized.KeyValue, 0, capHint(int(n)))
		for range n {
			k, err := d.readQName()
			if err != nil {
				return nil, err
			}
			v, err := d.readValue()
			if err != nil {
				return nil, err
			}
			kvs = append(kvs, normalized.KV(k, v))
		}
		return normalized.NewNodeIdentifierWithPredicates(q, kvs...), nil
	case paNodeWithValue:
		q, err := d.readQName()
		if err != nil {
			return nil, err
		}
		v, err := d.readValue()
		if err != nil {
			return nil, err
		}
		return normalized.NewNodeWithValue(q, v), nil
	case paAugmentation:
		return d.readAugmentation()
	}
	return nil, invalidf("Unexpected PathArgument type %d", tag)
}

func (d *classicDecoder) readAugmentation() (normalized.AugmentationIdentifier, error) {
	if d.coded() {
		tag, err := d.in.readByte()
		if err != nil {
			return normalized.AugmentationIdentifier{}, err
		}
		switch tag {
		case isAugmentCode:
			idx, err := d.in.readUint32()
			if err != nil {
				return normalized.AugmentationIdentifier{}, err
			}
			return d.augments.get(uint64(idx))
		case isAugmentValue:
		default:
			return normalized.AugmentationIdentifier{}, invalidf("Unexpected augmentation identifier type %d", tag)
		}
	}
	n, err := d.in.readUint32()
	if err != nil {
		return normalized.AugmentationIdentifier{}, err
	}
	names := make([]qname.QName, 0, capHint(int(n)))
	for range n {
		q, err := d.readQName()
		if err != nil {
			return normalized.AugmentationIdentifier{}, err
		}
		names = append(names, q)
	}
	aid := normalized.NewAugmentationIdentifier(names...)
	if d.coded() {
		d.augments.add(aid)
	}
	return aid, nil
}
