package binfmt

import (
	"math/big"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
)

// compactDecoder reads the atoms written by compactEncoder, rebuilding its
// dictionaries in definition order.
type compactDecoder struct {
	in      *dataInput
	version Version

	strings  table[string]
	modules  table[qname.Module]
	qnames   table[qname.QName]
	augments table[normalized.AugmentationIdentifier]
}

var _ atomDecoder = (*compactDecoder)(nil)

func newCompactDecoder(in *dataInput, v Version) *compactDecoder {
	return &compactDecoder{
		in:       in,
		version:  v,
		strings:  table[string]{kind: "String"},
		modules:  table[qname.Module]{kind: "QNameModule"},
		qnames:   table[qname.QName]{kind: "QName"},
		augments: table[normalized.AugmentationIdentifier]{kind: "augmentation identifier"},
	}
}

func (d *compactDecoder) nativeUnsigned() bool { return d.version >= Magnesium }
func (d *compactDecoder) bigIntegers() bool    { return d.version < Potassium }

func (d *compactDecoder) readQName() (qname.QName, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return qname.QName{}, err
	}
	return d.qnameOf(tag)
}

func (d *compactDecoder) qnameOf(tag byte) (qname.QName, error) {
	switch tag {
	case cvQName:
		return d.decodeQName()
	case cvQNameRef1B, cvQNameRef2B, cvQNameRef4B:
		idx, err := d.in.readRef(refWidth(tag - cvQNameRef1B))
		if err != nil {
			return qname.QName{}, err
		}
		return d.qnames.get(idx)
	}
	return qname.QName{}, invalidf("Unexpected QName type %d", tag)
}

// decodeQName reads a QName definition and appends it to the table.
func (d *compactDecoder) decodeQName() (qname.QName, error) {
	m, err := d.decodeModule()
	if err != nil {
		return qname.QName{}, err
	}
	local, err := d.readRefString()
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

func (d *compactDecoder) decodeModule() (qname.Module, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return qname.Module{}, err
	}
	switch tag {
	case cvModRef1B, cvModRef2B, cvModRef4B:
		idx, err := d.in.readRef(refWidth(tag - cvModRef1B))
		if err != nil {
			return qname.Module{}, err
		}
		return d.modules.get(idx)
	}
	ns, err := d.refString(tag)
	if err != nil {
		return qname.Module{}, err
	}
	rev, err := d.readRefString()
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

func (d *compactDecoder) readRefString() (string, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return "", err
	}
	return d.refString(tag)
}

func (d *compactDecoder) refString(tag byte) (string, error) {
	switch tag {
	case cvStringRef1B, cvStringRef2B, cvStringRef4B:
		idx, err := d.in.readRef(refWidth(tag - cvStringRef1B))
		if err != nil {
			return "", err
		}
		return d.strings.get(idx)
	case cvStringEmpty:
		return "", nil
	case cvString1B, cvString2B, cvString4B:
		s, err := d.literalString(tag)
		if err != nil {
			return "", err
		}
		d.strings.add(s)
		return s, nil
	}
	return "", invalidf("Unexpected String type %d", tag)
}

func (d *compactDecoder) literalString(tag byte) (string, error) {
	var n int
	switch tag {
	case cvStringEmpty:
		return "", nil
	case cvString1B:
		b, err := d.in.readByte()
		if err != nil {
			return "", err
		}
		n = int(b)
	case cvString2B:
		v, err := d.in.readUint16()
		if err != nil {
			return "", err
		}
		n = int(v)
	case cvString4B:
		v, err := d.in.readUint32()
		if err != nil {
			return "", err
		}
		n = int(v)
	default:
		return "", invalidf("Unexpected String type %d", tag)
	}
	b, err := d.in.readBytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *compactDecoder) readValue() (any, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case cvFalse:
		return false, nil
	case cvTrue:
		return true, nil
	case cvEmpty:
		return normalized.Empty{}, nil
	case cvInt8:
		b, err := d.in.readByte()
		return int8(b), err
	case cvInt8Zero:
		return int8(0), nil
	case cvInt16:
		v, err := d.in.readUint16()
		return int16(v), err
	case cvInt16Zero:
		return int16(0), nil
	case cvInt32:
		v, err := d.in.readUint32()
		return int32(v), err
	case cvInt32In2:
		v, err := d.in.readUint16()
		return int32(v), err
	case cvInt32Zero:
		return int32(0), nil
	case cvInt64:
		v, err := d.in.readUint64()
		return int64(v), err
	case cvInt64In4:
		v, err := d.in.readUint32()
		return int64(v), err
	case cvInt64Zero:
		return int64(0), nil
	case cvUint8, cvUint8Zero, cvUint16, cvUint16Zero, cvUint32, cvUint32In2, cvUint32Zero,
		cvUint64, cvUint64In4, cvUint64Zero:
		if !d.nativeUnsigned() {
			return nil, invalidf("Invalid value type %d", tag)
		}
		return d.unsigned(tag)
	case cvBigInteger:
		if !d.bigIntegers() {
			return nil, invalidf("Invalid value type %d", tag)
		}
		return d.bigInteger()
	case cvDecimal64:
		scale, err := d.in.readByte()
		if err != nil {
			return nil, err
		}
		u, err := d.in.readUint64()
		if err != nil {
			return nil, err
		}
		return normalized.Decimal64{Unscaled: int64(u), Scale: scale}, nil
	case cvStringEmpty, cvString1B, cvString2B, cvString4B:
		return d.literalString(tag)
	case cvQName, cvQNameRef1B, cvQNameRef2B, cvQNameRef4B:
		return d.qnameOf(tag)
	case cvIdentifier:
		n, err := d.in.readUint32()
		if err != nil {
			return nil, err
		}
		return d.instanceIdentifier(int(n))
	case cvBits1B:
		b, err := d.in.readByte()
		if err != nil {
			return nil, err
		}
		return d.bits(int(b) + cvBits1Off)
	case cvBits2B:
		v, err := d.in.readUint16()
		if err != nil {
			return nil, err
		}
		return d.bits(int(v) + cvBits2Off)
	case cvBits4B:
		v, err := d.in.readUint32()
		if err != nil {
			return nil, err
		}
		return d.bits(int(v))
	case cvBinary1B:
		b, err := d.in.readByte()
		if err != nil {
			return nil, err
		}
		return d.in.readBytes(int(b) + cvBinary1Off)
	case cvBinary2B:
		v, err := d.in.readUint16()
		if err != nil {
			return nil, err
		}
		return d.in.readBytes(int(v) + cvBinary2Off)
	case cvBinary4B:
		v, err := d.in.readUint32()
		if err != nil {
			return nil, err
		}
		return d.in.readBytes(int(v))
	}
	switch {
	case tag >= cvBinary0:
		return d.in.readBytes(int(tag - cvBinary0))
	case tag >= cvIdentifier0:
		return d.instanceIdentifier(int(tag - cvIdentifier0))
	case tag >= cvBits0 && tag <= cvBits0+cvBitsMax:
		return d.bits(int(tag - cvBits0))
	}
	return nil, invalidf("Invalid value type %d", tag)
}

func (d *compactDecoder) unsigned(tag byte) (any, error) {
	switch tag {
	case cvUint8:
		return d.in.readByte()
	case cvUint8Zero:
		return uint8(0), nil
	case cvUint16:
		return d.in.readUint16()
	case cvUint16Zero:
		return uint16(0), nil
	case cvUint32:
		return d.in.readUint32()
	case cvUint32In2:
		v, err := d.in.readUint16()
		return uint32(v), err
	case cvUint32Zero:
		return uint32(0), nil
	case cvUint64:
		return d.in.readUint64()
	case cvUint64In4:
		v, err := d.in.readUint32()
		return uint64(v), err
	}
	return uint64(0), nil
}

func (d *compactDecoder) bigInteger() (*big.Int, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return nil, err
	}
	s, err := d.literalString(tag)
	if err != nil {
		return nil, err
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, invalidf("Invalid integer %q", s)
	}
	return v, nil
}

func (d *compactDecoder) bits(n int) (normalized.Bits, error) {
	names := make([]string, 0, capHint(n))
	for range n {
		s, err := d.readRefString()
		if err != nil {
			return nil, err
		}
		names = append(names, s)
	}
	return normalized.NewBits(names...), nil
}

func (d *compactDecoder) readInstanceIdentifier() (normalized.InstanceIdentifier, error) {
	tag, err := d.in.readByte()
	if err != nil {
		return normalized.InstanceIdentifier{}, err
	}
	switch {
	case tag == cvIdentifier:
		n, err := d.in.readUint32()
		if err != nil {
			return normalized.InstanceIdentifier{}, err
		}
		return d.instanceIdentifier(int(n))
	case tag >= cvIdentifier0 && tag <= cvIdentifier0+cvIdentifierMax:
		return d.instanceIdentifier(int(tag - cvIdentifier0))
	}
	return normalized.InstanceIdentifier{}, invalidf("Unexpected YangInstanceIdentifier type %d", tag)
}

func (d *compactDecoder) instanceIdentifier(n int) (normalized.InstanceIdentifier, error) {
	args := make([]normalized.PathArgument, 0, capHint(n))
	for range n {
		arg, err := d.readPathArgument()
		if err != nil {
			return normalized.InstanceIdentifier{}, err
		}
		args = append(args, arg)
	}
	return normalized.NewInstanceIdentifier(args...), nil
}

func (d *compactDecoder) readPathArgument() (normalized.PathArgument, error) {
	h, err := d.in.readByte()
	if err != nil {
		return nil, err
	}
	switch h & cpTypeMask {
	case cpNodeIdentifier:
		if h&cpSizeMask != 0 {
			return nil, invalidf("Invalid path argument header %d", h)
		}
		q, err := d.pathQName(h)
		if err != nil {
			return nil, err
		}
		return normalized.NewNodeIdentifier(q), nil
	case cpWithPredicates:
		q, err := d.pathQName(h)
		if err != nil {
			return nil, err
		}
		n, err := d.size(h)
		if err != nil {
			return nil, err
		}
		return d.predicates(q, n)
	case cpWithValue:
		if h&cpSizeMask != 0 {
			return nil, invalidf("Invalid path argument header %d", h)
		}
		q, err := d.pathQName(h)
		if err != nil {
			return nil, err
		}
		v, err := d.readValue()
		if err != nil {
			return nil, err
		}
		return normalized.NewNodeWithValue(q, v), nil
	}
	return d.augmentationArgument(h)
}

func (d *compactDecoder) augmentationArgument(h byte) (normalized.AugmentationIdentifier, error) {
	if h&cpQNameMask != cpQNameDef {
		idx, err := d.in.readRef(refWidth((h&cpQNameMask)>>2 - 1))
		if err != nil {
			return normalized.AugmentationIdentifier{}, err
		}
		return d.augments.get(idx)
	}
	n, err := d.size(h)
	if err != nil {
		return normalized.AugmentationIdentifier{}, err
	}
	aid, err := d.augmentationBody(n)
	if err != nil {
		return normalized.AugmentationIdentifier{}, err
	}
	d.augments.add(aid)
	return aid, nil
}

func (d *compactDecoder) augmentationBody(n int) (normalized.AugmentationIdentifier, error) {
	names := make([]qname.QName, 0, capHint(n))
	for range n {
		q, err := d.readQName()
		if err != nil {
			return normalized.AugmentationIdentifier{}, err
		}
		names = append(names, q)
	}
	return normalized.NewAugmentationIdentifier(names...), nil
}

// pathQName reads the QName of a path argument, coded by bits 2-3 of h.
func (d *compactDecoder) pathQName(h byte) (qname.QName, error) {
	if h&cpQNameMask == cpQNameDef {
		return d.decodeQName()
	}
	idx, err := d.in.readRef(refWidth((h&cpQNameMask)>>2 - 1))
	if err != nil {
		return qname.QName{}, err
	}
	return d.qnames.get(idx)
}

// size reads the count coded by the high nibble of h.
func (d *compactDecoder) size(h byte) (int, error) {
	switch h & cpSizeMask {
	case cpSize1B:
		b, err := d.in.readByte()
		return int(b), err
	case cpSize2B:
		v, err := d.in.readUint16()
		return int(v), err
	case cpSize4B:
		v, err := d.in.readUint32()
		return int(v), err
	}
	return int(h >> cpSizeShift), nil
}

func (d *compactDecoder) predicates(q qname.QName, n int) (normalized.NodeIdentifierWithPredicates, error) {
	kvs := make([]normalized.KeyValue, 0, capHint(n))
	for range n {
		k, err := d.readQName()
		if err != nil {
			return normalized.NodeIdentifierWithPredicates{}, err
		}
		v, err := d.readValue()
		if err != nil {
			return normalized.NodeIdentifierWithPredicates{}, err
		}
		kvs = append(kvs, normalized.KV(k, v))
	}
	return normalized.NewNodeIdentifierWithPredicates(q, kvs...), nil
}
