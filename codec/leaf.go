package codec

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

var (
	iidPtrType      = reflect.TypeFor[*binding.InstanceIdentifier]()
	bitsType        = reflect.TypeFor[normalized.Bits]()
	textMarshaler   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// normTypes maps built-in types to the Go type of their normalized values.
var normTypes = map[schema.TypeKind]reflect.Type{
	schema.TypeString:    reflect.TypeFor[string](),
	schema.TypeBoolean:   reflect.TypeFor[bool](),
	schema.TypeInt8:      reflect.TypeFor[int8](),
	schema.TypeInt16:     reflect.TypeFor[int16](),
	schema.TypeInt32:     reflect.TypeFor[int32](),
	schema.TypeInt64:     reflect.TypeFor[int64](),
	schema.TypeUint8:     reflect.TypeFor[uint8](),
	schema.TypeUint16:    reflect.TypeFor[uint16](),
	schema.TypeUint32:    reflect.TypeFor[uint32](),
	schema.TypeUint64:    reflect.TypeFor[uint64](),
	schema.TypeDecimal64: reflect.TypeFor[normalized.Decimal64](),
	schema.TypeEmpty:     reflect.TypeFor[normalized.Empty](),
	schema.TypeBinary:    reflect.TypeFor[[]byte](),
}

// slot describes how a struct field holds a leaf value: behind a pointer,
// or directly for slices, interfaces and instance identifiers. A nil field
// is an absent leaf.
type slot struct {
	field reflect.Type
	ptr   bool
}

func newSlot(t reflect.Type) (slot, error) {
	switch {
	case t == iidPtrType:
		return slot{field: t}, nil
	case t.Kind() == reflect.Pointer:
		return slot{field: t, ptr: true}, nil
	case t.Kind() == reflect.Interface, t.Kind() == reflect.Slice:
		return slot{field: t}, nil
	}
	return slot{}, fmt.Errorf("leaf field of type %s must be a pointer, a slice or an interface", t)
}

// elem is the type the value codec works on.
func (s slot) elem() reflect.Type {
	if s.ptr {
		return s.field.Elem()
	}
	return s.field
}

func (s slot) get(fv reflect.Value) (reflect.Value, bool) {
	if fv.IsNil() {
		return reflect.Value{}, false
	}
	if s.ptr {
		return fv.Elem(), true
	}
	return fv, true
}

func (s slot) set(fv, v reflect.Value) {
	if s.ptr {
		p := reflect.New(s.field.Elem())
		p.Elem().Set(v)
		fv.Set(p)
		return
	}
	fv.Set(v)
}

// valueCodec converts between a Go value and a normalized leaf value.
type valueCodec interface {
	toNormalized(v reflect.Value) (any, error)
	fromNormalized(val any) (reflect.Value, error)
}

func (c *Context) newValueCodec(t *schema.Type, goType reflect.Type) (valueCodec, error) {
	switch t.Kind {
	case schema.TypeUnion:
		return c.newUnionCodec(t, goType)
	case schema.TypeEnumeration:
		return newEnumCodec(t, goType)
	case schema.TypeBits:
		return newBitsCodec(t, goType)
	case schema.TypeIdentityRef:
		if goType.Kind() != reflect.Interface && !binding.IsIdentity(goType) {
			return nil, fmt.Errorf("identityref needs an identity or interface type, not %s", goType)
		}
		return &identityCodec{ctx: c, typ: goType, base: t.Base}, nil
	case schema.TypeInstanceIdentifier:
		if goType != iidPtrType {
			return nil, fmt.Errorf("instance-identifier needs %s, not %s", iidPtrType, goType)
		}
		return &iidCodec{ctx: c}, nil
	}
	norm, ok := normTypes[t.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported type %s", t)
	}
	if goType.Kind() != norm.Kind() || !goType.ConvertibleTo(norm) || !norm.ConvertibleTo(goType) {
		return nil, fmt.Errorf("%s cannot hold a %s value", goType, t)
	}
	return &scalarCodec{typ: goType, norm: norm, kind: t.Kind, digits: t.FractionDigits}, nil
}

type scalarCodec struct {
	typ    reflect.Type
	norm   reflect.Type
	kind   schema.TypeKind
	digits uint8
}

func (c *scalarCodec) toNormalized(v reflect.Value) (any, error) {
	out := v.Convert(c.norm).Interface()
	if d, ok := out.(normalized.Decimal64); ok && d.Scale != c.digits {
		return nil, illegalArgument("decimal64 %s does not have %d fraction digits", d, c.digits)
	}
	return out, nil
}

func (c *scalarCodec) fromNormalized(val any) (reflect.Value, error) {
	rv := reflect.ValueOf(val)
	if !rv.IsValid() || rv.Type() != c.norm {
		return reflect.Value{}, illegalArgument("value %s is not a valid %s", normalized.FormatValue(val), c.kind)
	}
	if d, ok := val.(normalized.Decimal64); ok && d.Scale != c.digits {
		return reflect.Value{}, illegalArgument("decimal64 %s does not have %d fraction digits", d, c.digits)
	}
	return rv.Convert(c.typ), nil
}

// enumCodec binds an enumeration to a type implementing the text
// marshaling interfaces, or to a string type holding the enum name.
type enumCodec struct {
	typ   reflect.Type
	names []string
	text  bool
}

func newEnumCodec(t *schema.Type, goType reflect.Type) (*enumCodec, error) {
	c := &enumCodec{typ: goType, names: t.Enum}
	switch {
	case goType.Implements(textMarshaler) && reflect.PointerTo(goType).Implements(textUnmarshaler):
		c.text = true
	case goType.Kind() == reflect.String:
	default:
		return nil, fmt.Errorf("enumeration needs a string type or a text marshaler, not %s", goType)
	}
	return c, nil
}

func (c *enumCodec) toNormalized(v reflect.Value) (any, error) {
	var s string
	if c.text {
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, illegalArgument("cannot marshal %s: %v", c.typ, err)
		}
		s = string(b)
	} else {
		s = v.String()
	}
	if !slices.Contains(c.names, s) {
		return nil, illegalArgument("%q is not a value of enumeration %s", s, c.typ)
	}
	return s, nil
}

func (c *enumCodec) fromNormalized(val any) (reflect.Value, error) {
	s, ok := val.(string)
	if !ok || !slices.Contains(c.names, s) {
		return reflect.Value{}, illegalArgument("value %s is not a value of enumeration %s", normalized.FormatValue(val), c.typ)
	}
	if !c.text {
		return reflect.ValueOf(s).Convert(c.typ), nil
	}
	p := reflect.New(c.typ)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, illegalArgument("cannot unmarshal %q into %s: %v", s, c.typ, err)
	}
	return p.Elem(), nil
}

// bitsCodec binds bits to normalized.Bits or to a struct with one bool
// field per bit, tagged with the bit name.
type bitsCodec struct {
	typ    reflect.Type
	names  []string
	fields map[string][]int
}

func newBitsCodec(t *schema.Type, goType reflect.Type) (*bitsCodec, error) {
	c := &bitsCodec{typ: goType, names: t.Bits}
	if goType == bitsType {
		return c, nil
	}
	info, err := binding.Struct(goType)
	if err != nil {
		return nil, err
	}
	c.fields = make(map[string][]int, len(info.Fields))
	for _, f := range info.Fields {
		if f.Type.Kind() != reflect.Bool {
			return nil, fmt.Errorf("bit field %s.%s must be a bool", goType, f.Name)
		}
		if !slices.Contains(t.Bits, f.Local) {
			return nil, fmt.Errorf("%s has no bit %q", t, f.Local)
		}
		c.fields[f.Local] = f.Index
	}
	for _, b := range t.Bits {
		if _, ok := c.fields[b]; !ok {
			return nil, fmt.Errorf("%s has no field for bit %q", goType, b)
		}
	}
	return c, nil
}

func (c *bitsCodec) toNormalized(v reflect.Value) (any, error) {
	if c.fields == nil {
		b := v.Interface().(normalized.Bits)
		for _, name := range b {
			if !slices.Contains(c.names, name) {
				return nil, illegalArgument("%q is not a defined bit", name)
			}
		}
		return normalized.NewBits(b...), nil
	}
	var set []string
	for name, idx := range c.fields {
		if v.FieldByIndex(idx).Bool() {
			set = append(set, name)
		}
	}
	return normalized.NewBits(set...), nil
}

func (c *bitsCodec) fromNormalized(val any) (reflect.Value, error) {
	b, ok := val.(normalized.Bits)
	if !ok {
		return reflect.Value{}, illegalArgument("value %s is not a bits value", normalized.FormatValue(val))
	}
	for _, name := range b {
		if !slices.Contains(c.names, name) {
			return reflect.Value{}, illegalArgument("%q is not a defined bit", name)
		}
	}
	if c.fields == nil {
		return reflect.ValueOf(normalized.NewBits(b...)), nil
	}
	out := reflect.New(c.typ).Elem()
	for _, name := range b {
		out.FieldByIndex(c.fields[name]).SetBool(true)
	}
	return out, nil
}

type identityCodec struct {
	ctx  *Context
	typ  reflect.Type
	base qname.QName
}

func (c *identityCodec) toNormalized(v reflect.Value) (any, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	name := binding.TypeName(v.Type())
	id, err := c.ctx.reg.IdentityByBinding(name)
	if err != nil {
		return nil, illegalArgument("%s is not a known identity", name)
	}
	if !c.ctx.derivesFrom(id, c.base) {
		return nil, illegalArgument("identity %s is not derived from %s", id.QName, c.base)
	}
	return id.QName, nil
}

func (c *identityCodec) fromNormalized(val any) (reflect.Value, error) {
	q, ok := val.(qname.QName)
	if !ok {
		return reflect.Value{}, illegalArgument("value %s is not an identity", normalized.FormatValue(val))
	}
	if _, ok := c.ctx.reg.FindModule(q.Module()); !ok {
		return reflect.Value{}, &MissingSchemaError{Module: q.Module()}
	}
	id, err := c.ctx.reg.Identity(q)
	if err != nil {
		return reflect.Value{}, illegalArgument("%s is not a known identity", q)
	}
	if !c.ctx.derivesFrom(id, c.base) {
		return reflect.Value{}, illegalArgument("identity %s is not derived from %s", q, c.base)
	}
	t, err := c.ctx.loadType(id.Binding)
	if err != nil {
		return reflect.Value{}, err
	}
	if c.typ.Kind() != reflect.Interface {
		if t != c.typ {
			return reflect.Value{}, illegalArgument("identity %s is bound to %s, not %s", q, binding.TypeName(t), binding.TypeName(c.typ))
		}
		return reflect.Zero(t), nil
	}
	if !t.Implements(c.typ) {
		return reflect.Value{}, illegalArgument("%s does not implement %s", binding.TypeName(t), c.typ)
	}
	out := reflect.New(c.typ).Elem()
	out.Set(reflect.Zero(t))
	return out, nil
}

type iidCodec struct {
	ctx *Context
}

func (c *iidCodec) toNormalized(v reflect.Value) (any, error) {
	return c.ctx.ToYangInstanceIdentifier(v.Interface().(*binding.InstanceIdentifier))
}

func (c *iidCodec) fromNormalized(val any) (reflect.Value, error) {
	p, ok := val.(normalized.InstanceIdentifier)
	if !ok {
		return reflect.Value{}, illegalArgument("value %s is not an instance identifier", normalized.FormatValue(val))
	}
	id, err := c.ctx.FromYangInstanceIdentifier(p)
	if err != nil {
		return reflect.Value{}, err
	}
	if id == nil {
		return reflect.Value{}, illegalArgument("%s has no binding representation", p)
	}
	return reflect.ValueOf(id), nil
}

// unionCodec binds a union to a struct with one tagged field per member,
// in member order. Exactly one field is set.
type unionCodec struct {
	typ     reflect.Type
	members []unionMember
}

type unionMember struct {
	index []int
	slot  slot
	kind  schema.TypeKind
	codec valueCodec
}

func (c *Context) newUnionCodec(t *schema.Type, goType reflect.Type) (*unionCodec, error) {
	info, err := binding.Struct(goType)
	if err != nil {
		return nil, err
	}
	if len(info.Fields) != len(t.Members) {
		return nil, fmt.Errorf("%s has %d fields for %d union members", goType, len(info.Fields), len(t.Members))
	}
	u := &unionCodec{typ: goType}
	for i, f := range info.Fields {
		s, err := newSlot(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", goType, f.Name, err)
		}
		vc, err := c.newValueCodec(t.Members[i], s.elem())
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", goType, f.Name, err)
		}
		u.members = append(u.members, unionMember{index: f.Index, slot: s, kind: t.Members[i].Kind, codec: vc})
	}
	return u, nil
}

func (c *unionCodec) toNormalized(v reflect.Value) (any, error) {
	for _, m := range c.members {
		if ev, ok := m.slot.get(v.FieldByIndex(m.index)); ok {
			return m.codec.toNormalized(ev)
		}
	}
	return nil, illegalArgument("union %s has no member set", c.typ)
}

// fromNormalized picks the first member accepting val. Members with a
// distinct value representation are tried first, then enumerations, then
// strings, so that a string only lands in a string member when no enum
// names it.
func (c *unionCodec) fromNormalized(val any) (reflect.Value, error) {
	passes := []func(schema.TypeKind) bool{
		func(k schema.TypeKind) bool { return k != schema.TypeEnumeration && k != schema.TypeString },
		func(k schema.TypeKind) bool { return k == schema.TypeEnumeration },
		func(k schema.TypeKind) bool { return k == schema.TypeString },
	}
	for _, accept := range passes {
		for _, m := range c.members {
			if !accept(m.kind) {
				continue
			}
			ev, err := m.codec.fromNormalized(val)
			if err != nil {
				var missing *MissingClassInLoadingStrategyError
				if errors.As(err, &missing) {
					return reflect.Value{}, err
				}
				continue
			}
			out := reflect.New(c.typ).Elem()
			m.slot.set(out.FieldByIndex(m.index), ev)
			return out, nil
		}
	}
	return reflect.Value{}, illegalArgument("value %s matches no member of union %s", normalized.FormatValue(val), c.typ)
}
