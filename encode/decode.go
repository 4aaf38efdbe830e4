package encode

import (
	"encoding/base64"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

// decoder rebuilds normalized trees from plain document values, as decoded
// from JSON, CBOR or a protobuf Struct.
type decoder struct {
	reg schema.Registry
}

func (d *decoder) document(doc map[string]any) (normalized.Node, error) {
	if len(doc) != 1 {
		return nil, errorf("", ErrUnsupportedRoot, "document holds %d members, want 1", len(doc))
	}
	for name, v := range doc {
		q, err := d.qualify(name, qname.Module{})
		if err != nil {
			return nil, err
		}
		sn, ok := d.reg.TopLevel(q)
		if !ok {
			return nil, errorf(name, ErrUnknownMember, "no top level node %s", q)
		}
		return d.node(sn, v)
	}
	panic("unreachable")
}

// qualify resolves a member name. Unqualified names inherit parent, which
// is the zero module at the top level where qualification is mandatory.
func (d *decoder) qualify(name string, parent qname.Module) (qname.QName, error) {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		if parent == (qname.Module{}) {
			return qname.QName{}, errorf(name, ErrUnknownMember, "member name is not module qualified")
		}
		return qname.Create(parent.Namespace, string(parent.Revision), name)
	}
	m, found := d.reg.ModuleByName(prefix)
	if !found {
		return qname.QName{}, errorf(name, ErrMissingModule, "module %q", prefix)
	}
	return qname.Create(m.QName.Namespace, string(m.QName.Revision), local)
}

func (d *decoder) node(sn *schema.Node, v any) (normalized.Node, error) {
	path := sn.Path().String()
	switch sn.Kind {
	case schema.KindContainer, schema.KindNotification, schema.KindInput, schema.KindOutput:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, errorf(path, ErrBadValue, "expected an object, got %T", v)
		}
		kids, err := d.children(sn, obj)
		if err != nil {
			return nil, err
		}
		return normalized.NewContainer(sn.QName, kids...), nil
	case schema.KindList:
		arr, ok := v.([]any)
		if !ok {
			return nil, errorf(path, ErrBadValue, "expected an array, got %T", v)
		}
		if sn.Keyed() {
			return d.mapNode(sn, arr)
		}
		entries := make([]*normalized.UnkeyedListEntry, 0, len(arr))
		for _, e := range arr {
			obj, ok := e.(map[string]any)
			if !ok {
				return nil, errorf(path, ErrBadValue, "expected an object entry, got %T", e)
			}
			kids, err := d.children(sn, obj)
			if err != nil {
				return nil, err
			}
			entries = append(entries, normalized.NewUnkeyedListEntry(sn.QName, kids...))
		}
		return normalized.NewUnkeyedList(sn.QName, entries...), nil
	case schema.KindLeaf:
		val, err := d.value(sn.Type, v, sn.QName.Module(), false)
		if err != nil {
			return nil, errorf(path, err, "leaf")
		}
		return normalized.NewLeaf(sn.QName, val), nil
	case schema.KindLeafList:
		arr, ok := v.([]any)
		if !ok {
			return nil, errorf(path, ErrBadValue, "expected an array, got %T", v)
		}
		entries := make([]*normalized.LeafSetEntry, 0, len(arr))
		for _, e := range arr {
			val, err := d.value(sn.Type, e, sn.QName.Module(), false)
			if err != nil {
				return nil, errorf(path, err, "leaf-list entry")
			}
			entries = append(entries, normalized.NewLeafSetEntry(sn.QName, val))
		}
		if sn.Ordered {
			return normalized.NewOrderedLeafSet(sn.QName, entries...), nil
		}
		return normalized.NewLeafSet(sn.QName, entries...), nil
	case schema.KindAnyXML:
		s, ok := v.(string)
		if !ok {
			return nil, errorf(path, ErrBadValue, "expected an anyxml string, got %T", v)
		}
		return normalized.NewAnyXML(sn.QName, s), nil
	}
	return nil, errorf(path, ErrUnsupportedRoot, "%s cannot be decoded", sn.Kind)
}

func (d *decoder) mapNode(sn *schema.Node, arr []any) (normalized.Node, error) {
	path := sn.Path().String()
	entries := make([]*normalized.MapEntry, 0, len(arr))
	for _, e := range arr {
		obj, ok := e.(map[string]any)
		if !ok {
			return nil, errorf(path, ErrBadValue, "expected an object entry, got %T", e)
		}
		kids, err := d.children(sn, obj)
		if err != nil {
			return nil, err
		}
		preds := make([]normalized.KeyValue, 0, len(sn.Keys))
		for _, k := range sn.Keys {
			i := slices.IndexFunc(kids, func(n normalized.Node) bool { return n.Name().NodeType() == k })
			leaf, ok := kidAt(kids, i).(*normalized.Leaf)
			if !ok {
				return nil, errorf(path, ErrBadValue, "entry lacks key %s", k.LocalName())
			}
			preds = append(preds, normalized.KV(k, leaf.Value()))
		}
		id := normalized.NewNodeIdentifierWithPredicates(sn.QName, preds...)
		entries = append(entries, normalized.NewMapEntry(id, kids...))
	}
	if sn.Ordered {
		return normalized.NewOrderedMap(sn.QName, entries...), nil
	}
	return normalized.NewMap(sn.QName, entries...), nil
}

func kidAt(kids []normalized.Node, i int) normalized.Node {
	if i < 0 {
		return nil
	}
	return kids[i]
}

// choiceGroup collects decoded children, nesting those found through
// choices under a choice node per choice.
type choiceGroup struct {
	kids    []normalized.Node
	order   []qname.QName
	choices map[qname.QName]*choiceGroup
}

func (g *choiceGroup) add(chain []*schema.Node, n normalized.Node) {
	if len(chain) == 0 {
		g.kids = append(g.kids, n)
		return
	}
	q := chain[0].QName
	if g.choices == nil {
		g.choices = make(map[qname.QName]*choiceGroup)
	}
	sub, ok := g.choices[q]
	if !ok {
		sub = &choiceGroup{}
		g.choices[q] = sub
		g.order = append(g.order, q)
	}
	sub.add(chain[1:], n)
}

func (g *choiceGroup) nodes() []normalized.Node {
	out := g.kids
	for _, q := range g.order {
		out = append(out, normalized.NewChoice(q, g.choices[q].nodes()...))
	}
	return out
}

func (d *decoder) children(parent *schema.Node, obj map[string]any) ([]normalized.Node, error) {
	var g choiceGroup
	for _, name := range slices.Sorted(maps.Keys(obj)) {
		q, err := d.qualify(name, parent.QName.Module())
		if err != nil {
			return nil, err
		}
		chain, sn, ok := locate(parent, q)
		if !ok {
			return nil, errorf(parent.Path().String(), ErrUnknownMember, "%s has no child %s", parent, name)
		}
		n, err := d.node(sn, obj[name])
		if err != nil {
			return nil, err
		}
		g.add(chain, n)
	}
	return g.nodes(), nil
}

// locate finds data child q of n, returning the choices crossed to reach
// it.
func locate(n *schema.Node, q qname.QName) ([]*schema.Node, *schema.Node, bool) {
	if c, ok := n.DataChild(q); ok && c.Kind != schema.KindChoice && c.Kind != schema.KindCase {
		return nil, c, true
	}
	for _, ch := range n.AllChildren() {
		if ch.Kind != schema.KindChoice {
			continue
		}
		for _, cs := range ch.Cases() {
			if chain, t, ok := locate(cs, q); ok {
				return append([]*schema.Node{ch}, chain...), t, true
			}
		}
	}
	return nil, nil, false
}

// value converts v to the normalized representation of type t. Lexical
// values come from instance identifier predicates, where every value is a
// string.
func (d *decoder) value(t *schema.Type, v any, mod qname.Module, lexical bool) (any, error) {
	if t == nil {
		return nil, errorf("", ErrBadValue, "leaf has no type")
	}
	switch t.Kind {
	case schema.TypeString:
		return asString(v)
	case schema.TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		if s, ok := v.(string); ok && lexical {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errorf("", ErrBadValue, "invalid boolean %q", s)
			}
			return b, nil
		}
		return nil, errorf("", ErrBadValue, "expected a boolean, got %T", v)
	case schema.TypeInt8, schema.TypeInt16, schema.TypeInt32, schema.TypeInt64:
		return d.signed(t.Kind, v, lexical)
	case schema.TypeUint8, schema.TypeUint16, schema.TypeUint32, schema.TypeUint64:
		return d.unsigned(t.Kind, v, lexical)
	case schema.TypeDecimal64:
		s, err := numberText(v, true)
		if err != nil {
			return nil, err
		}
		dv, err := normalized.ParseDecimal64(s, t.FractionDigits)
		if err != nil {
			return nil, errorf("", ErrBadValue, "%v", err)
		}
		return dv, nil
	case schema.TypeEmpty:
		if arr, ok := v.([]any); ok && len(arr) == 1 && arr[0] == nil {
			return normalized.Empty{}, nil
		}
		return nil, errorf("", ErrBadValue, "expected [null] for an empty leaf")
	case schema.TypeBinary:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, errorf("", ErrBadValue, "invalid base64: %v", err)
		}
		return b, nil
	case schema.TypeBits:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		names := strings.Fields(s)
		for _, n := range names {
			if len(t.Bits) > 0 && !slices.Contains(t.Bits, n) {
				return nil, errorf("", ErrBadValue, "unknown bit %q", n)
			}
		}
		return normalized.NewBits(names...), nil
	case schema.TypeEnumeration:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		if len(t.Enum) > 0 && !slices.Contains(t.Enum, s) {
			return nil, errorf("", ErrBadValue, "%q is not an enumeration value", s)
		}
		return s, nil
	case schema.TypeIdentityRef:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		q, err := d.qualify(s, mod)
		if err != nil {
			return nil, err
		}
		if _, err := d.reg.Identity(q); err != nil {
			return nil, errorf("", ErrBadValue, "identity %s: %v", s, err)
		}
		return q, nil
	case schema.TypeUnion:
		return d.union(t, v, mod, lexical)
	case schema.TypeInstanceIdentifier:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		return d.instanceIdentifier(s)
	}
	return nil, errorf("", ErrBadValue, "unsupported type %s", t.Kind)
}

// union tries members with their own representation first, then
// enumerations, then strings.
func (d *decoder) union(t *schema.Type, v any, mod qname.Module, lexical bool) (any, error) {
	passes := []func(schema.TypeKind) bool{
		func(k schema.TypeKind) bool { return k != schema.TypeEnumeration && k != schema.TypeString },
		func(k schema.TypeKind) bool { return k == schema.TypeEnumeration },
		func(k schema.TypeKind) bool { return k == schema.TypeString },
	}
	for _, accept := range passes {
		for _, m := range t.Members {
			if !accept(m.Kind) {
				continue
			}
			if val, err := d.value(m, v, mod, lexical); err == nil {
				return val, nil
			}
		}
	}
	return nil, errorf("", ErrBadValue, "value matches no member of %s", t)
}

var intBits = map[schema.TypeKind]int{
	schema.TypeInt8: 8, schema.TypeInt16: 16, schema.TypeInt32: 32, schema.TypeInt64: 64,
	schema.TypeUint8: 8, schema.TypeUint16: 16, schema.TypeUint32: 32, schema.TypeUint64: 64,
}

func (d *decoder) signed(k schema.TypeKind, v any, lexical bool) (any, error) {
	bits := intBits[k]
	s, err := numberText(v, lexical || bits == 64)
	if err != nil {
		return nil, err
	}
	i, err := strconv.ParseInt(s, 10, bits)
	if err != nil {
		return nil, errorf("", ErrBadValue, "invalid %s %q", k, s)
	}
	switch bits {
	case 8:
		return int8(i), nil
	case 16:
		return int16(i), nil
	case 32:
		return int32(i), nil
	}
	return i, nil
}

func (d *decoder) unsigned(k schema.TypeKind, v any, lexical bool) (any, error) {
	bits := intBits[k]
	s, err := numberText(v, lexical || bits == 64)
	if err != nil {
		return nil, err
	}
	u, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return nil, errorf("", ErrBadValue, "invalid %s %q", k, s)
	}
	switch bits {
	case 8:
		return uint8(u), nil
	case 16:
		return uint16(u), nil
	case 32:
		return uint32(u), nil
	}
	return u, nil
}

// numberText returns the decimal text of a decoded number. Strings are
// accepted only when quoted is set.
func numberText(v any, quoted bool) (string, error) {
	switch x := v.(type) {
	case json.Number:
		return string(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		if x != math.Trunc(x) {
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		}
		return strconv.FormatFloat(x, 'f', 0, 64), nil
	case string:
		if quoted {
			return x, nil
		}
	}
	return "", errorf("", ErrBadValue, "expected a number, got %T", v)
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errorf("", ErrBadValue, "expected a string, got %T", v)
	}
	return s, nil
}
