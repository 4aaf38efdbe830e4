package encode

import (
	"bytes"
	"encoding/base64"
	"math/big"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

type member struct {
	name  string
	value any
}

// object is a document object keeping member order. Values are strings,
// bools, int64 and uint64 numbers, nil, []any and objects.
type object []member

func (o object) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(m.name)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// plain converts document values into maps and slices, the shape CBOR and
// structpb encoders take.
func plain(v any) any {
	switch x := v.(type) {
	case object:
		m := make(map[string]any, len(x))
		for _, mb := range x {
			m[mb.name] = plain(mb.value)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// renderer turns normalized nodes into document values.
type renderer struct {
	reg schema.Registry
}

func (r *renderer) document(n normalized.Node) (object, error) {
	switch n.(type) {
	case *normalized.MapEntry, *normalized.UnkeyedListEntry, *normalized.LeafSetEntry, *normalized.Choice:
		return nil, errorf(n.Name().String(), ErrUnsupportedRoot, "%s", n.Kind())
	}
	o := object{}
	if err := r.member(&o, "", n); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *renderer) moduleName(q qname.QName) (string, error) {
	m, ok := r.reg.FindModule(q.Module())
	if !ok {
		return "", errorf(q.String(), ErrMissingModule, "module %s", q.Module())
	}
	return m.Name, nil
}

// name qualifies q when its namespace differs from ns.
func (r *renderer) name(q qname.QName, ns string) (string, error) {
	if q.Namespace() == ns {
		return q.LocalName(), nil
	}
	m, err := r.moduleName(q)
	if err != nil {
		return "", err
	}
	return m + ":" + q.LocalName(), nil
}

// member appends n to o. Choices contribute their children.
func (r *renderer) member(o *object, ns string, n normalized.Node) error {
	if ch, ok := n.(*normalized.Choice); ok {
		for _, k := range ch.Children() {
			if err := r.member(o, ns, k); err != nil {
				return err
			}
		}
		return nil
	}
	q := n.Name().NodeType()
	name, err := r.name(q, ns)
	if err != nil {
		return err
	}
	v, err := r.nodeValue(n)
	if err != nil {
		return err
	}
	*o = append(*o, member{name: name, value: v})
	return nil
}

func (r *renderer) children(ns string, kids []normalized.Node) (object, error) {
	o := make(object, 0, len(kids))
	for _, k := range kids {
		if err := r.member(&o, ns, k); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (r *renderer) nodeValue(n normalized.Node) (any, error) {
	ns := n.Name().NodeType().Namespace()
	switch x := n.(type) {
	case *normalized.Container:
		return r.children(ns, x.Children())
	case *normalized.Map:
		arr := make([]any, 0, x.Len())
		for _, e := range x.Entries() {
			o, err := r.children(ns, e.Children())
			if err != nil {
				return nil, err
			}
			arr = append(arr, o)
		}
		return arr, nil
	case *normalized.UnkeyedList:
		arr := make([]any, 0, x.Len())
		for _, e := range x.Entries() {
			o, err := r.children(ns, e.Children())
			if err != nil {
				return nil, err
			}
			arr = append(arr, o)
		}
		return arr, nil
	case *normalized.LeafSet:
		arr := make([]any, 0, x.Len())
		for _, e := range x.Entries() {
			v, err := r.leafValue(e.Value())
			if err != nil {
				return nil, errorf(x.Name().String(), err, "leaf-list entry")
			}
			arr = append(arr, v)
		}
		return arr, nil
	case *normalized.Leaf:
		v, err := r.leafValue(x.Value())
		if err != nil {
			return nil, errorf(x.Name().String(), err, "leaf value")
		}
		return v, nil
	case *normalized.AnyXML:
		return x.Body(), nil
	}
	return nil, errorf(n.Name().String(), ErrUnsupportedRoot, "unexpected %s", n.Kind())
}

func (r *renderer) leafValue(v any) (any, error) {
	switch x := v.(type) {
	case string, bool:
		return x, nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case *big.Int:
		return x.String(), nil
	case normalized.Decimal64:
		return x.String(), nil
	case normalized.Empty:
		return []any{nil}, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(x), nil
	case normalized.Bits:
		return x.String(), nil
	case qname.QName:
		m, err := r.moduleName(x)
		if err != nil {
			return nil, err
		}
		return m + ":" + x.LocalName(), nil
	case normalized.InstanceIdentifier:
		return r.instanceIdentifier(x)
	}
	return nil, errorf("", ErrBadValue, "cannot render %T", v)
}

// literal renders v as it appears in an instance identifier predicate.
func (r *renderer) literal(v any) (string, error) {
	dv, err := r.leafValue(v)
	if err != nil {
		return "", err
	}
	switch x := dv.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	}
	return "", errorf("", ErrBadValue, "%s cannot be a predicate value", normalized.FormatValue(v))
}

// quote delimits a predicate literal. A literal holding both quote
// characters has no unescaped form and is refused.
func quote(s string) (string, error) {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'", nil
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, nil
	}
	return "", errorf("", ErrBadValue, "predicate value %q holds both quote characters", s)
}

// instanceIdentifier renders id in the RFC 7951 form. Choice steps are
// implied, and a list or leaf-list step followed by its entry collapses
// into the entry.
func (r *renderer) instanceIdentifier(id normalized.InstanceIdentifier) (string, error) {
	var b strings.Builder
	var cur *schema.Node
	ns := ""
	args := id.Args()
	for i, arg := range args {
		q := arg.NodeType()
		descend := true
		switch arg.(type) {
		case normalized.NodeIdentifierWithPredicates, normalized.NodeWithValue:
			if cur != nil && cur.QName == q {
				descend = false
			}
		}
		if descend {
			next, ok := stepChild(r.reg, cur, q)
			if !ok {
				return "", errorf(id.String(), ErrUnknownMember, "no schema node for %s", q)
			}
			cur = next
		}
		if cur.Kind == schema.KindChoice {
			continue
		}
		if _, plainID := arg.(normalized.NodeIdentifier); plainID && i+1 < len(args) && args[i+1].NodeType() == q {
			switch args[i+1].(type) {
			case normalized.NodeIdentifierWithPredicates, normalized.NodeWithValue:
				continue
			}
		}

		name, err := r.name(q, ns)
		if err != nil {
			return "", err
		}
		b.WriteByte('/')
		b.WriteString(name)
		ns = q.Namespace()

		switch a := arg.(type) {
		case normalized.NodeIdentifierWithPredicates:
			for _, p := range a.Predicates() {
				kn, err := r.name(p.Key, ns)
				if err != nil {
					return "", err
				}
				lit, err := r.literal(p.Value)
				if err != nil {
					return "", err
				}
				if lit, err = quote(lit); err != nil {
					return "", err
				}
				b.WriteString("[" + kn + "=" + lit + "]")
			}
		case normalized.NodeWithValue:
			lit, err := r.literal(a.Value)
			if err != nil {
				return "", err
			}
			if lit, err = quote(lit); err != nil {
				return "", err
			}
			b.WriteString("[.=" + lit + "]")
		}
	}
	if b.Len() == 0 {
		return "/", nil
	}
	return b.String(), nil
}

// stepChild returns the schema child q of n, or the top level node q when
// n is nil. Below a choice the child is looked up in its cases.
func stepChild(reg schema.Registry, n *schema.Node, q qname.QName) (*schema.Node, bool) {
	if n == nil {
		return reg.TopLevel(q)
	}
	if n.Kind == schema.KindChoice {
		cs, ok := n.CaseOf(q)
		if !ok {
			for _, c := range n.Cases() {
				if found, ok := schema.Child(c, q); ok {
					return found, true
				}
			}
			return nil, false
		}
		return cs.DataChild(q)
	}
	return schema.Child(n, q)
}
