package encode

import (
	"strings"

	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

// iidScanner walks the text of an RFC 7951 instance identifier.
type iidScanner struct {
	s   string
	pos int
}

func (sc *iidScanner) done() bool { return sc.pos >= len(sc.s) }

func (sc *iidScanner) peek(c byte) bool {
	return sc.pos < len(sc.s) && sc.s[sc.pos] == c
}

func (sc *iidScanner) expect(c byte) error {
	if !sc.peek(c) {
		return errorf(sc.s, ErrBadValue, "expected %q at offset %d", c, sc.pos)
	}
	sc.pos++
	return nil
}

// name reads up to the next delimiter.
func (sc *iidScanner) name() (string, error) {
	start := sc.pos
	for sc.pos < len(sc.s) && !strings.ContainsRune("/[]=", rune(sc.s[sc.pos])) {
		sc.pos++
	}
	if sc.pos == start {
		return "", errorf(sc.s, ErrBadValue, "empty name at offset %d", start)
	}
	return strings.TrimSpace(sc.s[start:sc.pos]), nil
}

func (sc *iidScanner) quoted() (string, error) {
	if sc.done() || (sc.s[sc.pos] != '\'' && sc.s[sc.pos] != '"') {
		return "", errorf(sc.s, ErrBadValue, "expected a quoted value at offset %d", sc.pos)
	}
	q := sc.s[sc.pos]
	end := strings.IndexByte(sc.s[sc.pos+1:], q)
	if end < 0 {
		return "", errorf(sc.s, ErrBadValue, "unterminated value at offset %d", sc.pos)
	}
	v := sc.s[sc.pos+1 : sc.pos+1+end]
	sc.pos += end + 2
	return v, nil
}

// instanceIdentifier parses an RFC 7951 instance identifier, adding the
// choice and list steps a normalized path carries.
func (d *decoder) instanceIdentifier(s string) (normalized.InstanceIdentifier, error) {
	sc := &iidScanner{s: s}
	var (
		args []normalized.PathArgument
		cur  *schema.Node
		mod  qname.Module
	)
	if s == "/" {
		return normalized.NewInstanceIdentifier(), nil
	}
	for !sc.done() {
		if err := sc.expect('/'); err != nil {
			return normalized.InstanceIdentifier{}, err
		}
		name, err := sc.name()
		if err != nil {
			return normalized.InstanceIdentifier{}, err
		}
		q, err := d.qualify(name, mod)
		if err != nil {
			return normalized.InstanceIdentifier{}, err
		}
		var chain []*schema.Node
		var sn *schema.Node
		ok := false
		if cur == nil {
			sn, ok = d.reg.TopLevel(q)
		} else {
			chain, sn, ok = locate(cur, q)
		}
		if !ok {
			return normalized.InstanceIdentifier{}, errorf(s, ErrUnknownMember, "no schema node for %s", name)
		}
		for _, ch := range chain {
			args = append(args, normalized.NewNodeIdentifier(ch.QName))
		}
		args = append(args, normalized.NewNodeIdentifier(q))
		cur, mod = sn, q.Module()

		if !sc.peek('[') {
			continue
		}
		switch sn.Kind {
		case schema.KindList:
			id, err := d.listPredicates(sc, sn, mod)
			if err != nil {
				return normalized.InstanceIdentifier{}, err
			}
			args = append(args, id)
		case schema.KindLeafList:
			_ = sc.expect('[')
			if err := sc.expect('.'); err != nil {
				return normalized.InstanceIdentifier{}, err
			}
			if err := sc.expect('='); err != nil {
				return normalized.InstanceIdentifier{}, err
			}
			lit, err := sc.quoted()
			if err != nil {
				return normalized.InstanceIdentifier{}, err
			}
			if err := sc.expect(']'); err != nil {
				return normalized.InstanceIdentifier{}, err
			}
			v, err := d.value(sn.Type, lit, mod, true)
			if err != nil {
				return normalized.InstanceIdentifier{}, errorf(s, err, "leaf-list predicate")
			}
			args = append(args, normalized.NewNodeWithValue(q, v))
		default:
			return normalized.InstanceIdentifier{}, errorf(s, ErrBadValue, "%s takes no predicates", sn)
		}
	}
	return normalized.NewInstanceIdentifier(args...), nil
}

func (d *decoder) listPredicates(sc *iidScanner, list *schema.Node, mod qname.Module) (normalized.NodeIdentifierWithPredicates, error) {
	var preds []normalized.KeyValue
	for sc.peek('[') {
		sc.pos++
		name, err := sc.name()
		if err != nil {
			return normalized.NodeIdentifierWithPredicates{}, err
		}
		if err := sc.expect('='); err != nil {
			return normalized.NodeIdentifierWithPredicates{}, err
		}
		lit, err := sc.quoted()
		if err != nil {
			return normalized.NodeIdentifierWithPredicates{}, err
		}
		if err := sc.expect(']'); err != nil {
			return normalized.NodeIdentifierWithPredicates{}, err
		}
		k, err := d.qualify(name, mod)
		if err != nil {
			return normalized.NodeIdentifierWithPredicates{}, err
		}
		leaf, ok := list.DataChild(k)
		if !ok || leaf.Kind != schema.KindLeaf {
			return normalized.NodeIdentifierWithPredicates{}, errorf(sc.s, ErrUnknownMember, "%s has no key %s", list, name)
		}
		v, err := d.value(leaf.Type, lit, mod, true)
		if err != nil {
			return normalized.NodeIdentifierWithPredicates{}, errorf(sc.s, err, "predicate %s", name)
		}
		preds = append(preds, normalized.KV(k, v))
	}
	return normalized.NewNodeIdentifierWithPredicates(list.QName, preds...), nil
}
