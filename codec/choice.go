package codec

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

type caseEntry struct {
	schema *schema.Node
	typ    reflect.Type
}

// choiceNode codes a choice. Its dispatch tables are built once, when every
// case type has been loaded.
type choiceNode struct {
	ctx    *Context
	schema *schema.Node
	iface  reflect.Type

	cases   []*caseEntry
	byType  map[reflect.Type]*caseEntry
	byChild map[qname.QName]*caseEntry
	// byChildType holds child types bound in exactly one case; ambiguous
	// holds the others with their candidate cases sorted by type name.
	byChildType map[reflect.Type]*caseEntry
	ambiguous   map[reflect.Type][]*caseEntry
	warned      sync.Map

	addr Addressability
}

var _ TreeNode = (*choiceNode)(nil)

func newChoiceNode(c *Context, s *schema.Node, iface reflect.Type) (*choiceNode, error) {
	if iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("codec: choice %s needs an interface, not %s", s.QName, iface)
	}
	ch := &choiceNode{
		ctx:         c,
		schema:      s,
		iface:       iface,
		byType:      make(map[reflect.Type]*caseEntry),
		byChild:     make(map[qname.QName]*caseEntry),
		byChildType: make(map[reflect.Type]*caseEntry),
		ambiguous:   make(map[reflect.Type][]*caseEntry),
		addr:        addressabilityOf([]*schema.Node{s}),
	}
	candidates := make(map[reflect.Type][]*caseEntry)
	for _, cs := range s.Cases() {
		t, err := c.loadType(cs.Binding)
		if err != nil {
			return nil, err
		}
		if !reflect.PointerTo(t).Implements(iface) {
			return nil, fmt.Errorf("codec: case %s does not implement %s", binding.TypeName(t), iface)
		}
		info, err := binding.Struct(t)
		if err != nil {
			return nil, err
		}
		e := &caseEntry{schema: cs, typ: t}
		ch.cases = append(ch.cases, e)
		ch.byType[t] = e
		for _, child := range cs.AllChildren() {
			ch.byChild[child.QName] = e
		}
		for _, child := range cs.Children {
			f, ok := info.Field(child.QName.LocalName())
			if !ok {
				continue
			}
			switch child.Kind {
			case schema.KindContainer:
				ct := binding.Deref(f.Type)
				candidates[ct] = append(candidates[ct], e)
			case schema.KindList:
				if f.Type.Kind() == reflect.Slice {
					ct := binding.Deref(f.Type.Elem())
					candidates[ct] = append(candidates[ct], e)
				}
			}
		}
	}
	for t, list := range candidates {
		if len(list) == 1 {
			ch.byChildType[t] = list[0]
			continue
		}
		slices.SortFunc(list, func(a, b *caseEntry) int {
			return strings.Compare(binding.TypeName(a.typ), binding.TypeName(b.typ))
		})
		ch.ambiguous[t] = list
	}
	return ch, nil
}

// legacyCaseTieBreak picks the case for a child type bound in several
// cases: the case whose type name sorts first. The namespace of the cases
// plays no part.
func legacyCaseTieBreak(candidates []*caseEntry) *caseEntry {
	return slices.MinFunc(candidates, func(a, b *caseEntry) int {
		return strings.Compare(binding.TypeName(a.typ), binding.TypeName(b.typ))
	})
}

func (ch *choiceNode) caseByType(t reflect.Type) (*caseEntry, bool) {
	t = binding.Deref(t)
	if e, ok := ch.byType[t]; ok {
		return e, true
	}
	return ch.substitute(t)
}

// substitute accepts a type implementing the choice interface which is not
// bound to any of its cases but has exactly the fields of one of them. The
// matching case's schema is used to code it.
func (ch *choiceNode) substitute(t reflect.Type) (*caseEntry, bool) {
	if t.Kind() != reflect.Struct || !reflect.PointerTo(t).Implements(ch.iface) {
		return nil, false
	}
	info, err := binding.Struct(t)
	if err != nil {
		return nil, false
	}
	for _, e := range ch.cases {
		if sameShape(info, e.schema) {
			ch.ctx.log.Debug("substituting case",
				zap.String("type", binding.TypeName(t)),
				zap.String("case", binding.TypeName(e.typ)))
			return &caseEntry{schema: e.schema, typ: t}, true
		}
	}
	return nil, false
}

func sameShape(info *binding.StructInfo, cs *schema.Node) bool {
	if len(info.Fields) != len(cs.Children) {
		return false
	}
	for _, child := range cs.Children {
		if _, ok := info.Field(child.QName.LocalName()); !ok {
			return false
		}
	}
	return true
}

// caseForChildType returns the case holding a child bound to t.
func (ch *choiceNode) caseForChildType(t reflect.Type) (*caseEntry, bool) {
	t = binding.Deref(t)
	if e, ok := ch.byChildType[t]; ok {
		return e, true
	}
	cands, ok := ch.ambiguous[t]
	if !ok {
		return nil, false
	}
	e := legacyCaseTieBreak(cands)
	if _, seen := ch.warned.LoadOrStore(t, struct{}{}); !seen {
		names := make([]string, len(cands))
		for i, c := range cands {
			names[i] = binding.TypeName(c.typ)
		}
		ch.ctx.log.Warn("ambiguous case resolution",
			zap.String("choice", ch.schema.QName.String()),
			zap.String("type", binding.TypeName(t)),
			zap.Strings("candidates", names),
			zap.String("selected", binding.TypeName(e.typ)))
	}
	return e, true
}

// childThrough resolves the child bound to t inside case cs and prepends
// this choice to the crossed choices.
func (ch *choiceNode) childThrough(cs *caseEntry, t reflect.Type) (*dataNode, []*schema.Node, error) {
	cn, err := ch.ctx.dataNode(cs.schema, cs.typ)
	if err != nil {
		return nil, nil, err
	}
	child, crossed, err := cn.childByType(t, nil)
	if err != nil {
		return nil, nil, err
	}
	return child, append([]*schema.Node{ch.schema}, crossed...), nil
}

func (ch *choiceNode) Schema() *schema.Node                { return ch.schema }
func (ch *choiceNode) BindingType() reflect.Type           { return ch.iface }
func (ch *choiceNode) ChildAddressability() Addressability { return ch.addr }

func (ch *choiceNode) CreateCachingCodec(types ...reflect.Type) CachingCodec {
	return newCachingCodec(ch, types)
}

func (ch *choiceNode) Serialize(obj any) (normalized.Node, error) {
	return ch.serializeWith(&serializer{}, obj)
}

func (ch *choiceNode) serializeWith(s *serializer, obj any) (normalized.Node, error) {
	return ch.serialize(s, reflect.ValueOf(obj))
}

// serialize codes v, the case object held by a choice field.
func (ch *choiceNode) serialize(s *serializer, v reflect.Value) (normalized.Node, error) {
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, illegalArgument("choice %s needs a non-nil case pointer, got %s", ch.schema.QName, v)
	}
	e, ok := ch.caseByType(v.Type())
	if !ok {
		return nil, ch.ctx.missingChild(v.Type(), "%s is not a valid case of %s", binding.ShortName(v.Type()), ch.schema)
	}
	cn, err := ch.ctx.dataNode(e.schema, e.typ)
	if err != nil {
		return nil, err
	}
	kids, err := cn.serializeChildren(s, v)
	if err != nil {
		return nil, err
	}
	return normalized.NewChoice(ch.schema.QName, kids...), nil
}

func (ch *choiceNode) Deserialize(n normalized.Node) (any, error) {
	c, ok := n.(*normalized.Choice)
	if !ok {
		return nil, illegalArgument("Expecting ChoiceNode, not %s", n.Kind())
	}
	v, err := ch.deserialize(c)
	if err != nil || !v.IsValid() {
		return nil, err
	}
	return v.Interface(), nil
}

// deserialize picks the case from the first child. An empty choice yields
// the zero Value.
func (ch *choiceNode) deserialize(c *normalized.Choice) (reflect.Value, error) {
	kids := c.Children()
	if len(kids) == 0 {
		return reflect.Value{}, nil
	}
	q := kids[0].Name().NodeType()
	e, ok := ch.byChild[q]
	if !ok {
		return reflect.Value{}, ch.ctx.unknownChild(q, ch.schema.String())
	}
	cn, err := ch.ctx.dataNode(e.schema, e.typ)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(e.typ)
	if err := cn.deserializeChildren(kids, out); err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

func (ch *choiceNode) StreamChild(t reflect.Type) (TreeNode, error) {
	e, ok := ch.caseForChildType(t)
	if !ok {
		return nil, ch.ctx.missingChild(t, "Argument %s is not valid child of %s", binding.ShortName(t), ch.schema)
	}
	child, _, err := ch.childThrough(e, t)
	if err != nil {
		return nil, err
	}
	return child, nil
}

func (ch *choiceNode) YangPathArgumentChild(arg normalized.PathArgument) (TreeNode, error) {
	q := arg.NodeType()
	e, ok := ch.byChild[q]
	if !ok {
		return nil, ch.ctx.unknownChild(q, ch.schema.String())
	}
	cn, err := ch.ctx.dataNode(e.schema, e.typ)
	if err != nil {
		return nil, err
	}
	return cn.YangPathArgumentChild(arg)
}

func (ch *choiceNode) BindingPathArgumentChild(step binding.Step) (TreeNode, error) {
	if step.CaseType() == nil {
		return ch.StreamChild(step.StepType())
	}
	e, ok := ch.caseByType(step.CaseType())
	if !ok {
		return nil, ch.ctx.missingChild(step.CaseType(), "case %s is not valid in %s", binding.ShortName(step.CaseType()), ch.schema)
	}
	child, _, err := ch.childThrough(e, step.StepType())
	if err != nil {
		return nil, err
	}
	return child, nil
}
