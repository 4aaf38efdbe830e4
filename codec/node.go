package codec

import (
	"fmt"
	"reflect"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

// TreeNode is a node of the codec tree: the codec for one schema node and
// the Go type bound to it.
type TreeNode interface {
	Schema() *schema.Node
	BindingType() reflect.Type

	Serialize(obj any) (normalized.Node, error)
	Deserialize(n normalized.Node) (any, error)

	// StreamChild returns the codec of the child bound to t. Children
	// inside choices are found through the case holding them.
	StreamChild(t reflect.Type) (TreeNode, error)
	YangPathArgumentChild(arg normalized.PathArgument) (TreeNode, error)
	BindingPathArgumentChild(step binding.Step) (TreeNode, error)

	ChildAddressability() Addressability
	CreateCachingCodec(types ...reflect.Type) CachingCodec

	serializeWith(s *serializer, obj any) (normalized.Node, error)
}

// Addressability summarizes whether the children of a node can be
// addressed by an instance identifier.
type Addressability uint8

const (
	// Addressable: every child is a container or a list.
	Addressable Addressability = iota
	// Unaddressable: every child is a leaf, leaf-list or anyxml.
	Unaddressable
	Mixed
)

func (a Addressability) String() string {
	switch a {
	case Addressable:
		return "ADDRESSABLE"
	case Unaddressable:
		return "UNADDRESSABLE"
	}
	return "MIXED"
}

func addressabilityOf(children []*schema.Node) Addressability {
	var addressable, unaddressable bool
	for _, ch := range children {
		switch ch.Kind {
		case schema.KindContainer, schema.KindList:
			addressable = true
		case schema.KindLeaf, schema.KindLeafList, schema.KindAnyXML:
			unaddressable = true
		case schema.KindChoice:
			for _, cs := range ch.Cases() {
				if len(cs.AllChildren()) == 0 {
					continue
				}
				switch addressabilityOf(cs.AllChildren()) {
				case Addressable:
					addressable = true
				case Unaddressable:
					unaddressable = true
				default:
					addressable, unaddressable = true, true
				}
			}
		}
	}
	switch {
	case addressable && unaddressable:
		return Mixed
	case unaddressable:
		return Unaddressable
	}
	return Addressable
}

// serializer carries per call state through a serialization.
type serializer struct {
	cache *cachingCodec
}

func (s *serializer) leaf(f *fieldCodec, val any) *normalized.Leaf {
	if s.cache != nil && s.cache.cachesType(f.slot.elem()) {
		return s.cache.leaf(f.schema.QName, val)
	}
	return normalized.NewLeaf(f.schema.QName, val)
}

type fieldKind uint8

const (
	fieldLeaf fieldKind = iota
	fieldLeafList
	fieldAnyXML
	fieldContainer
	fieldList
	fieldChoice
)

// fieldCodec codes one own child of a data node.
type fieldCodec struct {
	kind   fieldKind
	field  binding.Field
	schema *schema.Node

	slot  slot
	value valueCodec
	// elem is the struct type of a container or list entry, the element
	// type of a leaf-list or the interface type of a choice.
	elem reflect.Type
}

func (c *Context) newFieldCodec(ch *schema.Node, f binding.Field) (*fieldCodec, error) {
	fc := &fieldCodec{field: f, schema: ch}
	t := f.Type
	switch ch.Kind {
	case schema.KindLeaf:
		s, err := newSlot(t)
		if err != nil {
			return nil, err
		}
		vc, err := c.newValueCodec(ch.Type, s.elem())
		if err != nil {
			return nil, err
		}
		fc.kind, fc.slot, fc.value = fieldLeaf, s, vc
	case schema.KindLeafList:
		if t.Kind() != reflect.Slice {
			return nil, fmt.Errorf("leaf-list %s needs a slice, not %s", ch.QName.LocalName(), t)
		}
		vc, err := c.newValueCodec(ch.Type, t.Elem())
		if err != nil {
			return nil, err
		}
		fc.kind, fc.value, fc.elem = fieldLeafList, vc, t.Elem()
	case schema.KindAnyXML:
		if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.String {
			return nil, fmt.Errorf("anyxml %s needs a string pointer, not %s", ch.QName.LocalName(), t)
		}
		fc.kind = fieldAnyXML
	case schema.KindContainer:
		if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("container %s needs a struct pointer, not %s", ch.QName.LocalName(), t)
		}
		fc.kind, fc.elem = fieldContainer, t.Elem()
	case schema.KindList:
		if t.Kind() != reflect.Slice || t.Elem().Kind() != reflect.Pointer || t.Elem().Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("list %s needs a slice of struct pointers, not %s", ch.QName.LocalName(), t)
		}
		fc.kind, fc.elem = fieldList, t.Elem().Elem()
	case schema.KindChoice:
		if t.Kind() != reflect.Interface {
			return nil, fmt.Errorf("choice %s needs an interface, not %s", ch.QName.LocalName(), t)
		}
		fc.kind, fc.elem = fieldChoice, t
	default:
		return nil, fmt.Errorf("%s cannot be held by a field", ch)
	}
	return fc, nil
}

func (f *fieldCodec) serialize(c *Context, s *serializer, fv reflect.Value) (normalized.Node, error) {
	q := f.schema.QName
	switch f.kind {
	case fieldLeaf:
		ev, ok := f.slot.get(fv)
		if !ok {
			return nil, nil
		}
		val, err := f.value.toNormalized(ev)
		if err != nil {
			return nil, fmt.Errorf("leaf %s: %w", q, err)
		}
		return s.leaf(f, val), nil
	case fieldLeafList:
		if fv.Len() == 0 {
			return nil, nil
		}
		entries := make([]*normalized.LeafSetEntry, 0, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			val, err := f.value.toNormalized(fv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("leaf-list %s: %w", q, err)
			}
			entries = append(entries, normalized.NewLeafSetEntry(q, val))
		}
		var ls *normalized.LeafSet
		if f.schema.Ordered {
			ls = normalized.NewOrderedLeafSet(q, entries...)
		} else {
			ls = normalized.NewLeafSet(q, entries...)
		}
		if ls.Len() != fv.Len() {
			return nil, illegalArgument("leaf-list %s has duplicate values", q)
		}
		return ls, nil
	case fieldAnyXML:
		if fv.IsNil() {
			return nil, nil
		}
		return normalized.NewAnyXML(q, fv.Elem().String()), nil
	case fieldContainer:
		if fv.IsNil() {
			return nil, nil
		}
		child, err := c.dataNode(f.schema, f.elem)
		if err != nil {
			return nil, err
		}
		return child.serialize(s, fv)
	case fieldList:
		return f.serializeList(c, s, fv)
	case fieldChoice:
		if fv.IsNil() {
			return nil, nil
		}
		ch, err := c.choiceNode(f.schema, f.elem)
		if err != nil {
			return nil, err
		}
		return ch.serialize(s, fv.Elem())
	}
	return nil, fmt.Errorf("unhandled field kind %d", f.kind)
}

func (f *fieldCodec) serializeList(c *Context, s *serializer, fv reflect.Value) (normalized.Node, error) {
	if fv.Len() == 0 {
		return nil, nil
	}
	q := f.schema.QName
	child, err := c.dataNode(f.schema, f.elem)
	if err != nil {
		return nil, err
	}
	nodes := make([]normalized.Node, 0, fv.Len())
	for i := 0; i < fv.Len(); i++ {
		e := fv.Index(i)
		if e.IsNil() {
			return nil, illegalArgument("list %s has a nil entry at %d", q, i)
		}
		n, err := child.serialize(s, e)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if child.key == nil {
		entries := make([]*normalized.UnkeyedListEntry, len(nodes))
		for i, n := range nodes {
			entries[i] = n.(*normalized.UnkeyedListEntry)
		}
		return normalized.NewUnkeyedList(q, entries...), nil
	}
	entries := make([]*normalized.MapEntry, len(nodes))
	for i, n := range nodes {
		entries[i] = n.(*normalized.MapEntry)
	}
	var m *normalized.Map
	if f.schema.Ordered {
		m = normalized.NewOrderedMap(q, entries...)
	} else {
		m = normalized.NewMap(q, entries...)
	}
	if m.Len() != len(entries) {
		return nil, illegalArgument("list %s has entries with duplicate keys", q)
	}
	return m, nil
}

func (f *fieldCodec) deserialize(c *Context, n normalized.Node, fv reflect.Value) error {
	q := f.schema.QName
	switch f.kind {
	case fieldLeaf:
		l, ok := n.(*normalized.Leaf)
		if !ok {
			return illegalArgument("Expecting LeafNode for %s, not %s", q, n.Kind())
		}
		ev, err := f.value.fromNormalized(l.Value())
		if err != nil {
			return fmt.Errorf("leaf %s: %w", q, err)
		}
		f.slot.set(fv, ev)
	case fieldLeafList:
		ls, ok := n.(*normalized.LeafSet)
		if !ok {
			return illegalArgument("Expecting LeafSetNode for %s, not %s", q, n.Kind())
		}
		if ls.Len() == 0 {
			return nil
		}
		out := reflect.MakeSlice(f.field.Type, 0, ls.Len())
		for _, e := range ls.Entries() {
			ev, err := f.value.fromNormalized(e.Value())
			if err != nil {
				return fmt.Errorf("leaf-list %s: %w", q, err)
			}
			out = reflect.Append(out, ev)
		}
		fv.Set(out)
	case fieldAnyXML:
		a, ok := n.(*normalized.AnyXML)
		if !ok {
			return illegalArgument("Expecting AnyxmlNode for %s, not %s", q, n.Kind())
		}
		p := reflect.New(f.field.Type.Elem())
		p.Elem().SetString(a.Body())
		fv.Set(p)
	case fieldContainer:
		child, err := c.dataNode(f.schema, f.elem)
		if err != nil {
			return err
		}
		v, err := child.deserialize(n)
		if err != nil {
			return err
		}
		fv.Set(v)
	case fieldList:
		child, err := c.dataNode(f.schema, f.elem)
		if err != nil {
			return err
		}
		var entries []normalized.Node
		switch l := n.(type) {
		case *normalized.Map:
			for _, e := range l.Entries() {
				entries = append(entries, e)
			}
		case *normalized.UnkeyedList:
			for _, e := range l.Entries() {
				entries = append(entries, e)
			}
		default:
			return illegalArgument("Expecting either a MapNode or an UnkeyedListNode, not %s", n.Kind())
		}
		if len(entries) == 0 {
			return nil
		}
		out := reflect.MakeSlice(f.field.Type, 0, len(entries))
		for _, e := range entries {
			v, err := child.deserialize(e)
			if err != nil {
				return err
			}
			out = reflect.Append(out, v)
		}
		fv.Set(out)
	case fieldChoice:
		cn, ok := n.(*normalized.Choice)
		if !ok {
			return illegalArgument("Expecting ChoiceNode for %s, not %s", q, n.Kind())
		}
		ch, err := c.choiceNode(f.schema, f.elem)
		if err != nil {
			return err
		}
		v, err := ch.deserialize(cn)
		if err != nil || !v.IsValid() {
			return err
		}
		fv.Set(v)
	}
	return nil
}

// dataNode codes a container, list entry, case, augmentation, notification
// or operation input or output.
type dataNode struct {
	ctx    *Context
	schema *schema.Node
	typ    reflect.Type
	info   *binding.StructInfo

	fields  []*fieldCodec
	byQName map[qname.QName]*fieldCodec
	// byType indexes container and list children by struct type.
	byType map[reflect.Type]*fieldCodec
	// augByName maps binding names to the augmentations of the node.
	augByName map[string]*schema.Node
	key       *keyCodec
	addr      Addressability
}

var _ TreeNode = (*dataNode)(nil)

func newDataNode(c *Context, s *schema.Node, t reflect.Type) (*dataNode, error) {
	if !s.IsDataContainer() {
		return nil, fmt.Errorf("codec: %s holds no data", s)
	}
	info, err := binding.Struct(t)
	if err != nil {
		return nil, fmt.Errorf("codec: %s: %w", s, err)
	}
	n := &dataNode{
		ctx:       c,
		schema:    s,
		typ:       t,
		info:      info,
		byQName:   make(map[qname.QName]*fieldCodec, len(s.Children)),
		byType:    make(map[reflect.Type]*fieldCodec),
		augByName: make(map[string]*schema.Node),
		addr:      addressabilityOf(s.AllChildren()),
	}
	for _, ch := range s.Children {
		f, ok := info.Field(ch.QName.LocalName())
		if !ok {
			return nil, fmt.Errorf("codec: %s has no field for %s", binding.TypeName(t), ch)
		}
		fc, err := c.newFieldCodec(ch, *f)
		if err != nil {
			return nil, fmt.Errorf("codec: %s.%s: %w", binding.ShortName(t), f.Name, err)
		}
		n.fields = append(n.fields, fc)
		n.byQName[ch.QName] = fc
		if fc.kind == fieldContainer || fc.kind == fieldList {
			n.byType[fc.elem] = fc
		}
	}
	for _, a := range s.Augmentations() {
		if a.Binding != "" {
			n.augByName[a.Binding] = a
		}
	}
	if s.Keyed() {
		if n.key, err = newKeyCodec(c, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (n *dataNode) Schema() *schema.Node                { return n.schema }
func (n *dataNode) BindingType() reflect.Type           { return n.typ }
func (n *dataNode) ChildAddressability() Addressability { return n.addr }

func (n *dataNode) CreateCachingCodec(types ...reflect.Type) CachingCodec {
	return newCachingCodec(n, types)
}

func (n *dataNode) String() string {
	return fmt.Sprintf("codec %s for %s", binding.ShortName(n.typ), n.schema)
}

func (n *dataNode) Serialize(obj any) (normalized.Node, error) {
	return n.serializeWith(&serializer{}, obj)
}

func (n *dataNode) serializeWith(s *serializer, obj any) (normalized.Node, error) {
	v, err := n.checkObject(obj)
	if err != nil {
		return nil, err
	}
	return n.serialize(s, v)
}

func (n *dataNode) checkObject(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() || v.Type().Elem() != n.typ {
		return reflect.Value{}, illegalArgument("expected a non-nil *%s, got %T", binding.ShortName(n.typ), obj)
	}
	return v, nil
}

func (n *dataNode) serialize(s *serializer, v reflect.Value) (normalized.Node, error) {
	if s.cache != nil && s.cache.cachesType(n.typ) {
		return s.cache.container(n.schema, v, func() (normalized.Node, error) {
			return n.build(s, v)
		})
	}
	return n.build(s, v)
}

func (n *dataNode) build(s *serializer, v reflect.Value) (normalized.Node, error) {
	kids, err := n.serializeChildren(s, v)
	if err != nil {
		return nil, err
	}
	switch n.schema.Kind {
	case schema.KindList:
		if n.key == nil {
			return normalized.NewUnkeyedListEntry(n.schema.QName, kids...), nil
		}
		id, err := n.key.identifier(n.schema.QName, v)
		if err != nil {
			return nil, err
		}
		return normalized.NewMapEntry(id, kids...), nil
	case schema.KindContainer, schema.KindNotification, schema.KindInput, schema.KindOutput:
		return normalized.NewContainer(n.schema.QName, kids...), nil
	}
	return nil, illegalArgument("%s has no node of its own", n.schema)
}

// serializeChildren serializes the fields of the struct v points to,
// followed by the children of its augmentations.
func (n *dataNode) serializeChildren(s *serializer, v reflect.Value) ([]normalized.Node, error) {
	elem := v.Elem()
	var kids []normalized.Node
	for _, f := range n.fields {
		node, err := f.serialize(n.ctx, s, elem.FieldByIndex(f.field.Index))
		if err != nil {
			return nil, err
		}
		if node != nil {
			kids = append(kids, node)
		}
	}
	if n.info.Augmentable == nil {
		return kids, nil
	}
	holder := elem.FieldByIndex(n.info.Augmentable).Addr().Interface().(*binding.Augmentable)
	for _, aug := range holder.Augmentations() {
		an, err := n.augmentation(reflect.TypeOf(aug))
		if err != nil {
			return nil, err
		}
		akids, err := an.serializeChildren(s, reflect.ValueOf(aug))
		if err != nil {
			return nil, err
		}
		kids = append(kids, akids...)
	}
	return kids, nil
}

func (n *dataNode) Deserialize(node normalized.Node) (any, error) {
	v, err := n.deserialize(node)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func (n *dataNode) deserialize(node normalized.Node) (reflect.Value, error) {
	if node == nil {
		return reflect.Value{}, illegalArgument("cannot deserialize a nil node")
	}
	var (
		kids []normalized.Node
		id   *normalized.NodeIdentifierWithPredicates
	)
	switch n.schema.Kind {
	case schema.KindList:
		switch e := node.(type) {
		case *normalized.MapEntry:
			kids = e.Children()
			ident := e.Identifier()
			id = &ident
		case *normalized.UnkeyedListEntry:
			kids = e.Children()
		default:
			return reflect.Value{}, illegalArgument("Expecting either a MapEntryNode or an UnkeyedListEntryNode, not %s", node.Kind())
		}
	case schema.KindAugmentation, schema.KindCase:
		dc, ok := node.(normalized.DataContainer)
		if !ok {
			return reflect.Value{}, illegalArgument("Expecting a data container, not %s", node.Kind())
		}
		for _, k := range dc.Children() {
			if _, own := n.byQName[k.Name().NodeType()]; own {
				kids = append(kids, k)
			}
		}
	default:
		c, ok := node.(*normalized.Container)
		if !ok {
			return reflect.Value{}, illegalArgument("Expecting ContainerNode, not %s", node.Kind())
		}
		kids = c.Children()
	}
	out := reflect.New(n.typ)
	if err := n.deserializeChildren(kids, out); err != nil {
		return reflect.Value{}, err
	}
	if id != nil && n.key != nil {
		if err := n.key.fill(out, *id); err != nil {
			return reflect.Value{}, err
		}
	}
	return out, nil
}

// deserializeChildren fills the struct out points to. Children added by
// augmentations are grouped per augmentation and decoded into a fresh
// augmentation object each.
func (n *dataNode) deserializeChildren(kids []normalized.Node, out reflect.Value) error {
	elem := out.Elem()
	var groups map[*schema.Node][]normalized.Node
	for _, k := range kids {
		q := k.Name().NodeType()
		if f, ok := n.byQName[q]; ok {
			if err := f.deserialize(n.ctx, k, elem.FieldByIndex(f.field.Index)); err != nil {
				return err
			}
			continue
		}
		if a, ok := n.schema.AugmentationFor(q); ok && a.Binding != "" {
			if groups == nil {
				groups = make(map[*schema.Node][]normalized.Node)
			}
			groups[a] = append(groups[a], k)
			continue
		}
		return n.ctx.unknownChild(q, n.schema.String())
	}
	if len(groups) == 0 {
		return nil
	}
	holder := binding.AugmentableOf(out)
	if holder == nil {
		return incorrectNesting("%s cannot hold augmentations", binding.ShortName(n.typ))
	}
	for _, a := range n.schema.Augmentations() {
		akids, ok := groups[a]
		if !ok {
			continue
		}
		an, err := n.augmentationNode(a)
		if err != nil {
			return err
		}
		obj := reflect.New(an.typ)
		if err := an.deserializeChildren(akids, obj); err != nil {
			return err
		}
		holder.SetAugmentation(obj.Interface())
	}
	return nil
}

// augmentation returns the codec of the augmentation bound to t. The type
// loader is consulted on every call.
func (n *dataNode) augmentation(t reflect.Type) (*dataNode, error) {
	t = binding.Deref(t)
	name := binding.TypeName(t)
	a, ok := n.augByName[name]
	if !ok {
		return nil, n.ctx.missingChild(t, "%s is not a valid augmentation of %s", binding.ShortName(t), n.schema)
	}
	return n.augmentationNode(a)
}

func (n *dataNode) augmentationNode(a *schema.Node) (*dataNode, error) {
	t, err := n.ctx.loadType(a.Binding)
	if err != nil {
		return nil, err
	}
	return n.ctx.dataNode(a, t)
}

// childByType resolves the container or list child bound to t, looking
// into the case caseType when it is set and otherwise into every choice.
// The choices crossed on the way are returned in order.
func (n *dataNode) childByType(t, caseType reflect.Type) (*dataNode, []*schema.Node, error) {
	t = binding.Deref(t)
	if caseType != nil {
		for _, f := range n.fields {
			if f.kind != fieldChoice {
				continue
			}
			ch, err := n.ctx.choiceNode(f.schema, f.elem)
			if err != nil {
				return nil, nil, err
			}
			cs, ok := ch.caseByType(caseType)
			if !ok {
				continue
			}
			return ch.childThrough(cs, t)
		}
		return nil, nil, n.ctx.missingChild(caseType, "case %s is not valid in %s", binding.ShortName(caseType), n.schema)
	}
	if f, ok := n.byType[t]; ok {
		child, err := n.ctx.dataNode(f.schema, f.elem)
		return child, nil, err
	}
	for _, f := range n.fields {
		if f.kind != fieldChoice {
			continue
		}
		ch, err := n.ctx.choiceNode(f.schema, f.elem)
		if err != nil {
			return nil, nil, err
		}
		if cs, ok := ch.caseForChildType(t); ok {
			return ch.childThrough(cs, t)
		}
	}
	return nil, nil, n.ctx.missingChild(t, "Argument %s is not valid child of %s", binding.ShortName(t), n.schema)
}

func (n *dataNode) StreamChild(t reflect.Type) (TreeNode, error) {
	child, _, err := n.childByType(t, nil)
	if err != nil {
		return nil, err
	}
	return child, nil
}

func (n *dataNode) YangPathArgumentChild(arg normalized.PathArgument) (TreeNode, error) {
	q := arg.NodeType()
	f, ok := n.byQName[q]
	if !ok {
		a, ok := n.schema.AugmentationFor(q)
		if !ok {
			return nil, n.ctx.unknownChild(q, n.schema.String())
		}
		an, err := n.augmentationNode(a)
		if err != nil {
			return nil, err
		}
		return an.YangPathArgumentChild(arg)
	}
	switch f.kind {
	case fieldContainer, fieldList:
		return n.ctx.dataNode(f.schema, f.elem)
	case fieldChoice:
		return n.ctx.choiceNode(f.schema, f.elem)
	}
	return nil, illegalArgument("%s has no codec node", f.schema)
}

func (n *dataNode) BindingPathArgumentChild(step binding.Step) (TreeNode, error) {
	switch step.(type) {
	case binding.AugmentationStep:
		return n.augmentation(step.StepType())
	case binding.NodeStep, binding.KeyStep:
		child, _, err := n.childByType(step.StepType(), step.CaseType())
		if err != nil {
			return nil, err
		}
		return child, nil
	}
	return nil, illegalArgument("unsupported step %s", step)
}

// missingChild classifies a failed lookup of the child bound to t: the
// type may be unknown to the schema, refused by the loader, or known but
// not valid at this point.
func (c *Context) missingChild(t reflect.Type, format string, args ...any) error {
	name := binding.TypeName(t)
	if len(c.reg.BindingNodes(name)) == 0 {
		return &MissingSchemaForClassError{Type: binding.Deref(t)}
	}
	if _, err := c.loadType(name); err != nil {
		return err
	}
	return incorrectNesting(format, args...)
}

func (c *Context) unknownChild(q qname.QName, parent string) error {
	if _, ok := c.reg.FindModule(q.Module()); !ok {
		return &MissingSchemaError{Module: q.Module()}
	}
	return incorrectNesting("Argument %s is not valid data tree child of %s", q, parent)
}

// keyCodec converts between list keys and map entry predicates.
type keyCodec struct {
	typ    reflect.Type
	fields []keyField
}

type keyField struct {
	q     qname.QName
	index []int
	value valueCodec
	entry *fieldCodec
}

func newKeyCodec(c *Context, n *dataNode) (*keyCodec, error) {
	kt, ok := binding.KeyType(n.typ)
	if !ok {
		return nil, fmt.Errorf("codec: %s is bound to keyed %s but has no Key method", binding.TypeName(n.typ), n.schema)
	}
	info, err := binding.Struct(kt)
	if err != nil {
		return nil, err
	}
	if len(info.Fields) != len(n.schema.Keys) {
		return nil, fmt.Errorf("codec: key %s has %d fields for %d key leaves", kt, len(info.Fields), len(n.schema.Keys))
	}
	k := &keyCodec{typ: kt}
	for _, q := range n.schema.Keys {
		kf, ok := info.Field(q.LocalName())
		if !ok {
			return nil, fmt.Errorf("codec: key %s has no field for %s", kt, q.LocalName())
		}
		leaf := n.byQName[q]
		vc, err := c.newValueCodec(leaf.schema.Type, kf.Type)
		if err != nil {
			return nil, fmt.Errorf("codec: key %s.%s: %w", kt, kf.Name, err)
		}
		k.fields = append(k.fields, keyField{q: q, index: kf.Index, value: vc, entry: leaf})
	}
	return k, nil
}

// identifier returns the predicates of the entry v points to.
func (k *keyCodec) identifier(q qname.QName, v reflect.Value) (normalized.NodeIdentifierWithPredicates, error) {
	return k.toPredicates(q, v.MethodByName("Key").Call(nil)[0].Interface())
}

// toPredicates converts a key to predicates in key declaration order.
func (k *keyCodec) toPredicates(q qname.QName, key any) (normalized.NodeIdentifierWithPredicates, error) {
	kv := reflect.ValueOf(key)
	if !kv.IsValid() || kv.Type() != k.typ {
		return normalized.NodeIdentifierWithPredicates{}, illegalArgument("key %v of %s must be a %s", key, q, k.typ)
	}
	preds := make([]normalized.KeyValue, 0, len(k.fields))
	for _, f := range k.fields {
		val, err := f.value.toNormalized(kv.FieldByIndex(f.index))
		if err != nil {
			return normalized.NodeIdentifierWithPredicates{}, fmt.Errorf("key %s: %w", f.q, err)
		}
		preds = append(preds, normalized.KV(f.q, val))
	}
	return normalized.NewNodeIdentifierWithPredicates(q, preds...), nil
}

func (k *keyCodec) fromPredicates(id normalized.NodeIdentifierWithPredicates) (reflect.Value, error) {
	if id.Size() != len(k.fields) {
		return reflect.Value{}, illegalArgument("%s does not match the key of %s", id, k.typ)
	}
	out := reflect.New(k.typ).Elem()
	for _, f := range k.fields {
		val, ok := id.Value(f.q)
		if !ok {
			return reflect.Value{}, illegalArgument("%s has no predicate for %s", id, f.q)
		}
		ev, err := f.value.fromNormalized(val)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("key %s: %w", f.q, err)
		}
		out.FieldByIndex(f.index).Set(ev)
	}
	return out, nil
}

// fill sets key leaves missing from the entry out points to from the
// entry's predicates.
func (k *keyCodec) fill(out reflect.Value, id normalized.NodeIdentifierWithPredicates) error {
	if id.Size() != len(k.fields) {
		return illegalArgument("%s does not match the key of %s", id, k.typ)
	}
	elem := out.Elem()
	for _, f := range k.fields {
		fv := elem.FieldByIndex(f.entry.field.Index)
		if _, present := f.entry.slot.get(fv); present {
			continue
		}
		val, ok := id.Value(f.q)
		if !ok {
			return illegalArgument("%s has no predicate for %s", id, f.q)
		}
		ev, err := f.entry.value.fromNormalized(val)
		if err != nil {
			return fmt.Errorf("key %s: %w", f.q, err)
		}
		f.entry.slot.set(fv, ev)
	}
	return nil
}
