package schema

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/opendaylight/yangtools-sub038/qname"
)

// TypeLoader loads the Go type bound to a schema node by its binding name.
// A loader which cannot or will not provide a type returns an error
// wrapping ErrTypeNotLoaded.
type TypeLoader interface {
	LoadType(name string) (reflect.Type, error)
}

// Registry is the schema and type registry consumed by the codec.
type Registry interface {
	TypeLoader

	Modules() []*Module
	FindModule(m qname.Module) (*Module, bool)
	ModuleByName(name string) (*Module, bool)
	ModuleByNamespace(ns string) (*Module, bool)

	// TopLevel returns the top level data node, RPC or notification q.
	TopLevel(q qname.QName) (*Node, bool)
	// ResolveSchemaNode walks p from the schema root. Choices and cases
	// may be omitted from p.
	ResolveSchemaNode(p Path) (*Node, error)
	// ResolveBinding returns the node bound to the named Go type. When a
	// type is bound to several nodes the first in schema order is returned.
	ResolveBinding(name string) (*Node, error)
	// BindingNodes returns every node bound to the named Go type.
	BindingNodes(name string) []*Node
	// KeyFieldsOf returns the key leaves of the keyed list bound to name.
	KeyFieldsOf(name string) ([]qname.QName, error)

	Identity(q qname.QName) (*Identity, error)
	IdentityByBinding(name string) (*Identity, error)
}

// Context is an immutable in-memory Registry.
type Context struct {
	loader TypeLoader

	modules     []*Module
	byName      map[string]*Module
	byModule    map[qname.Module]*Module
	byNamespace map[string]*Module

	bindings    map[string][]*Node
	identities  map[qname.QName]*Identity
	idByBinding map[string]*Identity
}

var _ Registry = (*Context)(nil)

// NewContext links the given modules, resolves augmentation targets and
// indexes bindings and identities. loader may be nil, in which case every
// LoadType call fails.
func NewContext(loader TypeLoader, modules ...*Module) (*Context, error) {
	c := &Context{
		loader:      loader,
		byName:      make(map[string]*Module),
		byModule:    make(map[qname.Module]*Module),
		byNamespace: make(map[string]*Module),
		bindings:    make(map[string][]*Node),
		identities:  make(map[qname.QName]*Identity),
		idByBinding: make(map[string]*Identity),
	}
	for _, m := range modules {
		if err := c.addModule(m); err != nil {
			return nil, err
		}
	}
	if err := c.resolveAugments(); err != nil {
		return nil, err
	}
	for _, m := range c.modules {
		for _, n := range m.Data {
			if err := c.index(n); err != nil {
				return nil, err
			}
		}
		for _, n := range m.RPCs {
			if err := c.index(n); err != nil {
				return nil, err
			}
		}
		for _, n := range m.Notifications {
			if err := c.index(n); err != nil {
				return nil, err
			}
		}
		for _, n := range m.Augments {
			if err := c.index(n); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Context) addModule(m *Module) error {
	if m.Name == "" {
		return &SchemaError{Message: "module without a name"}
	}
	if _, dup := c.byName[m.Name]; dup {
		return &SchemaError{Name: m.Name, Message: "module defined twice"}
	}
	if _, dup := c.byModule[m.QName]; dup {
		return &SchemaError{Name: m.Name, Message: fmt.Sprintf("module %s defined twice", m.QName)}
	}
	c.modules = append(c.modules, m)
	c.byName[m.Name] = m
	c.byModule[m.QName] = m
	if prev, ok := c.byNamespace[m.QName.Namespace]; !ok || prev.QName.Revision < m.QName.Revision {
		c.byNamespace[m.QName.Namespace] = m
	}
	for _, list := range [][]*Node{m.Data, m.RPCs, m.Notifications} {
		for _, n := range list {
			n.link(m, nil)
		}
	}
	for _, a := range m.Augments {
		a.Kind = KindAugmentation
		a.link(m, nil)
	}
	for _, id := range m.Identities {
		if _, dup := c.identities[id.QName]; dup {
			return &SchemaError{Name: id.QName.String(), Message: "identity defined twice"}
		}
		c.identities[id.QName] = id
		if id.Binding != "" {
			c.idByBinding[id.Binding] = id
		}
	}
	return nil
}

// resolveAugments attaches augmentations to their targets. Targets may lie
// inside other augmentations, so resolution repeats until nothing changes.
func (c *Context) resolveAugments() error {
	var pending []*Node
	for _, m := range c.modules {
		pending = append(pending, m.Augments...)
	}
	for len(pending) > 0 {
		var rest []*Node
		for _, a := range pending {
			t, err := c.ResolveSchemaNode(a.Target)
			if err != nil {
				rest = append(rest, a)
				continue
			}
			if !t.IsDataContainer() && t.Kind != KindChoice {
				return &SchemaError{Name: a.Target.String(), Message: "cannot augment " + t.Kind.String()}
			}
			for _, ch := range a.Children {
				if _, dup := t.DataChild(ch.QName); dup {
					return &SchemaError{Name: ch.QName.String(), Message: "augmentation redefines a child of " + t.String()}
				}
			}
			a.Parent = t
			t.augments = append(t.augments, a)
		}
		if len(rest) == len(pending) {
			return &SchemaError{Name: rest[0].Target.String(), Message: "augmentation target not found", Err: ErrNotFound}
		}
		pending = rest
	}
	return nil
}

func (c *Context) index(n *Node) error {
	if n.Binding != "" {
		c.bindings[n.Binding] = append(c.bindings[n.Binding], n)
	}
	if n.Kind == KindList {
		for _, k := range n.Keys {
			leaf, ok := n.OwnChild(k)
			if !ok || leaf.Kind != KindLeaf {
				return &SchemaError{Name: n.QName.String(), Message: "key " + k.LocalName() + " is not a leaf of the list"}
			}
		}
	}
	if (n.Kind == KindLeaf || n.Kind == KindLeafList) && n.Type == nil {
		return &SchemaError{Name: n.QName.String(), Message: "leaf without a type"}
	}
	for _, ch := range n.Children {
		if err := c.index(ch); err != nil {
			return err
		}
	}
	for _, op := range []*Node{n.Input, n.Output} {
		if op != nil {
			if err := c.index(op); err != nil {
				return err
			}
		}
	}
	for _, a := range n.Actions {
		if err := c.index(a); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) LoadType(name string) (reflect.Type, error) {
	if c.loader == nil {
		return nil, fmt.Errorf("%w: %s: no type loader configured", ErrTypeNotLoaded, name)
	}
	return c.loader.LoadType(name)
}

func (c *Context) Modules() []*Module {
	return slices.Clone(c.modules)
}

func (c *Context) FindModule(m qname.Module) (*Module, bool) {
	mod, ok := c.byModule[m]
	return mod, ok
}

func (c *Context) ModuleByName(name string) (*Module, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// ModuleByNamespace returns the latest revision of the module with the given
// namespace.
func (c *Context) ModuleByNamespace(ns string) (*Module, bool) {
	m, ok := c.byNamespace[ns]
	return m, ok
}

func (c *Context) TopLevel(q qname.QName) (*Node, bool) {
	m, ok := c.byModule[q.Module()]
	if !ok {
		return nil, false
	}
	for _, list := range [][]*Node{m.Data, m.RPCs, m.Notifications} {
		for _, n := range list {
			if n.QName == q {
				return n, true
			}
		}
	}
	return nil, false
}

func (c *Context) ResolveSchemaNode(p Path) (*Node, error) {
	if len(p) == 0 {
		return nil, &SchemaError{Message: "empty schema path"}
	}
	if _, ok := c.byModule[p[0].Module()]; !ok {
		return nil, notFound(p.String(), "module %s is not present", p[0].Module())
	}
	cur, ok := c.TopLevel(p[0])
	if !ok {
		return nil, notFound(p.String(), "no top level node %s", p[0])
	}
	for _, q := range p[1:] {
		next, ok := Child(cur, q)
		if !ok {
			return nil, notFound(p.String(), "%s has no child %s", cur, q)
		}
		cur = next
	}
	return cur, nil
}

// Child returns the child q of n. Named choices, cases and actions are
// matched directly; otherwise data children of nested choices are found
// through their cases.
func Child(n *Node, q qname.QName) (*Node, bool) {
	if n.IsOperation() {
		for _, op := range []*Node{n.Input, n.Output} {
			if op != nil && op.QName == q {
				return op, true
			}
		}
		return nil, false
	}
	if c, ok := n.DataChild(q); ok {
		return c, true
	}
	if a, ok := n.Action(q); ok {
		return a, true
	}
	return throughChoices(n, q)
}

func throughChoices(n *Node, q qname.QName) (*Node, bool) {
	for _, ch := range n.AllChildren() {
		if ch.Kind != KindChoice {
			continue
		}
		for _, cs := range ch.Cases() {
			if c, ok := cs.DataChild(q); ok {
				return c, true
			}
			if c, ok := throughChoices(cs, q); ok {
				return c, true
			}
		}
	}
	return nil, false
}

func (c *Context) ResolveBinding(name string) (*Node, error) {
	nodes := c.bindings[name]
	if len(nodes) == 0 {
		return nil, notFound(name, "no schema node is bound to the type")
	}
	return nodes[0], nil
}

func (c *Context) BindingNodes(name string) []*Node {
	return slices.Clone(c.bindings[name])
}

func (c *Context) KeyFieldsOf(name string) ([]qname.QName, error) {
	n, err := c.ResolveBinding(name)
	if err != nil {
		return nil, err
	}
	if !n.Keyed() {
		return nil, &SchemaError{Name: name, Message: n.String() + " is not a keyed list"}
	}
	return slices.Clone(n.Keys), nil
}

func (c *Context) Identity(q qname.QName) (*Identity, error) {
	id, ok := c.identities[q]
	if !ok {
		return nil, notFound(q.String(), "unknown identity")
	}
	return id, nil
}

func (c *Context) IdentityByBinding(name string) (*Identity, error) {
	id, ok := c.idByBinding[name]
	if !ok {
		return nil, notFound(name, "no identity is bound to the type")
	}
	return id, nil
}
