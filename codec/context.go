package codec

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/config"
	"github.com/opendaylight/yangtools-sub038/debug"
	"github.com/opendaylight/yangtools-sub038/logging"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

// Context translates between binding objects and normalized nodes for one
// schema registry. Codec nodes are built on first use and shared; a Context
// is safe for concurrent use.
type Context struct {
	reg    schema.Registry
	loader schema.TypeLoader
	log    *zap.Logger

	// cacheTypes are cached by CachingCodecFor when no names are given.
	cacheTypes []reflect.Type

	nodes   sync.Map // nodeKey -> *dataNode
	choices sync.Map // nodeKey -> *choiceNode
	group   singleflight.Group
}

type Option func(*Context)

func WithLogger(l *zap.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// WithLoader overrides the registry's type loader.
func WithLoader(l schema.TypeLoader) Option {
	return func(c *Context) {
		if l != nil {
			c.loader = l
		}
	}
}

func NewContext(reg schema.Registry, opts ...Option) *Context {
	c := &Context{reg: reg, loader: reg, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FromConfig builds a Context logging as configured. The configured cache
// types are resolved through the loader up front and become the default
// types of CachingCodecFor.
func FromConfig(cfg *config.Config, reg schema.Registry, opts ...Option) (*Context, error) {
	l, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	c := NewContext(reg, append([]Option{WithLogger(l.Named("codec"))}, opts...)...)
	if c.cacheTypes, err = c.loadTypes(cfg.Codec.CacheTypes); err != nil {
		return nil, fmt.Errorf("codec.cache_types: %w", err)
	}
	return c, nil
}

func (c *Context) Registry() schema.Registry {
	return c.reg
}

// loadType asks the loader for the named type. Refusals are returned, not
// remembered.
func (c *Context) loadType(name string) (reflect.Type, error) {
	if name == "" {
		return nil, &MissingClassInLoadingStrategyError{Name: "<unbound>", Err: schema.ErrTypeNotLoaded}
	}
	t, err := c.loader.LoadType(name)
	if err != nil {
		c.log.Debug("type not available", zap.String("type", name), zap.Error(err))
		return nil, &MissingClassInLoadingStrategyError{Name: name, Err: err}
	}
	return binding.Deref(t), nil
}

type nodeKey struct {
	schema *schema.Node
	typ    reflect.Type
}

func (k nodeKey) String() string {
	return fmt.Sprintf("%p|%s", k.schema, binding.TypeName(k.typ))
}

// memoize returns the value stored under key in m, building it at most once
// at a time. Failed builds are not stored.
func memoize[T any](c *Context, m *sync.Map, kind string, key nodeKey, build func() (T, error)) (T, error) {
	if v, ok := m.Load(key); ok {
		return v.(T), nil
	}
	v, err, _ := c.group.Do(kind+"|"+key.String(), func() (any, error) {
		if v, ok := m.Load(key); ok {
			return v, nil
		}
		n, err := build()
		if err != nil {
			return nil, err
		}
		m.Store(key, n)
		c.log.Debug("built codec node",
			zap.String("kind", kind),
			zap.Stringer("schema", key.schema.Path()),
			zap.String("type", binding.TypeName(key.typ)))
		if debug.Codec() {
			debug.Logf("codec: built %s node %s for %s", kind, key.schema.Path(), binding.ShortName(key.typ))
		}
		return n, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *Context) dataNode(s *schema.Node, t reflect.Type) (*dataNode, error) {
	t = binding.Deref(t)
	return memoize(c, &c.nodes, "data", nodeKey{s, t}, func() (*dataNode, error) {
		return newDataNode(c, s, t)
	})
}

func (c *Context) choiceNode(s *schema.Node, iface reflect.Type) (*choiceNode, error) {
	return memoize(c, &c.choices, "choice", nodeKey{s, iface}, func() (*choiceNode, error) {
		return newChoiceNode(c, s, iface)
	})
}

// derivesFrom reports whether id is derived, directly or not, from base. A
// zero base accepts every identity.
func (c *Context) derivesFrom(id *schema.Identity, base qname.QName) bool {
	if base.IsZero() {
		return true
	}
	seen := make(map[qname.QName]bool)
	queue := slices.Clone(id.Bases)
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		if q == base {
			return true
		}
		if seen[q] {
			continue
		}
		seen[q] = true
		if b, err := c.reg.Identity(q); err == nil {
			queue = append(queue, b.Bases...)
		}
	}
	return false
}

// ToNormalizedNode serializes obj, the object addressed by path.
func (c *Context) ToNormalizedNode(path *binding.InstanceIdentifier, obj any) (normalized.InstanceIdentifier, normalized.Node, error) {
	r, err := c.resolve(path)
	if err != nil {
		return normalized.InstanceIdentifier{}, nil, err
	}
	dn, ok := r.node.(*dataNode)
	if !ok || dn.schema.Kind == schema.KindAugmentation {
		return normalized.InstanceIdentifier{}, nil, illegalArgument("%s does not address a single node", path)
	}
	n, err := dn.Serialize(obj)
	if err != nil {
		return normalized.InstanceIdentifier{}, nil, err
	}
	if last, ok := r.yang.LastArg(); ok {
		if id, keyed := last.(normalized.NodeIdentifierWithPredicates); keyed && !normalized.ArgEqual(id, n.Name()) {
			return normalized.InstanceIdentifier{}, nil, illegalArgument("object key %s does not match path %s", n.Name(), r.yang)
		}
	}
	return r.yang, n, nil
}

// ToNormalizedAugmentation serializes aug, the augmentation addressed by
// path. An augmentation has no node of its own, so its children are
// returned together with the path of the augmented node.
func (c *Context) ToNormalizedAugmentation(path *binding.InstanceIdentifier, aug any) (normalized.InstanceIdentifier, []normalized.Node, error) {
	r, err := c.resolve(path)
	if err != nil {
		return normalized.InstanceIdentifier{}, nil, err
	}
	dn, ok := r.node.(*dataNode)
	if !ok || dn.schema.Kind != schema.KindAugmentation {
		return normalized.InstanceIdentifier{}, nil, illegalArgument("%s does not address an augmentation", path)
	}
	v, err := dn.checkObject(aug)
	if err != nil {
		return normalized.InstanceIdentifier{}, nil, err
	}
	kids, err := dn.serializeChildren(&serializer{}, v)
	if err != nil {
		return normalized.InstanceIdentifier{}, nil, err
	}
	return r.yang, kids, nil
}

// FromNormalizedNode deserializes n, the node addressed by path. A path
// with no binding representation, such as a list without a key, yields
// nil results and no error.
func (c *Context) FromNormalizedNode(path normalized.InstanceIdentifier, n normalized.Node) (*binding.InstanceIdentifier, any, error) {
	id, err := c.FromYangInstanceIdentifier(path)
	if err != nil || id == nil {
		return nil, nil, err
	}
	codec, err := c.SubtreeCodec(id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := codec.Deserialize(n)
	if err != nil {
		return nil, nil, err
	}
	return id, obj, nil
}

// SubtreeCodec returns the codec node for the object addressed by path.
func (c *Context) SubtreeCodec(path *binding.InstanceIdentifier) (TreeNode, error) {
	r, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	return r.node, nil
}

// CachingCodecFor returns a caching codec for the subtree at path, caching
// the named binding types, or the configured ones when no name is given.
func (c *Context) CachingCodecFor(path *binding.InstanceIdentifier, typeNames ...string) (CachingCodec, error) {
	node, err := c.SubtreeCodec(path)
	if err != nil {
		return nil, err
	}
	if len(typeNames) == 0 {
		return node.CreateCachingCodec(c.cacheTypes...), nil
	}
	types, err := c.loadTypes(typeNames)
	if err != nil {
		return nil, err
	}
	return node.CreateCachingCodec(types...), nil
}

func (c *Context) loadTypes(names []string) ([]reflect.Type, error) {
	types := make([]reflect.Type, 0, len(names))
	for _, name := range names {
		t, err := c.loadType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// SerializeNotification serializes a notification object.
func (c *Context) SerializeNotification(obj any) (*normalized.Container, error) {
	return c.serializeBound(obj, schema.KindNotification)
}

// DeserializeNotification decodes the notification at the absolute schema
// path.
func (c *Context) DeserializeNotification(path schema.Path, n *normalized.Container) (any, error) {
	return c.deserializeAt(path, n, schema.KindNotification)
}

// SerializeOperationData serializes the input or output of an RPC or action.
func (c *Context) SerializeOperationData(obj any) (*normalized.Container, error) {
	return c.serializeBound(obj, schema.KindInput, schema.KindOutput)
}

// DeserializeOperationData decodes RPC or action input or output at the
// absolute schema path, which ends in the input or output node.
func (c *Context) DeserializeOperationData(path schema.Path, n *normalized.Container) (any, error) {
	return c.deserializeAt(path, n, schema.KindInput, schema.KindOutput)
}

func (c *Context) serializeBound(obj any, kinds ...schema.Kind) (*normalized.Container, error) {
	t := reflect.TypeOf(obj)
	if t == nil {
		return nil, illegalArgument("cannot serialize nil")
	}
	nodes := c.reg.BindingNodes(binding.TypeName(t))
	if len(nodes) == 0 {
		return nil, &MissingSchemaForClassError{Type: t}
	}
	for _, s := range nodes {
		if !slices.Contains(kinds, s.Kind) {
			continue
		}
		dn, err := c.dataNode(s, t)
		if err != nil {
			return nil, err
		}
		n, err := dn.Serialize(obj)
		if err != nil {
			return nil, err
		}
		return n.(*normalized.Container), nil
	}
	return nil, incorrectNesting("%s is bound to %s, not to %v", binding.TypeName(t), nodes[0], kinds)
}

func (c *Context) deserializeAt(path schema.Path, n *normalized.Container, kinds ...schema.Kind) (any, error) {
	s, err := c.reg.ResolveSchemaNode(path)
	if err != nil {
		if len(path) > 0 {
			if _, ok := c.reg.FindModule(path[0].Module()); !ok {
				return nil, &MissingSchemaError{Module: path[0].Module()}
			}
		}
		return nil, err
	}
	if !slices.Contains(kinds, s.Kind) {
		return nil, incorrectNesting("%s is a %s, expected %v", path, s.Kind, kinds)
	}
	t, err := c.loadType(s.Binding)
	if err != nil {
		return nil, err
	}
	dn, err := c.dataNode(s, t)
	if err != nil {
		return nil, err
	}
	return dn.Deserialize(n)
}
