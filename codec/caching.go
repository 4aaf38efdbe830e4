package codec

import (
	"reflect"
	"sync"

	"github.com/opendaylight/yangtools-sub038/binding"
	"github.com/opendaylight/yangtools-sub038/debug"
	"github.com/opendaylight/yangtools-sub038/normalized"
	"github.com/opendaylight/yangtools-sub038/qname"
	"github.com/opendaylight/yangtools-sub038/schema"
)

// CachingCodec serializes through a codec node, reusing the nodes built
// for equal objects of the cached types.
type CachingCodec interface {
	Serialize(obj any) (normalized.Node, error)
	Deserialize(n normalized.Node) (any, error)
	// Close drops memoized nodes.
	Close()
}

// NonCachingCodec passes every call to its delegate.
type NonCachingCodec struct {
	delegate TreeNode
}

func (c *NonCachingCodec) Serialize(obj any) (normalized.Node, error) {
	return c.delegate.Serialize(obj)
}

func (c *NonCachingCodec) Deserialize(n normalized.Node) (any, error) {
	return c.delegate.Deserialize(n)
}

func (c *NonCachingCodec) Close() {}

func newCachingCodec(delegate TreeNode, types []reflect.Type) CachingCodec {
	if len(types) == 0 {
		return &NonCachingCodec{delegate: delegate}
	}
	c := &cachingCodec{delegate: delegate, types: make(map[reflect.Type]struct{}, len(types))}
	for _, t := range types {
		c.types[binding.Deref(t)] = struct{}{}
	}
	return c
}

// cachingCodec memoizes containers by binding equality and leaves by value.
// Cached objects must not be modified after they were serialized.
type cachingCodec struct {
	delegate TreeNode
	types    map[reflect.Type]struct{}

	mu         sync.Mutex
	containers map[containerKey][]containerEntry
	leaves     map[leafKey]*normalized.Leaf
}

type containerKey struct {
	schema *schema.Node
	hash   uint64
}

type containerEntry struct {
	obj  any
	node normalized.Node
}

type leafKey struct {
	q     qname.QName
	value string
}

func (c *cachingCodec) Serialize(obj any) (normalized.Node, error) {
	return c.delegate.serializeWith(&serializer{cache: c}, obj)
}

func (c *cachingCodec) Deserialize(n normalized.Node) (any, error) {
	return c.delegate.Deserialize(n)
}

func (c *cachingCodec) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.containers = nil
	c.leaves = nil
}

func (c *cachingCodec) cachesType(t reflect.Type) bool {
	_, ok := c.types[binding.Deref(t)]
	return ok
}

// container returns the node memoized for an object equal to the one v
// points to, building and storing it on a miss. The lock is not held while
// building, as building recurses into the cache.
func (c *cachingCodec) container(s *schema.Node, v reflect.Value, build func() (normalized.Node, error)) (normalized.Node, error) {
	obj := v.Interface()
	key := containerKey{schema: s, hash: binding.Hash(obj)}
	if n, ok := c.lookup(key, obj); ok {
		if debug.Cache() {
			debug.Logf("cache: hit %s", s.QName.LocalName())
		}
		return n, nil
	}
	if debug.Cache() {
		debug.Logf("cache: miss %s", s.QName.LocalName())
	}
	n, err := build()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.containers[key] {
		if binding.Equal(e.obj, obj) {
			return e.node, nil
		}
	}
	if c.containers == nil {
		c.containers = make(map[containerKey][]containerEntry)
	}
	c.containers[key] = append(c.containers[key], containerEntry{obj: obj, node: n})
	return n, nil
}

func (c *cachingCodec) lookup(key containerKey, obj any) (normalized.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.containers[key] {
		if binding.Equal(e.obj, obj) {
			return e.node, true
		}
	}
	return nil, false
}

func (c *cachingCodec) leaf(q qname.QName, val any) *normalized.Leaf {
	key := leafKey{q: q, value: normalized.FormatValue(val)}
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.leaves[key]; ok {
		if debug.Cache() {
			debug.Logf("cache: hit leaf %s", q.LocalName())
		}
		return l
	}
	if c.leaves == nil {
		c.leaves = make(map[leafKey]*normalized.Leaf)
	}
	l := normalized.NewLeaf(q, val)
	c.leaves[key] = l
	return l
}
