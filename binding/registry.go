package binding

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/opendaylight/yangtools-sub038/schema"
)

var (
	// ErrNilType is returned when a nil reflect.Type is registered.
	ErrNilType = errors.New("binding: nil type")
	// ErrConflictingRegistration indicates two distinct types registered
	// under one name.
	ErrConflictingRegistration = errors.New("binding: conflicting type registration")
)

// TypeRegistry is a schema.TypeLoader over an explicit set of Go types,
// named by TypeName. It is safe for concurrent use.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

var _ schema.TypeLoader = (*TypeRegistry)(nil)

func NewTypeRegistry(types ...reflect.Type) (*TypeRegistry, error) {
	r := &TypeRegistry{types: make(map[string]reflect.Type, len(types))}
	if err := r.Register(types...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds types. Registering the same type twice is a no-op.
func (r *TypeRegistry) Register(types ...reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		if t == nil {
			return ErrNilType
		}
		t = Deref(t)
		name := TypeName(t)
		if old, ok := r.types[name]; ok {
			if old == t {
				continue
			}
			return fmt.Errorf("%w: %s", ErrConflictingRegistration, name)
		}
		r.types[name] = t
	}
	return nil
}

func (r *TypeRegistry) LoadType(name string) (reflect.Type, error) {
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered", schema.ErrTypeNotLoaded, name)
	}
	return t, nil
}

// Names returns the registered names, sorted.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for n := range r.types {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// RestrictedLoader only passes requests for allowed names on to the
// underlying loader. The allow list may change at any time.
type RestrictedLoader struct {
	next schema.TypeLoader

	mu      sync.RWMutex
	allowed map[string]struct{}
}

var _ schema.TypeLoader = (*RestrictedLoader)(nil)

func NewRestrictedLoader(next schema.TypeLoader, allowed ...string) *RestrictedLoader {
	l := &RestrictedLoader{next: next, allowed: make(map[string]struct{}, len(allowed))}
	l.Allow(allowed...)
	return l
}

func (l *RestrictedLoader) Allow(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range names {
		l.allowed[n] = struct{}{}
	}
}

func (l *RestrictedLoader) Revoke(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range names {
		delete(l.allowed, n)
	}
}

func (l *RestrictedLoader) LoadType(name string) (reflect.Type, error) {
	l.mu.RLock()
	_, ok := l.allowed[name]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s is excluded by the loading policy", schema.ErrTypeNotLoaded, name)
	}
	return l.next.LoadType(name)
}
