package node

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	// ErrDuplicateRegistration is returned by [Registry.Register] when the
	// display name is already taken.
	ErrDuplicateRegistration = errors.New("node type already registered")

	// ErrInvalidRegistration is returned by [Registry.Register] for an
	// empty name or a nil constructor.
	ErrInvalidRegistration = errors.New("invalid node registration")
)

// Constructor creates a fresh node with default parameters.
type Constructor func() Node

// Registry maps node display names to constructors. It replaces runtime
// discovery with an explicit registration step performed at startup.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a constructor under name. Registering the same name twice
// fails; nothing is overwritten.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return fmt.Errorf("%w: name=%q", ErrInvalidRegistration, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, name)
	}
	r.ctors[name] = ctor
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// static registration tables.
func (r *Registry) MustRegister(name string, ctor Constructor) {
	if err := r.Register(name, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the constructor registered under name.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.ctors[name]
	return c, ok
}

// New constructs a node by name. It reports false when name is unknown or
// its constructor returns nil.
func (r *Registry) New(name string) (Node, bool) {
	c, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	n := c()
	return n, n != nil
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.ctors))
}

// Len returns the number of registered node types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ctors)
}
