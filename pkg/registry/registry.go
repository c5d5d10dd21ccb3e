package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/vigil/pkg/object"
)

// Registry manages the named methods scenario files may install on objects.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]object.Func
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[string]object.Func),
	}
}

// Builtins returns a registry preloaded with echo, sum and concat.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register("echo", Echo)
	r.Register("sum", Sum)
	r.Register("concat", Concat)
	return r
}

// Register adds a method to the registry.
// If a method with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn object.Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = fn
}

// Lookup returns the method registered under name.
func (r *Registry) Lookup(name string) (object.Func, error) {
	r.mu.RLock()
	fn, ok := r.methods[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("method not found: %s", name)
	}
	return fn, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
