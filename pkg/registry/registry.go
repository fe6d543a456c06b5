// Package registry manages host-defined check types referenced from
// scenario files.
package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/harrow/pkg/check"
)

// CheckFunc builds a check from the raw arguments of a scenario check
// entry.
type CheckFunc func(args map[string]any) (check.Check, error)

// Registry manages the available custom check types.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		checks: make(map[string]CheckFunc),
	}
}

// Register adds a check type to the registry.
// If a type with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = fn
}

// Resolve looks up a check type by name and builds it.
// Returns an error if the type is not registered.
func (r *Registry) Resolve(name string, args map[string]any) (check.Check, error) {
	r.mu.RLock()
	fn, ok := r.checks[name]
	r.mu.RUnlock()

	if !ok {
		return check.Check{}, fmt.Errorf("check type not registered: %s", name)
	}

	return fn(args)
}
