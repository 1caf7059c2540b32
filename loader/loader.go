// Package loader provides a minimal in-memory component.Loader:
// register a factory under a name, resolve it later by name. Real
// deployments with richer discovery (filesystem scanning, remote
// registries) implement component.Loader directly; this one exists so
// the coordinator can be exercised without one.
package loader

import (
	"fmt"
	"sync"

	"github.com/berrylands/noflo/component"
)

// Factory builds a fresh component instance. Loader calls it once per
// Load call so that every node gets its own instance.
type Factory func() component.Component

// Registry is a simple name -> Factory map satisfying component.Loader.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates name with factory. Registering the same name
// twice replaces the previous factory.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Load implements component.Loader. metadata is unused by this
// registry — richer loaders may use it to parameterize construction.
func (r *Registry) Load(name string, metadata map[string]interface{}, done func(err error, instance component.Component)) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		done(fmt.Errorf("loader: no component registered under %q", name), nil)
		return
	}
	done(nil, factory())
}
