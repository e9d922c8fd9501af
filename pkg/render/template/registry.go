package template

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

// Factory builds an engine bound to a template filesystem. The filesystem is
// used by engines that resolve includes; others may ignore it.
type Factory func(templates fs.FS) (TemplateRenderer, error)

// Registry stores engine factories by name, providing discovery and
// duplication safeguards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name. Duplicate names return an error.
func (r *Registry) Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("template: engine name is required")
	}
	if factory == nil {
		return fmt.Errorf("template: engine %q factory is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("template: engine %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// New builds the engine registered under name.
func (r *Registry) New(name string, templates fs.FS) (TemplateRenderer, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("template: engine %q not found (available: %s)", name, strings.Join(r.List(), ", "))
	}
	engine, err := factory(templates)
	if err != nil {
		return nil, fmt.Errorf("template: build engine %q: %w", name, err)
	}
	return engine, nil
}

// List returns a sorted list of engine names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an engine is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[name]
	return ok
}
