// Package source provides record sources that supply the existing pool for duplicate detection.
package source

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/josegonzalez/dupcheck/pkg/dupcheck"
)

// Options configures a record source created through a Registry.
type Options struct {
	// Path is the dataset file for file-backed sources
	Path string
	// Records seeds in-memory sources
	Records []dupcheck.Record
	// Logger receives source diagnostics
	Logger *zap.Logger
}

// Factory is a function that creates a record source.
type Factory func(opts Options) (dupcheck.Source, error)

// Registry manages record source factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new source registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a source factory.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create creates a source instance by name.
func (r *Registry) Create(name string, opts Options) (dupcheck.Source, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", dupcheck.ErrSourceNotFound, name)
	}

	return factory(opts)
}

// List returns the registered source names in sorted order.
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

// Has returns true if a source is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// DefaultRegistry is the global source registry. It has the "memory" and
// "file" sources registered.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register("memory", func(opts Options) (dupcheck.Source, error) {
		return NewMemorySource(opts.Records...), nil
	})
	DefaultRegistry.Register("file", func(opts Options) (dupcheck.Source, error) {
		return NewFileSource(opts.Path, opts.Logger)
	})
}

// Register registers a source factory in the default registry.
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}

// Create creates a source from the default registry.
func Create(name string, opts Options) (dupcheck.Source, error) {
	return DefaultRegistry.Create(name, opts)
}

// List returns source names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}

// Has checks if a source is in the default registry.
func Has(name string) bool {
	return DefaultRegistry.Has(name)
}
