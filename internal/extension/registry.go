package extension

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps extension identifiers to loaded sources. It is the explicit
// dependency handed to the reconciler and reader so tests can substitute
// fakes.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds or replaces a source under its metadata identifier.
func (r *Registry) Register(source Source) {
	if source == nil {
		return
	}
	r.mu.Lock()
	r.sources[source.Metadata().ID] = source
	r.mu.Unlock()
}

// Get returns the source for an extension identifier, or ErrUnavailable when
// it is not loaded.
func (r *Registry) Get(extensionID string) (Source, error) {
	r.mu.RLock()
	source, ok := r.sources[extensionID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, extensionID)
	}
	return source, nil
}

// List returns metadata for every loaded source, ordered by identifier.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.sources))
	for _, source := range r.sources {
		out = append(out, source.Metadata())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
