package model

import (
	"fmt"
	"sort"
)

// DefaultVariant is used when a request names no variant.
const DefaultVariant = "primary"

// VariantStatus describes one registry entry.
type VariantStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Default   bool   `json:"default"`
	Error     string `json:"error,omitempty"`
}

// Registry holds the named classifier variants. Populate it before sharing;
// lookups are read-only and need no locking.
type Registry struct {
	def      string
	adapters map[string]Adapter
	failures map[string]error
}

// NewRegistry creates an empty registry whose default variant is def, or
// DefaultVariant when def is empty.
func NewRegistry(def string) *Registry {
	if def == "" {
		def = DefaultVariant
	}
	return &Registry{
		def:      def,
		adapters: make(map[string]Adapter),
		failures: make(map[string]error),
	}
}

// Register adds or replaces an adapter under its own name.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
	delete(r.failures, a.Name())
}

// MarkFailed records that a variant could not be loaded. Later requests for
// it report ErrModelUnavailable without affecting other variants.
func (r *Registry) MarkFailed(name string, err error) {
	delete(r.adapters, name)
	r.failures[name] = err
}

// DefaultName returns the name used for empty lookups.
func (r *Registry) DefaultName() string { return r.def }

// Get returns the named adapter. An empty name selects the default variant.
func (r *Registry) Get(name string) (Adapter, error) {
	if name == "" {
		name = r.def
	}
	if a, ok := r.adapters[name]; ok {
		return a, nil
	}
	if err, ok := r.failures[name]; ok {
		return nil, fmt.Errorf("%w: variant %q failed to load: %v", ErrModelUnavailable, name, err)
	}
	return nil, fmt.Errorf("%w: unknown variant %q", ErrModelUnavailable, name)
}

// Status lists every known variant, sorted by name.
func (r *Registry) Status() []VariantStatus {
	var out []VariantStatus
	for name := range r.adapters {
		out = append(out, VariantStatus{Name: name, Available: true, Default: name == r.def})
	}
	for name, err := range r.failures {
		out = append(out, VariantStatus{Name: name, Default: name == r.def, Error: err.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
