package plugins

import (
	"sort"
	"strings"
	"sync"
)

// Descriptor describes a registered plugin for editor listings.
type Descriptor struct {
	Identifier string
	Name       string
}

type registration struct {
	descriptor Descriptor
	factory    Factory
}

// RegisterOption configures a registration.
type RegisterOption func(*registration)

// WithDisplayName sets the name shown in the editor plugin picker.
func WithDisplayName(name string) RegisterOption {
	return func(r *registration) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			r.descriptor.Name = trimmed
		}
	}
}

// Registry maps plugin identifiers to factories. It is populated at start-up.
type Registry struct {
	mu            sync.RWMutex
	registrations map[string]registration
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string]registration),
	}
}

// Register adds or replaces the factory stored under id.
func (r *Registry) Register(id string, factory Factory, opts ...RegisterOption) error {
	key := canonicalKey(id)
	if key == "" {
		return ErrPluginIdentifierRequired
	}
	if factory == nil {
		return ErrPluginFactoryRequired
	}
	entry := registration{
		descriptor: Descriptor{Identifier: key, Name: key},
		factory:    factory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&entry)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registrations == nil {
		r.registrations = make(map[string]registration)
	}
	r.registrations[key] = entry
	return nil
}

// Resolve returns the factory registered under id.
func (r *Registry) Resolve(id string) (Factory, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.registrations[canonicalKey(id)]
	if !ok {
		return nil, false
	}
	return entry.factory, true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Resolve(id)
	return ok
}

// List returns the registered plugins sorted by identifier.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.registrations))
	for _, entry := range r.registrations {
		out = append(out, entry.descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// Filter returns descriptors restricted to ids, preserving the order of ids.
// Unknown ids are skipped.
func (r *Registry) Filter(ids []string) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		if entry, ok := r.registrations[canonicalKey(id)]; ok {
			out = append(out, entry.descriptor)
		}
	}
	return out
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
