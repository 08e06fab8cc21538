package variants

import (
	"errors"
	"fmt"
	"sync"
)

var ErrFlavorRequired = errors.New("variants: flavor required")

// Registry holds the layout flavors in registration order. The base flavor is
// implicit and cannot be registered.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	flavors map[string]Flavor
}

// NewRegistry registers flavors in the given order.
func NewRegistry(flavors ...Flavor) (*Registry, error) {
	r := &Registry{flavors: map[string]Flavor{}}
	for _, flavor := range flavors {
		if err := r.Register(flavor); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns the built-in visitor and entity flavors.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Anonymous(),
		Authenticated(),
		Person(),
		Organization(),
		Product(),
		Category(),
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Register appends flavor. Identifiers must be unique.
func (r *Registry) Register(flavor Flavor) error {
	if flavor == nil {
		return ErrFlavorRequired
	}
	id := flavor.Identifier()
	if id == "" {
		return ErrFlavorIdentifierRequired
	}
	if id == BaseIdentifier {
		return fmt.Errorf("variants: %q is reserved", BaseIdentifier)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.flavors[id]; exists {
		return fmt.Errorf("variants: flavor %q already registered", id)
	}
	r.flavors[id] = flavor
	r.order = append(r.order, id)
	return nil
}

// Get returns the flavor registered under id. "base" resolves to Base.
func (r *Registry) Get(id string) (Flavor, bool) {
	if id == BaseIdentifier {
		return Base{}, true
	}
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	flavor, ok := r.flavors[id]
	return flavor, ok
}

// List returns the registered flavors in registration order, without Base.
func (r *Registry) List() []Flavor {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Flavor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.flavors[id])
	}
	return out
}
