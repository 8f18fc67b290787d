package position

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry is the set of live positions this process serves, keyed by
// position address. Positions are registered at startup and never removed;
// an emptied position stays registered and simply values to nothing.
type Registry struct {
	mu        sync.RWMutex
	order     []common.Address
	positions map[common.Address]*ExternalPosition
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		positions: make(map[common.Address]*ExternalPosition),
	}
}

// Add registers a position. Re-registering an address is a configuration
// mistake and fails loudly.
func (r *Registry) Add(p *ExternalPosition) error {
	if p == nil {
		return fmt.Errorf("cannot register a nil position")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.positions[p.Address()]; exists {
		return fmt.Errorf("position %s is already registered", p.Address().Hex())
	}
	r.positions[p.Address()] = p
	r.order = append(r.order, p.Address())
	return nil
}

// Get returns the position at addr, or false when none is registered.
func (r *Registry) Get(addr common.Address) (*ExternalPosition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.positions[addr]
	return p, ok
}

// List returns all registered positions in registration order.
func (r *Registry) List() []*ExternalPosition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ExternalPosition, 0, len(r.order))
	for _, addr := range r.order {
		out = append(out, r.positions[addr])
	}
	return out
}
