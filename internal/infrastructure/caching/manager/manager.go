// Package manager provides centralized cache operations by delegating to the
// specialized stores.
package manager

import (
	"time"

	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/stores"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
)

// Manager owns the session-scoped stores: live carts and pricing state.
type Manager struct {
	cartsStore   *stores.CartsStore
	pricingStore *stores.PricingStore
	logger       *logging.ChanneledLogger
}

// NewManager wires the stores.
func NewManager(logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.System().Info("Initializing cache manager", "stores", []string{"carts", "pricing"})
	}
	return &Manager{
		cartsStore:   stores.NewCartsStore(logger),
		pricingStore: stores.NewPricingStore(logger),
		logger:       logger,
	}
}

// Carts returns the carts store.
func (m *Manager) Carts() *stores.CartsStore { return m.cartsStore }

// Pricing returns the pricing state store.
func (m *Manager) Pricing() *stores.PricingStore { return m.pricingStore }

// RemoveSession drops everything held for a session.
func (m *Manager) RemoveSession(sessionID string) {
	m.cartsStore.Remove(sessionID)
	m.pricingStore.Remove(sessionID)
}

// EvictIdleCarts removes carts idle longer than maxIdle along with their
// pricing state.
func (m *Manager) EvictIdleCarts(maxIdle time.Duration) int {
	evicted := m.cartsStore.EvictIdle(time.Now().UTC().Add(-maxIdle))
	for _, sessionID := range evicted {
		m.pricingStore.Remove(sessionID)
	}
	return len(evicted)
}

// Summary reports store sizes for the ops surface.
func (m *Manager) Summary() map[string]any {
	return map[string]any{
		"carts":         m.cartsStore.Count(),
		"pricingStates": m.pricingStore.Count(),
	}
}
