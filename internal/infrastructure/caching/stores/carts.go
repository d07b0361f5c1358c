// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
)

// CartsStore holds the per-session authoritative carts. Mutations run under
// the store lock via Mutate, so each logical mutation is atomic with respect
// to every other cart operation for that session.
type CartsStore struct {
	carts  map[string]*cart.Cart
	mu     sync.RWMutex
	logger *logging.ChanneledLogger
}

// NewCartsStore creates a new carts cache store
func NewCartsStore(logger *logging.ChanneledLogger) *CartsStore {
	if logger != nil {
		logger.Cart().Info("Initializing carts store")
	}
	return &CartsStore{
		carts:  make(map[string]*cart.Cart),
		logger: logger,
	}
}

// GetOrCreate returns the session's cart, creating an empty one on first use.
func (cs *CartsStore) GetOrCreate(sessionID string) *cart.Cart {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if existing, ok := cs.carts[sessionID]; ok {
		return existing
	}

	created := cart.New(sessionID)
	cs.carts[sessionID] = created

	if cs.logger != nil {
		cs.logger.Cart().Debug("Cart created", "sessionId", sessionID)
	}
	return created
}

// Snapshot returns a deep copy of the session's cart, or false when the
// session has no cart yet. Reads never mutate store state.
func (cs *CartsStore) Snapshot(sessionID string) (*cart.Cart, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	existing, ok := cs.carts[sessionID]
	if !ok {
		return nil, false
	}
	return existing.Snapshot(), true
}

// Mutate runs fn against the session's cart under the store lock. fn's error
// is returned unchanged; a nil error means the mutation was applied.
func (cs *CartsStore) Mutate(sessionID string, fn func(c *cart.Cart) error) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	existing, ok := cs.carts[sessionID]
	if !ok {
		existing = cart.New(sessionID)
		cs.carts[sessionID] = existing
	}
	return fn(existing)
}

// Remove drops a session's cart entirely.
func (cs *CartsStore) Remove(sessionID string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.carts, sessionID)

	if cs.logger != nil {
		cs.logger.Cart().Debug("Cart removed", "sessionId", sessionID)
	}
}

// Count reports the number of live carts.
func (cs *CartsStore) Count() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.carts)
}

// EvictIdle removes carts untouched since the cutoff and returns the evicted
// session IDs so the caller can drop companion state.
func (cs *CartsStore) EvictIdle(cutoff time.Time) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var evicted []string
	for sessionID, c := range cs.carts {
		if c.UpdatedAt.Before(cutoff) {
			delete(cs.carts, sessionID)
			evicted = append(evicted, sessionID)
		}
	}

	if cs.logger != nil && len(evicted) > 0 {
		cs.logger.Cart().Info("Idle carts evicted", "count", len(evicted))
	}
	return evicted
}
