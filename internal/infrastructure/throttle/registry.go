// Package throttle provides a generic keyed cooldown gate used to blunt
// coupon brute-forcing, accidental double checkout submission, and
// reconciliation bursts.
package throttle

import (
	"sync"
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/errs"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
)

// Registry tracks the last accepted invocation per key. For a given key, two
// invocations are never both accepted within the configured minimum interval:
// the timestamp is written before the action runs, so overlapping concurrent
// calls for the same key cannot both pass.
type Registry struct {
	mu             sync.Mutex
	lastInvocation map[string]time.Time
	logger         *logging.ChanneledLogger

	// now is swappable for tests
	now func() time.Time
}

// NewRegistry creates an empty throttle registry.
func NewRegistry(logger *logging.ChanneledLogger) *Registry {
	return &Registry{
		lastInvocation: make(map[string]time.Time),
		logger:         logger,
		now:            time.Now,
	}
}

// Attempt runs action unless key is still cooling down. When throttled it
// invokes onThrottled with the remaining wait (if non-nil) and returns a
// ThrottledError; it never retries on the caller's behalf. When the gate
// passes, lastInvocation[key] is set to now before action runs and action's
// own outcome is returned unchanged.
func (r *Registry) Attempt(key string, minInterval time.Duration, action func() error, onThrottled func(remaining time.Duration)) error {
	r.mu.Lock()
	now := r.now()
	if last, exists := r.lastInvocation[key]; exists {
		elapsed := now.Sub(last)
		if elapsed < minInterval {
			remaining := minInterval - elapsed
			r.mu.Unlock()

			if r.logger != nil {
				r.logger.Throttle().Debug("Attempt throttled", "key", key, "remaining", remaining)
			}
			if onThrottled != nil {
				onThrottled(remaining)
			}
			return &errs.ThrottledError{Key: key, Remaining: remaining}
		}
	}
	r.lastInvocation[key] = now
	r.mu.Unlock()

	return action()
}

// Remaining reports the cooldown left for a key without consuming an attempt.
func (r *Registry) Remaining(key string, minInterval time.Duration) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, exists := r.lastInvocation[key]
	if !exists {
		return 0
	}
	remaining := minInterval - r.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears a key's cooldown. Used when a session's cart is cleared so the
// next shopper action is not penalized by the old session's history.
func (r *Registry) Reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lastInvocation, key)
}

// Snapshot returns the tracked keys and their last invocation times for the
// ops surface.
func (r *Registry) Snapshot() map[string]time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]time.Time, len(r.lastInvocation))
	for key, last := range r.lastInvocation {
		snapshot[key] = last
	}
	return snapshot
}

// SetNowFunc overrides the registry clock. Tests only.
func (r *Registry) SetNowFunc(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}
