package stores

import (
	"sync"
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/types"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
)

// PricingStore keeps the per-session reconciliation state: the latest applied
// breakdown and the sequence-number discipline that discards stale responses.
type PricingStore struct {
	states map[string]*types.PricingState
	mu     sync.Mutex
	logger *logging.ChanneledLogger
}

// NewPricingStore creates a new pricing state store
func NewPricingStore(logger *logging.ChanneledLogger) *PricingStore {
	if logger != nil {
		logger.Pricing().Info("Initializing pricing state store")
	}
	return &PricingStore{
		states: make(map[string]*types.PricingState),
		logger: logger,
	}
}

// IssueSeq allocates the next monotonically increasing sequence number for a
// session's reconciliation request.
func (ps *PricingStore) IssueSeq(sessionID string) uint64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	state := ps.stateLocked(sessionID)
	state.IssuedSeq++
	return state.IssuedSeq
}

// AppliedFingerprint returns the fingerprint of the cart the latest applied
// breakdown was computed for. Empty until the first response lands. Issued
// but unresolved requests never move it; checkout compares against it to
// refuse totals priced for a different cart.
func (ps *PricingStore) AppliedFingerprint(sessionID string) string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.stateLocked(sessionID).AppliedFingerprint
}

// ApplyIfNewest stores a breakdown only when its sequence number is the
// highest applied so far, returning whether it was applied. Stale responses
// are discarded, never merged. The fingerprint records which cart contents
// the breakdown was computed for.
func (ps *PricingStore) ApplyIfNewest(sessionID string, seq uint64, fingerprint string, breakdown pricing.Breakdown) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	state := ps.stateLocked(sessionID)
	if seq <= state.AppliedSeq {
		if ps.logger != nil {
			ps.logger.Pricing().Debug("Stale reconciliation response discarded", "sessionId", sessionID, "seq", seq, "appliedSeq", state.AppliedSeq)
		}
		return false
	}

	state.AppliedSeq = seq
	state.Latest = breakdown
	state.AppliedFingerprint = fingerprint
	state.UpdatedAt = time.Now().UTC()
	return true
}

// Latest returns the most recently applied breakdown. The boolean is false
// until the first reconciliation result (or fallback) lands.
func (ps *PricingStore) Latest(sessionID string) (pricing.Breakdown, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	state, ok := ps.states[sessionID]
	if !ok || state.AppliedSeq == 0 {
		return pricing.Breakdown{}, false
	}
	return state.Latest, true
}

// Remove drops a session's pricing state.
func (ps *PricingStore) Remove(sessionID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	delete(ps.states, sessionID)
}

// Count reports the number of tracked sessions.
func (ps *PricingStore) Count() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.states)
}

// stateLocked returns the session state, creating it if needed. Caller holds
// ps.mu.
func (ps *PricingStore) stateLocked(sessionID string) *types.PricingState {
	state, ok := ps.states[sessionID]
	if !ok {
		state = &types.PricingState{}
		ps.states[sessionID] = state
	}
	return state
}
