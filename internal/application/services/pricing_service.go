package services

import (
	"context"
	"sync"
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/authorities"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/manager"
	"github.com/owlcart/owlcart-go/internal/infrastructure/messaging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/infrastructure/throttle"
	"github.com/owlcart/owlcart-go/pkg/config"
)

// PricingService reconciles server-side totals for each session's cart.
// Every cart mutation triggers a reconciliation request; responses carry the
// sequence number they were issued with, and a response older than the newest
// applied one is discarded so totals can only move forward. When the
// authority fails the zeroed fallback breakdown is applied instead, which
// blocks checkout until a good response lands.
type PricingService struct {
	cacheManager *manager.Manager
	authority    authorities.PricingAuthority
	throttles    *throttle.Registry
	broadcaster  *messaging.PriceBroadcaster
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker

	mu      sync.Mutex
	pending map[string]bool // sessions with a trailing reconcile scheduled
}

// NewPricingService creates a new pricing reconciliation service.
func NewPricingService(
	cacheManager *manager.Manager,
	authority authorities.PricingAuthority,
	throttles *throttle.Registry,
	broadcaster *messaging.PriceBroadcaster,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *PricingService {
	return &PricingService{
		cacheManager: cacheManager,
		authority:    authority,
		throttles:    throttles,
		broadcaster:  broadcaster,
		logger:       logger,
		perfTracker:  perfTracker,
		pending:      make(map[string]bool),
	}
}

// RequestReconciliation asks for a fresh authoritative breakdown for the
// session's current cart. Bursts are absorbed by a per-session cooldown with
// a trailing re-request, so a rapid run of +1 taps costs one in-flight call
// now and exactly one more when the cooldown lapses.
func (s *PricingService) RequestReconciliation(sessionID string) {
	key := "reconcile:" + sessionID
	_ = s.throttles.Attempt(key, config.ReconcileThrottleInterval, func() error {
		s.reconcileNow(sessionID)
		return nil
	}, func(remaining time.Duration) {
		s.scheduleTrailing(sessionID, remaining)
	})
}

// Latest returns the newest applied breakdown for the session. The boolean is
// false until the first reconciliation response has been applied; callers
// must not substitute a locally computed estimate.
func (s *PricingService) Latest(sessionID string) (pricing.Breakdown, bool) {
	return s.cacheManager.Pricing().Latest(sessionID)
}

// reconcileNow snapshots the cart, issues a sequence number, and resolves the
// authority call on its own goroutine.
func (s *PricingService) reconcileNow(sessionID string) {
	snapshot, exists := s.cacheManager.Carts().Snapshot(sessionID)
	if !exists {
		return
	}

	fingerprint := snapshot.Fingerprint()
	seq := s.cacheManager.Pricing().IssueSeq(sessionID)

	marker := s.perfTracker.StartOperation("pricing_reconcile", sessionID)
	marker.AddMetadata("seq", seq)

	go func() {
		defer marker.Complete()

		ctx, cancel := context.WithTimeout(context.Background(), config.RemoteCallTimeout)
		defer cancel()

		breakdown, err := s.authority.ComputePrice(ctx, snapshot.Items, snapshot.CouponCode)
		if err != nil {
			s.logger.Pricing().Warn("Reconciliation failed, applying zero fallback",
				"sessionId", sessionID, "seq", seq, "error", err.Error())
			marker.SetError(err)
			s.apply(sessionID, seq, fingerprint, pricing.ZeroFallback())
			return
		}

		if !breakdown.Validate() {
			s.logger.Pricing().Error("Authority returned inconsistent breakdown, applying zero fallback",
				"sessionId", sessionID, "seq", seq, "total", breakdown.Total)
			marker.SetSuccess(false)
			s.apply(sessionID, seq, fingerprint, pricing.ZeroFallback())
			return
		}

		marker.SetSuccess(true)
		s.apply(sessionID, seq, fingerprint, breakdown)
	}()
}

// apply installs a response if it is still the newest and notifies watchers.
// The fingerprint pins the breakdown to the cart it priced.
func (s *PricingService) apply(sessionID string, seq uint64, fingerprint string, breakdown pricing.Breakdown) {
	if !s.cacheManager.Pricing().ApplyIfNewest(sessionID, seq, fingerprint, breakdown) {
		return
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastPriceUpdate(sessionID, seq, breakdown)
	}
}

// scheduleTrailing arranges exactly one re-request per session once the
// current cooldown lapses, so the last mutation in a burst is always priced.
func (s *PricingService) scheduleTrailing(sessionID string, remaining time.Duration) {
	s.mu.Lock()
	if s.pending[sessionID] {
		s.mu.Unlock()
		return
	}
	s.pending[sessionID] = true
	s.mu.Unlock()

	time.AfterFunc(remaining, func() {
		s.mu.Lock()
		delete(s.pending, sessionID)
		s.mu.Unlock()
		s.RequestReconciliation(sessionID)
	})
}
