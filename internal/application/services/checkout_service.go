package services

import (
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/domain/errs"
	domainservices "github.com/owlcart/owlcart-go/internal/domain/services"
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/manager"
	"github.com/owlcart/owlcart-go/internal/infrastructure/email"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/infrastructure/security"
	"github.com/owlcart/owlcart-go/internal/infrastructure/throttle"
	"github.com/owlcart/owlcart-go/pkg/config"
)

// Handoff is the result of a successful checkout: a minted order ID and a
// signed token carrying the validated totals for the downstream payment step.
type Handoff struct {
	OrderID   string            `json:"orderId"`
	Token     string            `json:"token"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	ItemCount int               `json:"itemCount"`
}

// CheckoutService gates and executes the handoff from cart to order. It only
// ever consumes authoritative breakdowns; a fallback or missing breakdown
// blocks checkout outright.
type CheckoutService struct {
	cacheManager *manager.Manager
	gate         *domainservices.EligibilityGate
	pricing      *PricingService
	throttles    *throttle.Registry
	emailer      email.Service
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewCheckoutService creates a new checkout service. emailer may be nil when
// no email provider is configured; receipts are skipped in that case.
func NewCheckoutService(
	cacheManager *manager.Manager,
	gate *domainservices.EligibilityGate,
	pricingService *PricingService,
	throttles *throttle.Registry,
	emailer email.Service,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *CheckoutService {
	return &CheckoutService{
		cacheManager: cacheManager,
		gate:         gate,
		pricing:      pricingService,
		throttles:    throttles,
		emailer:      emailer,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Eligibility evaluates the category gate against the session's current cart.
func (s *CheckoutService) Eligibility(sessionID string) domainservices.EligibilityDecision {
	snapshot, exists := s.cacheManager.Carts().Snapshot(sessionID)
	if !exists {
		return s.gate.Evaluate(nil)
	}
	return s.gate.Evaluate(snapshot.DistinctCategoryIDs())
}

// Checkout runs the full handoff: throttle, eligibility gate, authoritative
// total check, order ID mint, token signing, receipt email. On success the
// session's cart and pricing state are cleared.
func (s *CheckoutService) Checkout(sessionID, receiptEmail string) (*Handoff, error) {
	marker := s.perfTracker.StartOperation("checkout", sessionID)
	defer marker.Complete()

	var handoff *Handoff
	err := s.throttles.Attempt("checkout:"+sessionID, config.CheckoutThrottleInterval, func() error {
		var innerErr error
		handoff, innerErr = s.execute(sessionID, receiptEmail)
		return innerErr
	}, func(remaining time.Duration) {
		s.logger.Checkout().Debug("Checkout attempt throttled", "sessionId", sessionID, "remaining", remaining)
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	marker.SetSuccess(true)
	return handoff, nil
}

func (s *CheckoutService) execute(sessionID, receiptEmail string) (*Handoff, error) {
	snapshot, exists := s.cacheManager.Carts().Snapshot(sessionID)
	if !exists || len(snapshot.Items) == 0 {
		return nil, &errs.ValidationError{Field: "cart", Reason: "cart is empty"}
	}

	decision := s.gate.Evaluate(snapshot.DistinctCategoryIDs())
	if !decision.CheckoutEnabled {
		return nil, &errs.ValidationError{
			Field:  "categories",
			Reason: "cart does not meet the category requirements for checkout",
		}
	}

	breakdown, ok := s.pricing.Latest(sessionID)
	if !ok || breakdown.Fallback {
		// No authoritative total on hand. Ask for one and refuse the handoff;
		// a locally computed estimate is never a substitute.
		s.pricing.RequestReconciliation(sessionID)
		return nil, &errs.UnavailableError{Authority: "pricing"}
	}

	// The breakdown must have been computed for exactly this cart. A newer
	// request still in flight does not count; its result has not landed.
	if s.cacheManager.Pricing().AppliedFingerprint(sessionID) != snapshot.Fingerprint() {
		s.pricing.RequestReconciliation(sessionID)
		return nil, &errs.UnavailableError{Authority: "pricing"}
	}

	orderID := security.GenerateULID()
	token, err := security.GenerateHandoffToken(security.HandoffClaims{
		OrderID:   orderID,
		SessionID: sessionID,
		Total:     breakdown.Total,
		Subtotal:  breakdown.Subtotal,
		Coupon:    snapshot.CouponCode,
	}, config.HandoffTokenSecret, config.HandoffTokenTTL)
	if err != nil {
		s.logger.Checkout().Error("Failed to sign handoff token", "sessionId", sessionID, "error", err.Error())
		return nil, err
	}

	s.logger.Checkout().Info("Checkout handoff",
		"sessionId", sessionID, "orderId", orderID, "total", breakdown.Total, "items", snapshot.ItemCount())

	if s.emailer != nil && receiptEmail != "" {
		go s.sendReceipt(receiptEmail, orderID, snapshot.Items, breakdown)
	}

	handoff := &Handoff{
		OrderID:   orderID,
		Token:     token,
		Breakdown: breakdown,
		ItemCount: snapshot.ItemCount(),
	}

	s.cacheManager.RemoveSession(sessionID)
	s.throttles.Reset("coupon:" + sessionID)
	s.throttles.Reset("reconcile:" + sessionID)

	return handoff, nil
}

// sendReceipt delivers the order receipt. Failures are logged and never
// affect the completed handoff.
func (s *CheckoutService) sendReceipt(toEmail, orderID string, items []*cart.Item, breakdown pricing.Breakdown) {
	if err := s.emailer.SendOrderReceipt(toEmail, orderID, items, breakdown); err != nil {
		s.logger.Checkout().Warn("Receipt email failed", "orderId", orderID, "error", err.Error())
	}
}
