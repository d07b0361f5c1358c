package services

import (
	"context"
	"errors"
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/authorities"
	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/entities/coupon"
	"github.com/owlcart/owlcart-go/internal/domain/errs"
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/manager"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/infrastructure/throttle"
	"github.com/owlcart/owlcart-go/pkg/config"
)

// CouponService applies and removes coupons on a session's cart. Codes are
// format-checked and sanitized before any authority call, attempts are
// throttled per session, and the authority's verdict is cross-checked against
// the cart before the discount is attached.
type CouponService struct {
	cacheManager *manager.Manager
	authority    authorities.CouponAuthority
	throttles    *throttle.Registry
	pricing      *PricingService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	cacheManager *manager.Manager,
	authority authorities.CouponAuthority,
	throttles *throttle.Registry,
	pricing *PricingService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *CouponService {
	return &CouponService{
		cacheManager: cacheManager,
		authority:    authority,
		throttles:    throttles,
		pricing:      pricing,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Apply validates a code against the session's cart and attaches the discount
// on success. The returned result carries the user-visible message either way.
func (s *CouponService) Apply(ctx context.Context, sessionID, rawCode string) (coupon.ValidationResult, error) {
	marker := s.perfTracker.StartOperation("coupon_apply", sessionID)
	defer marker.Complete()

	code, err := coupon.CheckFormat(rawCode)
	if err != nil {
		var formatErr *errs.FormatError
		if errors.As(err, &formatErr) {
			s.logger.Coupon().Debug("Coupon rejected before network call",
				"sessionId", sessionID, "code", coupon.Sanitize(coupon.Canonicalize(rawCode)), "reason", formatErr.Reason)
		}
		marker.SetError(err)
		return coupon.ValidationResult{}, err
	}

	var result coupon.ValidationResult
	attemptErr := s.throttles.Attempt("coupon:"+sessionID, config.CouponThrottleInterval, func() error {
		result, err = s.validateAndAttach(ctx, sessionID, code)
		return err
	}, func(remaining time.Duration) {
		s.logger.Coupon().Debug("Coupon attempt throttled", "sessionId", sessionID, "remaining", remaining)
	})
	if attemptErr != nil {
		marker.SetError(attemptErr)
		return coupon.ValidationResult{}, attemptErr
	}

	marker.SetSuccess(result.Valid)
	return result, nil
}

// Remove detaches any applied coupon and re-reconciles.
func (s *CouponService) Remove(sessionID string) error {
	marker := s.perfTracker.StartOperation("coupon_remove", sessionID)
	defer marker.Complete()

	err := s.cacheManager.Carts().Mutate(sessionID, func(c *cart.Cart) error {
		return c.UpdateCouponDiscount(0, "")
	})
	if err != nil {
		marker.SetError(err)
		return err
	}

	s.logger.Coupon().Info("Coupon removed", "sessionId", sessionID)
	marker.SetSuccess(true)
	s.pricing.RequestReconciliation(sessionID)
	return nil
}

func (s *CouponService) validateAndAttach(ctx context.Context, sessionID, code string) (coupon.ValidationResult, error) {
	snapshot, exists := s.cacheManager.Carts().Snapshot(sessionID)
	if !exists || len(snapshot.Items) == 0 {
		return coupon.ValidationResult{}, &errs.ValidationError{Field: "cart", Reason: "cart is empty"}
	}
	subtotal := snapshot.LocalEstimate().Subtotal

	callCtx, cancel := context.WithTimeout(ctx, config.RemoteCallTimeout)
	defer cancel()

	result, err := s.authority.ValidateCoupon(callCtx, code, subtotal)
	if err != nil {
		s.logger.Coupon().Warn("Coupon authority unavailable",
			"sessionId", sessionID, "code", coupon.Sanitize(code), "error", err.Error())
		return coupon.ValidationResult{}, err
	}

	if !result.Valid {
		s.logger.Coupon().Info("Coupon rejected by authority",
			"sessionId", sessionID, "code", coupon.Sanitize(code), "message", result.Message)
		return result, nil
	}

	// The authority's verdict is still cross-checked here. A malformed or
	// oversized discount is treated as invalid rather than clipped.
	if result.DiscountAmount < 0 || result.DiscountAmount > subtotal {
		s.logger.Coupon().Error("Authority discount inconsistent with cart, rejecting",
			"sessionId", sessionID, "code", coupon.Sanitize(code),
			"discount", result.DiscountAmount, "subtotal", subtotal)
		return coupon.ValidationResult{
			Valid:      false,
			Message:    "Coupon could not be applied to this order",
			CouponCode: result.CouponCode,
		}, nil
	}

	err = s.cacheManager.Carts().Mutate(sessionID, func(c *cart.Cart) error {
		if len(c.Items) == 0 {
			return &errs.ValidationError{Field: "cart", Reason: "cart is empty"}
		}
		return c.UpdateCouponDiscount(result.DiscountAmount, result.CouponCode)
	})
	if err != nil {
		return coupon.ValidationResult{}, err
	}

	s.logger.Coupon().Info("Coupon applied",
		"sessionId", sessionID, "code", coupon.Sanitize(result.CouponCode), "discount", result.DiscountAmount)
	s.pricing.RequestReconciliation(sessionID)

	// Usage accounting is best-effort; a failed report is logged and the
	// applied discount stands.
	go func(appliedCode string) {
		reportCtx, reportCancel := context.WithTimeout(context.Background(), config.RemoteCallTimeout)
		defer reportCancel()
		if reportErr := s.authority.ReportCouponUsage(reportCtx, appliedCode); reportErr != nil {
			s.logger.Coupon().Warn("Failed to report coupon usage",
				"code", coupon.Sanitize(appliedCode), "error", reportErr.Error())
		}
	}(result.CouponCode)

	return result, nil
}
