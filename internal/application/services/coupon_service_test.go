package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlcart/owlcart-go/internal/domain/entities/coupon"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/domain/errs"
	"github.com/owlcart/owlcart-go/internal/infrastructure/throttle"
)

func newTestCouponService(t *testing.T, authority *stubCouponAuthority) (*CouponService, *throttle.Registry) {
	t.Helper()
	pricingAuthority := &scriptedPricingAuthority{results: []pricing.Breakdown{
		validTestBreakdown(100), validTestBreakdown(100),
	}}
	pricingService, cacheManager := newTestPricingService(t, pricingAuthority)
	throttles := throttle.NewRegistry(nil)
	svc := NewCouponService(cacheManager, authority, throttles, pricingService, pricingService.logger, newTestTracker())

	addTestItem(t, cacheManager, "s1", "p1", "snacks", 100, 1)
	return svc, throttles
}

func TestApplyRejectsMalformedCodeWithoutNetworkCall(t *testing.T) {
	authority := &stubCouponAuthority{}
	svc, _ := newTestCouponService(t, authority)

	tests := []string{"AB", "bad code!", "<script>", ""}
	for _, raw := range tests {
		_, err := svc.Apply(context.Background(), "s1", raw)
		var formatErr *errs.FormatError
		require.ErrorAs(t, err, &formatErr, "code %q", raw)
	}
	assert.Zero(t, authority.validationCount())
}

func TestApplyAttachesValidCoupon(t *testing.T) {
	authority := &stubCouponAuthority{result: coupon.ValidationResult{
		Valid:          true,
		Message:        "Coupon applied",
		DiscountAmount: 10,
		CouponCode:     "SAVE10",
	}}
	svc, _ := newTestCouponService(t, authority)

	result, err := svc.Apply(context.Background(), "s1", "  save10 ")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 10.0, result.DiscountAmount)

	snapshot, ok := svc.cacheManager.Carts().Snapshot("s1")
	require.True(t, ok)
	assert.Equal(t, "SAVE10", snapshot.CouponCode)
	assert.Equal(t, 10.0, snapshot.CouponDiscount)

	// Usage reporting is fire-and-forget but should happen.
	require.Eventually(t, func() bool {
		authority.mu.Lock()
		defer authority.mu.Unlock()
		return len(authority.usageCodes) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestApplyRejectsDiscountExceedingSubtotal(t *testing.T) {
	authority := &stubCouponAuthority{result: coupon.ValidationResult{
		Valid:          true,
		DiscountAmount: 150, // cart subtotal is 100
		CouponCode:     "TOOBIG",
	}}
	svc, _ := newTestCouponService(t, authority)

	result, err := svc.Apply(context.Background(), "s1", "TOOBIG")
	require.NoError(t, err)
	assert.False(t, result.Valid)

	snapshot, _ := svc.cacheManager.Carts().Snapshot("s1")
	assert.Empty(t, snapshot.CouponCode)
	assert.Zero(t, snapshot.CouponDiscount)
}

func TestApplyPassesThroughAuthorityRejection(t *testing.T) {
	authority := &stubCouponAuthority{result: coupon.ValidationResult{
		Valid:      false,
		Message:    "Coupon not found",
		CouponCode: "NOPE42",
	}}
	svc, _ := newTestCouponService(t, authority)

	result, err := svc.Apply(context.Background(), "s1", "NOPE42")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon not found", result.Message)
}

func TestApplyIsThrottledPerSession(t *testing.T) {
	authority := &stubCouponAuthority{result: coupon.ValidationResult{
		Valid: true, DiscountAmount: 5, CouponCode: "SAVE5",
	}}
	svc, throttles := newTestCouponService(t, authority)

	now := time.Unix(1000, 0)
	throttles.SetNowFunc(func() time.Time { return now })

	_, err := svc.Apply(context.Background(), "s1", "SAVE5")
	require.NoError(t, err)

	// 500ms later the session is still cooling down.
	now = now.Add(500 * time.Millisecond)
	_, err = svc.Apply(context.Background(), "s1", "SAVE5")
	var throttled *errs.ThrottledError
	require.ErrorAs(t, err, &throttled)
	assert.Equal(t, 1500*time.Millisecond, throttled.Remaining)

	// After the cooldown a new attempt passes.
	now = now.Add(2 * time.Second)
	_, err = svc.Apply(context.Background(), "s1", "SAVE5")
	require.NoError(t, err)
}

func TestApplyOnEmptyCart(t *testing.T) {
	authority := &stubCouponAuthority{}
	svc, _ := newTestCouponService(t, authority)

	_, err := svc.Apply(context.Background(), "empty-session", "SAVE10")
	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestRemoveDetachesCoupon(t *testing.T) {
	authority := &stubCouponAuthority{result: coupon.ValidationResult{
		Valid: true, DiscountAmount: 10, CouponCode: "SAVE10",
	}}
	svc, _ := newTestCouponService(t, authority)

	_, err := svc.Apply(context.Background(), "s1", "SAVE10")
	require.NoError(t, err)

	require.NoError(t, svc.Remove("s1"))
	snapshot, _ := svc.cacheManager.Carts().Snapshot("s1")
	assert.Empty(t, snapshot.CouponCode)
	assert.Zero(t, snapshot.CouponDiscount)
}
