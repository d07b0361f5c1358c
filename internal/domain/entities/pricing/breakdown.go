// Package pricing defines the authoritative price breakdown returned by the
// pricing authority. Checkout decisions consume this type and only this type;
// cart.Estimate is never a substitute.
package pricing

import "math"

// amounts are currency values; comparisons tolerate float representation noise
const epsilon = 0.005

// Breakdown is the server-computed price for a cart snapshot. Fallback marks
// the defined all-zero breakdown shown while the authority is unavailable;
// checkout is blocked whenever Fallback is true.
type Breakdown struct {
	Subtotal                 float64 `json:"subtotal"`
	DeliveryFee              float64 `json:"deliveryFee"`
	ConvenienceFee           float64 `json:"convenienceFee"`
	AppliedDiscount          float64 `json:"appliedDiscount"`
	Total                    float64 `json:"total"`
	FreeDeliveryThreshold    float64 `json:"freeDeliveryThreshold"`
	RemainingForFreeDelivery float64 `json:"remainingForFreeDelivery"`
	Fallback                 bool    `json:"fallback"`
}

// ZeroFallback is the breakdown displayed when the authority is unreachable
// or returned malformed data. It is safe: nothing in it can be trusted for
// checkout, and consumers must treat Fallback as a hard gate.
func ZeroFallback() Breakdown {
	return Breakdown{Fallback: true}
}

// Validate enforces the breakdown invariants the client must not accept a
// violation of, regardless of what the authority sent:
//
//	total == subtotal + deliveryFee + convenienceFee - appliedDiscount
//	deliveryFee == 0 iff subtotal >= freeDeliveryThreshold
//	remainingForFreeDelivery == max(0, freeDeliveryThreshold - subtotal)
//	appliedDiscount <= subtotal
func (b Breakdown) Validate() bool {
	if b.Subtotal < 0 || b.DeliveryFee < 0 || b.ConvenienceFee < 0 || b.AppliedDiscount < 0 {
		return false
	}
	if b.AppliedDiscount > b.Subtotal+epsilon {
		return false
	}
	expectedTotal := b.Subtotal + b.DeliveryFee + b.ConvenienceFee - b.AppliedDiscount
	if math.Abs(b.Total-expectedTotal) > epsilon {
		return false
	}
	if b.FreeDeliveryThreshold > 0 {
		freeDelivery := b.Subtotal >= b.FreeDeliveryThreshold-epsilon
		if freeDelivery && b.DeliveryFee != 0 {
			return false
		}
		if !freeDelivery && b.Subtotal > 0 && b.DeliveryFee == 0 {
			return false
		}
		expectedRemaining := math.Max(0, b.FreeDeliveryThreshold-b.Subtotal)
		if math.Abs(b.RemainingForFreeDelivery-expectedRemaining) > epsilon {
			return false
		}
	}
	return true
}
