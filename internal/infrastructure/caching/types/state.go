// Package types defines the cache state structures shared by the stores.
package types

import (
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
)

// PricingState holds the reconciliation state for one session: the last
// applied breakdown, the sequence number it arrived under, and the fingerprint
// of the cart contents it was computed for. The fingerprint moves only when a
// response is applied, never when a request is issued.
type PricingState struct {
	Latest             pricing.Breakdown
	AppliedSeq         uint64
	IssuedSeq          uint64
	AppliedFingerprint string
	UpdatedAt          time.Time
}
