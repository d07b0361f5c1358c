// Package authorities defines the contracts for the remote collaborators the
// engine depends on. Implementations live in infrastructure; the engine never
// trusts a locally computed total where these contracts apply.
package authorities

import (
	"context"

	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/entities/catalog"
	"github.com/owlcart/owlcart-go/internal/domain/entities/coupon"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
)

// PricingAuthority computes the authoritative price breakdown for a cart
// snapshot. It must be idempotent for identical input and must independently
// enforce discount <= subtotal.
type PricingAuthority interface {
	ComputePrice(ctx context.Context, items []*cart.Item, couponCode string) (pricing.Breakdown, error)
}

// CouponAuthority is the sole source of truth for coupon eligibility and
// discount amount. ReportCouponUsage is fire-and-forget: its failure is
// logged, never rolled back into the already-applied discount.
type CouponAuthority interface {
	ValidateCoupon(ctx context.Context, code string, orderAmount float64) (coupon.ValidationResult, error)
	ReportCouponUsage(ctx context.Context, code string) error
}

// StockAuthority reports on-hand stock; consulted before an add-to-cart so a
// zero-stock product cannot be added.
type StockAuthority interface {
	GetStock(ctx context.Context, productID string) (int, error)
}

// ProductSource lists candidate products for ranking when a recommendation
// request does not carry its own candidates.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}
