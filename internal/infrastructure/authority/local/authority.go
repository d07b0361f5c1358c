// Package local implements the pricing, coupon and stock authority contracts
// against the catalog database for self-hosted deployments. It is the
// reference implementation of the server-trust rules: prices come from the
// catalog, not the submitted items, and a discount can never exceed the
// subtotal it was validated against.
package local

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/authorities"
	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/entities/catalog"
	"github.com/owlcart/owlcart-go/internal/domain/entities/coupon"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/persistence/database"
)

// FeeSchedule holds the delivery economics applied by this authority.
type FeeSchedule struct {
	FreeDeliveryThreshold float64
	DeliveryFee           float64
	ConvenienceFee        float64
}

// Authority serves all three collaborator contracts from one catalog database.
type Authority struct {
	db     *database.DB
	fees   FeeSchedule
	logger *logging.ChanneledLogger
}

var (
	_ authorities.PricingAuthority = (*Authority)(nil)
	_ authorities.CouponAuthority  = (*Authority)(nil)
	_ authorities.StockAuthority   = (*Authority)(nil)
	_ authorities.ProductSource    = (*Authority)(nil)
)

// New creates a local authority over an already-connected catalog database.
func New(db *database.DB, fees FeeSchedule, logger *logging.ChanneledLogger) *Authority {
	return &Authority{db: db, fees: fees, logger: logger}
}

// ComputePrice derives the authoritative breakdown for a cart snapshot.
// Idempotent for identical input. Unit prices are read from the catalog;
// submitted prices are only used for items whose catalog row was removed
// after they were added.
func (a *Authority) ComputePrice(ctx context.Context, items []*cart.Item, couponCode string) (pricing.Breakdown, error) {
	start := time.Now()

	subtotal := 0.0
	for _, item := range items {
		unitPrice, err := a.unitPrice(ctx, item)
		if err != nil {
			return pricing.Breakdown{}, err
		}
		subtotal += unitPrice * float64(item.Quantity)
	}

	discount := 0.0
	if couponCode != "" {
		result, err := a.ValidateCoupon(ctx, couponCode, subtotal)
		if err != nil {
			return pricing.Breakdown{}, err
		}
		if result.Valid {
			discount = result.DiscountAmount
		}
	}

	breakdown := a.BuildBreakdown(subtotal, discount)

	if a.logger != nil {
		a.logger.Pricing().Debug("Breakdown computed",
			"items", len(items), "subtotal", breakdown.Subtotal, "total", breakdown.Total, "duration", time.Since(start))
	}
	return breakdown, nil
}

// BuildBreakdown assembles a breakdown from a subtotal and an
// already-validated discount, applying the fee schedule. The discount is
// clipped to the subtotal here as well: this authority independently enforces
// discount <= subtotal no matter what the caller validated.
func (a *Authority) BuildBreakdown(subtotal, discount float64) pricing.Breakdown {
	if subtotal <= 0 {
		return pricing.Breakdown{FreeDeliveryThreshold: a.fees.FreeDeliveryThreshold, RemainingForFreeDelivery: a.fees.FreeDeliveryThreshold}
	}
	if discount > subtotal {
		discount = subtotal
	}

	deliveryFee := a.fees.DeliveryFee
	if subtotal >= a.fees.FreeDeliveryThreshold {
		deliveryFee = 0
	}

	return pricing.Breakdown{
		Subtotal:                 round2(subtotal),
		DeliveryFee:              deliveryFee,
		ConvenienceFee:           a.fees.ConvenienceFee,
		AppliedDiscount:          round2(discount),
		Total:                    round2(subtotal + deliveryFee + a.fees.ConvenienceFee - discount),
		FreeDeliveryThreshold:    a.fees.FreeDeliveryThreshold,
		RemainingForFreeDelivery: round2(math.Max(0, a.fees.FreeDeliveryThreshold-subtotal)),
	}
}

// ValidateCoupon checks a code against the coupons table and computes the
// discount for the given order amount, never exceeding it.
func (a *Authority) ValidateCoupon(ctx context.Context, code string, orderAmount float64) (coupon.ValidationResult, error) {
	canonical := coupon.Canonicalize(code)

	var (
		discountType   string
		discountValue  float64
		minOrderAmount float64
		maxUses        int
		usedCount      int
		active         bool
		message        string
	)
	err := a.db.QueryRowContext(ctx,
		`SELECT discount_type, discount_value, min_order_amount, max_uses, used_count, active, message
		 FROM coupons WHERE code = ?`, canonical,
	).Scan(&discountType, &discountValue, &minOrderAmount, &maxUses, &usedCount, &active, &message)
	if err == sql.ErrNoRows {
		return coupon.ValidationResult{Valid: false, Message: "Coupon not found", CouponCode: canonical}, nil
	}
	if err != nil {
		return coupon.ValidationResult{}, fmt.Errorf("coupon lookup failed: %w", err)
	}

	switch {
	case !active:
		return coupon.ValidationResult{Valid: false, Message: "Coupon is no longer active", CouponCode: canonical}, nil
	case maxUses > 0 && usedCount >= maxUses:
		return coupon.ValidationResult{Valid: false, Message: "Coupon usage limit reached", CouponCode: canonical}, nil
	case orderAmount < minOrderAmount:
		return coupon.ValidationResult{
			Valid:      false,
			Message:    fmt.Sprintf("Order must be at least %.2f to use this coupon", minOrderAmount),
			CouponCode: canonical,
		}, nil
	}

	amount := discountValue
	if discountType == "percent" {
		amount = orderAmount * discountValue / 100
	}
	if amount > orderAmount {
		amount = orderAmount
	}

	if message == "" {
		message = "Coupon applied"
	}
	return coupon.ValidationResult{
		Valid:          true,
		Message:        message,
		DiscountAmount: round2(amount),
		CouponCode:     canonical,
	}, nil
}

// ReportCouponUsage increments the usage counter. The increment is atomic in
// SQL, but nothing ties it transactionally to the validation that preceded
// it; callers treat this as best-effort accounting.
func (a *Authority) ReportCouponUsage(ctx context.Context, code string) error {
	_, err := a.db.ExecContext(ctx,
		`UPDATE coupons SET used_count = used_count + 1 WHERE code = ?`, coupon.Canonicalize(code))
	if err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	return nil
}

// GetStock reports on-hand stock for a product. Unknown products report zero,
// which keeps uncatalogued items out of carts; unitPrice handles the rows
// that disappear after an item got in.
func (a *Authority) GetStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := a.db.QueryRowContext(ctx,
		`SELECT stock_quantity FROM products WHERE id = ?`, productID).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stock lookup failed: %w", err)
	}
	return stock, nil
}

// ListProducts returns the full catalog as ranking candidates.
func (a *Authority) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, name, price, original_price, image, category, category_id, description, stock_quantity, is_featured
		 FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("product listing failed: %w", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.OriginalPrice, &p.Image, &p.Category, &p.CategoryID, &p.Description, &p.StockQuantity, &p.IsFeatured); err != nil {
			return nil, err
		}
		if p.OriginalPrice < p.Price {
			p.OriginalPrice = p.Price
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// unitPrice resolves an item's price from the catalog. Items only enter a
// cart after the stock gate saw a catalog row, so a missing row here means
// the catalog changed after the add. Falling back to the submitted price
// keeps the cart priceable instead of zeroing it out.
func (a *Authority) unitPrice(ctx context.Context, item *cart.Item) (float64, error) {
	var price float64
	err := a.db.QueryRowContext(ctx,
		`SELECT price FROM products WHERE id = ?`, item.ID).Scan(&price)
	if err == sql.ErrNoRows {
		if a.logger != nil {
			a.logger.Pricing().Warn("Product missing from catalog, using submitted price", "productId", item.ID)
		}
		return item.Price, nil
	}
	if err != nil {
		return 0, fmt.Errorf("price lookup failed for %s: %w", item.ID, err)
	}
	return price, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
