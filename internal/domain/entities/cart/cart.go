// Package cart defines the cart aggregate: the per-session, server-held
// authoritative record of what a shopper has selected. All money amounts on a
// cart are display inputs only; authoritative totals come from the pricing
// authority (see the pricing package).
package cart

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/errs"
)

// Item is a single cart line. ID is the stable product key; within a cart IDs
// are unique and a second add with the same ID merges into quantity.
type Item struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	Image         string  `json:"image"`
	Category      string  `json:"category"`
	CategoryID    string  `json:"category_id"`
	Description   string  `json:"description,omitempty"`
	StockQuantity int     `json:"stock_quantity"`
	Quantity      int     `json:"quantity"`
}

// Cart holds an ordered item sequence plus the currently applied coupon.
// CouponDiscount is non-zero only while CouponCode is set; the pair is cleared
// atomically. Revision increments once per logical mutation.
type Cart struct {
	SessionID      string    `json:"sessionId"`
	Items          []*Item   `json:"items"`
	CouponCode     string    `json:"couponCode,omitempty"`
	CouponDiscount float64   `json:"couponDiscount"`
	Revision       uint64    `json:"revision"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Estimate is the quick local subtotal shown for instant feedback. It is a
// deliberately separate type from pricing.Breakdown and must never be
// substituted where an authoritative breakdown is required.
type Estimate struct {
	Subtotal  float64 `json:"subtotal"`
	ItemCount int     `json:"itemCount"`
}

// New creates an empty cart for a session.
func New(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		Items:     []*Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateCandidate checks the fields AddItem requires. The cart is untouched
// when validation fails.
func ValidateCandidate(candidate *Item) error {
	if candidate == nil {
		return &errs.ValidationError{Reason: "item is required"}
	}
	if strings.TrimSpace(candidate.ID) == "" {
		return &errs.ValidationError{Field: "id", Reason: "must be a non-empty string"}
	}
	if strings.TrimSpace(candidate.Name) == "" {
		return &errs.ValidationError{Field: "name", Reason: "must be a non-empty string"}
	}
	if math.IsNaN(candidate.Price) || math.IsInf(candidate.Price, 0) || candidate.Price <= 0 {
		return &errs.ValidationError{Field: "price", Reason: "must be a finite number greater than zero"}
	}
	return nil
}

// AddItem validates the candidate and either merges it into an existing line
// (same ID increments quantity, never duplicates) or appends it in insertion
// order. The candidate's quantity defaults to 1.
func (c *Cart) AddItem(candidate *Item) error {
	if err := ValidateCandidate(candidate); err != nil {
		return err
	}

	qty := candidate.Quantity
	if qty < 1 {
		qty = 1
	}

	for _, existing := range c.Items {
		if existing.ID == candidate.ID {
			existing.Quantity += qty
			c.touch()
			return nil
		}
	}

	added := *candidate
	added.Quantity = qty
	if added.OriginalPrice < added.Price {
		added.OriginalPrice = added.Price
	}
	c.Items = append(c.Items, &added)
	c.touch()
	return nil
}

// UpdateQuantity sets an item's quantity exactly. A quantity of zero or less
// removes the line, matching RemoveItem.
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	idx := c.indexOf(id)
	if idx < 0 {
		return &errs.NotFoundError{ID: id}
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = quantity
	}
	c.touch()
	return nil
}

// RemoveItem deletes a line. Absent IDs are a no-op and do not bump the
// revision, so subscribers are not notified for nothing.
func (c *Cart) RemoveItem(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.touch()
	return true
}

// Clear empties the items and drops the coupon and its discount atomically.
func (c *Cart) Clear() {
	c.Items = []*Item{}
	c.CouponCode = ""
	c.CouponDiscount = 0
	c.touch()
}

// ItemCount sums quantities across lines. Pure, no side effects.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// UpdateCouponDiscount applies a validated coupon amount and code together.
// Clearing the coupon (empty code) zeroes the discount regardless of amount.
func (c *Cart) UpdateCouponDiscount(amount float64, code string) error {
	if amount < 0 {
		return &errs.ValidationError{Field: "amount", Reason: "discount cannot be negative"}
	}
	if code == "" {
		c.CouponCode = ""
		c.CouponDiscount = 0
	} else {
		c.CouponCode = code
		c.CouponDiscount = amount
	}
	c.touch()
	return nil
}

// LocalEstimate computes the instant-feedback subtotal from cart contents.
func (c *Cart) LocalEstimate() Estimate {
	est := Estimate{}
	for _, item := range c.Items {
		est.Subtotal += item.Price * float64(item.Quantity)
		est.ItemCount += item.Quantity
	}
	return est
}

// DistinctCategoryIDs returns the set of category_id values present, sorted
// for deterministic consumers.
func (c *Cart) DistinctCategoryIDs() []string {
	seen := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if item.CategoryID != "" {
			seen[item.CategoryID] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fingerprint is a canonical value representation of everything that affects
// pricing: item IDs, quantities and the coupon code. Reconciliation compares
// fingerprints, not pointers, so no recomputation is ever missed.
func (c *Cart) Fingerprint() string {
	var b strings.Builder
	for _, item := range c.Items {
		fmt.Fprintf(&b, "%s=%d;", item.ID, item.Quantity)
	}
	fmt.Fprintf(&b, "coupon=%s", c.CouponCode)
	return b.String()
}

// Snapshot returns a deep copy safe to hand to goroutines issuing remote
// calls while the live cart keeps mutating.
func (c *Cart) Snapshot() *Cart {
	items := make([]*Item, len(c.Items))
	for i, item := range c.Items {
		copied := *item
		items[i] = &copied
	}
	return &Cart{
		SessionID:      c.SessionID,
		Items:          items,
		CouponCode:     c.CouponCode,
		CouponDiscount: c.CouponDiscount,
		Revision:       c.Revision,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (c *Cart) indexOf(id string) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) touch() {
	c.Revision++
	c.UpdatedAt = time.Now().UTC()
}
