package services

import (
	"context"

	"github.com/owlcart/owlcart-go/internal/domain/authorities"
	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/errs"
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/manager"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
)

// CartService owns all cart mutations. Each mutation runs atomically under
// the store lock and, when it changes cart contents, triggers a pricing
// reconciliation so the displayed totals converge on the authoritative ones.
type CartService struct {
	cacheManager *manager.Manager
	stock        authorities.StockAuthority
	pricing      *PricingService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewCartService creates a new cart service.
func NewCartService(
	cacheManager *manager.Manager,
	stock authorities.StockAuthority,
	pricing *PricingService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *CartService {
	return &CartService{
		cacheManager: cacheManager,
		stock:        stock,
		pricing:      pricing,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// AddItem validates a candidate, checks stock, and merges it into the
// session's cart. Re-adding a present product increments its quantity rather
// than duplicating the line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, candidate *cart.Item) (*cart.Cart, error) {
	marker := s.perfTracker.StartOperation("cart_add_item", sessionID)
	defer marker.Complete()

	if err := cart.ValidateCandidate(candidate); err != nil {
		marker.SetError(err)
		return nil, err
	}

	stock, err := s.stock.GetStock(ctx, candidate.ID)
	if err != nil {
		s.logger.Cart().Warn("Stock check failed, refusing add",
			"sessionId", sessionID, "productId", candidate.ID, "error", err.Error())
		marker.SetError(err)
		return nil, err
	}
	if stock <= 0 {
		err := &errs.ValidationError{Field: "id", Reason: "product is out of stock"}
		marker.SetError(err)
		return nil, err
	}

	err = s.cacheManager.Carts().Mutate(sessionID, func(c *cart.Cart) error {
		return c.AddItem(candidate)
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Cart().Info("Item added", "sessionId", sessionID, "productId", candidate.ID)
	marker.SetSuccess(true)
	s.pricing.RequestReconciliation(sessionID)
	return s.snapshot(sessionID), nil
}

// UpdateQuantity sets an item's quantity. Zero or negative removes the item.
func (s *CartService) UpdateQuantity(sessionID, productID string, quantity int) (*cart.Cart, error) {
	marker := s.perfTracker.StartOperation("cart_update_quantity", sessionID)
	defer marker.Complete()

	err := s.cacheManager.Carts().Mutate(sessionID, func(c *cart.Cart) error {
		return c.UpdateQuantity(productID, quantity)
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	marker.SetSuccess(true)
	s.pricing.RequestReconciliation(sessionID)
	return s.snapshot(sessionID), nil
}

// RemoveItem removes an item if present. Removing an absent item is a no-op,
// not an error, and does not trigger reconciliation.
func (s *CartService) RemoveItem(sessionID, productID string) (*cart.Cart, error) {
	marker := s.perfTracker.StartOperation("cart_remove_item", sessionID)
	defer marker.Complete()

	removed := false
	err := s.cacheManager.Carts().Mutate(sessionID, func(c *cart.Cart) error {
		removed = c.RemoveItem(productID)
		return nil
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	marker.SetSuccess(true)
	if removed {
		s.logger.Cart().Info("Item removed", "sessionId", sessionID, "productId", productID)
		s.pricing.RequestReconciliation(sessionID)
	}
	return s.snapshot(sessionID), nil
}

// Clear empties the cart and detaches any applied coupon in one step, so no
// observer can see a coupon attached to an empty cart.
func (s *CartService) Clear(sessionID string) (*cart.Cart, error) {
	marker := s.perfTracker.StartOperation("cart_clear", sessionID)
	defer marker.Complete()

	err := s.cacheManager.Carts().Mutate(sessionID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Cart().Info("Cart cleared", "sessionId", sessionID)
	marker.SetSuccess(true)
	s.pricing.RequestReconciliation(sessionID)
	return s.snapshot(sessionID), nil
}

// Get returns a deep copy of the session's cart, creating it on first touch.
func (s *CartService) Get(sessionID string) *cart.Cart {
	return s.snapshot(sessionID)
}

// Estimate returns the interim local subtotal and badge count. These are
// display hints only; the authoritative totals come from reconciliation.
func (s *CartService) Estimate(sessionID string) cart.Estimate {
	snapshot, exists := s.cacheManager.Carts().Snapshot(sessionID)
	if !exists {
		return cart.Estimate{}
	}
	return snapshot.LocalEstimate()
}

func (s *CartService) snapshot(sessionID string) *cart.Cart {
	if snapshot, exists := s.cacheManager.Carts().Snapshot(sessionID); exists {
		return snapshot
	}
	return s.cacheManager.Carts().GetOrCreate(sessionID).Snapshot()
}
