package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/domain/errs"
)

func newTestCartService(t *testing.T, stock *stubStockAuthority) (*CartService, *scriptedPricingAuthority) {
	t.Helper()
	authority := &scriptedPricingAuthority{results: []pricing.Breakdown{
		validTestBreakdown(100), validTestBreakdown(100), validTestBreakdown(100),
	}}
	pricingService, cacheManager := newTestPricingService(t, authority)
	svc := NewCartService(cacheManager, stock, pricingService, pricingService.logger, newTestTracker())
	return svc, authority
}

func TestAddItemChecksStock(t *testing.T) {
	svc, authority := newTestCartService(t, &stubStockAuthority{stock: map[string]int{"p1": 0}, defStock: 10})

	candidate := &cart.Item{ID: "p1", Name: "Cola", Price: 12, Quantity: 1}
	_, err := svc.AddItem(context.Background(), "s1", candidate)

	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, svc.Get("s1").Items)

	// A rejected add never triggers reconciliation.
	assert.Never(t, func() bool { return authority.callCount() > 0 }, 100*time.Millisecond, 5*time.Millisecond)
}

func TestAddItemMergesAndReconciles(t *testing.T) {
	svc, authority := newTestCartService(t, &stubStockAuthority{defStock: 10})

	candidate := func() *cart.Item {
		return &cart.Item{ID: "p1", Name: "Cola", Price: 12, CategoryID: "drinks", Quantity: 1}
	}

	snapshot, err := svc.AddItem(context.Background(), "s1", candidate())
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.ItemCount())

	snapshot, err = svc.AddItem(context.Background(), "s1", candidate())
	require.NoError(t, err)
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, 2, snapshot.Items[0].Quantity)

	require.Eventually(t, func() bool { return authority.callCount() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestAddItemRejectsInvalidCandidate(t *testing.T) {
	svc, _ := newTestCartService(t, &stubStockAuthority{defStock: 10})

	_, err := svc.AddItem(context.Background(), "s1", &cart.Item{ID: "", Name: "x", Price: 10})

	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestUpdateQuantity(t *testing.T) {
	svc, _ := newTestCartService(t, &stubStockAuthority{defStock: 10})
	_, err := svc.AddItem(context.Background(), "s1", &cart.Item{ID: "p1", Name: "Cola", Price: 12, Quantity: 1})
	require.NoError(t, err)

	snapshot, err := svc.UpdateQuantity("s1", "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, snapshot.Items[0].Quantity)

	var notFound *errs.NotFoundError
	_, err = svc.UpdateQuantity("s1", "ghost", 1)
	require.ErrorAs(t, err, &notFound)

	snapshot, err = svc.UpdateQuantity("s1", "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Items)
}

func TestRemoveItemAbsentIsQuiet(t *testing.T) {
	svc, authority := newTestCartService(t, &stubStockAuthority{defStock: 10})

	snapshot, err := svc.RemoveItem("s1", "ghost")
	require.NoError(t, err)
	assert.Empty(t, snapshot.Items)
	assert.Never(t, func() bool { return authority.callCount() > 0 }, 100*time.Millisecond, 5*time.Millisecond)
}

func TestClearEmptiesCartAndCoupon(t *testing.T) {
	svc, _ := newTestCartService(t, &stubStockAuthority{defStock: 10})
	_, err := svc.AddItem(context.Background(), "s1", &cart.Item{ID: "p1", Name: "Cola", Price: 100, Quantity: 1})
	require.NoError(t, err)

	snapshot, err := svc.Clear("s1")
	require.NoError(t, err)
	assert.Empty(t, snapshot.Items)
	assert.Empty(t, snapshot.CouponCode)
}

func TestEstimate(t *testing.T) {
	svc, _ := newTestCartService(t, &stubStockAuthority{defStock: 10})
	_, err := svc.AddItem(context.Background(), "s1", &cart.Item{ID: "p1", Name: "Cola", Price: 12.50, Quantity: 2})
	require.NoError(t, err)

	estimate := svc.Estimate("s1")
	assert.InDelta(t, 25.0, estimate.Subtotal, 0.001)
	assert.Equal(t, 2, estimate.ItemCount)

	assert.Zero(t, svc.Estimate("ghost").ItemCount)
}
