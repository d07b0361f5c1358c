package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/entities/catalog"
	"github.com/owlcart/owlcart-go/internal/domain/entities/coupon"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/domain/errs"
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/manager"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/infrastructure/throttle"
)

func newTestLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
	})
	require.NoError(t, err)
	return logger
}

func newTestTracker() *performance.Tracker {
	return performance.NewTracker(64)
}

// scriptedPricingAuthority returns queued breakdowns in call order. A non-nil
// gate for a call blocks that call until the gate is closed.
type scriptedPricingAuthority struct {
	mu      sync.Mutex
	calls   int
	gates   []chan struct{}
	results []pricing.Breakdown
	errs    []error
}

func (s *scriptedPricingAuthority) ComputePrice(ctx context.Context, items []*cart.Item, couponCode string) (pricing.Breakdown, error) {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	s.mu.Unlock()

	if idx < len(s.gates) && s.gates[idx] != nil {
		<-s.gates[idx]
	}
	if idx < len(s.errs) && s.errs[idx] != nil {
		return pricing.Breakdown{}, s.errs[idx]
	}
	if idx < len(s.results) {
		return s.results[idx], nil
	}
	return pricing.Breakdown{}, &errs.UnavailableError{Authority: "pricing"}
}

func (s *scriptedPricingAuthority) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubCouponAuthority returns a fixed validation result and records usage
// reports.
type stubCouponAuthority struct {
	mu          sync.Mutex
	result      coupon.ValidationResult
	err         error
	validations int
	usageCodes  []string
}

func (s *stubCouponAuthority) ValidateCoupon(ctx context.Context, code string, orderAmount float64) (coupon.ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validations++
	return s.result, s.err
}

func (s *stubCouponAuthority) ReportCouponUsage(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usageCodes = append(s.usageCodes, code)
	return nil
}

func (s *stubCouponAuthority) validationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validations
}

// stubStockAuthority reports fixed per-product stock; unknown products get
// the default.
type stubStockAuthority struct {
	stock    map[string]int
	defStock int
}

func (s *stubStockAuthority) GetStock(ctx context.Context, productID string) (int, error) {
	if quantity, ok := s.stock[productID]; ok {
		return quantity, nil
	}
	return s.defStock, nil
}

// stubProductSource serves a fixed candidate list.
type stubProductSource struct {
	products []catalog.Product
	err      error
}

func (s *stubProductSource) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products, s.err
}

func newTestPricingService(t *testing.T, authority *scriptedPricingAuthority) (*PricingService, *manager.Manager) {
	t.Helper()
	logger := newTestLogger(t)
	cacheManager := manager.NewManager(logger)
	throttles := throttle.NewRegistry(logger)
	svc := NewPricingService(cacheManager, authority, throttles, nil, logger, newTestTracker())
	return svc, cacheManager
}

func addTestItem(t *testing.T, cacheManager *manager.Manager, sessionID, productID, categoryID string, price float64, qty int) {
	t.Helper()
	err := cacheManager.Carts().Mutate(sessionID, func(c *cart.Cart) error {
		return c.AddItem(&cart.Item{
			ID:         productID,
			Name:       "Item " + productID,
			Price:      price,
			CategoryID: categoryID,
			Quantity:   qty,
		})
	})
	require.NoError(t, err)
}
