// Package remote implements the authority contracts as a JSON HTTP client
// for deployments where pricing, coupons and stock live in an upstream
// commerce backend. Transport failures surface as UnavailableError so the
// caller can publish a zero-value fallback instead of guessing.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/owlcart/owlcart-go/internal/domain/authorities"
	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/entities/catalog"
	"github.com/owlcart/owlcart-go/internal/domain/entities/coupon"
	"github.com/owlcart/owlcart-go/internal/domain/errs"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
)

// Client talks to the upstream commerce API. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.ChanneledLogger
}

var (
	_ authorities.PricingAuthority = (*Client)(nil)
	_ authorities.CouponAuthority  = (*Client)(nil)
	_ authorities.StockAuthority   = (*Client)(nil)
	_ authorities.ProductSource    = (*Client)(nil)
)

// New creates a remote authority client. timeout caps each round trip in
// addition to whatever deadline the caller's context carries.
func New(baseURL string, timeout time.Duration, logger *logging.ChanneledLogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type priceRequest struct {
	Items      []*cart.Item `json:"items"`
	CouponCode string       `json:"couponCode,omitempty"`
}

// ComputePrice posts the cart snapshot to the upstream pricing endpoint.
func (c *Client) ComputePrice(ctx context.Context, items []*cart.Item, couponCode string) (pricing.Breakdown, error) {
	var breakdown pricing.Breakdown
	err := c.postJSON(ctx, "/api/pricing/compute", priceRequest{Items: items, CouponCode: couponCode}, &breakdown)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return breakdown, nil
}

type couponRequest struct {
	Code        string  `json:"code"`
	OrderAmount float64 `json:"orderAmount"`
}

// ValidateCoupon asks the upstream validator for a verdict and discount.
func (c *Client) ValidateCoupon(ctx context.Context, code string, orderAmount float64) (coupon.ValidationResult, error) {
	var result coupon.ValidationResult
	err := c.postJSON(ctx, "/api/coupons/validate", couponRequest{Code: code, OrderAmount: orderAmount}, &result)
	if err != nil {
		return coupon.ValidationResult{}, err
	}
	return result, nil
}

// ReportCouponUsage notifies the upstream of an applied coupon.
func (c *Client) ReportCouponUsage(ctx context.Context, code string) error {
	return c.postJSON(ctx, "/api/coupons/usage", map[string]string{"code": code}, nil)
}

type stockResponse struct {
	ProductID     string `json:"productId"`
	StockQuantity int    `json:"stock_quantity"`
}

// GetStock fetches on-hand stock for one product.
func (c *Client) GetStock(ctx context.Context, productID string) (int, error) {
	var resp stockResponse
	err := c.getJSON(ctx, "/api/stock/"+url.PathEscape(productID), &resp)
	if err != nil {
		return 0, err
	}
	return resp.StockQuantity, nil
}

// ListProducts fetches the candidate catalog for ranking.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.getJSON(ctx, "/api/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Pricing().Warn("Authority request failed",
				"path", req.URL.Path, "error", err.Error(), "duration", time.Since(start))
		}
		return &errs.UnavailableError{Authority: req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if c.logger != nil {
			c.logger.Pricing().Warn("Authority returned error status",
				"path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))
		}
		return &errs.UnavailableError{Authority: req.URL.Path, Err: err}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &errs.UnavailableError{Authority: req.URL.Path, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
