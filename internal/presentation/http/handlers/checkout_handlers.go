package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/application/services"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/presentation/http/middleware"
)

// CheckoutHandlers contains all checkout-related HTTP handlers
type CheckoutHandlers struct {
	checkoutService *services.CheckoutService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewCheckoutHandlers creates checkout handlers with injected dependencies
func NewCheckoutHandlers(checkoutService *services.CheckoutService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CheckoutHandlers {
	return &CheckoutHandlers{
		checkoutService: checkoutService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// GetEligibility handles GET /api/v1/checkout/eligibility - gate decision only
func (h *CheckoutHandlers) GetEligibility(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	c.JSON(http.StatusOK, h.checkoutService.Eligibility(sessionID))
}

// PostCheckout handles POST /api/v1/checkout - full handoff
func (h *CheckoutHandlers) PostCheckout(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	marker := h.perfTracker.StartOperation("post_checkout_request", sessionID)
	defer marker.Complete()

	var body struct {
		Email string `json:"email"`
	}
	// The body is optional; an empty email just skips the receipt.
	_ = c.ShouldBindJSON(&body)

	handoff, err := h.checkoutService.Checkout(sessionID, body.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, handoff)
}
