package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/application/services"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/presentation/http/middleware"
)

// PricingHandlers contains the pricing read-side HTTP handlers
type PricingHandlers struct {
	pricingService *services.PricingService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewPricingHandlers creates pricing handlers with injected dependencies
func NewPricingHandlers(pricingService *services.PricingService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PricingHandlers {
	return &PricingHandlers{
		pricingService: pricingService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetPrice handles GET /api/v1/cart/price - latest authoritative breakdown.
// Before the first reconciliation lands, ready is false and no breakdown is
// returned; the frontend shows the local estimate until then.
func (h *PricingHandlers) GetPrice(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	breakdown, ok := h.pricingService.Latest(sessionID)
	if !ok {
		h.pricingService.RequestReconciliation(sessionID)
		c.JSON(http.StatusOK, gin.H{"ready": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ready":     true,
		"fallback":  breakdown.Fallback,
		"breakdown": breakdown,
	})
}
