package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/application/services"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/presentation/http/middleware"
)

// CouponHandlers contains all coupon-related HTTP handlers
type CouponHandlers struct {
	couponService *services.CouponService
	logger        *logging.ChanneledLogger
	perfTracker   *performance.Tracker
}

// NewCouponHandlers creates coupon handlers with injected dependencies
func NewCouponHandlers(couponService *services.CouponService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CouponHandlers {
	return &CouponHandlers{
		couponService: couponService,
		logger:        logger,
		perfTracker:   perfTracker,
	}
}

// PostCoupon handles POST /api/v1/cart/coupon - apply a coupon code
func (h *CouponHandlers) PostCoupon(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	marker := h.perfTracker.StartOperation("post_coupon_request", sessionID)
	defer marker.Complete()

	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.couponService.Apply(c.Request.Context(), sessionID, body.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	marker.SetSuccess(result.Valid)
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// DeleteCoupon handles DELETE /api/v1/cart/coupon - detach the applied coupon
func (h *CouponHandlers) DeleteCoupon(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	marker := h.perfTracker.StartOperation("delete_coupon_request", sessionID)
	defer marker.Complete()

	if err := h.couponService.Remove(sessionID); err != nil {
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
