package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/application/services"
	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/presentation/http/middleware"
)

// CartHandlers contains all cart-related HTTP handlers
type CartHandlers struct {
	cartService *services.CartService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewCartHandlers creates cart handlers with injected dependencies
func NewCartHandlers(cartService *services.CartService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CartHandlers {
	return &CartHandlers{
		cartService: cartService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetCart handles GET /api/v1/cart - current cart snapshot with the local estimate
func (h *CartHandlers) GetCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	snapshot := h.cartService.Get(sessionID)
	estimate := snapshot.LocalEstimate()

	c.JSON(http.StatusOK, gin.H{
		"cart":      snapshot,
		"itemCount": estimate.ItemCount,
		"estimate":  estimate,
	})
}

// PostItem handles POST /api/v1/cart/items - add an item to the cart
func (h *CartHandlers) PostItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	marker := h.perfTracker.StartOperation("post_cart_item_request", sessionID)
	defer marker.Complete()

	var candidate cart.Item
	if err := c.ShouldBindJSON(&candidate); err != nil {
		h.logger.Cart().Debug("Add item request binding failed", "sessionId", sessionID, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	snapshot, err := h.cartService.AddItem(c.Request.Context(), sessionID, &candidate)
	if err != nil {
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"cart": snapshot, "itemCount": snapshot.ItemCount()})
}

// PutItem handles PUT /api/v1/cart/items/:id - set an item's quantity
func (h *CartHandlers) PutItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	marker := h.perfTracker.StartOperation("put_cart_item_request", sessionID)
	defer marker.Complete()

	var body struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	snapshot, err := h.cartService.UpdateQuantity(sessionID, c.Param("id"), *body.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"cart": snapshot, "itemCount": snapshot.ItemCount()})
}

// DeleteItem handles DELETE /api/v1/cart/items/:id - remove an item
func (h *CartHandlers) DeleteItem(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	marker := h.perfTracker.StartOperation("delete_cart_item_request", sessionID)
	defer marker.Complete()

	snapshot, err := h.cartService.RemoveItem(sessionID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"cart": snapshot, "itemCount": snapshot.ItemCount()})
}

// DeleteCart handles DELETE /api/v1/cart - clear the cart and its coupon
func (h *CartHandlers) DeleteCart(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	marker := h.perfTracker.StartOperation("delete_cart_request", sessionID)
	defer marker.Complete()

	snapshot, err := h.cartService.Clear(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"cart": snapshot, "itemCount": 0})
}
