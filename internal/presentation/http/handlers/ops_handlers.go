package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/application/services"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
)

// OpsHandlers contains the operations surface HTTP handlers
type OpsHandlers struct {
	opsService  *services.OpsService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewOpsHandlers creates ops handlers with injected dependencies
func NewOpsHandlers(opsService *services.OpsService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *OpsHandlers {
	return &OpsHandlers{
		opsService:  opsService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLogin handles POST /api/ops/login - ops authentication
func (h *OpsHandlers) PostLogin(c *gin.Context) {
	var body struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result := h.opsService.Authenticate(body.Password)
	if !result.Success {
		c.JSON(http.StatusUnauthorized, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStatus handles GET /api/ops/status - runtime state view
func (h *OpsHandlers) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.opsService.Status())
}
