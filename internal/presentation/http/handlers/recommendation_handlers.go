package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/application/services"
	"github.com/owlcart/owlcart-go/internal/domain/entities/catalog"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/presentation/http/middleware"
)

// RecommendationHandlers contains the recommendation HTTP handlers
type RecommendationHandlers struct {
	recService  *services.RecommendationService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewRecommendationHandlers creates recommendation handlers with injected dependencies
func NewRecommendationHandlers(recService *services.RecommendationService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RecommendationHandlers {
	return &RecommendationHandlers{
		recService:  recService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostRecommendations handles POST /api/v1/recommendations - rank candidates
// for a preference profile. Candidates are optional; when omitted the full
// catalog is ranked.
func (h *RecommendationHandlers) PostRecommendations(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	var body struct {
		Candidates  []catalog.Product      `json:"candidates"`
		Preferences catalog.UserPreference `json:"preferences"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	scored, err := h.recService.Recommend(c.Request.Context(), sessionID, body.Candidates, body.Preferences)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": scored, "count": len(scored)})
}
