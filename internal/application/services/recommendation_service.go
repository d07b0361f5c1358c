package services

import (
	"context"
	"sort"

	"github.com/owlcart/owlcart-go/internal/domain/authorities"
	"github.com/owlcart/owlcart-go/internal/domain/entities/catalog"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
)

// ScoringWeights are the per-factor multipliers of the linear scoring model.
type ScoringWeights struct {
	Featured        float64
	Category        float64
	PurchaseHistory float64
	ViewHistory     float64
	Stock           float64
	Price           float64
	Discount        float64
}

// RecommendationService ranks candidate products against a shopper's
// preference profile with a weighted linear model. Scoring is pure; the only
// I/O is fetching candidates when the request does not carry its own.
type RecommendationService struct {
	products    authorities.ProductSource
	weights     ScoringWeights
	limit       int
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	products authorities.ProductSource,
	weights ScoringWeights,
	limit int,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *RecommendationService {
	if limit <= 0 {
		limit = 8
	}
	return &RecommendationService{
		products:    products,
		weights:     weights,
		limit:       limit,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Recommend scores the given candidates, or the full catalog when candidates
// is empty, and returns the top results. Products without a positive price
// are skipped, never fatal.
func (s *RecommendationService) Recommend(ctx context.Context, sessionID string, candidates []catalog.Product, prefs catalog.UserPreference) ([]catalog.ScoredProduct, error) {
	marker := s.perfTracker.StartOperation("recommend", sessionID)
	defer marker.Complete()

	if len(candidates) == 0 {
		var err error
		candidates, err = s.products.ListProducts(ctx)
		if err != nil {
			s.logger.Recs().Warn("Failed to load ranking candidates", "sessionId", sessionID, "error", err.Error())
			marker.SetError(err)
			return nil, err
		}
	}

	scored := make([]catalog.ScoredProduct, 0, len(candidates))
	for _, product := range candidates {
		if product.Price <= 0 {
			continue
		}
		scored = append(scored, catalog.ScoredProduct{
			Product:             product,
			RecommendationScore: s.Score(product, prefs),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].RecommendationScore != scored[j].RecommendationScore {
			return scored[i].RecommendationScore > scored[j].RecommendationScore
		}
		return scored[i].ID < scored[j].ID
	})

	if len(scored) > s.limit {
		scored = scored[:s.limit]
	}

	marker.SetSuccess(true)
	marker.AddMetadata("candidates", len(candidates))
	marker.AddMetadata("returned", len(scored))
	return scored, nil
}

// Score computes the weighted linear score for one product. Exported so the
// model can be exercised directly.
func (s *RecommendationService) Score(product catalog.Product, prefs catalog.UserPreference) float64 {
	score := 0.0

	if product.IsFeatured {
		score += s.weights.Featured
	}
	if affinity, ok := prefs.CategoryWeights[product.CategoryID]; ok {
		score += s.weights.Category * affinity
	}
	if prefs.PurchasedIDs[product.ID] {
		score += s.weights.PurchaseHistory
	}
	if prefs.ViewedProducts[product.ID] {
		score += s.weights.ViewHistory
	}
	if product.StockQuantity > 0 {
		score += s.weights.Stock
	}

	// Cheaper products score slightly higher; discounted products score in
	// proportion to the markdown.
	score += s.weights.Price * (1 / (1 + product.Price/100))
	if product.OriginalPrice > product.Price {
		score += s.weights.Discount * ((product.OriginalPrice - product.Price) / product.OriginalPrice)
	}

	return score
}
