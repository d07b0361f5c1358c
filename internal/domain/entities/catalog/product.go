// Package catalog defines product and shopper-preference types consumed by
// the recommendation scorer.
package catalog

// Product is a candidate for ranking. StockQuantity and pricing fields feed
// the scoring factors; a product without a positive price is excluded from
// ranking rather than treated as an error.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	Image         string  `json:"image"`
	Category      string  `json:"category"`
	CategoryID    string  `json:"category_id"`
	Description   string  `json:"description,omitempty"`
	StockQuantity int     `json:"stock_quantity"`
	IsFeatured    bool    `json:"is_featured"`
}

// UserPreference carries a shopper's affinity maps and history sets. All maps
// may be nil; missing keys simply contribute zero. TagWeights is carried for
// clients that accumulate tag affinity; the current scoring formula ranks on
// categories only.
type UserPreference struct {
	CategoryWeights map[string]float64 `json:"categoryWeights,omitempty"`
	TagWeights      map[string]float64 `json:"tagWeights,omitempty"`
	ViewedProducts  map[string]bool    `json:"viewedProducts,omitempty"`
	PurchasedIDs    map[string]bool    `json:"purchasedProducts,omitempty"`
}

// ScoredProduct pairs a candidate with its derived score. Scores are
// recomputed per ranking request and never persisted.
type ScoredProduct struct {
	Product
	RecommendationScore float64 `json:"recommendationScore"`
}
