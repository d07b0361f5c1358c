package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The stock gate rejects products with zero stock, so every seeded product
// must arrive purchasable or a fresh install cannot build a cart at all.
func TestStarterCatalogIsPurchasable(t *testing.T) {
	require.NotEmpty(t, starterProducts)

	seen := make(map[string]bool)
	categories := make(map[string]bool)
	for _, p := range starterProducts {
		assert.False(t, seen[p.ID], "duplicate seed product id %s", p.ID)
		seen[p.ID] = true
		categories[p.CategoryID] = true

		assert.NotEmpty(t, p.Name, "product %s", p.ID)
		assert.Greater(t, p.Price, 0.0, "product %s", p.ID)
		assert.GreaterOrEqual(t, p.OriginalPrice, p.Price, "product %s", p.ID)
		assert.Greater(t, p.Stock, 0, "product %s", p.ID)
	}

	// The category gate needs at least two distinct categories to ever pass,
	// and the single-box fast path needs a party box to exist.
	assert.GreaterOrEqual(t, len(categories), 2)
	assert.True(t, categories["party-boxes"])
}
