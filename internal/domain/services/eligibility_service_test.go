package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEligibilityGateDecisionTable(t *testing.T) {
	gate := NewEligibilityGate(2, "party-boxes")

	tests := []struct {
		name         string
		categories   []string
		wantEnabled  bool
		wantFastPath bool
		wantMissing  int
	}{
		{"empty cart", nil, false, false, 2},
		{"one ordinary category", []string{"snacks"}, false, false, 1},
		{"special category alone", []string{"party-boxes"}, true, true, 0},
		{"two ordinary categories", []string{"drinks", "snacks"}, true, false, 0},
		{"three categories", []string{"drinks", "ice", "snacks"}, true, false, 0},
		{"special plus another ignores fast path", []string{"party-boxes", "snacks"}, true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := gate.Evaluate(tt.categories)
			assert.Equal(t, tt.wantEnabled, decision.CheckoutEnabled)
			assert.Equal(t, tt.wantFastPath, decision.SingleItemFastPath)
			assert.Equal(t, tt.wantMissing, decision.MissingCategories)
			assert.Equal(t, len(tt.categories), decision.DistinctCategories)
		})
	}
}

func TestEligibilityGateClampsRequiredCount(t *testing.T) {
	gate := NewEligibilityGate(0, "")
	assert.Equal(t, 1, gate.RequiredCategoriesCount)

	decision := gate.Evaluate([]string{"snacks"})
	assert.True(t, decision.CheckoutEnabled)
}

func TestEligibilityGateWithoutSpecialCategory(t *testing.T) {
	gate := NewEligibilityGate(2, "")

	decision := gate.Evaluate([]string{"party-boxes"})
	assert.False(t, decision.CheckoutEnabled)
	assert.False(t, decision.SingleItemFastPath)
	assert.Equal(t, 1, decision.MissingCategories)
}
