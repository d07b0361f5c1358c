// Package services provides pure domain services that own no state and no
// mutation rights over the cart.
package services

// EligibilityDecision is the gate's verdict for the current cart contents.
// SingleItemFastPath marks the separate single-product checkout action that a
// special category unlocks.
type EligibilityDecision struct {
	CheckoutEnabled    bool     `json:"checkoutEnabled"`
	SingleItemFastPath bool     `json:"singleItemFastPath"`
	DistinctCategories int      `json:"distinctCategories"`
	MissingCategories  int      `json:"missingCategories"`
	Categories         []string `json:"categories"`
}

// EligibilityGate applies the multi-category checkout rule: a cart must span
// RequiredCategoriesCount distinct categories, except that the one designated
// special category bypasses the requirement entirely when it is the only
// category present.
type EligibilityGate struct {
	RequiredCategoriesCount int
	SpecialCategoryID       string
}

// NewEligibilityGate builds a gate, clamping the required count to at least 1.
func NewEligibilityGate(requiredCategoriesCount int, specialCategoryID string) *EligibilityGate {
	if requiredCategoriesCount < 1 {
		requiredCategoriesCount = 1
	}
	return &EligibilityGate{
		RequiredCategoriesCount: requiredCategoriesCount,
		SpecialCategoryID:       specialCategoryID,
	}
}

// Evaluate decides checkout eligibility from the distinct category IDs present
// across cart items. It is pure and stateless given its inputs.
func (g *EligibilityGate) Evaluate(categoryIDs []string) EligibilityDecision {
	decision := EligibilityDecision{
		DistinctCategories: len(categoryIDs),
		Categories:         categoryIDs,
	}

	if len(categoryIDs) == 0 {
		decision.MissingCategories = g.RequiredCategoriesCount
		return decision
	}

	if g.SpecialCategoryID != "" && len(categoryIDs) == 1 && categoryIDs[0] == g.SpecialCategoryID {
		decision.CheckoutEnabled = true
		decision.SingleItemFastPath = true
		return decision
	}

	if len(categoryIDs) >= g.RequiredCategoriesCount {
		decision.CheckoutEnabled = true
		return decision
	}

	decision.MissingCategories = g.RequiredCategoriesCount - len(categoryIDs)
	return decision
}
