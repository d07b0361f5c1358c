package cart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlcart/owlcart-go/internal/domain/errs"
)

func testItem(id string, price float64, qty int) *Item {
	return &Item{
		ID:         id,
		Name:       "Item " + id,
		Price:      price,
		CategoryID: "snacks",
		Quantity:   qty,
	}
}

func TestValidateCandidate(t *testing.T) {
	tests := []struct {
		name    string
		item    *Item
		wantErr bool
	}{
		{"valid", testItem("p1", 49.90, 1), false},
		{"missing id", &Item{Name: "x", Price: 10}, true},
		{"missing name", &Item{ID: "p1", Price: 10}, true},
		{"zero price", &Item{ID: "p1", Name: "x", Price: 0}, true},
		{"negative price", &Item{ID: "p1", Name: "x", Price: -5}, true},
		{"NaN price", &Item{ID: "p1", Name: "x", Price: math.NaN()}, true},
		{"infinite price", &Item{ID: "p1", Name: "x", Price: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandidate(tt.item)
			if tt.wantErr {
				var validationErr *errs.ValidationError
				require.ErrorAs(t, err, &validationErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAddItemMergesByID(t *testing.T) {
	c := New("sess1")

	require.NoError(t, c.AddItem(testItem("p1", 49.90, 1)))
	require.NoError(t, c.AddItem(testItem("p1", 49.90, 1)))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 2, c.ItemCount())
}

func TestAddItemRejectsInvalidWithoutMutation(t *testing.T) {
	c := New("sess1")
	require.NoError(t, c.AddItem(testItem("p1", 10, 1)))
	before := c.Revision

	err := c.AddItem(&Item{ID: "", Name: "bad", Price: 10})
	require.Error(t, err)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, before, c.Revision)
}

func TestAddItemPreservesInsertionOrder(t *testing.T) {
	c := New("sess1")
	require.NoError(t, c.AddItem(testItem("b", 10, 1)))
	require.NoError(t, c.AddItem(testItem("a", 20, 1)))
	require.NoError(t, c.AddItem(testItem("b", 10, 1)))

	require.Len(t, c.Items, 2)
	assert.Equal(t, "b", c.Items[0].ID)
	assert.Equal(t, "a", c.Items[1].ID)
}

func TestUpdateQuantity(t *testing.T) {
	c := New("sess1")
	require.NoError(t, c.AddItem(testItem("p1", 10, 1)))

	require.NoError(t, c.UpdateQuantity("p1", 5))
	assert.Equal(t, 5, c.Items[0].Quantity)

	var notFound *errs.NotFoundError
	err := c.UpdateQuantity("ghost", 2)
	require.ErrorAs(t, err, &notFound)

	// Zero or below removes the item.
	require.NoError(t, c.UpdateQuantity("p1", 0))
	assert.Empty(t, c.Items)
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	c := New("sess1")
	require.NoError(t, c.AddItem(testItem("p1", 10, 1)))
	before := c.Revision

	assert.False(t, c.RemoveItem("ghost"))
	assert.Equal(t, before, c.Revision)

	assert.True(t, c.RemoveItem("p1"))
	assert.Empty(t, c.Items)
}

func TestClearDetachesCouponAtomically(t *testing.T) {
	c := New("sess1")
	require.NoError(t, c.AddItem(testItem("p1", 100, 1)))
	require.NoError(t, c.UpdateCouponDiscount(10, "SAVE10"))

	c.Clear()

	assert.Empty(t, c.Items)
	assert.Empty(t, c.CouponCode)
	assert.Zero(t, c.CouponDiscount)
}

func TestUpdateCouponDiscount(t *testing.T) {
	c := New("sess1")
	require.NoError(t, c.AddItem(testItem("p1", 100, 1)))

	var validationErr *errs.ValidationError
	err := c.UpdateCouponDiscount(-1, "SAVE10")
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, c.UpdateCouponDiscount(10, "SAVE10"))
	assert.Equal(t, "SAVE10", c.CouponCode)
	assert.Equal(t, 10.0, c.CouponDiscount)

	// Detaching the code zeroes the discount with it.
	require.NoError(t, c.UpdateCouponDiscount(0, ""))
	assert.Empty(t, c.CouponCode)
	assert.Zero(t, c.CouponDiscount)
}

func TestLocalEstimate(t *testing.T) {
	c := New("sess1")
	require.NoError(t, c.AddItem(testItem("p1", 49.90, 2)))
	require.NoError(t, c.AddItem(testItem("p2", 10.10, 1)))

	estimate := c.LocalEstimate()
	assert.InDelta(t, 109.90, estimate.Subtotal, 0.001)
	assert.Equal(t, 3, estimate.ItemCount)
}

func TestFingerprintTracksValueNotIdentity(t *testing.T) {
	a := New("sess1")
	b := New("sess2")
	require.NoError(t, a.AddItem(testItem("p1", 10, 2)))
	require.NoError(t, b.AddItem(testItem("p1", 10, 1)))
	require.NoError(t, b.AddItem(testItem("p1", 10, 1)))

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	require.NoError(t, b.UpdateCouponDiscount(5, "SAVE5"))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestDistinctCategoryIDs(t *testing.T) {
	c := New("sess1")
	first := testItem("p1", 10, 1)
	first.CategoryID = "drinks"
	second := testItem("p2", 10, 1)
	second.CategoryID = "snacks"
	third := testItem("p3", 10, 1)
	third.CategoryID = "drinks"

	require.NoError(t, c.AddItem(first))
	require.NoError(t, c.AddItem(second))
	require.NoError(t, c.AddItem(third))

	assert.Equal(t, []string{"drinks", "snacks"}, c.DistinctCategoryIDs())
}

func TestSnapshotIsIndependent(t *testing.T) {
	c := New("sess1")
	require.NoError(t, c.AddItem(testItem("p1", 10, 1)))

	snapshot := c.Snapshot()
	snapshot.Items[0].Quantity = 99

	assert.Equal(t, 1, c.Items[0].Quantity)
}
