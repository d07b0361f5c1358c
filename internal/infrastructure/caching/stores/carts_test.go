package stores

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	cs := NewCartsStore(nil)

	created := cs.GetOrCreate("s1")
	again := cs.GetOrCreate("s1")

	assert.Same(t, created, again)
	assert.Equal(t, 1, cs.Count())
}

func TestSnapshotDoesNotExposeLiveState(t *testing.T) {
	cs := NewCartsStore(nil)

	err := cs.Mutate("s1", func(c *cart.Cart) error {
		return c.AddItem(&cart.Item{ID: "p1", Name: "Cola", Price: 12, Quantity: 1})
	})
	require.NoError(t, err)

	snapshot, ok := cs.Snapshot("s1")
	require.True(t, ok)
	snapshot.Items[0].Quantity = 99

	fresh, _ := cs.Snapshot("s1")
	assert.Equal(t, 1, fresh.Items[0].Quantity)
}

func TestSnapshotMissingSession(t *testing.T) {
	cs := NewCartsStore(nil)
	_, ok := cs.Snapshot("ghost")
	assert.False(t, ok)
}

func TestMutateCreatesCartOnDemand(t *testing.T) {
	cs := NewCartsStore(nil)

	err := cs.Mutate("s1", func(c *cart.Cart) error {
		return c.AddItem(&cart.Item{ID: "p1", Name: "Cola", Price: 12, Quantity: 1})
	})
	require.NoError(t, err)

	snapshot, ok := cs.Snapshot("s1")
	require.True(t, ok)
	assert.Len(t, snapshot.Items, 1)
}

func TestEvictIdle(t *testing.T) {
	cs := NewCartsStore(nil)
	cs.GetOrCreate("old")
	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now().UTC()
	cs.GetOrCreate("fresh")

	evicted := cs.EvictIdle(cutoff)
	assert.Equal(t, []string{"old"}, evicted)

	_, oldExists := cs.Snapshot("old")
	_, freshExists := cs.Snapshot("fresh")
	assert.False(t, oldExists)
	assert.True(t, freshExists)
}
