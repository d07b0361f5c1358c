package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
)

func TestIssueSeqIsMonotonicPerSession(t *testing.T) {
	ps := NewPricingStore(nil)

	assert.Equal(t, uint64(1), ps.IssueSeq("s1"))
	assert.Equal(t, uint64(2), ps.IssueSeq("s1"))
	assert.Equal(t, uint64(1), ps.IssueSeq("s2"))
}

func TestApplyIfNewestDiscardsStaleResponse(t *testing.T) {
	ps := NewPricingStore(nil)

	first := ps.IssueSeq("s1")
	second := ps.IssueSeq("s1")

	// Request #2 resolves first and wins.
	newer := pricing.Breakdown{Subtotal: 200, ConvenienceFee: 5, DeliveryFee: 25, Total: 230}
	require.True(t, ps.ApplyIfNewest("s1", second, "fp2", newer))

	// Request #1 resolves late and is discarded.
	older := pricing.Breakdown{Subtotal: 100, ConvenienceFee: 5, DeliveryFee: 25, Total: 130}
	require.False(t, ps.ApplyIfNewest("s1", first, "fp1", older))

	latest, ok := ps.Latest("s1")
	require.True(t, ok)
	assert.Equal(t, 200.0, latest.Subtotal)
	assert.Equal(t, "fp2", ps.AppliedFingerprint("s1"))
}

func TestApplyIfNewestRejectsAlreadyApplied(t *testing.T) {
	ps := NewPricingStore(nil)
	seq := ps.IssueSeq("s1")

	require.True(t, ps.ApplyIfNewest("s1", seq, "fp1", pricing.Breakdown{Subtotal: 10, Total: 10}))
	require.False(t, ps.ApplyIfNewest("s1", seq, "fp1", pricing.Breakdown{Subtotal: 99, Total: 99}))
}

func TestLatestIsFalseBeforeFirstApply(t *testing.T) {
	ps := NewPricingStore(nil)

	_, ok := ps.Latest("s1")
	assert.False(t, ok)

	ps.IssueSeq("s1")
	_, ok = ps.Latest("s1")
	assert.False(t, ok, "an issued but unresolved request must not look ready")
}

func TestAppliedFingerprintMovesOnlyOnApply(t *testing.T) {
	ps := NewPricingStore(nil)

	seq := ps.IssueSeq("s1")
	assert.Empty(t, ps.AppliedFingerprint("s1"))

	require.True(t, ps.ApplyIfNewest("s1", seq, "fp1", pricing.Breakdown{Subtotal: 10, Total: 10}))
	assert.Equal(t, "fp1", ps.AppliedFingerprint("s1"))

	// A newer request for a changed cart is issued but has not resolved yet.
	// The applied fingerprint must keep pointing at the cart the stored
	// breakdown priced.
	ps.IssueSeq("s1")
	assert.Equal(t, "fp1", ps.AppliedFingerprint("s1"))
}

func TestFallbackApplicationFollowsSeqDiscipline(t *testing.T) {
	ps := NewPricingStore(nil)

	failing := ps.IssueSeq("s1")
	require.True(t, ps.ApplyIfNewest("s1", failing, "fp1", pricing.ZeroFallback()))

	latest, ok := ps.Latest("s1")
	require.True(t, ok)
	assert.True(t, latest.Fallback)

	// A newer good response replaces the fallback.
	recovered := ps.IssueSeq("s1")
	require.True(t, ps.ApplyIfNewest("s1", recovered, "fp1", pricing.Breakdown{Subtotal: 50, DeliveryFee: 25, ConvenienceFee: 5, Total: 80}))

	latest, _ = ps.Latest("s1")
	assert.False(t, latest.Fallback)
}

func TestRemoveClearsSessionState(t *testing.T) {
	ps := NewPricingStore(nil)
	seq := ps.IssueSeq("s1")
	require.True(t, ps.ApplyIfNewest("s1", seq, "fp1", pricing.Breakdown{}))

	ps.Remove("s1")
	_, ok := ps.Latest("s1")
	assert.False(t, ok)
	assert.Zero(t, ps.Count())
}
