package throttle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owlcart/owlcart-go/internal/domain/errs"
)

func newClockedRegistry(start time.Time) (*Registry, *time.Time) {
	now := start
	r := NewRegistry(nil)
	r.SetNowFunc(func() time.Time { return now })
	return r, &now
}

func TestAttemptPassesThenThrottles(t *testing.T) {
	r, now := newClockedRegistry(time.Unix(1000, 0))

	ran := 0
	action := func() error { ran++; return nil }

	require.NoError(t, r.Attempt("coupon:s1", 2*time.Second, action, nil))
	assert.Equal(t, 1, ran)

	// 500ms later the key is still cooling down.
	*now = now.Add(500 * time.Millisecond)
	var gotRemaining time.Duration
	err := r.Attempt("coupon:s1", 2*time.Second, action, func(remaining time.Duration) {
		gotRemaining = remaining
	})

	var throttled *errs.ThrottledError
	require.ErrorAs(t, err, &throttled)
	assert.Equal(t, 1500*time.Millisecond, throttled.Remaining)
	assert.Equal(t, 1500*time.Millisecond, gotRemaining)
	assert.Equal(t, 1, ran)

	// Past the cooldown the action runs again.
	*now = now.Add(1600 * time.Millisecond)
	require.NoError(t, r.Attempt("coupon:s1", 2*time.Second, action, nil))
	assert.Equal(t, 2, ran)
}

func TestAttemptSetsTimestampBeforeAction(t *testing.T) {
	r, _ := newClockedRegistry(time.Unix(1000, 0))

	// Even when the action fails, the attempt consumed the window.
	actionErr := errors.New("boom")
	err := r.Attempt("checkout:s1", time.Second, func() error { return actionErr }, nil)
	require.ErrorIs(t, err, actionErr)

	var throttled *errs.ThrottledError
	err = r.Attempt("checkout:s1", time.Second, func() error { return nil }, nil)
	require.ErrorAs(t, err, &throttled)
}

func TestAttemptKeysAreIndependent(t *testing.T) {
	r, _ := newClockedRegistry(time.Unix(1000, 0))

	require.NoError(t, r.Attempt("coupon:s1", time.Second, func() error { return nil }, nil))
	require.NoError(t, r.Attempt("coupon:s2", time.Second, func() error { return nil }, nil))
	require.NoError(t, r.Attempt("checkout:s1", time.Second, func() error { return nil }, nil))
}

func TestRemaining(t *testing.T) {
	r, now := newClockedRegistry(time.Unix(1000, 0))

	assert.Zero(t, r.Remaining("coupon:s1", 2*time.Second))

	require.NoError(t, r.Attempt("coupon:s1", 2*time.Second, func() error { return nil }, nil))
	*now = now.Add(500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, r.Remaining("coupon:s1", 2*time.Second))

	*now = now.Add(2 * time.Second)
	assert.Zero(t, r.Remaining("coupon:s1", 2*time.Second))
}

func TestReset(t *testing.T) {
	r, _ := newClockedRegistry(time.Unix(1000, 0))

	require.NoError(t, r.Attempt("coupon:s1", time.Minute, func() error { return nil }, nil))
	r.Reset("coupon:s1")
	require.NoError(t, r.Attempt("coupon:s1", time.Minute, func() error { return nil }, nil))
}

func TestSnapshot(t *testing.T) {
	r, now := newClockedRegistry(time.Unix(1000, 0))

	require.NoError(t, r.Attempt("coupon:s1", time.Second, func() error { return nil }, nil))
	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, *now, snapshot["coupon:s1"])
}
