// Package errs defines the typed error taxonomy shared across cart, coupon,
// pricing and checkout operations. Every error here is recoverable: handlers
// translate them into user-visible notices, never process failures.
package errs

import (
	"fmt"
	"time"
)

// ValidationError reports malformed input to a cart or coupon operation.
// The operation is rejected and state is left unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation that referenced a nonexistent cart item.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %s not found in cart", e.ID)
}

// ThrottledError reports a rate-limited action along with the remaining
// cooldown. No automatic retry is performed on the caller's behalf.
type ThrottledError struct {
	Key       string
	Remaining time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("action %s throttled, retry in %s", e.Key, e.Remaining.Round(time.Millisecond))
}

// UnavailableError reports a remote authority that was unreachable, timed out,
// or returned malformed data. Callers fall back to the zeroed breakdown and
// block checkout until a good response arrives.
type UnavailableError struct {
	Authority string
	Err       error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s authority unavailable: %v", e.Authority, e.Err)
	}
	return fmt.Sprintf("%s authority unavailable", e.Authority)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// FormatError reports a syntactically invalid coupon code, rejected before
// any network call is made.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid coupon format: %s", e.Reason)
}
