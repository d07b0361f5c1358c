// Package coupon defines coupon validation types and the local format
// precheck applied before any network call.
package coupon

import (
	"regexp"
	"strings"

	"github.com/owlcart/owlcart-go/internal/domain/errs"
)

// ValidationResult is the coupon authority's verdict. DiscountAmount has
// already been bounded by the authority; the client re-checks it against the
// subtotal anyway and rejects anything larger.
type ValidationResult struct {
	Valid          bool    `json:"valid"`
	Message        string  `json:"message"`
	DiscountAmount float64 `json:"discount_amount"`
	CouponCode     string  `json:"coupon_code"`
}

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// Canonicalize trims and uppercases a raw coupon code.
func Canonicalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// CheckFormat runs the local, synchronous precheck: 3-20 characters drawn from
// [A-Za-z0-9_-]. It returns the canonicalized code or a FormatError, and never
// touches the network.
func CheckFormat(raw string) (string, error) {
	code := Canonicalize(raw)
	if len(code) < 3 {
		return "", &errs.FormatError{Reason: "code must be at least 3 characters"}
	}
	if len(code) > 20 {
		return "", &errs.FormatError{Reason: "code must be at most 20 characters"}
	}
	if !codePattern.MatchString(code) {
		return "", &errs.FormatError{Reason: "code may only contain letters, digits, hyphen and underscore"}
	}
	return code, nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"`", "&#96;",
)

// Sanitize escapes HTML-significant characters so a code is safe anywhere it
// could be rendered. Applied independently of the format check.
func Sanitize(code string) string {
	return htmlEscaper.Replace(code)
}
