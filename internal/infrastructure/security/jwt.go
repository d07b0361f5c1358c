// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// HandoffClaims are embedded in the signed checkout handoff token so the
// downstream payment step can verify the validated total without re-trusting
// the client.
type HandoffClaims struct {
	OrderID   string  `json:"orderId"`
	SessionID string  `json:"sessionId"`
	Total     float64 `json:"total"`
	Subtotal  float64 `json:"subtotal"`
	Coupon    string  `json:"coupon,omitempty"`
}

// GenerateHandoffToken signs the validated order total into a short-lived JWT.
func GenerateHandoffToken(handoff HandoffClaims, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"orderId":   handoff.OrderID,
		"sessionId": handoff.SessionID,
		"total":     handoff.Total,
		"subtotal":  handoff.Subtotal,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	if handoff.Coupon != "" {
		claims["coupon"] = handoff.Coupon
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateOpsToken creates a JWT for the ops dashboard after a successful
// password check.
func GenerateOpsToken(secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"role": "ops",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken validates a JWT and returns its claims.
func ValidateToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
