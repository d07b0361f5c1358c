package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/infrastructure/security"
)

// SessionHeader carries the shopper's session identifier. The middleware
// mints one when the client has none yet and echoes it back so the frontend
// can persist it.
const SessionHeader = "X-OwlCart-Session-ID"

const sessionContextKey = "owlcart_session_id"

// SessionMiddleware resolves or mints the session ID for every request.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID = security.GenerateULID()
		}

		c.Set(sessionContextKey, sessionID)
		c.Header(SessionHeader, sessionID)
		c.Next()
	}
}

// GetSessionID retrieves the session ID resolved for this request.
func GetSessionID(c *gin.Context) string {
	if sessionID, exists := c.Get(sessionContextKey); exists {
		if s, ok := sessionID.(string); ok {
			return s
		}
	}
	return ""
}
