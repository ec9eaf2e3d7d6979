package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const guestIDKey = "guestID"

// TokenVerifier resolves a bearer token to a guest ID.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// GuestAuth verifies an optional bearer token. Requests without one pass
// through anonymously; a malformed or invalid token is rejected with 401.
func GuestAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be a bearer token"})
			return
		}

		guestID, err := verifier.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid guest token"})
			return
		}

		c.Set(guestIDKey, guestID)
		c.Next()
	}
}

// GuestID returns the authenticated guest ID, or "" for anonymous requests.
func GuestID(c *gin.Context) string {
	return c.GetString(guestIDKey)
}
