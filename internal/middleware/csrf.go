package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayfinder/api/internal/security"
)

const csrfHeader = "X-CSRF-Token"

// CSRFGuard rejects state-changing requests whose X-CSRF-Token header
// does not match the session's bound token. It runs after Session and
// before any business logic; failure is 403, distinct from the 401
// authentication failures.
func CSRFGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
			return
		}

		presented := c.GetHeader(csrfHeader)
		if !security.CSRFTokenEqual(session.CSRFToken, presented) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "csrf_invalid"})
			return
		}

		c.Next()
	}
}
