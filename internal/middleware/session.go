package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stayfinder/api/internal/config"
	"stayfinder/api/internal/models"
	"stayfinder/api/internal/service"
)

const (
	sessionContextKey  = "current_session"
	rememberContextKey = "rotated_remember_cookie"
)

// Session authenticates the request from the session cookie, falling
// back to the remember-me cookie. A successful remember-login rotates the
// token and sets fresh cookies before the handler runs.
func Session(cfg *config.AppConfig, sessions *service.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID, err := c.Cookie(cfg.Security.SessionCookie); err == nil && sessionID != "" {
			session, err := sessions.Get(c.Request.Context(), sessionID)
			if err == nil {
				c.Set(sessionContextKey, session)
				c.Next()
				return
			}
		}

		rememberCookie, err := c.Cookie(cfg.Security.RememberCookie)
		if err != nil || rememberCookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
			return
		}

		session, newCookie, err := sessions.CheckRememberMe(c.Request.Context(), rememberCookie)
		if err != nil {
			if errors.Is(err, service.ErrRememberInvalid) {
				ClearAuthCookies(c, cfg)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		SetAuthCookies(c, cfg, session.ID, newCookie)
		c.Set(sessionContextKey, session)
		// The request still carries the pre-rotation cookie; handlers that
		// act on the remember token need the rotated value.
		c.Set(rememberContextKey, newCookie)
		c.Next()
	}
}

// CurrentSession returns the session placed by the Session middleware.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := val.(models.Session)
	return session, ok
}

// CurrentRememberCookie returns the rotated remember cookie when this
// request authenticated through the remember-me fallback.
func CurrentRememberCookie(c *gin.Context) (string, bool) {
	val, exists := c.Get(rememberContextKey)
	if !exists {
		return "", false
	}
	cookie, ok := val.(string)
	return cookie, ok && cookie != ""
}
