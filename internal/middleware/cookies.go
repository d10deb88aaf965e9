package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stayfinder/api/internal/config"
)

// SetAuthCookies writes the session cookie and, when a remember cookie
// value was issued, the remember cookie. Both are HttpOnly.
func SetAuthCookies(c *gin.Context, cfg *config.AppConfig, sessionID string, rememberCookie string) {
	sec := cfg.Security
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sec.SessionCookie, sessionID, int(sec.SessionTTL.Seconds()), "/", sec.CookieDomain, sec.CookieSecure, true)
	if rememberCookie != "" {
		c.SetCookie(sec.RememberCookie, rememberCookie, int(sec.RememberTTL.Seconds()), "/", sec.CookieDomain, sec.CookieSecure, true)
	}
}

// ClearAuthCookies expires both cookies.
func ClearAuthCookies(c *gin.Context, cfg *config.AppConfig) {
	sec := cfg.Security
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sec.SessionCookie, "", -1, "/", sec.CookieDomain, sec.CookieSecure, true)
	c.SetCookie(sec.RememberCookie, "", -1, "/", sec.CookieDomain, sec.CookieSecure, true)
}
