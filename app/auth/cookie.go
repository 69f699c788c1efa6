// Package auth contains the handlers of the /api/auth routes
package auth

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

func setSessionCookie(c *gin.Context, d *internal.Deps, token string) {
	maxAge := int(d.Sessions.TTL().Seconds())

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, maxAge, "/", "", d.Config.SSLEnabled, true)
	c.SetCookie("logged_in", "1", maxAge, "/", "", d.Config.SSLEnabled, false)
}

func clearSessionCookie(c *gin.Context, d *internal.Deps) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", d.Config.SSLEnabled, true)
	c.SetCookie("logged_in", "", -1, "/", "", d.Config.SSLEnabled, false)
}
