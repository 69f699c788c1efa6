package auth

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logout always succeeds. A session that can't be removed is only logged,
// the cookie is cleared either way.
func Logout(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	token, _ := c.Cookie(session.CookieName)
	if err := d.Auth.Logout(c.Request.Context(), token); err != nil {
		zap.L().Error("Failed to destroy session", zap.Error(err), zap.String("requestID", requestID))
	}

	clearSessionCookie(c, d)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
