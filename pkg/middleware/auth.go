package middleware

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewAuthMiddleware resolves the session cookie to a user and stores it as
// "user" and its ID as "userID". Requests without a valid session are
// rejected with 401, blocked accounts with 403.
func NewAuthMiddleware(auth *service.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		token, _ := c.Cookie(session.CookieName)

		user, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			kind := service.KindOf(err)
			if kind == service.KindInternal {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":     "Internal server error",
					"requestID": requestID,
				})

				zap.L().Error("Failed to authenticate request", zap.Error(err), zap.String("requestID", requestID))
				return
			}

			c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// RequireAdmin must run after NewAuthMiddleware
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.Get("user")
		if u, isUser := user.(*model.User); !ok || !isUser || !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Admin access required",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
