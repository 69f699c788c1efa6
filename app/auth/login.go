package auth

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, token, err := d.Auth.Login(c.Request.Context(), data.Email, data.Password)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	setSessionCookie(c, d, token)
	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
