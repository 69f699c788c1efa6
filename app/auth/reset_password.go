package auth

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

type resetBody struct {
	Email string `json:"email"`
}

type resetConfirmBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

const resetMessage = "If an account with this email exists, a password reset link has been sent"

// ResetPassword answers the same way whether or not the account exists
func ResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	err := d.Auth.RequestPasswordReset(c.Request.Context(), data.Email)
	if err != nil && service.KindOf(err) == service.KindValidation {
		respond.Fail(c, err)
		return
	}

	if err != nil {
		// Still report success, the error only reaches the log
		respond.Log(c, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": resetMessage,
	})
}

func ConfirmPasswordReset(c *gin.Context, d *internal.Deps) {
	var data resetConfirmBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	if err := d.Auth.ConfirmPasswordReset(c.Request.Context(), data.Token, data.Password); err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed, please log in again",
	})
}
