package auth

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

type verifyBody struct {
	Token string `json:"token"`
}

func Verify(c *gin.Context, d *internal.Deps) {
	var data verifyBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	if err := d.Auth.VerifyEmail(c.Request.Context(), data.Token); err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified",
	})
}
