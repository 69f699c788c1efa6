package auth

import (
	"bitwise74/drive-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the user resolved by the auth middleware
func Me(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
