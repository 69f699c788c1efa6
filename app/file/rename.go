package file

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

type renameBody struct {
	Name string `json:"name"`
}

func Rename(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}

	var data renameBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	f, err := d.Files.Rename(c.Request.Context(), userID, id, data.Name)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file": f,
	})
}
