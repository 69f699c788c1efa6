package file

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

type folderBody struct {
	Name     string `json:"name"`
	ParentID *uint  `json:"parentId"`
}

func CreateFolder(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	var data folderBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	folder, err := d.Files.CreateFolder(c.Request.Context(), userID, data.Name, data.ParentID)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"file": folder,
	})
}
