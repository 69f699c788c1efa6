package file

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Delete removes a file, or a folder together with everything inside it
func Delete(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}

	if err := d.Files.Delete(c.Request.Context(), userID, id); err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Deleted",
	})
}
