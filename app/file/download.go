package file

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"

	"github.com/gin-gonic/gin"
)

func Download(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}

	blob, err := d.Files.Download(c.Request.Context(), userID, id)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	respond.Blob(c, blob)
}
