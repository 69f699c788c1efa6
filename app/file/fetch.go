package file

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Fetch(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}

	details, err := d.Files.Get(c.Request.Context(), userID, id)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}
