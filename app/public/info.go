package public

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Info describes a share without requiring its password
func Info(c *gin.Context, d *internal.Deps) {
	info, err := d.Shares.Info(c.Request.Context(), c.Param("token"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
