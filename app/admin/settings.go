package admin

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

func Settings(c *gin.Context, d *internal.Deps) {
	settings, err := d.Admin.Settings(c.Request.Context())
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial update, fields left out keep their value
func UpdateSettings(c *gin.Context, d *internal.Deps) {
	var data service.SettingsUpdate
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	settings, err := d.Admin.UpdateSettings(c.Request.Context(), data)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
