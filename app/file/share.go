package file

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

type shareBody struct {
	ShareType           model.ShareType `json:"shareType"`
	IsPasswordProtected bool            `json:"isPasswordProtected"`
	Password            string          `json:"password"`
}

func Share(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}

	var data shareBody
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.BindFailed(c, err)
		return
	}

	res, err := d.Shares.Share(c.Request.Context(), userID, id, service.ShareInput{
		ShareType:           data.ShareType,
		IsPasswordProtected: data.IsPasswordProtected,
		Password:            data.Password,
	})
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func Unshare(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	id, ok := respond.ID(c, "id")
	if !ok {
		return
	}

	f, err := d.Shares.Unshare(c.Request.Context(), userID, id)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file": f,
	})
}
