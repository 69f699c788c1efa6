package public

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"

	"github.com/gin-gonic/gin"
)

func Download(c *gin.Context, d *internal.Deps) {
	data, ok := readAccess(c)
	if !ok {
		return
	}

	blob, err := d.Shares.Download(c.Request.Context(), c.Param("token"), data.Password)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	respond.Blob(c, blob)
}

// DownloadFile serves a file found somewhere inside a browsable share
func DownloadFile(c *gin.Context, d *internal.Deps) {
	fileID, ok := respond.ID(c, "fileId")
	if !ok {
		return
	}

	data, ok := readAccess(c)
	if !ok {
		return
	}

	blob, err := d.Shares.DownloadFromFolder(c.Request.Context(), c.Param("token"), fileID, data.Password)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	respond.Blob(c, blob)
}
