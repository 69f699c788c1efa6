package public

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Browse lists the shared folder, or the sub-folder picked by folderId
func Browse(c *gin.Context, d *internal.Deps) {
	data, ok := readAccess(c)
	if !ok {
		return
	}

	folderID := data.FolderID
	if folderID == nil {
		folderID, ok = respond.OptionalID(c, c.Query("folderId"), "folderId")
		if !ok {
			return
		}
	}

	res, err := d.Shares.Browse(c.Request.Context(), c.Param("token"), data.Password, folderID)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
