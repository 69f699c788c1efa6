// Package file contains the handlers of the /api/files routes. Every route
// runs behind the auth middleware.
package file

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/respond"
	"net/http"

	"github.com/gin-gonic/gin"
)

// List returns the children of ?parentId (the root when missing), or the
// matches of ?search across the whole tree
func List(c *gin.Context, d *internal.Deps) {
	userID := c.MustGet("userID").(string)

	parentID, ok := respond.OptionalID(c, c.Query("parentId"), "parentId")
	if !ok {
		return
	}

	files, err := d.Files.List(c.Request.Context(), userID, parentID, c.Query("search"))
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
	})
}
