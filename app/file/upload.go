package file

import (
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/pkg/respond"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Upload stores every part of the "files" field under the "parentId" form value
func Upload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	form, err := c.MultipartForm()
	if err != nil {
		respond.BadRequest(c, "Invalid multipart form")

		zap.L().Debug("Can't parse multipart form", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer form.RemoveAll()

	var rawParent string
	if v := form.Value["parentId"]; len(v) > 0 {
		rawParent = v[0]
	}

	parentID, ok := respond.OptionalID(c, rawParent, "parentId")
	if !ok {
		return
	}

	headers := form.File["files"]
	uploads := make([]service.Upload, 0, len(headers))
	for _, h := range headers {
		uploads = append(uploads, service.Upload{
			Name:        h.Filename,
			Size:        h.Size,
			ContentType: h.Header.Get("Content-Type"),
			Open:        func() (io.ReadCloser, error) { return h.Open() },
		})
	}

	files, err := d.Files.Upload(c.Request.Context(), userID, parentID, uploads)
	if err != nil {
		respond.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"files": files,
	})
}
