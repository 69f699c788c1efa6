// Package respond contains the helpers every handler uses to answer requests
package respond

import (
	"bitwise74/drive-api/internal/service"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Fail writes err as the JSON error body. Errors coming from the services
// carry a message meant for the client, anything else is logged and hidden
// behind a generic 500.
func Fail(c *gin.Context, err error) {
	requestID := c.GetString("requestID")

	kind := service.KindOf(err)
	if kind == service.KindInternal {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(kind.HTTPStatus(), gin.H{
		"error":     err.Error(),
		"requestID": requestID,
	})
}

// BadRequest answers with 400 and msg
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}

// BindFailed answers a request whose body couldn't be decoded
func BindFailed(c *gin.Context, err error) {
	BadRequest(c, "Invalid request body")

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
}

// ID parses the path parameter name as a file ID
func ID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}

	return uint(id), true
}

// OptionalID parses raw as an optional file ID. An empty string (or "null",
// which some clients send for the root folder) is nil.
func OptionalID(c *gin.Context, raw, name string) (*uint, bool) {
	if raw == "" || raw == "null" {
		return nil, true
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return nil, false
	}

	v := uint(id)
	return &v, true
}

// Blob streams b as an attachment named after the original file
func Blob(c *gin.Context, b *service.Blob) {
	defer b.Body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": b.Name})
	if disposition == "" {
		disposition = "attachment"
	}

	c.DataFromReader(http.StatusOK, b.Size, b.MimeType, b.Body, map[string]string{
		"Content-Disposition":    disposition,
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "private, no-store",
	})
}

// Log records err against the current request without answering it
func Log(c *gin.Context, err error) {
	zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
}
