// Package public contains the anonymous /api/public routes serving shared
// files and folders
package public

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PasswordHeader carries the share password on GET requests. It is never
// read from the query string, which ends up in access logs.
const PasswordHeader = "X-Share-Password"

type accessBody struct {
	Password string `json:"password"`
	FolderID *uint  `json:"folderId"`
}

// readAccess collects the share password and the optional folder ID. GET
// requests send the password in PasswordHeader, POST requests in a JSON body
// that may also be empty.
func readAccess(c *gin.Context) (accessBody, bool) {
	requestID := c.MustGet("requestID").(string)

	var data accessBody
	if c.Request.Method != http.MethodPost {
		data.Password = c.GetHeader(PasswordHeader)
		return data, true
	}

	if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return data, false
	}

	return data, true
}
