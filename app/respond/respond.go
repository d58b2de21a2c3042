// Package respond renders service results as JSON responses.
package respond

import (
	"errors"
	"net/http"

	"lumo/task-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func status(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err using the status of its kind. Internal errors are logged
// with their cause; the caller only ever sees the generic message.
func Error(c *gin.Context, err error) {
	requestID := c.GetString("requestID")
	e := apperr.From(err)

	if e.Kind == apperr.KindInternal {
		zap.L().Error("Request failed",
			zap.Error(err),
			zap.String("requestID", requestID),
			zap.String("path", c.FullPath()),
		)
	}

	body := gin.H{
		"error":     e.Message,
		"requestID": requestID,
	}

	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}

	c.AbortWithStatusJSON(status(e.Kind), body)
}

// BadBody reports a request body that could not be decoded.
func BadBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     "Request body size exceeds limit",
			"requestID": c.GetString("requestID"),
		})
		return
	}

	zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", c.GetString("requestID")))

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":     "Invalid request body",
		"requestID": c.GetString("requestID"),
	})
}

func Message(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"message":   msg,
		"requestID": c.GetString("requestID"),
	})
}
