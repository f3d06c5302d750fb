package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-api/internal/apperr"
)

// Errors renders errors recorded on the gin context. Handlers call
// c.Error(err) and abort; this middleware maps the error's kind to a status
// and a public message. Infrastructure errors log the full cause but render
// a generic body.
func Errors(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		status, body := renderError(last.Err, logger, c.FullPath())
		c.JSON(status, body)
	}
}

func renderError(err error, logger *zap.Logger, path string) (int, gin.H) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperr.KindInfrastructure {
			logger.Error("request failed",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return appErr.Status, gin.H{"error": appErr.PublicMessage()}
	}
	logger.Error("unclassified request error",
		zap.String("path", path),
		zap.Error(err),
	)
	return http.StatusInternalServerError, gin.H{"error": "Internal Server Error"}
}
