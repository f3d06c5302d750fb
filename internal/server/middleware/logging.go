package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-management-api/internal/apilog"
)

// maxLoggedBody caps how much of a request body is buffered for logging.
const maxLoggedBody = 64 << 10

var redactedFields = []string{"password", "refreshToken"}

// RequestLog logs every request through zap and records it via the apilog
// recorder. Credential fields in JSON bodies are redacted before either sink
// sees them. recorder may be nil.
func RequestLog(logger *zap.Logger, recorder *apilog.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		body := captureBody(c)

		c.Next()

		duration := time.Since(start)
		accountID, _ := GetAccountID(c.Request.Context())
		status := c.Writer.Status()

		logger.Info("request",
			zap.String("ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("account_id", accountID),
		)
		recorder.Record(c.Request.Context(), &apilog.Entry{
			IP:         c.ClientIP(),
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Status:     status,
			DurationMS: duration.Milliseconds(),
			AccountID:  accountID,
			Body:       body,
		})
	}
}

// captureBody buffers a JSON request body, restores it for the handler, and
// returns a copy with credential fields redacted. Non-JSON and oversized
// bodies yield nil.
func captureBody(c *gin.Context) []byte {
	if c.Request.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody+1))
	if err != nil {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 || len(raw) > maxLoggedBody {
		return nil
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}
	for _, field := range redactedFields {
		if _, ok := parsed[field]; ok {
			parsed[field] = "[REDACTED]"
		}
	}
	redacted, err := json.Marshal(parsed)
	if err != nil {
		return nil
	}
	return redacted
}
