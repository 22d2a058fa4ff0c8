package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"bakerypos/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Errorw("http request", fields...)
		case status >= 400:
			l.Warnw("http request", fields...)
		default:
			l.Infow("http request", fields...)
		}
	}
}
