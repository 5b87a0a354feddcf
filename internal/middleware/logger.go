package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aafiyacare/homecare-api/pkg/logger"
)

// Logger logs one line per request. Request and response bodies are
// never logged; they carry patient demographics.
func Logger(log *logger.Logger) gin.HandlerFunc {
	l := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", c.GetString(ContextRequestID),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}

		switch {
		case status >= 500:
			l.Error(nil, "request failed", fields...)
		case status >= 400:
			l.Warn("request rejected", fields...)
		default:
			l.Info("request processed", fields...)
		}
	}
}
