package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aafiyacare/homecare-api/internal/handler"
	"github.com/aafiyacare/homecare-api/pkg/logger"
)

// ErrorHandler logs every error collected during the request. Handlers
// write their own responses; this middleware only answers for errors
// nothing downstream responded to.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	l := log.WithComponent("http")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			l.Error(e.Err, "request error",
				"request_id", requestID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
			)
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		status := http.StatusInternalServerError
		if err, ok := lastErr.Err.(interface{ StatusCode() int }); ok {
			status = err.StatusCode()
		}

		message := lastErr.Error()
		if status >= http.StatusInternalServerError {
			message = "internal server error"
		}
		c.JSON(status, handler.NewErrorResponse(message))
	}
}
