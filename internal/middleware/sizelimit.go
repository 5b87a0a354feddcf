package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aafiyacare/homecare-api/internal/handler"
)

type SizeLimitConfig struct {
	MaxBodySize int64
	SkipPaths   []string
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize: 1 << 20,
	}
}

// SizeLimit rejects oversized request bodies. The declared length is
// checked up front; the reader is capped as well so chunked uploads
// cannot dodge the limit.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		if c.Request.ContentLength > config.MaxBodySize {
			c.JSON(http.StatusRequestEntityTooLarge, handler.NewErrorResponse("request body too large"))
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		c.Next()
	}
}
