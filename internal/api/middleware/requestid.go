package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/toffeegg/flyffu-launcherd/internal/shared/id"
)

const requestIDKey = "request_id"

// RequestID tags every request with a req_* ULID. The shell echoes the
// header back in bug reports, which makes log correlation trivial.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = id.NewRequestID().String()
		}
		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

// GetRequestID returns the request ID tagged by the middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
