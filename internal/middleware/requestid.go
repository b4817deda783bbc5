package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDContextKey = "requestID"

// RequestID assigns a uuid to each request and echoes it in X-Request-ID.
// Incoming X-Request-ID values are preserved so callers can correlate.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestIDFromContext returns the request id set by RequestID.
func RequestIDFromContext(c *gin.Context) (string, bool) {
	id, ok := c.Get(requestIDContextKey)
	if !ok {
		return "", false
	}
	value, ok := id.(string)
	return value, ok && value != ""
}
