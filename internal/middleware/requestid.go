// Package middleware holds the gin middleware shared by every route:
// request ids, access logging and Prometheus instrumentation.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"animehub/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses an upstream X-Request-ID or generates a new UUID, echoes
// it in the response and stores it in the request context for logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
