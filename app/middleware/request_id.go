package middleware

import (
	"lineflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with a trace id, reusing the caller's
// X-Request-ID when present so ids survive gateway hops. The id flows through
// the request context into every *Ctx log line and is echoed in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), id))
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}
