package middleware

import (
	"net/http"
	"runtime/debug"

	"lineflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery converts a handler panic into a 500 response instead of tearing
// down the connection. The stack trace goes to the log always and into the
// response only in debug mode.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.ErrorCtx(c.Request.Context(), "panic recovered on %s %s: %v\n%s",
					c.Request.Method, c.Request.URL.Path, r, stack)

				resp := gin.H{"error": "internal server error"}
				if gin.Mode() == gin.DebugMode {
					resp["panic"] = r
					resp["stack"] = stack
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()

		c.Next()
	}
}
