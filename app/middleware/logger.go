package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"lineflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/pretty"
)

// maxLoggedBodyBytes caps how much of a request body lands in the access log;
// plan-build requests carry full roster snapshots and would flood it.
const maxLoggedBodyBytes = 1000

// Logger is the access-log middleware: one line per request with latency,
// status and a compacted body for mutating calls.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var body string
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			body = snapshotRequestBody(c)
		}

		c.Next()

		status := c.Writer.Status()
		if status == http.StatusNotFound {
			return
		}

		ctx := c.Request.Context()
		if body != "" {
			logger.InfoCtx(ctx, "%3d | %13v | %15s | %s %s | body: %s",
				status, time.Since(start), c.ClientIP(), c.Request.Method, c.Request.RequestURI, body)
			return
		}
		logger.InfoCtx(ctx, "%3d | %13v | %15s | %s %s",
			status, time.Since(start), c.ClientIP(), c.Request.Method, c.Request.RequestURI)
	}
}

// snapshotRequestBody reads the body for logging and restores it for the
// handler chain.
func snapshotRequestBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
	return CompactBody(raw)
}

// CompactBody strips JSON whitespace and truncates oversized payloads.
func CompactBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	compacted := pretty.Ugly(raw)
	if len(compacted) > maxLoggedBodyBytes {
		return string(compacted[:maxLoggedBodyBytes]) + "..."
	}
	return string(compacted)
}
