package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/app/diagnostics"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/logging"
	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/monitoring"
)

// RequestLogger logs request info and records metrics.
func RequestLogger(logger *zap.Logger, buffer *diagnostics.LogBuffer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID, _ := c.Get("request_id")
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		id := ""
		if reqID != nil {
			if v, ok := reqID.(string); ok {
				id = v
			}
		}
		logging.WithRequestID(logger, id).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		)
		// Access lines land in the capture buffer at the "log" level so
		// they show up in issue-report console_logs next to zap output.
		if buffer != nil {
			buffer.Capture(diagnostics.LevelLog, c.Request.Method+" "+path+" -> "+httpStatus(status))
		}
		monitoring.ObserveRequest(path, c.Request.Method, httpStatus(status), latency.Seconds())
	}
}

func httpStatus(status int) string {
	return fmt.Sprintf("%d", status)
}
