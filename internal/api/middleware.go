package api

import (
	"time"

	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/gin-gonic/gin"
)

// requestLogger routes request lines through the leveled logger. Health
// and metrics scrapes only show up with --verbose.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		switch {
		case status >= 500:
			util.ErrorLog("%3d | %13v | %-7s %s", status, latency, c.Request.Method, path)
		case path == "/health" || path == "/metrics":
			util.DebugLog("%3d | %13v | %-7s %s", status, latency, c.Request.Method, path)
		default:
			util.InfoLog("%3d | %13v | %-7s %s", status, latency, c.Request.Method, path)
		}
	}
}
