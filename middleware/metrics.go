package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/monitor"
)

// Metrics records request counts, latency and in-flight requests per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		monitor.IncrementConcurrent()
		defer monitor.DecrementConcurrent()

		c.Next()

		monitor.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(startTime))
	}
}
