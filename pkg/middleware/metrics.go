package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-cms/content-api/pkg/metrics"
)

// RequestMetrics records request counts and latency per route template.
// Requests that match no route share the "unmatched" label.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
