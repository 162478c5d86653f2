package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/retail_api/internal/metrics"
)

// MetricsMiddleware records request counts and durations by route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
