package middleware

import (
	"strconv"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/metrics"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no route, so scanners cannot
// grow the label set.
const unmatchedRoute = "unmatched"

// Metrics records latency and count per route template. Raw verification and
// reset tokens travel in the path, so the concrete URL is never a label.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}

		metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
	}
}
