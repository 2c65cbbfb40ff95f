package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/project-directory/directory/internal/telemetry"
)

// noRouteLabel replaces the path label for requests that matched no route so
// arbitrary URLs cannot inflate label cardinality.
const noRouteLabel = "<no-route>"

// MetricsMiddleware records http_requests_total{method,path,status} and
// http_request_duration_seconds{method,path} for every request. The path label is the
// matched route template (e.g. /api/v1/repositories/:owner/:name), not the raw URL.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = noRouteLabel
		}

		method := c.Request.Method
		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
