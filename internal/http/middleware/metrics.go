package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rule-store/internal/observability"
)

// unmatchedPath labels requests that hit no route, keeping scanner traffic
// to a single series.
const unmatchedPath = "unmatched"

// Metrics feeds the observability HTTP collectors. The scrape endpoint is
// mounted by the router.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		observability.HTTPInflight.Inc()
		defer observability.HTTPInflight.Dec()
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedPath
		}
		m := c.Request.Method
		observability.HTTPRequests.WithLabelValues(m, route, strconv.Itoa(c.Writer.Status())).Inc()
		observability.HTTPDuration.WithLabelValues(m, route).Observe(time.Since(start).Seconds())
	}
}
