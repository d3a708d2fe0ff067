package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder is the slice of prometheus.ScoringMetrics the HTTP layer uses.
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)
	TrackHTTPRequest() func()
}

// UnmatchedRoute labels requests that hit no registered route, keeping the
// path label bounded.
const UnmatchedRoute = "unmatched"

// Metrics records request counts, durations and in-flight requests, labelled
// by route template.
func Metrics(rec HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := rec.TrackHTTPRequest()
		defer done()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = UnmatchedRoute
		}
		rec.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
