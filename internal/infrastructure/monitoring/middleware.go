package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records every request under its route template; requests that
// match no route are labelled "unmatched".
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}

// Timer measures one session API call.
type Timer struct {
	metrics   *Metrics
	operation string
	start     time.Time
}

// NewTimer starts a Timer; with nil metrics Stop only reports the duration.
func NewTimer(metrics *Metrics, operation string) *Timer {
	return &Timer{metrics: metrics, operation: operation, start: time.Now()}
}

// Stop records the call under status and returns its duration.
func (t *Timer) Stop(status string) time.Duration {
	elapsed := time.Since(t.start)
	if t.metrics != nil {
		t.metrics.RecordRemoteCall(t.operation, status, elapsed)
	}
	return elapsed
}
