package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// visitors keeps one token bucket per client IP and forgets clients idle
// for longer than ttl.
type visitors struct {
	mu    sync.Mutex
	every rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
	swept time.Time
	byIP  map[string]*visitor
}

func newVisitors(rps, burst int, ttl time.Duration) *visitors {
	return &visitors{
		every: rate.Limit(rps),
		burst: burst,
		ttl:   ttl,
		now:   time.Now,
		swept: time.Now(),
		byIP:  make(map[string]*visitor),
	}
}

func (v *visitors) allow(ip string) bool {
	v.mu.Lock()
	now := v.now()
	if now.Sub(v.swept) > v.ttl {
		for k, vis := range v.byIP {
			if now.Sub(vis.seen) > v.ttl {
				delete(v.byIP, k)
			}
		}
		v.swept = now
	}
	vis, ok := v.byIP[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.every, v.burst)}
		v.byIP[ip] = vis
	}
	vis.seen = now
	v.mu.Unlock()

	return vis.limiter.AllowN(now, 1)
}

func (v *visitors) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.byIP)
}

// RateLimit allows each client IP rps requests per second with the given
// burst and answers 429 beyond that.
func RateLimit(rps, burst int) gin.HandlerFunc {
	return limitWith(newVisitors(rps, burst, limiterIdleTTL))
}

func limitWith(v *visitors) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v.allow(c.ClientIP()) {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	}
}
