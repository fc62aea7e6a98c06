package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc maps a request to its rate-limit bucket.
type KeyFunc func(*gin.Context) string

// KeyByClient buckets by the X-Client-ID header when present and by client
// IP otherwise. The prefixes keep the two namespaces apart.
func KeyByClient() KeyFunc {
	return func(c *gin.Context) string {
		if id := c.GetHeader(HeaderClientID); id != "" {
			return "client:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

// HeaderClientID optionally identifies an installation of the client app.
const HeaderClientID = "X-Client-ID"

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token bucket per key. Idle buckets are
// swept every sweepEvery lookups once they have been unused for idleTTL.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc
	now   func() time.Time

	mu         sync.Mutex
	buckets    map[string]*bucket
	lookups    int
	sweepEvery int
	idleTTL    time.Duration
}

// NewRateLimiter returns a limiter refilling rps tokens per second up to
// burst (at least 1).
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if keyFn == nil {
		keyFn = KeyByClient()
	}
	return &RateLimiter{
		rps:        rate.Limit(rps),
		burst:      max(burst, 1),
		keyFn:      keyFn,
		now:        time.Now,
		buckets:    make(map[string]*bucket),
		sweepEvery: 5000,
		idleTTL:    10 * time.Minute,
	}
}

// Len reports the number of live buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// sweep first so a stale bucket for key is replaced, not refreshed
	if rl.lookups++; rl.lookups >= rl.sweepEvery {
		rl.lookups = 0
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Handler rejects requests over the limit with 429 and Retry-After. Requests
// marked as idempotent replays are never limited.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(ctxKeyRateBypass) || rl.limiter(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": RequestIDFrom(c),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}
