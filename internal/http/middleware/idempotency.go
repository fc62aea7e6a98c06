package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries a client-chosen key that makes a POST safe
// to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set on responses served from a stored result.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen defaults to 200.
	MaxLen int
	// Pattern defaults to token characters plus ".~:-".
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a still-valid result is stored for key
// within scope. Lookup errors never fail the request.
type IdempotencyLookup func(ctx context.Context, scope, key string, now time.Time) (bool, error)

// IdempotencyScope is the namespace a key lives in: the method and the
// registered route, e.g. "POST /api/v1/recipes".
func IdempotencyScope(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return c.Request.Method + " " + route
}

// GetIdempotencyKey returns the validated key, if the request carried one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	k := c.GetString(ctxKeyIdemKey)
	return k, k != ""
}

// IsReplay reports whether lookup found a stored result for the key.
func IsReplay(c *gin.Context) bool { return c.GetBool(ctxKeyIdemReplay) }

// IdempotencyValidator validates the Idempotency-Key header and flags
// replays. Invalid keys get a 400. Handlers decide how to serve a replay;
// replays skip rate limiting.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			found, err := lookup(c.Request.Context(), IdempotencyScope(c), key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			}
			if found {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}
