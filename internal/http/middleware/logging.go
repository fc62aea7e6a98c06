// Package middleware holds the Gin middleware shared by every route of the
// recipe book API: correlation ids, access logging with redaction, panic
// recovery, Prometheus metrics, rate limiting, idempotency keys and security
// headers.
//
// Recommended order: RequestID, AccessLog, Recovery. Later middleware and
// handlers then log through LoggerFrom and inherit the request id.
package middleware

import (
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// maxQueryLogLength caps the logged raw query in bytes.
	maxQueryLogLength = 1024
)

// RequestID reuses an incoming X-Request-ID or mints a UUID, echoes it on the
// response and stores it in the Gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation id assigned by RequestID.
func RequestIDFrom(c *gin.Context) string {
	if rid := c.GetString(requestIDKey); rid != "" {
		return rid
	}
	return c.Writer.Header().Get(requestIDHeader)
}

// AccessLogOptions configures AccessLog.
type AccessLogOptions struct {
	// MaskHeaders are logged as [REDACTED] in addition to Authorization,
	// Cookie and Set-Cookie. Matching ignores case.
	MaskHeaders []string
	// LogHeaders includes the (masked) request headers in the access line.
	LogHeaders bool
}

var (
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	tokenRE = regexp.MustCompile(`(?i)\b(token|key|secret|password)=[^&]*`)
)

// redact scrubs e-mail addresses and credential-looking query parameters.
func redact(s string) string {
	if s == "" {
		return s
	}
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return tokenRE.ReplaceAllString(s, "$1=[REDACTED]")
}

// AccessLog emits one structured line per request and attaches a
// request-scoped zerolog.Logger (see LoggerFrom). The level follows the
// outcome: error for 5xx or recorded Gin errors, warn for 4xx, info otherwise.
// Bodies are never logged.
func AccessLog(opts AccessLogOptions) gin.HandlerFunc {
	masked := map[string]struct{}{"authorization": {}, "cookie": {}, "set-cookie": {}}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("remote_ip", c.ClientIP()).
			Logger()
		c.Set(loggerKey, &l)

		var headers map[string]string
		if opts.LogHeaders {
			headers = make(map[string]string, len(c.Request.Header))
			for k, vv := range c.Request.Header {
				if _, ok := masked[strings.ToLower(k)]; ok {
					headers[k] = "[REDACTED]"
					continue
				}
				headers[k] = redact(strings.Join(vv, ", "))
			}
		}
		query := redact(truncate(c.Request.URL.RawQuery, maxQueryLogLength))

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", c.Errors.String())
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}
		if headers != nil {
			ev = ev.Interface("headers", headers)
		}
		ev.Str("query", query).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http_request")
	}
}

// Recovery turns a panic into a JSON 500 carrying the request id and logs
// the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global one when
// AccessLog did not run.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
