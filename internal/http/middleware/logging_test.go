package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

// lastLine decodes the last JSON log line in buf.
func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var last string
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines written")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("bad log line %q: %v", last, err)
	}
	return m
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
	if gen := w.Header().Get(requestIDHeader); gen == "" || gen != w.Body.String() {
		t.Fatalf("generated id header=%q body=%q", gen, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rid", nil)
	req.Header.Set("x-request-id", "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("propagated id = %q", got)
	}
}

func TestAccessLog_LevelsAndRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), AccessLog(AccessLogOptions{}))
	r.GET("/recipes/:id", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	cases := []struct {
		path, level, route string
	}{
		{"/recipes/7", "info", "/recipes/:id"},
		{"/bad", "warn", "/bad"},
		{"/boom", "error", "/boom"},
		{"/missing", "warn", "/missing"},
	}
	for _, tc := range cases {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))
		m := lastLine(t, buf)
		if m["level"] != tc.level || m["path"] != tc.route || m["message"] != "http_request" {
			t.Fatalf("%s: log = %v", tc.path, m)
		}
		if m["request_id"] == "" {
			t.Fatalf("%s: missing request id", tc.path)
		}
	}
}

func TestAccessLog_RedactsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(AccessLog(AccessLogOptions{MaskHeaders: []string{"X-Api-Key"}, LogHeaders: true}))
	r.GET("/search", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/search?q=pie&email=cook@example.com&token=s3cret", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set("X-Api-Key", "k")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, leaked := range []string{"cook@example.com", "s3cret", "Bearer abc"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("log leaked %q: %s", leaked, out)
		}
	}
	m := lastLine(t, buf)
	headers, _ := m["headers"].(map[string]any)
	if headers["Authorization"] != "[REDACTED]" || headers["X-Api-Key"] != "[REDACTED]" {
		t.Fatalf("headers = %v", headers)
	}
	if q, _ := m["query"].(string); !strings.Contains(q, "q=pie") {
		t.Fatalf("query = %q", q)
	}
}

func TestRecovery_JSON500WithRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), AccessLog(AccessLogOptions{}), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(requestIDHeader, "rid-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["request_id"] != "rid-1" || body["code"] != "internal_error" {
		t.Fatalf("body = %v", body)
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatalf("nil logger")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("truncate disabled = %q", got)
	}
}
