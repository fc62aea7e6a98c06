package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabelAndUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/recipes/:id", func(c *gin.Context) { c.String(http.StatusOK, "pie") })

	okBefore := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/recipes/:id", "200"))
	missBefore := testutil.ToFloat64(httpRequests.WithLabelValues("GET", unmatchedRoute, "404"))

	for _, p := range []string{"/recipes/1", "/recipes/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/recipes/:id", "200")); got != okBefore+2 {
		t.Fatalf("route counter = %v; want %v", got, okBefore+2)
	}
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", unmatchedRoute, "404")); got != missBefore+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, missBefore+1)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v; want 0", got)
	}
}
