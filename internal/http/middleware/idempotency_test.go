package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIdempotencyValidator_NoHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	called := false
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, func(context.Context, string, string, time.Time) (bool, error) {
		called = true
		return false, nil
	}))
	r.POST("/recipes", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok || IsReplay(c) {
			t.Fatalf("key or replay set without header")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	if w.Code != http.StatusNoContent || called {
		t.Fatalf("status=%d lookupCalled=%v", w.Code, called)
	}
}

func TestIdempotencyValidator_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{MaxLen: 8}, nil))
	r.POST("/recipes", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, key := range []string{"has space", strings.Repeat("k", 9)} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/recipes", nil)
		req.Header.Set(HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Fatalf("key %q: status=%d body=%s", key, w.Code, w.Body.String())
		}
	}
}

func TestIdempotencyValidator_ReplayScopeAndBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var gotScope, gotKey string
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, func(_ context.Context, scope, key string, _ time.Time) (bool, error) {
		gotScope, gotKey = scope, key
		return key == "seen", nil
	}))
	r.POST("/api/recipes", func(c *gin.Context) {
		k, _ := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{"key": k, "replay": IsReplay(c), "bypass": c.GetBool(ctxKeyRateBypass)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/recipes", nil)
	req.Header.Set(HeaderIdempotencyKey, "seen")
	r.ServeHTTP(w, req)

	if gotScope != "POST /api/recipes" || gotKey != "seen" {
		t.Fatalf("lookup scope=%q key=%q", gotScope, gotKey)
	}
	if want := `{"bypass":true,"key":"seen","replay":true}`; w.Body.String() != want {
		t.Fatalf("body = %s; want %s", w.Body.String(), want)
	}
}

func TestIdempotencyValidator_LookupErrorIsIgnored(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogger(t)
	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, func(context.Context, string, string, time.Time) (bool, error) {
		return false, errors.New("db down")
	}))
	r.POST("/recipes", func(c *gin.Context) {
		if IsReplay(c) {
			t.Fatalf("replay on lookup error")
		}
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recipes", nil)
	req.Header.Set(HeaderIdempotencyKey, "k1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
}
