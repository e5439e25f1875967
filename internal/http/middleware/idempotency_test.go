package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestHelpers_GetIdempotencyKey_IsReplay_Scope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected empty key when not set")
	}
	if IsReplay(c) || GetIdempotencyScope(c) != "" {
		t.Fatalf("expected no replay and no scope by default")
	}

	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("expected IsReplay=true")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false for non-bool")
	}

	// No matched route: DefaultScope is empty.
	if s := DefaultScope(c); s != "" {
		t.Fatalf("DefaultScope without route = %q", s)
	}
}

func TestIdempotencyValidator_NoHeader_NoLookupCalled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	lookupCalled := false
	lookup := func(context.Context, string, string, time.Time) (bool, error) {
		lookupCalled = true
		return false, nil
	}
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.GET("/ping", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Fatalf("key should not be present when header missing")
		}
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if lookupCalled {
		t.Fatalf("lookup should not be called when header missing")
	}
}

func TestIdempotencyValidator_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("length", func(t *testing.T) {
		r := gin.New()
		r.Use(IdempotencyValidator(IdempotencyOptions{MaxLen: 5}, nil))
		r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set(HeaderIdempotencyKey, "abcdef")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body["code"] != "bad_idempotency_key" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("pattern", func(t *testing.T) {
		r := gin.New()
		r.Use(IdempotencyValidator(IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, nil))
		r.POST("/y", func(c *gin.Context) { c.Status(http.StatusOK) })

		for _, key := range []string{"abc123", "has space"} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/y", nil)
			req.Header.Set(HeaderIdempotencyKey, key)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("%q: expected 400, got %d", key, w.Code)
			}
		}
	})
}

func TestIdempotencyValidator_DefaultScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var gotScope, gotKey string
	lookup := func(_ context.Context, scope, key string, now time.Time) (bool, error) {
		if now.IsZero() || now.Location() != time.UTC {
			t.Fatalf("lookup time must be UTC, got %v", now)
		}
		gotScope, gotKey = scope, key
		return false, nil
	}
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.POST("/api/v1/entries", func(c *gin.Context) {
		if IsReplay(c) || IsRateBypass(c) {
			t.Fatalf("expected no replay/bypass on miss")
		}
		if GetIdempotencyScope(c) != "POST /api/v1/entries" {
			t.Fatalf("scope = %q", GetIdempotencyScope(c))
		}
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", nil)
	req.Header.Set(HeaderIdempotencyKey, "key-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if gotScope != "POST /api/v1/entries" || gotKey != "key-1" {
		t.Fatalf("lookup got scope=%q key=%q", gotScope, gotKey)
	}
}

func TestIdempotencyValidator_CustomScope_HitAndSkip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	calls := 0
	opts := IdempotencyOptions{
		Scope: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/entries" {
				return "entries.create"
			}
			return ""
		},
	}
	lookup := func(_ context.Context, scope, key string, _ time.Time) (bool, error) {
		calls++
		if scope != "entries.create" || key != "k-9" {
			t.Fatalf("unexpected scope/key: %q %q", scope, key)
		}
		return true, nil
	}
	r.Use(IdempotencyValidator(opts, lookup))
	r.POST("/entries", func(c *gin.Context) {
		if !IsReplay(c) || !IsRateBypass(c) {
			t.Fatalf("expected replay and bypass on hit")
		}
		c.Status(http.StatusOK)
	})
	r.POST("/export", func(c *gin.Context) {
		if IsReplay(c) {
			t.Fatalf("unscoped route must not replay")
		}
		if _, ok := GetIdempotencyKey(c); !ok {
			t.Fatalf("key is still stashed on unscoped routes")
		}
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/entries", "/export"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(HeaderIdempotencyKey, "k-9")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
	if calls != 1 {
		t.Fatalf("lookup calls = %d, want 1", calls)
	}
}
