package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersRouteLabelAndReplays(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/entries/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.GET("/statusonly", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/entries", func(c *gin.Context) {
		c.Set(ctxKeyIdemReplay, true)
		c.Status(http.StatusOK)
	})

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/entries/:id", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))
	baseReplay := testutil.ToFloat64(idemReplays.WithLabelValues("/entries"))

	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/entries/ABC", http.StatusOK},
		{http.MethodGet, "/entries/DEF", http.StatusOK},
		{http.MethodGet, "/does-not-exist", http.StatusNotFound},
		{http.MethodGet, "/statusonly", http.StatusNoContent},
		{http.MethodPost, "/entries", http.StatusOK},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Fatalf("%s %s -> %d", tc.method, tc.path, w.Code)
		}
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/entries/:id", "200")); got != baseOK+2 {
		t.Fatalf("route counter = %v; want %v", got, baseOK+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != base404+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, base404+1)
	}
	if got := testutil.ToFloat64(idemReplays.WithLabelValues("/entries")); got != baseReplay+1 {
		t.Fatalf("replays = %v; want %v", got, baseReplay+1)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}
