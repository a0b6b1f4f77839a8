package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/posts/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts/42", nil))
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/posts/:id", "404")); got != 2 {
		t.Errorf("Expected 2 requests counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.statusCategory.WithLabelValues("4xx", "GET", "/api/posts/:id")); got != 2 {
		t.Errorf("Expected 2 4xx responses, got %v", got)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Error("Expected exposition to contain http_requests_total")
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	// a second instance must not panic on duplicate registration
	NewHTTPMetrics()
	NewHTTPMetrics()
}

func TestStatusCategory(t *testing.T) {
	cases := map[int]string{200: "2xx", 201: "2xx", 302: "", 400: "4xx", 404: "4xx", 500: "5xx"}
	for status, want := range cases {
		if got := statusCategory(status); got != want {
			t.Errorf("Expected %q for %d, got %q", want, status, got)
		}
	}
}
