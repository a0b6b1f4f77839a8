package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/config"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/logging"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServer(t *testing.T) http.Handler {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		Env: "test",
		Server: config.ServerConfig{
			BaseURL:        "http://localhost:3000",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
	return New(Options{DB: db, Logger: zap.NewNop(), Config: cfg})
}

func TestHealthEndpoints(t *testing.T) {
	handler := setupServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		req := httptest.NewRequest("GET", path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code, path)
		assert.JSONEq(t, `{"status":"ok","service":"apoconnect"}`, resp.Body.String())
		assert.NotEmpty(t, resp.Header().Get(logging.RequestIDHeader))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := setupServer(t)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/categories", nil))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `path="/api/categories"`)
}

func TestUnknownRoute(t *testing.T) {
	handler := setupServer(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest("GET", "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, resp.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	handler := setupServer(t)

	req := httptest.NewRequest("OPTIONS", "/api/posts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, "http://localhost:3000", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest("OPTIONS", "/api/posts", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	handler := setupServer(t)

	routes := []struct{ method, path string }{
		{"GET", "/api/auth/me"},
		{"POST", "/api/posts"},
		{"GET", "/api/search?q=x"},
		{"POST", "/api/posts/1/like"},
		{"GET", "/api/bookmarks"},
		{"POST", "/api/tags/suggest"},
		{"GET", "/api/rooms"},
		{"POST", "/api/rooms/1/join"},
		{"GET", "/api/partners"},
		{"GET", "/api/profile"},
	}
	for _, route := range routes {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(route.method, route.path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "%s %s", route.method, route.path)
	}
}
