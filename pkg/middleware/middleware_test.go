package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduflow/eduflow-server-go/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(handlers []gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCacheControlOnAPIRoutes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	recorder := serve([]gin.HandlerFunc{middleware.CacheControl()}, req)

	assert.Equal(t, "no-cache, no-store, must-revalidate", recorder.Header().Get("Cache-Control"))
}

func TestCompressionRespectsAcceptEncoding(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	recorder := serve([]gin.HandlerFunc{middleware.Compression(middleware.BestSpeed)}, req)

	assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))

	// No Accept-Encoding, no compression.
	plain := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	recorder = serve([]gin.HandlerFunc{middleware.Compression(middleware.BestSpeed)}, plain)

	assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	assert.Contains(t, recorder.Body.String(), "success")
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	recorder := serve([]gin.HandlerFunc{middleware.RequestID()}, req)
	assert.NotEmpty(t, recorder.Header().Get(middleware.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "upstream-id-42")
	recorder = serve([]gin.HandlerFunc{middleware.RequestID()}, req)
	assert.Equal(t, "upstream-id-42", recorder.Header().Get(middleware.RequestIDHeader))

	// Oversized IDs are replaced, not echoed.
	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, strings.Repeat("x", 100))
	recorder = serve([]gin.HandlerFunc{middleware.RequestID()}, req)
	assert.NotEqual(t, strings.Repeat("x", 100), recorder.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	handlers := []gin.HandlerFunc{limiter.Middleware()}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		recorder := serve(handlers, req)
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	recorder := serve(handlers, req)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("Retry-After"))
}

func TestRequestSizeLimitRejectsDeclaredOversize(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", strings.NewReader(strings.Repeat("a", 64)))
	req.ContentLength = 64
	recorder := serve([]gin.HandlerFunc{middleware.RequestSizeLimit(16)}, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
}
