package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return router
}

func get(router *gin.Engine, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	router := newRouter(RequestID())

	t.Run("generates uuid", func(t *testing.T) {
		w := get(router, nil)
		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		w := get(router, http.Header{RequestIDHeader: []string{"abc-123"}})
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := newRouter(RateLimitMiddleware(ctx, RateLimiterConfig{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		IdleTTL:           time.Minute,
	}))

	assert.Equal(t, http.StatusOK, get(router, nil).Code)
	assert.Equal(t, http.StatusOK, get(router, nil).Code)

	w := get(router, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	router := newRouter(RateLimitMiddleware(context.Background(), RateLimiterConfig{Enabled: false}))
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, get(router, nil).Code)
	}
}

func TestIPRateLimiterCleanupIdle(t *testing.T) {
	rl := NewIPRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Minute})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.GetLimiter("10.0.0.1")
	now = now.Add(45 * time.Second)
	rl.GetLimiter("10.0.0.2")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, rl.CleanupIdle())
	assert.Equal(t, 1, rl.Len())
}
