package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestAuthRateLimitMiddleware_LimitsPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/login", AuthRateLimitMiddleware(t.Context(), 1, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":41000"
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))

	// other clients keep their own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestNewRateLimitingMiddleware_CustomKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/x", NewRateLimitingMiddleware(t.Context(), RateLimitConfig{
		RequestsPerMinute: 1,
		Burst:             1,
		KeyFunc:           func(c *gin.Context) string { return c.GetHeader("X-Tenant") },
	}), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(tenant string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Tenant", tenant)
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("a").Code)
	limited := send("a")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, send("b").Code)
}

func TestKeyRateLimiter_CleanupStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	k := newKeyRateLimiter(ctx, rate.Every(time.Second), 1)

	select {
	case <-k.done:
		t.Fatal("cleanup goroutine exited before cancel")
	default:
	}

	cancel()
	select {
	case <-k.done:
	case <-time.After(time.Second):
		t.Fatal("cleanup goroutine still running after cancel")
	}
}

func TestKeyRateLimiter_CleanupEvictsIdleKeys(t *testing.T) {
	k := newKeyRateLimiter(t.Context(), rate.Every(time.Second), 1)
	k.getLimiter("stale")
	k.getLimiter("fresh")

	k.mu.Lock()
	k.limiters["stale"].lastUsed = time.Now().Add(-11 * time.Minute)
	k.mu.Unlock()

	k.cleanup()

	k.mu.RLock()
	defer k.mu.RUnlock()
	assert.NotContains(t, k.limiters, "stale")
	assert.Contains(t, k.limiters, "fresh")
}
