package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gamehost/siteadmin/src/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleHealth_Success(t *testing.T) {
	database.WithTestDB(t, func(tdb *database.TestDB) {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

		handler := NewHealthHandler(database.NewDatabaseFromPool(tdb.Pool), "test")
		handler.HandleHealth(c)

		assertStatusCode(t, w, http.StatusOK)
		response := decode(t, w)
		assert.Equal(t, "ok", response["status"])
		assert.Equal(t, "connected", response["database"])
		assert.Contains(t, response, "db_latency")
		assert.Contains(t, response, "uptime")
	})
}

func TestHandleHealth_DBError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	// nil pool = DB error
	handler := NewHealthHandler(database.NewDatabaseFromPool(nil), "test")
	handler.HandleHealth(c)

	assertStatusCode(t, w, http.StatusServiceUnavailable)
	response := decode(t, w)
	assert.Equal(t, "unhealthy", response["status"])
	assert.Equal(t, "disconnected", response["database"])
	assert.NotContains(t, response, "error", "internal error detail stays server-side")
}

func TestHandleInfo(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/info", nil, "")
	assertStatusCode(t, w, http.StatusOK)
	response := decode(t, w)
	assert.Equal(t, "gamehost-siteadmin", response["service"])
	assert.Equal(t, "test", response["version"])
	assert.Contains(t, response, "uptime")
}

func TestHandleReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		ready  bool
	}{
		{"healthy", nil, http.StatusOK, true},
		{"db down", errors.New("connection refused"), http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

			NewHealthHandler(stubHealth{err: tt.err}, "test").HandleReady(c)

			assertStatusCode(t, w, tt.status)
			assert.Equal(t, tt.ready, decode(t, w)["ready"])
		})
	}
}
