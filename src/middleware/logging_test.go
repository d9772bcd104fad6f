package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gamehost/siteadmin/src/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	logging.Setup(logging.Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Setup(logging.Config{Level: "info"}) })
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware(), LoggingMiddleware())
	router.GET("/api/admin/:thing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/plans?email=a@example.com", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "http", entry["component"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/api/admin/:thing", entry["path"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.NotContains(t, buf.String(), "a@example.com")
}
