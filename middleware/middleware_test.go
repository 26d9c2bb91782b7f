package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixai-app/pixai-api/common/logger"
)

func TestRequestId(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestId())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "%v", c.Request.Context().Value(logger.RequestIdKey))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(logger.RequestIdKey, "req-123")
	engine.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(logger.RequestIdKey))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(logger.RequestIdKey))
	assert.Equal(t, w.Header().Get(logger.RequestIdKey), w.Body.String())
}

func TestRelayPanicRecover(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestId(), RelayPanicRecover())
	engine.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.True(t, strings.HasPrefix(body["message"].(string), "Internal server error"))
}

func TestFormatAccessLog(t *testing.T) {
	assert.Empty(t, formatAccessLog(gin.LogFormatterParams{StatusCode: http.StatusOK}))

	line := formatAccessLog(gin.LogFormatterParams{
		TimeStamp:  time.Now(),
		StatusCode: http.StatusUnauthorized,
		Latency:    15 * time.Millisecond,
		Method:     http.MethodPost,
		Path:       "/api/image/generate-image",
		Keys:       map[string]any{logger.RequestIdKey: "req-1"},
	})
	var entry AccessLogEntry
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, "req-1", entry.RequestId)
	assert.Equal(t, int64(15), entry.LatencyMs)
}

func TestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Metrics())
	engine.GET("/api/status", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
