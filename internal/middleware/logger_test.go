package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFmt, prevLevel := log.StandardLogger().Out, log.StandardLogger().Formatter, log.GetLevel()
	log.SetOutput(&buf)
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFormatter(prevFmt)
		log.SetLevel(prevLevel)
	})
	return &buf
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Log successful request", func(t *testing.T) {
		buf := captureLogs(t)
		router := gin.New()
		router.Use(RequestID(), RequestLogger())
		router.GET("/test", func(c *gin.Context) {
			c.Set("stream_id", "s-1")
			c.String(200, "OK")
		})

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Request-ID", "rid-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, 200, w.Code)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		require.Equal(t, "http_request", entry["msg"])
		require.Equal(t, "info", entry["level"])
		require.Equal(t, "rid-1", entry["request_id"])
		require.Equal(t, "s-1", entry["stream_id"])
		require.Equal(t, "/test", entry["path"])
		require.EqualValues(t, 200, entry["status"])
	})

	t.Run("Log failed request", func(t *testing.T) {
		buf := captureLogs(t)
		router := gin.New()
		router.Use(RequestLogger())
		router.GET("/test", func(c *gin.Context) {
			c.String(500, "Error")
		})

		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, 500, w.Code)
		require.Contains(t, buf.String(), `"level":"error"`)
	})
}
