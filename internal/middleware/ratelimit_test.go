package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Allow requests within limit", func(t *testing.T) {
		router := gin.New()
		router.Use(NewRateLimiter(10, 10, time.Minute).Handler())
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "OK")
		})

		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("Block requests exceeding limit", func(t *testing.T) {
		router := gin.New()
		router.Use(NewRateLimiter(1, 1, time.Minute).Handler())
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "OK")
		})

		req1 := httptest.NewRequest("GET", "/test", nil)
		w1 := httptest.NewRecorder()
		router.ServeHTTP(w1, req1)
		require.Equal(t, http.StatusOK, w1.Code)

		req2 := httptest.NewRequest("GET", "/test", nil)
		w2 := httptest.NewRecorder()
		router.ServeHTTP(w2, req2)
		require.Equal(t, http.StatusTooManyRequests, w2.Code)
		require.Equal(t, "1", w2.Header().Get("Retry-After"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &body))
		require.Equal(t, "Rate limit exceeded", body["error"])
	})

	t.Run("Clients are limited independently", func(t *testing.T) {
		router := gin.New()
		router.Use(NewRateLimiter(1, 1, time.Minute).Handler())
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "OK")
		})

		for _, ip := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = ip
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code, ip)
		}
	})

	t.Run("Global limit caps many clients", func(t *testing.T) {
		router := gin.New()
		router.Use(NewRateLimiter(1, 1, time.Minute).Handler())
		router.GET("/test", func(c *gin.Context) {
			c.String(200, "OK")
		})

		successCount := 0
		for i := 0; i < 10; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			req.RemoteAddr = "10.0.1." + string(rune('0'+i)) + ":80"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code == 200 {
				successCount++
			}
		}
		require.GreaterOrEqual(t, successCount, 5)
		require.Less(t, successCount, 10)
	})
}

func TestRateLimiterSweep(t *testing.T) {
	l := NewRateLimiter(10, 10, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("a"))
	now = now.Add(30 * time.Second)
	require.True(t, l.Allow("b"))
	require.Equal(t, 2, l.Len())

	now = now.Add(45 * time.Second)
	require.Equal(t, 1, l.Sweep())
	require.Equal(t, 1, l.Len())

	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, l.Sweep())
	require.Zero(t, l.Len())
}

func TestRateLimiterDefaults(t *testing.T) {
	l := NewRateLimiter(0, 0, 0)
	require.Equal(t, 10, l.burst)
	require.Equal(t, 15*time.Minute, l.ttl)
	require.True(t, l.Allow("x"))
}
