package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"learnify-go/internal/cache"
	"learnify-go/internal/config"
	"learnify-go/internal/diagram"
	rt "learnify-go/internal/runtime"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestBuildRenderCacheBackends(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	c, mem, err := buildRenderCache(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, mem)
	require.Same(t, mem, c)

	cfg.Cache.Backend = "none"
	c, mem, err = buildRenderCache(ctx, cfg)
	require.NoError(t, err)
	require.Nil(t, c)
	require.Nil(t, mem)

	cfg.Cache.Backend = "memcached"
	_, _, err = buildRenderCache(ctx, cfg)
	require.Error(t, err)
}

func TestBuildRenderCacheRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = mr.Addr()
	cfg.Cache.RedisPrefix = "test:"

	c, mem, err := buildRenderCache(context.Background(), cfg)
	require.NoError(t, err)
	require.Nil(t, mem)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	require.True(t, mr.Exists("test:k"))
}

func TestBuildRenderCacheFallsBackToMemory(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = addr

	c, mem := buildRenderCacheWithFallback(context.Background(), cfg)
	require.NotNil(t, mem)
	_, isMemory := c.(*cache.MemoryCache)
	require.True(t, isMemory)
}

func TestBuildRendererUsesCache(t *testing.T) {
	cfg := config.Default()
	require.Nil(t, buildRenderer(cfg, nil))

	var calls atomic.Int32
	kroki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte("<svg/>"))
	}))
	t.Cleanup(kroki.Close)

	cfg.Diagram.RendererURL = kroki.URL
	mem := cache.NewMemoryCache(16)
	r := buildRenderer(cfg, mem)
	_, cached := r.(*diagram.CachedRenderer)
	require.True(t, cached)

	for i := 0; i < 3; i++ {
		svg, err := r.Render(context.Background(), "graph TD\nA-->B")
		require.NoError(t, err)
		require.Equal(t, "<svg/>", string(svg))
	}
	require.Equal(t, int32(1), calls.Load())

	_, plain := buildRenderer(cfg, nil).(*diagram.HTTPRenderer)
	require.True(t, plain)
}

func TestBuildRateLimiter(t *testing.T) {
	cfg := config.Default()
	require.NotNil(t, buildRateLimiter(cfg))
	cfg.RateLimit.Enabled = false
	require.Nil(t, buildRateLimiter(cfg))
}

func TestStartBackgroundTasks(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.SweepInterval = config.Duration(time.Hour)
	cfg.RateLimit.SweepInterval = config.Duration(time.Hour)
	mgr := config.NewStaticManager(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tm := rt.NewTaskManager(ctx)

	startBackgroundTasks(tm, mgr, cache.NewMemoryCache(4), buildRateLimiter(cfg))

	_, watching := tm.Get("config-watch")
	require.False(t, watching, "no watcher without a config file")
	_, ok := tm.Get("render-cache-sweep")
	require.True(t, ok)
	require.Eventually(t, func() bool {
		info, ok := tm.Get("ratelimit-sweep")
		return ok && info.Runs >= 1
	}, time.Second, 10*time.Millisecond)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Second)
	defer cancelShutdown()
	require.NoError(t, tm.Shutdown(shutdownCtx))
}
