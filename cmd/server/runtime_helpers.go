package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"learnify-go/internal/cache"
	"learnify-go/internal/config"
	"learnify-go/internal/diagram"
	mw "learnify-go/internal/middleware"
	rt "learnify-go/internal/runtime"
	log "github.com/sirupsen/logrus"
)

const redisPingTimeout = 3 * time.Second

// buildRenderCache opens the configured render cache. The memory cache is
// returned separately so its sweeper can be scheduled; both are nil for the
// "none" backend.
func buildRenderCache(ctx context.Context, cfg *config.Config) (cache.Cache, *cache.MemoryCache, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	switch backend {
	case "", "memory":
		mem := cache.NewMemoryCache(cfg.Cache.MaxEntries)
		return mem, mem, nil
	case "none", "off":
		return nil, nil, nil
	case "redis":
		addr := cfg.Cache.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		rc := cache.NewRedisCache(cache.RedisOptions{
			Addr:     addr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.RedisPrefix,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			_ = rc.Close()
			return nil, nil, err
		}
		return rc, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache backend: %s", backend)
	}
}

// buildRenderCacheWithFallback degrades to the in-memory cache when the
// configured backend cannot be opened, so a missing Redis never blocks startup.
func buildRenderCacheWithFallback(ctx context.Context, cfg *config.Config) (cache.Cache, *cache.MemoryCache) {
	c, mem, err := buildRenderCache(ctx, cfg)
	if err == nil {
		return c, mem
	}
	log.WithError(err).WithField("backend", cfg.Cache.Backend).
		Warn("Render cache initialization failed; falling back to memory")
	mem = cache.NewMemoryCache(cfg.Cache.MaxEntries)
	return mem, mem
}

// buildRenderer wires the HTTP renderer behind the cache. It returns nil when
// no renderer URL is configured.
func buildRenderer(cfg *config.Config, c cache.Cache) diagram.Renderer {
	url := strings.TrimSpace(cfg.Diagram.RendererURL)
	if url == "" {
		return nil
	}
	var r diagram.Renderer = diagram.NewHTTPRenderer(url, cfg.Diagram.RenderTimeout.D())
	if c == nil {
		return r
	}
	return &diagram.CachedRenderer{Next: r, Cache: c, TTL: cfg.Cache.TTL.D()}
}

// buildRateLimiter returns nil when rate limiting is disabled.
func buildRateLimiter(cfg *config.Config) *mw.RateLimiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return mw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL.D())
}

// startBackgroundTasks schedules config watching, cache sweeping and rate
// limiter sweeping on tm.
func startBackgroundTasks(tm *rt.TaskManager, cfgMgr *config.Manager, mem *cache.MemoryCache, limiter *mw.RateLimiter) {
	cfg := cfgMgr.Get()
	if cfgMgr.Path() != "" {
		if err := tm.Start("config-watch", cfgMgr.Watch); err != nil {
			log.WithError(err).Warn("failed to start config watcher")
		}
	}
	if mem != nil {
		interval := cfg.Cache.SweepInterval.D()
		if err := tm.Start("render-cache-sweep", func(ctx context.Context) error {
			mem.RunSweeper(ctx, interval)
			return nil
		}); err != nil {
			log.WithError(err).Warn("failed to start render cache sweeper")
		}
	}
	if limiter != nil {
		if err := tm.StartPeriodic("ratelimit-sweep", cfg.RateLimit.SweepInterval.D(), func(context.Context) error {
			limiter.Sweep()
			return nil
		}); err != nil {
			log.WithError(err).Warn("failed to start rate limit sweeper")
		}
	}
}
