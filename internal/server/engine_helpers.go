package server

import (
	"learnify-go/internal/config"
	"learnify-go/internal/httpformat"
	mw "learnify-go/internal/middleware"
	"github.com/gin-gonic/gin"
)

// applyStandardEngineSettings installs the middleware chain shared by every
// route. limiter may be nil when rate limiting is disabled.
func applyStandardEngineSettings(engine *gin.Engine, cfg *config.Config, limiter *mw.RateLimiter) {
	_ = engine.SetTrustedProxies([]string{})

	engine.Use(mw.Recovery(), mw.RequestID(), mw.Metrics())
	engine.Use(httpformat.Middleware(httpformat.Parse(cfg.Server.ErrorFormat)))
	engine.Use(mw.CORS(cfg.Server.CORSOrigins))
	if cfg.Server.RequestLog {
		engine.Use(mw.RequestLogger())
	}
	if limiter != nil {
		engine.Use(limiter.Handler())
	}
}
