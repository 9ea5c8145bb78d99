package server

import (
	"net/http"

	"learnify-go/internal/config"
	"learnify-go/internal/constants"
	"learnify-go/internal/diagram"
	"learnify-go/internal/events"
	chath "learnify-go/internal/handlers/chat"
	diagh "learnify-go/internal/handlers/diagram"
	mw "learnify-go/internal/middleware"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Dependencies encapsulates runtime services required to build the HTTP engine.
type Dependencies struct {
	Config      *config.Manager
	Hub         *events.Hub
	Renderer    diagram.Renderer
	RateLimiter *mw.RateLimiter
	// NewID overrides stream ids; tests pin it for stable output.
	NewID func() string
}

// Handlers exposes the mounted handlers so callers can swap runtime
// collaborators after a config reload.
type Handlers struct {
	Chat    *chath.Handler
	Diagram *diagh.Handler
}

// BuildEngine constructs the Gin engine serving the chat and diagram routes.
func BuildEngine(deps Dependencies) (*gin.Engine, Handlers) {
	if deps.Config == nil {
		deps.Config = config.NewStaticManager(config.Default())
	}
	cfg := deps.Config.Get()

	var publisher events.Publisher
	if deps.Hub != nil {
		publisher = deps.Hub
	}

	chat := chath.New(deps.Config, publisher)
	if deps.NewID != nil {
		chat.WithIDGenerator(deps.NewID)
	}
	diagrams := diagh.New(deps.Config, deps.Renderer, publisher)

	engine := gin.New()
	applyStandardEngineSettings(engine, cfg, deps.RateLimiter)

	engine.GET("/healthz", healthHandler(deps))
	engine.GET("/metrics", mw.MetricsHandler)
	if cfg.Server.Pprof {
		registerPprof(engine)
	}

	root := engine.Group(cfg.Server.BasePath)
	chat.Register(root)
	diagrams.Register(root)
	root.GET("/meta/routes", func(c *gin.Context) {
		setNoCacheHeaders(c)
		c.JSON(http.StatusOK, buildRoutesJSON(engine, cfg))
	})

	log.WithFields(log.Fields{
		"base_path":  cfg.Server.BasePath,
		"routes":     len(engine.Routes()),
		"renderer":   deps.Renderer != nil,
		"rate_limit": deps.RateLimiter != nil,
	}).Info("HTTP engine built")
	return engine, Handlers{Chat: chat, Diagram: diagrams}
}

func healthHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		setNoCacheHeaders(c)
		cfg := deps.Config.Get()
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"version":  constants.Version,
			"renderer": cfg.Diagram.RendererURL != "",
			"agent":    cfg.Agent.Command != "",
			"cache":    cfg.Cache.Backend,
		})
	}
}
