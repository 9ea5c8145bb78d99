package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnify-go/internal/config"
	"learnify-go/internal/constants"
	"learnify-go/internal/events"
	"learnify-go/internal/logging"
	tracing "learnify-go/internal/monitoring/tracing"
	rt "learnify-go/internal/runtime"
	srv "learnify-go/internal/server"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (default: search config.yaml, config.json, LEARNIFY_CONFIG)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	cfgMgr, err := config.NewManager(*configPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	cfg := cfgMgr.Get()
	if *debug {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}
	if !*debug {
		gin.SetMode(gin.ReleaseMode)
	}

	traceShutdown, err := tracing.Init(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	if traceShutdown != nil {
		defer func() {
			if err := traceShutdown(context.Background()); err != nil {
				log.WithError(err).Warn("failed to shutdown tracing")
			}
		}()
	}
	log.Infof("Starting learnify-go %s (config: %s)", constants.GetFullVersion(), *configPath)

	eventHub := events.NewHub()
	cfgMgr.SetEventPublisher(eventHub)
	if *debug {
		subscribeDebugLogging(eventHub)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderCache, memCache := buildRenderCacheWithFallback(ctx, cfg)
	defer func() {
		if renderCache != nil {
			_ = renderCache.Close()
		}
	}()

	limiter := buildRateLimiter(cfg)
	engine, handlers := srv.BuildEngine(srv.Dependencies{
		Config:      cfgMgr,
		Hub:         eventHub,
		Renderer:    buildRenderer(cfg, renderCache),
		RateLimiter: limiter,
	})

	cfgMgr.OnChange(func(next *config.Config) {
		if *debug {
			next.Logging.Level = "debug"
		}
		if err := logging.Setup(next.Logging); err != nil {
			log.WithError(err).Warn("failed to apply logging config")
		}
		handlers.Diagram.SetRenderer(buildRenderer(next, renderCache))
	})

	tasks := rt.NewTaskManager(ctx)
	startBackgroundTasks(tasks, cfgMgr, memCache, limiter)

	listen := cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Learnify API listening on %s", listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutdown signal received")

	timeout := cfgMgr.Get().Server.ShutdownTimeout.D()
	if timeout <= 0 {
		timeout = constants.ServerShutdownTimeout
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	// Open streams see their request context cancelled and finish on their own.
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown incomplete")
	}
	cancel()
	tasksCtx, cancelTasks := context.WithTimeout(context.Background(), constants.ServerGracefulWait)
	defer cancelTasks()
	if err := tasks.Shutdown(tasksCtx); err != nil {
		log.WithError(err).Warn("background tasks did not stop in time")
	}
	log.Info("Server stopped")
}

func subscribeDebugLogging(hub *events.Hub) {
	hub.Subscribe(events.TopicConfigUpdated, func(_ context.Context, evt events.Event) {
		log.WithField("topic", evt.Topic).Debugf("config event: %v", evt.Payload)
	})
	hub.Subscribe(events.TopicStreamFinished, func(_ context.Context, evt events.Event) {
		log.WithField("topic", evt.Topic).Debugf("stream finished: %+v", evt.Payload)
	})
	hub.Subscribe(events.TopicDiagramFailed, func(_ context.Context, evt events.Event) {
		log.WithField("topic", evt.Topic).Debugf("diagram failed: %+v", evt.Payload)
	})
}
