package server

import (
	pp "net/http/pprof"
	"sort"
	"strings"

	"learnify-go/internal/config"
	"learnify-go/internal/constants"
	"github.com/gin-gonic/gin"
)

func setNoCacheHeaders(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

func registerPprof(r *gin.Engine) {
	ppGroup := r.Group("/debug/pprof")
	ppGroup.GET("/", gin.WrapF(pp.Index))
	ppGroup.GET("/cmdline", gin.WrapF(pp.Cmdline))
	ppGroup.GET("/profile", gin.WrapF(pp.Profile))
	ppGroup.POST("/symbol", gin.WrapF(pp.Symbol))
	ppGroup.GET("/symbol", gin.WrapF(pp.Symbol))
	ppGroup.GET("/trace", gin.WrapF(pp.Trace))
	ppGroup.GET("/allocs", gin.WrapF(pp.Handler("allocs").ServeHTTP))
	ppGroup.GET("/goroutine", gin.WrapF(pp.Handler("goroutine").ServeHTTP))
	ppGroup.GET("/heap", gin.WrapF(pp.Handler("heap").ServeHTTP))
}

type routeInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Kind   string `json:"kind"`
}

// buildRoutesJSON describes the public surface so clients can discover the
// effective base path and the available streaming transports.
func buildRoutesJSON(engine *gin.Engine, cfg *config.Config) map[string]any {
	routes := make([]routeInfo, 0)
	for _, r := range engine.Routes() {
		if strings.HasPrefix(r.Path, "/debug/") {
			continue
		}
		routes = append(routes, routeInfo{Method: r.Method, Path: r.Path, Kind: routeKind(r.Path)})
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	return map[string]any{
		"name":      "learnify-go",
		"version":   constants.Version,
		"base_path": cfg.Server.BasePath,
		"stream_formats": []string{
			"application/x-ndjson",
			"text/event-stream",
		},
		"websocket": joinBasePath(cfg.Server.BasePath, "/ws/stream"),
		"features": map[string]any{
			"repair_diagrams": cfg.Stream.RepairDiagrams,
			"renderer":        cfg.Diagram.RendererURL != "",
			"agent":           cfg.Agent.Command != "",
			"max_level":       cfg.Diagram.MaxLevel,
		},
		"routes": routes,
	}
}

func routeKind(path string) string {
	switch {
	case strings.Contains(path, "/ws/"):
		return "websocket"
	case strings.HasSuffix(path, "/stream") || strings.HasSuffix(path, "/agent") || strings.HasSuffix(path, "/markdown"):
		return "stream"
	case path == "/healthz" || path == "/metrics" || strings.HasSuffix(path, "/meta/routes"):
		return "meta"
	default:
		return "json"
	}
}

func joinBasePath(basePath, suffix string) string {
	if basePath == "" {
		if suffix == "" {
			return ""
		}
		return suffix
	}
	if suffix == "" {
		return basePath
	}
	if suffix == "/" {
		return basePath + "/"
	}
	if strings.HasPrefix(suffix, "/") {
		return basePath + suffix
	}
	return basePath + "/" + suffix
}
