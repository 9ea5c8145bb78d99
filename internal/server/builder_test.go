package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learnify-go/internal/config"
	"learnify-go/internal/diagram"
	"learnify-go/internal/events"
	mw "learnify-go/internal/middleware"
	"learnify-go/internal/streaming"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Stream.InitialDelay = 0
	cfg.Stream.MinDelay = 0
	cfg.Stream.MaxDelay = 0
	cfg.Stream.SessionDelay = 0
	return cfg
}

func buildTestEngine(t *testing.T, cfg *config.Config, deps Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	deps.Config = config.NewStaticManager(cfg)
	if deps.NewID == nil {
		deps.NewID = func() string { return "stream-test" }
	}
	engine, _ := BuildEngine(deps)
	return engine
}

func do(engine http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	engine.ServeHTTP(rec, req)
	return rec
}

func TestBuildEngineHealthz(t *testing.T) {
	engine := buildTestEngine(t, quietConfig(), Dependencies{})

	rec := do(engine, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store, no-cache, must-revalidate", rec.Header().Get("Cache-Control"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, false, body["renderer"])
	require.Equal(t, "memory", body["cache"])
}

func TestBuildEngineMetrics(t *testing.T) {
	engine := buildTestEngine(t, quietConfig(), Dependencies{})
	do(engine, http.MethodGet, "/healthz", "")

	rec := do(engine, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "learnify_http_requests_total")
}

func TestBuildEngineBasePath(t *testing.T) {
	cfg := quietConfig()
	cfg.Server.BasePath = "/learnify"
	engine := buildTestEngine(t, cfg, Dependencies{})

	rec := do(engine, http.MethodPost, "/learnify/api/stream", `{"text":"hello there","chunks":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	envs, err := streaming.ReadEnvelopes(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	require.True(t, streaming.IsCompleteStream(envs))
	require.Equal(t, "hello there", streaming.ReassembleText(envs))

	require.Equal(t, http.StatusNotFound, do(engine, http.MethodPost, "/api/stream", `{"text":"x"}`).Code)
	// health stays at the root for probes
	require.Equal(t, http.StatusOK, do(engine, http.MethodGet, "/healthz", "").Code)
}

func TestBuildEngineRoutesMeta(t *testing.T) {
	cfg := quietConfig()
	cfg.Server.BasePath = "/lf"
	engine := buildTestEngine(t, cfg, Dependencies{})

	rec := do(engine, http.MethodGet, "/lf/meta/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		BasePath  string      `json:"base_path"`
		WebSocket string      `json:"websocket"`
		Routes    []routeInfo `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "/lf", body.BasePath)
	require.Equal(t, "/lf/ws/stream", body.WebSocket)

	kinds := map[string]string{}
	for _, r := range body.Routes {
		kinds[r.Method+" "+r.Path] = r.Kind
	}
	require.Equal(t, "stream", kinds["POST /lf/api/chat/markdown"])
	require.Equal(t, "stream", kinds["POST /lf/api/course-chats/sessions/:id/stream"])
	require.Equal(t, "websocket", kinds["GET /lf/ws/stream"])
	require.Equal(t, "json", kinds["POST /lf/api/diagrams/repair"])
	require.Equal(t, "meta", kinds["GET /healthz"])
}

func TestBuildEnginePprofToggle(t *testing.T) {
	engine := buildTestEngine(t, quietConfig(), Dependencies{})
	require.Equal(t, http.StatusNotFound, do(engine, http.MethodGet, "/debug/pprof/", "").Code)

	cfg := quietConfig()
	cfg.Server.Pprof = true
	engine = buildTestEngine(t, cfg, Dependencies{})
	require.Equal(t, http.StatusOK, do(engine, http.MethodGet, "/debug/pprof/", "").Code)
}

func TestBuildEngineRateLimit(t *testing.T) {
	limiter := mw.NewRateLimiter(0.01, 1, time.Minute)
	engine := buildTestEngine(t, quietConfig(), Dependencies{RateLimiter: limiter})

	require.Equal(t, http.StatusOK, do(engine, http.MethodGet, "/healthz", "").Code)
	rec := do(engine, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestBuildEngineErrorFormat(t *testing.T) {
	cfg := quietConfig()
	cfg.Server.ErrorFormat = "detailed"
	engine := buildTestEngine(t, cfg, Dependencies{})

	rec := do(engine, http.MethodPost, "/api/course-chats/sessions/s1/stream", `{"message":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	detail, ok := body["error"].(map[string]any)
	require.True(t, ok, "detailed errors nest an error object")
	require.Equal(t, "invalid_request", detail["code"])
}

func TestBuildEngineRenderWithHub(t *testing.T) {
	hub := events.NewHub()
	failures := make(chan events.Event, 1)
	hub.Subscribe(events.TopicDiagramFailed, func(_ context.Context, ev events.Event) {
		failures <- ev
	})
	renderer := diagram.RendererFunc(func(context.Context, string) ([]byte, error) {
		return nil, errors.New("Parse error on line 1")
	})
	engine := buildTestEngine(t, quietConfig(), Dependencies{Hub: hub, Renderer: renderer})

	rec := do(engine, http.MethodPost, "/api/diagrams/render", `{"source":"graph TD\nA-->B"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"state":"failed"`)

	select {
	case ev := <-failures:
		require.Equal(t, events.TopicDiagramFailed, ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("expected diagram.failed event")
	}
}
