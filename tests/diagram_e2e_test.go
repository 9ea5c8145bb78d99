package tests

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"learnify-go/internal/cache"
	"learnify-go/internal/diagram"
	srv "learnify-go/internal/server"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

// fakeKroki mimics a mermaid renderer that rejects unquoted labels holding
// parentheses, the way the real parser reports them.
func fakeKroki(t *testing.T, calls *atomic.Int32) string {
	t.Helper()
	ts := startTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/mermaid/svg" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		src := string(body)
		if strings.Contains(src, "[Start (") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, "Parse error on line 2: Expecting 'SQE', got 'PS'")
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = io.WriteString(w, "<svg><!-- ok --></svg>")
	}))
	return ts.URL
}

type renderResponse struct {
	State     string `json:"state"`
	Source    string `json:"source"`
	SVG       string `json:"svg"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error"`
	EditorURL string `json:"editor_url"`
}

func postRender(t *testing.T, base, source string) renderResponse {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"source": source})
	require.NoError(t, err)
	resp, err := http.Post(base+"/api/diagrams/render", "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out renderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRenderRepairsAgainstRenderer(t *testing.T) {
	var calls atomic.Int32
	renderer := diagram.NewHTTPRenderer(fakeKroki(t, &calls), 5*time.Second)
	ts, _ := startLearnify(t, srv.Dependencies{Renderer: renderer})

	out := postRender(t, ts.URL, "graph TD\nA[Start (now)] -- > B")
	require.Equal(t, "done", out.State)
	require.Equal(t, "graph TD\nA[\"Start (now)\"] --> B", out.Source)
	require.Contains(t, out.SVG, "<svg>")
	require.Equal(t, 1, out.Attempts)
	require.Equal(t, int32(1), calls.Load())
}

func TestRenderServesRepeatsFromRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(cache.RedisOptions{Addr: mr.Addr(), Prefix: "e2e:"})
	t.Cleanup(func() { _ = rc.Close() })

	var calls atomic.Int32
	renderer := &diagram.CachedRenderer{
		Next:  diagram.NewHTTPRenderer(fakeKroki(t, &calls), 5*time.Second),
		Cache: rc,
		TTL:   time.Minute,
	}
	ts, _ := startLearnify(t, srv.Dependencies{Renderer: renderer})

	first := postRender(t, ts.URL, "graph TD\nA-->B")
	require.Equal(t, "done", first.State)
	second := postRender(t, ts.URL, "graph TD\nA-->B")
	require.Equal(t, first.SVG, second.SVG)
	require.Equal(t, int32(1), calls.Load())
	require.Len(t, mr.Keys(), 1)
}

func TestRenderWithoutRendererIsUnavailable(t *testing.T) {
	ts, _ := startLearnify(t, srv.Dependencies{})

	resp, err := http.Post(ts.URL+"/api/diagrams/render", "application/json", strings.NewReader(`{"source":"graph TD"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRendererSwapAfterStartup(t *testing.T) {
	ts, handlers := startLearnify(t, srv.Dependencies{})

	var calls atomic.Int32
	handlers.Diagram.SetRenderer(diagram.NewHTTPRenderer(fakeKroki(t, &calls), 5*time.Second))

	out := postRender(t, ts.URL, "graph LR\nX-->Y")
	require.Equal(t, "done", out.State)
	require.Equal(t, 1, out.Attempts)
}
