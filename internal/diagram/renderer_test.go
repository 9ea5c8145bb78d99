package diagram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"learnify-go/internal/cache"

	"github.com/stretchr/testify/require"
)

func newKroki(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/mermaid/svg" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		src := string(body)
		switch {
		case strings.Contains(src, "boom"):
			w.WriteHeader(http.StatusBadGateway)
		case strings.Contains(src, "[a (b)]"):
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("Error 400: Parse error on line 1: Expecting 'SQE', got 'PS'"))
		default:
			w.Header().Set("Content-Type", "image/svg+xml")
			_, _ = w.Write([]byte("<svg xmlns=\"http://www.w3.org/2000/svg\"></svg>"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestHTTPRendererOutcomes(t *testing.T) {
	srv, _ := newKroki(t)
	r := NewHTTPRenderer(srv.URL+"/", time.Second)
	ctx := context.Background()

	svg, err := r.Render(ctx, "graph TD\nA --> B")
	require.NoError(t, err)
	require.Contains(t, string(svg), "<svg")

	_, err = r.Render(ctx, "graph TD\nA[a (b)]")
	var rerr *RenderError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, http.StatusBadRequest, rerr.Status)
	require.True(t, MatchesParserSignature(rerr.Message))

	_, err = r.Render(ctx, "boom")
	require.ErrorIs(t, err, ErrRendererUnavailable)
}

func TestHTTPRendererUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPRenderer(url, time.Second).Render(context.Background(), "graph TD")
	require.ErrorIs(t, err, ErrRendererUnavailable)
}

func TestRepairerWithHTTPRenderer(t *testing.T) {
	srv, _ := newKroki(t)
	res := NewRepairer(NewHTTPRenderer(srv.URL, time.Second)).Run(context.Background(), "graph TD\nA[a (b)] --> B")

	require.Equal(t, StateDone, res.State)
	require.Equal(t, 2, res.Attempts)
	require.Equal(t, "graph TD\nA[\"a (b)\"] --> B", res.Source)
}

func TestCachedRendererCachesSuccessOnly(t *testing.T) {
	srv, calls := newKroki(t)
	cr := &CachedRenderer{
		Next:   NewHTTPRenderer(srv.URL, time.Second),
		Cache:  cache.NewMemoryCache(10),
		TTL:    time.Minute,
		Prefix: "svg:",
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cr.Render(ctx, "graph TD\nA --> B")
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), calls.Load())

	for i := 0; i < 2; i++ {
		_, err := cr.Render(ctx, "A[a (b)]")
		require.Error(t, err)
	}
	require.Equal(t, int32(3), calls.Load())
}

func TestCacheKeyStable(t *testing.T) {
	require.Equal(t, CacheKey("graph TD"), CacheKey("graph TD"))
	require.NotEqual(t, CacheKey("graph TD"), CacheKey("graph LR"))
	require.Len(t, CacheKey(""), 64)
}
