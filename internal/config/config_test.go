package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"learnify-go/internal/events"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	res := Default().Validate()
	require.True(t, res.Valid, "%v", res.Errors)
	require.NoError(t, res.Err())
}

func TestLoadFileYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
stream:
  target_chunks: 8
  min_delay: 10ms
  max_delay: 20
diagram:
  renderer_url: http://kroki:8000
`), 0o644))
	cfg, err := LoadFile(yamlPath)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Stream.TargetChunks)
	require.Equal(t, 10*time.Millisecond, cfg.Stream.MinDelay.D())
	require.Equal(t, 20*time.Millisecond, cfg.Stream.MaxDelay.D())
	require.Equal(t, "http://kroki:8000", cfg.Diagram.RendererURL)
	// untouched sections keep defaults
	require.Equal(t, 10, cfg.Stream.SessionTargetChunks)
	require.Equal(t, "memory", cfg.Cache.Backend)

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"cache":{"backend":"redis","redis_addr":"localhost:6379","ttl":"1h"}}`), 0o644))
	cfg, err = LoadFile(jsonPath)
	require.NoError(t, err)
	require.Equal(t, "redis", cfg.Cache.Backend)
	require.Equal(t, time.Hour, cfg.Cache.TTL.D())

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("stream: [unclosed"), 0o644))
	_, err = LoadFile(badPath)
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LEARNIFY_ADDR", ":9090")
	t.Setenv("LEARNIFY_BASE_PATH", "learn//api/")
	t.Setenv("LEARNIFY_TARGET_CHUNKS", "20")
	t.Setenv("LEARNIFY_MAX_DELAY", "80ms")
	t.Setenv("LEARNIFY_REPAIR_DIAGRAMS", "off")
	t.Setenv("LEARNIFY_AGENT_ARGS", "agent_stream.py  --quiet")
	t.Setenv("LEARNIFY_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LEARNIFY_RATE_LIMIT_RPS", "2.5")
	t.Setenv("LEARNIFY_TARGET_CHUNKS_BOGUS", "x")

	cfg := Default()
	cfg.ApplyEnv()
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "/learn/api", cfg.Server.BasePath)
	require.Equal(t, 20, cfg.Stream.TargetChunks)
	require.Equal(t, 80*time.Millisecond, cfg.Stream.MaxDelay.D())
	require.False(t, cfg.Stream.RepairDiagrams)
	require.Equal(t, []string{"agent_stream.py", "--quiet"}, cfg.Agent.Args)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	require.Equal(t, 2.5, cfg.RateLimit.RPS)
}

func TestValidateRejects(t *testing.T) {
	cfg := Default()
	cfg.Stream.TargetChunks = 0
	cfg.Stream.MinDelay = Duration(time.Second)
	cfg.Diagram.RendererURL = "kroki:8000"
	cfg.Cache.Backend = "redis"
	cfg.Logging.Level = "loud"

	res := cfg.Validate()
	require.False(t, res.Valid)
	fields := map[string]bool{}
	for _, e := range res.Errors {
		fields[e.Field] = true
	}
	for _, f := range []string{"stream.target_chunks", "stream.max_delay", "diagram.renderer_url", "cache.redis_addr", "logging.level"} {
		require.True(t, fields[f], "missing error for %s", f)
	}
	require.Error(t, res.Err())
}

func TestManagerReloadPublishesEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  target_chunks: 5\n"), 0o644))

	m, err := NewManager(path)
	require.NoError(t, err)
	require.Equal(t, 5, m.Get().Stream.TargetChunks)

	hub := events.NewHub()
	m.SetEventPublisher(hub)
	got := make(chan ChangeEvent, 1)
	hub.Subscribe(events.TopicConfigUpdated, func(_ context.Context, ev events.Event) {
		got <- ev.Payload.(ChangeEvent)
	})
	var seen int
	m.OnChange(func(c *Config) { seen = c.Stream.TargetChunks })

	require.False(t, m.Reload(), "unchanged file must not reload")

	require.NoError(t, os.WriteFile(path, []byte("stream:\n  target_chunks: 7\n"), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	require.True(t, m.Reload())
	require.Equal(t, 7, m.Get().Stream.TargetChunks)
	require.Equal(t, 7, seen)
	ev := <-got
	require.Equal(t, 7, ev.Config.Stream.TargetChunks)
	require.Equal(t, 5, ev.Previous.Stream.TargetChunks)

	// an invalid file keeps the last good config
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  target_chunks: -1\n"), 0o644))
	later := future.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	require.False(t, m.Reload())
	require.Equal(t, 7, m.Get().Stream.TargetChunks)
}

func TestManagerWatchPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  target_chunks: 5\n"), 0o644))
	m, err := NewManager(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("stream:\n  target_chunks: 9\n"), 0o644)
		future := time.Now().Add(time.Hour)
		_ = os.Chtimes(path, future, future)
		return m.Get().Stream.TargetChunks == 9
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
