package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"learnify-go/internal/config"
	srv "learnify-go/internal/server"
	"github.com/gin-gonic/gin"
)

func startTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	var ts *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("httptest server unavailable: %v", r)
			}
		}()
		ts = httptest.NewServer(handler)
	}()
	t.Cleanup(ts.Close)
	return ts
}

// fastConfig removes every streaming delay.
func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Stream.InitialDelay = 0
	cfg.Stream.MinDelay = 0
	cfg.Stream.MaxDelay = 0
	cfg.Stream.SessionDelay = 0
	cfg.RateLimit.Enabled = false
	return cfg
}

// startLearnify serves the full engine built from deps over a real listener.
func startLearnify(t *testing.T, deps srv.Dependencies) (*httptest.Server, srv.Handlers) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.Config == nil {
		deps.Config = config.NewStaticManager(fastConfig())
	}
	engine, handlers := srv.BuildEngine(deps)
	return startTestServer(t, engine), handlers
}
