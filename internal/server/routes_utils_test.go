package server

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestJoinBasePath(t *testing.T) {
	tests := []struct {
		base, suffix, want string
	}{
		{"", "", ""},
		{"", "/api", "/api"},
		{"/lf", "", "/lf"},
		{"/lf", "/", "/lf/"},
		{"/lf", "/ws/stream", "/lf/ws/stream"},
		{"/lf", "api", "/lf/api"},
	}
	for _, tt := range tests {
		if got := joinBasePath(tt.base, tt.suffix); got != tt.want {
			t.Errorf("joinBasePath(%q, %q) = %q, want %q", tt.base, tt.suffix, got, tt.want)
		}
	}
}

func TestRouteKind(t *testing.T) {
	tests := map[string]string{
		"/ws/stream":                             "websocket",
		"/base/ws/stream":                        "websocket",
		"/api/stream":                            "stream",
		"/api/chat/markdown":                     "stream",
		"/api/course-chats/sessions/:id/agent":   "stream",
		"/api/diagrams/render":                   "json",
		"/healthz":                               "meta",
		"/base/meta/routes":                      "meta",
	}
	for path, want := range tests {
		if got := routeKind(path); got != want {
			t.Errorf("routeKind(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestSetNoCacheHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	setNoCacheHeaders(c)

	if got := w.Header().Get("Pragma"); got != "no-cache" {
		t.Errorf("Pragma = %q", got)
	}
	if got := w.Header().Get("Expires"); got != "0" {
		t.Errorf("Expires = %q", got)
	}
}
