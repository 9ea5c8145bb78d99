package chat

import (
	"time"

	"learnify-go/internal/chunking"
	"learnify-go/internal/config"
	"learnify-go/internal/constants"
	"learnify-go/internal/diagram"
	"learnify-go/internal/events"
	"learnify-go/internal/handlers/common"
	"learnify-go/internal/streaming"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Stream sources, used as the "source" label in logs and metrics.
const (
	SourceMarkdown = "markdown"
	SourceSession  = "session"
	SourceAgent    = "agent"
	SourceText     = "text"
	SourceSocket   = "websocket"
)

// Handler serves the chat streaming routes.
type Handler struct {
	cfg       *config.Manager
	publisher events.Publisher
	newID     func() string
}

// New constructs the chat handlers. Configuration is read per request so
// reloads apply to the next stream.
func New(cfg *config.Manager, publisher events.Publisher) *Handler {
	return &Handler{cfg: cfg, publisher: publisher, newID: uuid.NewString}
}

// WithIDGenerator replaces the stream id generator.
func (h *Handler) WithIDGenerator(fn func() string) *Handler {
	if fn != nil {
		h.newID = fn
	}
	return h
}

// Register mounts the chat routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/api/chat/markdown", h.Markdown)
	r.POST("/api/course-chats/sessions/:id/stream", h.SessionStream)
	r.POST("/api/course-chats/sessions/:id/agent", h.AgentStream)
	r.POST("/api/stream", h.Text)
	r.GET("/ws/stream", h.WebSocket)
}

// emitterOptions picks the cadence for one stream.
type emitterOptions struct {
	target  int
	initial time.Duration
	delay   streaming.DelayPolicy
	chunker streaming.Chunker
}

func (h *Handler) markdownOptions(cfg *config.Config, target int) emitterOptions {
	if target <= 0 {
		target = cfg.Stream.TargetChunks
	}
	return emitterOptions{
		target:  target,
		initial: cfg.Stream.InitialDelay.D(),
		delay:   streaming.RandomDelay{Min: cfg.Stream.MinDelay.D(), Max: cfg.Stream.MaxDelay.D()},
		chunker: chunking.SplitMarkdown,
	}
}

// prepareText applies the diagram fix-ups enabled in config.
func prepareText(cfg *config.Config, text string) string {
	if cfg.Stream.RepairDiagrams {
		return diagram.RepairMarkdown(text)
	}
	return text
}

// serveText streams text as chunk envelopes on the HTTP response.
func (h *Handler) serveText(c *gin.Context, source, text string, opts emitterOptions) {
	cfg := h.cfg.Get()
	id := h.newID()
	emitter := streaming.NewEmitter(streaming.EmitterConfig{
		TargetChunks: opts.target,
		InitialDelay: opts.initial,
		Delay:        opts.delay,
		Chunker:      opts.chunker,
		NewID:        func() string { return id },
	})

	ctx, cancel := common.WithStreamTimeout(c.Request.Context(), cfg.Stream.Timeout.D())
	envs := emitter.Stream(ctx, text)
	_, _ = common.Serve(c, common.StreamRun{
		Source:    source,
		StreamID:  id,
		Format:    streaming.NegotiateFormat(c.GetHeader("Accept")),
		Publisher: h.publisher,
	}, ctx, cancel, envs)
}

func maxBody(cfg *config.Config) int64 {
	n := cfg.Stream.MaxTextBytes
	if n <= 0 {
		n = constants.MaxStreamTextBytes
	}
	// room for the JSON framing around the text
	return int64(n) + 4096
}
