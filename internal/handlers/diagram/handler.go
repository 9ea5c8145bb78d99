package diagram

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"learnify-go/internal/config"
	"learnify-go/internal/constants"
	"learnify-go/internal/diagram"
	apperrors "learnify-go/internal/errors"
	"learnify-go/internal/events"
	"learnify-go/internal/handlers/common"
	"learnify-go/internal/logging"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler serves diagram repair and rendering.
type Handler struct {
	cfg       *config.Manager
	publisher events.Publisher

	mu       sync.RWMutex
	renderer diagram.Renderer
}

// New constructs the handler. renderer may be nil when no render service
// is configured; the render route then answers 503.
func New(cfg *config.Manager, renderer diagram.Renderer, publisher events.Publisher) *Handler {
	return &Handler{cfg: cfg, renderer: renderer, publisher: publisher}
}

// SetRenderer swaps the renderer, e.g. after a config reload.
func (h *Handler) SetRenderer(r diagram.Renderer) {
	h.mu.Lock()
	h.renderer = r
	h.mu.Unlock()
}

func (h *Handler) currentRenderer() diagram.Renderer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.renderer
}

// Register mounts the diagram routes on r.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api/diagrams")
	g.POST("/repair", h.Repair)
	g.POST("/render", h.Render)
}

type repairRequest struct {
	Source string `json:"source"`
	Error  string `json:"error"`
	Level  string `json:"level"`
}

type repairResponse struct {
	Source    string `json:"source"`
	Changed   bool   `json:"changed"`
	Level     string `json:"level"`
	EditorURL string `json:"editor_url"`
}

func bindSource(c *gin.Context, dst any, source func() string) bool {
	if apiErr := common.BindJSON(c, dst, int64(constants.MaxDiagramSourceBytes)+4096); apiErr != nil {
		common.AbortWithAPIError(c, apiErr)
		return false
	}
	src := source()
	if strings.TrimSpace(src) == "" {
		common.AbortWithError(c, diagram.ErrEmptySource)
		return false
	}
	if len(src) > constants.MaxDiagramSourceBytes {
		common.AbortWithAPIError(c, apperrors.TooLarge("Diagram source too large"))
		return false
	}
	return true
}

// Repair applies one repair pass without rendering.
func (h *Handler) Repair(c *gin.Context) {
	var req repairRequest
	if !bindSource(c, &req, func() string { return req.Source }) {
		return
	}
	level, err := diagram.ParseLevel(req.Level)
	if err != nil {
		common.AbortWithAPIError(c, apperrors.BadRequest(err.Error()))
		return
	}
	if maxLevel := diagram.Level(h.cfg.Get().Diagram.MaxLevel); maxLevel > 0 && level > maxLevel {
		level = maxLevel
	}

	fixed := diagram.Repair(req.Source, level, req.Error)
	c.JSON(http.StatusOK, repairResponse{
		Source:    fixed,
		Changed:   fixed != req.Source,
		Level:     level.String(),
		EditorURL: diagram.EditorURL(fixed),
	})
}

type renderRequest struct {
	Source string `json:"source"`
}

type renderResponse struct {
	State     diagram.State `json:"state"`
	Source    string        `json:"source"`
	SVG       string        `json:"svg,omitempty"`
	Attempts  int           `json:"attempts"`
	Level     int           `json:"level"`
	Error     string        `json:"error,omitempty"`
	EditorURL string        `json:"editor_url,omitempty"`
}

// Render drives the repair state machine against the configured renderer.
// A diagram that cannot be repaired is still a 200 carrying state "failed",
// the error, and an editor link.
func (h *Handler) Render(c *gin.Context) {
	var req renderRequest
	if !bindSource(c, &req, func() string { return req.Source }) {
		return
	}
	renderer := h.currentRenderer()
	if renderer == nil {
		common.AbortWithError(c, diagram.ErrRendererUnavailable)
		return
	}

	cfg := h.cfg.Get()
	perAttempt := cfg.Diagram.RenderTimeout.D()
	if perAttempt <= 0 {
		perAttempt = constants.RenderTimeout
	}
	// three attempts at most: original, pass 1, pass 2
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*perAttempt)
	defer cancel()

	rep := &diagram.Repairer{Renderer: renderer, MaxLevel: diagram.Level(cfg.Diagram.MaxLevel)}
	res := rep.Run(ctx, req.Source)

	resp := renderResponse{
		State:     res.State,
		Source:    res.Source,
		SVG:       string(res.SVG),
		Attempts:  res.Attempts,
		Level:     int(res.Level),
		EditorURL: res.EditorURL,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
		logging.WithReq(c, log.Fields{
			"attempts": res.Attempts,
			"state":    res.State,
		}).WithError(res.Err).Info("diagram render failed")
		if h.publisher != nil {
			h.publisher.Publish(context.Background(), events.TopicDiagramFailed, events.DiagramFailed{
				Source:    res.Source,
				Attempts:  res.Attempts,
				Error:     resp.Error,
				EditorURL: res.EditorURL,
			}, nil)
		}
	}
	c.JSON(http.StatusOK, resp)
}
