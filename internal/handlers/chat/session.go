package chat

import (
	"strings"

	"learnify-go/internal/chunking"
	apperrors "learnify-go/internal/errors"
	"learnify-go/internal/handlers/common"
	"learnify-go/internal/logging"
	"learnify-go/internal/responses"
	"learnify-go/internal/streaming"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type sessionStreamRequest struct {
	Message   string `json:"message"`
	ChapterID string `json:"chapter_id"`
}

// SessionStream answers a course chat message with a templated response,
// split by size at a fixed cadence.
func (h *Handler) SessionStream(c *gin.Context) {
	cfg := h.cfg.Get()
	var req sessionStreamRequest
	if apiErr := common.BindJSON(c, &req, maxBody(cfg)); apiErr != nil {
		common.AbortWithAPIError(c, apiErr)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		common.AbortWithAPIError(c, apperrors.BadRequest("Message is required"))
		return
	}

	text, err := responses.ForMessage(req.Message)
	if err != nil {
		logging.WithReq(c, log.Fields{"session_id": c.Param("id")}).WithError(err).Error("render response template")
		common.AbortWithAPIError(c, apperrors.Internal("Failed to process streaming response"))
		return
	}

	delay := cfg.Stream.SessionDelay.D()
	h.serveText(c, SourceSession, prepareText(cfg, text), emitterOptions{
		target:  cfg.Stream.SessionTargetChunks,
		initial: delay,
		delay:   streaming.FixedDelay(delay),
		chunker: chunking.SplitText,
	})
}
