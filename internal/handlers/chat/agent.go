package chat

import (
	"strings"

	"learnify-go/internal/agent"
	apperrors "learnify-go/internal/errors"
	"learnify-go/internal/handlers/common"
	"learnify-go/internal/logging"
	"learnify-go/internal/streaming"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type agentStreamRequest struct {
	Content          string                 `json:"content"`
	CourseID         string                 `json:"courseId"`
	VirtualChapterID string                 `json:"virtualChapterId"`
	UserID           string                 `json:"userId"`
	Language         string                 `json:"language"`
	LearningProfile  *agent.LearningProfile `json:"learningProfile"`
}

// AgentStream relays the external tutor agent's answer to a session message.
func (h *Handler) AgentStream(c *gin.Context) {
	cfg := h.cfg.Get()
	var req agentStreamRequest
	if apiErr := common.BindJSON(c, &req, maxBody(cfg)); apiErr != nil {
		common.AbortWithAPIError(c, apiErr)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		common.AbortWithAPIError(c, apperrors.BadRequest("Message content is required"))
		return
	}

	id := h.newID()
	cmd := &agent.Command{
		Path:  cfg.Agent.Command,
		Args:  cfg.Agent.Args,
		Env:   cfg.Agent.Env,
		Dir:   cfg.Agent.Dir,
		NewID: func() string { return id },
	}
	ctx, cancel := common.WithStreamTimeout(c.Request.Context(), cfg.Stream.Timeout.D())
	envs, err := cmd.Stream(ctx, agent.Request{
		UserID:    req.UserID,
		CourseID:  req.CourseID,
		ChapterID: req.VirtualChapterID,
		Prompt:    req.Content,
		Language:  req.Language,
		Profile:   req.LearningProfile,
		SessionID: c.Param("id"),
	})
	if err != nil {
		cancel()
		logging.WithReq(c, log.Fields{"session_id": c.Param("id")}).WithError(err).Warn("agent stream not started")
		common.AbortWithError(c, err)
		return
	}

	_, _ = common.Serve(c, common.StreamRun{
		Source:    SourceAgent,
		StreamID:  id,
		Format:    streaming.NegotiateFormat(c.GetHeader("Accept")),
		Publisher: h.publisher,
	}, ctx, cancel, envs)
}
