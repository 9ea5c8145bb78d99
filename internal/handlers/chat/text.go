package chat

import (
	"learnify-go/internal/constants"
	apperrors "learnify-go/internal/errors"
	"learnify-go/internal/handlers/common"
	"github.com/gin-gonic/gin"
)

// maxChunks bounds the client supplied chunk count.
const maxChunks = 1000

type textStreamRequest struct {
	Text   string `json:"text"`
	Chunks int    `json:"chunks"`
}

func (r textStreamRequest) validate(maxText int) *apperrors.APIError {
	if maxText <= 0 {
		maxText = constants.MaxStreamTextBytes
	}
	if len(r.Text) > maxText {
		return apperrors.TooLarge("Text too large").WithDetails(map[string]interface{}{"limit_bytes": maxText})
	}
	if r.Chunks < 0 || r.Chunks > maxChunks {
		return apperrors.BadRequest("chunks must be between 0 and 1000 (0 uses the configured default)")
	}
	return nil
}

// Text streams arbitrary caller supplied markdown. An empty text still
// yields a start envelope and the terminal envelope.
func (h *Handler) Text(c *gin.Context) {
	cfg := h.cfg.Get()
	var req textStreamRequest
	if apiErr := common.BindJSON(c, &req, maxBody(cfg)); apiErr != nil {
		common.AbortWithAPIError(c, apiErr)
		return
	}
	if apiErr := req.validate(cfg.Stream.MaxTextBytes); apiErr != nil {
		common.AbortWithAPIError(c, apiErr)
		return
	}
	h.serveText(c, SourceText, prepareText(cfg, req.Text), h.markdownOptions(cfg, req.Chunks))
}
