package chat

import (
	"learnify-go/internal/responses"
	"github.com/gin-gonic/gin"
)

// Markdown streams the markdown demo document. The request body is ignored.
func (h *Handler) Markdown(c *gin.Context) {
	cfg := h.cfg.Get()
	h.serveText(c, SourceMarkdown, prepareText(cfg, responses.MarkdownDemo()), h.markdownOptions(cfg, 0))
}
