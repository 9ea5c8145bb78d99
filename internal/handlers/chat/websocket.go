package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"learnify-go/internal/constants"
	"learnify-go/internal/handlers/common"
	"learnify-go/internal/logging"
	"learnify-go/internal/streaming"
	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// checkOrigin accepts same-host origins and the configured CORS origins.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := neturl.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			a = strings.TrimRight(strings.TrimSpace(a), "/")
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
			if au, err := neturl.Parse(a); err == nil && au.Host != "" && strings.EqualFold(au.Host, u.Host) {
				return true
			}
		}
		return false
	}
}

// frameWriter sends each Write as one websocket text frame without the
// NDJSON line terminator.
type frameWriter struct {
	conn    *ws.Conn
	timeout time.Duration
}

func (f *frameWriter) Write(p []byte) (int, error) {
	_ = f.conn.SetWriteDeadline(time.Now().Add(f.timeout))
	if err := f.conn.WriteMessage(ws.TextMessage, bytes.TrimSuffix(p, []byte("\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WebSocket streams one text per connection. The client sends a single
// {"text", "chunks"} message and receives one frame per envelope; closing
// the socket stops the stream.
func (h *Handler) WebSocket(c *gin.Context) {
	cfg := h.cfg.Get()
	upgrader := ws.Upgrader{CheckOrigin: checkOrigin(cfg.Server.CORSOrigins)}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.WithReq(c, nil).WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBody(cfg))

	id := h.newID()
	var req textStreamRequest
	_, msg, err := conn.ReadMessage()
	if err != nil {
		logging.WithStream(logging.WithReq(c, nil), id, SourceSocket).WithError(err).Debug("websocket closed before request")
		return
	}
	if err := json.Unmarshal(msg, &req); err != nil {
		h.rejectSocket(conn, id, "Invalid JSON body")
		return
	}
	if apiErr := req.validate(cfg.Stream.MaxTextBytes); apiErr != nil {
		h.rejectSocket(conn, id, apiErr.Message)
		return
	}

	ctx, cancel := common.WithStreamTimeout(c.Request.Context(), cfg.Stream.Timeout.D())
	// any read error, including a close frame, means the client is gone
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	opts := h.markdownOptions(cfg, req.Chunks)
	emitter := streaming.NewEmitter(streaming.EmitterConfig{
		TargetChunks: opts.target,
		InitialDelay: opts.initial,
		Delay:        opts.delay,
		Chunker:      opts.chunker,
		NewID:        func() string { return id },
	})
	envs := emitter.Stream(ctx, prepareText(cfg, req.Text))

	fw := &frameWriter{conn: conn, timeout: constants.WebSocketWriteTimeout}
	stats, _ := common.ServeTo(c, common.StreamRun{
		Source:    SourceSocket,
		StreamID:  id,
		Format:    streaming.FormatNDJSON,
		Publisher: h.publisher,
		Transport: "websocket",
	}, ctx, cancel, fw, nil, envs)

	if stats.Completed {
		_ = conn.WriteControl(ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, streaming.CompleteMessage),
			time.Now().Add(time.Second))
	}
}

func (h *Handler) rejectSocket(conn *ws.Conn, id, msg string) {
	_ = conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
	if err := conn.WriteJSON(streaming.Envelope{ID: id, Type: streaming.TypeError, Content: msg, Done: true}); err != nil {
		log.WithError(err).WithField("stream_id", id).Debug("websocket reject not delivered")
	}
	_ = conn.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseUnsupportedData, msg),
		time.Now().Add(time.Second))
}
