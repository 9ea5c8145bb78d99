package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"learnify-go/internal/streaming"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no agent command is set.
var ErrNotConfigured = errors.New("agent command not configured")

// Command runs the tutor agent as a subprocess speaking JSON lines.
type Command struct {
	Path string
	Args []string
	Env  []string // appended to the current environment
	Dir  string
	// NewID overrides the stream id generator.
	NewID func() string
}

// stderrTail keeps the last bytes written to the agent's stderr.
type stderrTail struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *stderrTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *stderrTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}

// Stream starts the agent, writes req to its stdin and relays its stdout.
// The channel carries an empty start envelope, the relayed envelopes, and
// exactly one terminal envelope unless ctx is cancelled first.
func (c *Command) Stream(ctx context.Context, req Request) (<-chan streaming.Envelope, error) {
	if c == nil || strings.TrimSpace(c.Path) == "" {
		return nil, ErrNotConfigured
	}
	payload, err := req.Encode()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = bytes.NewReader(append(payload, '\n'))
	tail := &stderrTail{max: 2048}
	cmd.Stderr = tail
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("agent stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start agent: %w", err)
	}

	newID := c.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	id := newID()
	out := make(chan streaming.Envelope)
	go func() {
		defer close(out)
		logger := log.WithFields(log.Fields{"stream_id": id, "agent": c.Path})

		if !sendEnvelope(ctx, out, streaming.Envelope{ID: id, Type: streaming.TypeText}) {
			_, _ = io.Copy(io.Discard, stdout)
			_ = cmd.Wait()
			return
		}
		terminal, answer, relayErr := Relay(ctx, stdout, id, out)
		// drain so the agent never blocks on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
		waitErr := cmd.Wait()

		if ctx.Err() != nil {
			logger.Info("agent stream cancelled")
			return
		}
		if terminal {
			return
		}
		switch {
		case relayErr != nil:
			logger.WithError(relayErr).Error("agent output unreadable")
			sendEnvelope(ctx, out, streaming.Envelope{ID: id, Type: streaming.TypeError, Content: "Error: agent output unreadable", Done: true})
		case waitErr != nil:
			msg := tail.String()
			if msg == "" {
				msg = waitErr.Error()
			}
			logger.WithError(waitErr).WithField("stderr", msg).Error("agent exited with error")
			sendEnvelope(ctx, out, streaming.Envelope{ID: id, Type: streaming.TypeError, Content: "Error: " + msg, Done: true})
		default:
			if msg := tail.String(); msg != "" {
				logger.WithField("stderr", msg).Warn("agent wrote to stderr")
			}
			logger.WithField("answer_len", len(answer)).Debug("agent stream complete")
			sendEnvelope(ctx, out, streaming.Envelope{ID: id, Type: streaming.TypeComplete, Content: streaming.CompleteMessage, Done: true})
		}
	}()
	return out, nil
}

func sendEnvelope(ctx context.Context, out chan<- streaming.Envelope, env streaming.Envelope) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- env:
		return true
	}
}
