package agent

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"strings"

	"learnify-go/internal/constants"
	"learnify-go/internal/monitoring"
	"learnify-go/internal/streaming"

	log "github.com/sirupsen/logrus"
)

// flushThreshold is the event length that forces a flush on its own.
const flushThreshold = 100

var sentenceEnd = regexp.MustCompile(`[.!?]\s`)

// shouldFlush decides whether the text buffered so far goes out after an
// event carrying content.
func shouldFlush(content string) bool {
	return sentenceEnd.MatchString(content) ||
		strings.Contains(content, "\n\n") ||
		len(content) > flushThreshold
}

// relayState turns agent events into envelopes. Text is sent as deltas so
// concatenating every text envelope yields the full answer.
type relayState struct {
	id      string
	pending strings.Builder
	flushed bool
	// Content of the answer so far, reasoning excluded.
	full strings.Builder
}

func (s *relayState) text(content string) []streaming.Envelope {
	s.pending.WriteString(content)
	s.full.WriteString(content)
	if s.flushed && !shouldFlush(content) {
		return nil
	}
	return s.flush()
}

func (s *relayState) flush() []streaming.Envelope {
	if s.pending.Len() == 0 {
		return nil
	}
	env := streaming.Envelope{ID: s.id, Type: streaming.TypeText, Content: s.pending.String()}
	s.pending.Reset()
	s.flushed = true
	return []streaming.Envelope{env}
}

// handle maps one event to the envelopes it releases. terminal is set for
// an agent-reported error, which ends the stream.
func (s *relayState) handle(ev Event) (out []streaming.Envelope, terminal bool) {
	monitoring.AgentEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	switch {
	case ev.Kind == KindReasoning:
		return nil, false
	case ev.IsText():
		return s.text(ev.Content), false
	case ev.Kind == KindMermaid:
		out = s.flush()
		return append(out, streaming.Envelope{ID: s.id, Type: streaming.TypeMermaid, Content: ev.Content}), false
	case ev.Kind == KindImage:
		out = s.flush()
		return append(out, streaming.Envelope{ID: s.id, Type: streaming.TypeImage, Content: ev.Content}), false
	case ev.Kind == KindError:
		out = s.flush()
		msg := ev.Content
		if msg == "" {
			msg = "agent reported an error"
		}
		return append(out, streaming.Envelope{ID: s.id, Type: streaming.TypeError, Content: msg, Done: true}), true
	default:
		log.WithField("kind", ev.Kind).Debug("ignoring unknown agent event")
		return nil, false
	}
}

// Relay reads agent events from r and sends the resulting envelopes on out.
// It emits no start or terminal envelope of its own except for an agent error;
// it reports whether a terminal envelope was sent, and the read error if any.
func Relay(ctx context.Context, r io.Reader, id string, out chan<- streaming.Envelope) (terminal bool, answer string, err error) {
	st := &relayState{id: id}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, constants.StreamScannerInitialBufferSize), constants.StreamScannerMaxBufferSize)

	emit := func(envs []streaming.Envelope) bool {
		for _, env := range envs {
			select {
			case <-ctx.Done():
				return false
			case out <- env:
			}
		}
		return true
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		ev := ParseEvent(line)
		if ev.Kind == KindRaw {
			ev.Content = line + "\n"
		}
		envs, term := st.handle(ev)
		if !emit(envs) {
			return false, st.full.String(), ctx.Err()
		}
		if term {
			return true, st.full.String(), nil
		}
	}
	if !emit(st.flush()) {
		return false, st.full.String(), ctx.Err()
	}
	return false, st.full.String(), scanner.Err()
}
