package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Format selects the wire framing of envelopes.
type Format string

const (
	FormatNDJSON Format = "ndjson"
	FormatSSE    Format = "sse"
)

// ContentType returns the response content type for the format.
func (f Format) ContentType() string {
	if f == FormatSSE {
		return "text/event-stream"
	}
	return "application/x-ndjson"
}

// NegotiateFormat picks SSE when the client asks for text/event-stream and
// newline-delimited JSON otherwise.
func NegotiateFormat(accept string) Format {
	if strings.Contains(strings.ToLower(accept), "text/event-stream") {
		return FormatSSE
	}
	return FormatNDJSON
}

// WriteStats summarises one written stream.
type WriteStats struct {
	Envelopes int
	Bytes     int
	Completed bool // a terminal envelope was delivered
	Failed    bool // the terminal envelope was an error
	ByType    map[EnvelopeType]int

	nonEmptyText int
}

// Chunks is the number of non-empty text envelopes that were delivered.
func (s WriteStats) Chunks() int { return s.nonEmptyText }

// EncodeEnvelope frames env for the given format.
func EncodeEnvelope(format Format, env Envelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	if format == FormatSSE {
		out := make([]byte, 0, len(b)+8)
		out = append(out, "data: "...)
		out = append(out, b...)
		return append(out, '\n', '\n'), nil
	}
	return append(b, '\n'), nil
}

// TimeoutMessage is the content of the error envelope written when a stream
// runs past its deadline.
const TimeoutMessage = "stream timed out"

// Write drains envs onto w, flushing after every envelope. A failed write
// means the consumer is gone: Write returns an error wrapping
// ErrTransportClosed and the caller must cancel the producer's context.
//
// When ctx hits its deadline before a terminal envelope went out, the
// consumer is still there, so Write closes the stream with one error
// envelope and returns an error wrapping context.DeadlineExceeded.
func Write(ctx context.Context, w io.Writer, flusher http.Flusher, format Format, envs <-chan Envelope) (WriteStats, error) {
	stats := WriteStats{ByType: make(map[EnvelopeType]int)}
	var lastID string
	for {
		select {
		case <-ctx.Done():
			return stats, stopEarly(ctx, w, flusher, format, lastID, &stats)
		case env, ok := <-envs:
			if !ok {
				// a producer stopped through ctx closes envs without a terminal
				if !stats.Completed && ctx.Err() != nil {
					return stats, stopEarly(ctx, w, flusher, format, lastID, &stats)
				}
				return stats, nil
			}
			if env.ID != "" {
				lastID = env.ID
			}
			if err := writeEnvelope(w, flusher, format, env, &stats); err != nil {
				return stats, err
			}
		}
	}
}

func stopEarly(ctx context.Context, w io.Writer, flusher http.Flusher, format Format, id string, stats *WriteStats) error {
	if stats.Completed {
		return nil
	}
	err := ctx.Err()
	if !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransportClosed, err)
	}
	if werr := writeEnvelope(w, flusher, format, errorEnvelope(id, TimeoutMessage), stats); werr != nil {
		return fmt.Errorf("%w: %w", werr, err)
	}
	return fmt.Errorf("%s: %w", TimeoutMessage, err)
}

func writeEnvelope(w io.Writer, flusher http.Flusher, format Format, env Envelope, stats *WriteStats) error {
	frame, err := EncodeEnvelope(format, env)
	if err != nil {
		return err
	}
	n, err := w.Write(frame)
	stats.Bytes += n
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportClosed, err)
	}
	if flusher != nil {
		flusher.Flush()
	}
	stats.Envelopes++
	stats.ByType[env.Type]++
	if env.Type == TypeText && env.Content != "" {
		stats.nonEmptyText++
	}
	if env.Done {
		stats.Completed = true
		stats.Failed = env.Type == TypeError
	}
	return nil
}
