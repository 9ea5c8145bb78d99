package common

import (
	"context"
	"io"
	"net/http"
	"time"

	"learnify-go/internal/events"
	"learnify-go/internal/logging"
	"learnify-go/internal/monitoring"
	"learnify-go/internal/monitoring/tracing"
	"learnify-go/internal/streaming"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// PrepareStream sets the response headers for format and returns the
// writer/flusher pair.
func PrepareStream(c *gin.Context, format streaming.Format, streamID string) (gin.ResponseWriter, http.Flusher) {
	c.Header("Content-Type", format.ContentType())
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	if streamID != "" {
		c.Header("X-Stream-ID", streamID)
	}
	c.Status(http.StatusOK)
	w := c.Writer
	fl, _ := w.(http.Flusher)
	return w, fl
}

// StreamRun describes one envelope stream served to a client.
type StreamRun struct {
	Source    string // route label for logs and metrics
	StreamID  string
	Format    streaming.Format
	Publisher events.Publisher
	// Transport overrides the format in the metrics label, e.g. "websocket".
	Transport string
}

func (r StreamRun) transport() string {
	if r.Transport != "" {
		return r.Transport
	}
	return string(r.Format)
}

// Serve writes envs to the client and accounts for the stream. ctx is the
// producer's context; cancel stops the producer and is always called before
// Serve returns, so a producer blocked on a gone consumer is released.
func Serve(c *gin.Context, run StreamRun, ctx context.Context, cancel context.CancelFunc, envs <-chan streaming.Envelope) (streaming.WriteStats, error) {
	w, fl := PrepareStream(c, run.Format, run.StreamID)
	return ServeTo(c, run, ctx, cancel, w, fl, envs)
}

// ServeTo is Serve for a caller prepared writer, such as a websocket.
func ServeTo(c *gin.Context, run StreamRun, ctx context.Context, cancel context.CancelFunc, w io.Writer, fl http.Flusher, envs <-chan streaming.Envelope) (streaming.WriteStats, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "stream", "stream."+run.Source)
	c.Set("stream_id", run.StreamID)
	monitoring.StreamsStarted.WithLabelValues(run.Source, run.transport()).Inc()

	stats, err := streaming.Write(ctx, w, fl, run.Format, envs)
	cancel()

	dur := time.Since(start)
	outcome := logging.StreamOutcome(stats, err)
	span.SetAttributes(
		attribute.String("stream.id", run.StreamID),
		attribute.String("stream.outcome", outcome),
		attribute.Int("stream.envelopes", stats.Envelopes),
	)
	tracing.EndSpan(span, err)

	monitoring.StreamsFinished.WithLabelValues(run.Source, outcome).Inc()
	monitoring.StreamChunks.WithLabelValues(run.Source).Observe(float64(stats.Chunks()))
	monitoring.StreamDuration.WithLabelValues(run.Source).Observe(dur.Seconds())
	for typ, n := range stats.ByType {
		monitoring.EnvelopesSent.WithLabelValues(run.Source, string(typ)).Add(float64(n))
	}

	entry := logging.WithStream(logging.WithReq(c, log.Fields{
		"outcome":     outcome,
		"envelopes":   stats.Envelopes,
		"bytes":       stats.Bytes,
		"duration_ms": logging.DurationMS(dur),
	}), run.StreamID, run.Source)
	if err != nil && outcome != "cancelled" {
		entry.WithError(err).Warn("stream ended early")
	} else {
		entry.Info("stream finished")
	}

	if run.Publisher != nil {
		run.Publisher.Publish(context.Background(), events.TopicStreamFinished, events.StreamFinished{
			StreamID:  run.StreamID,
			Source:    run.Source,
			Outcome:   outcome,
			Envelopes: stats.Envelopes,
			Bytes:     int64(stats.Bytes),
			Duration:  dur,
		}, map[string]string{"source": run.Source})
	}
	return stats, err
}
