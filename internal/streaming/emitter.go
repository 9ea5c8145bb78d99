package streaming

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"learnify-go/internal/chunking"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Chunker partitions text into about target pieces whose concatenation is text.
type Chunker func(text string, target int) []string

// EmitterConfig holds configuration for simulated streaming
type EmitterConfig struct {
	TargetChunks int           // Chunk count hint passed to the chunker
	InitialDelay time.Duration // Pause between the start envelope and the first chunk
	Delay        DelayPolicy   // Pause between chunks
	Chunker      Chunker
	NewID        func() string
	Buffer       int // Channel buffer size
}

// DefaultEmitterConfig returns default configuration
func DefaultEmitterConfig() EmitterConfig {
	return EmitterConfig{
		TargetChunks: 15,
		InitialDelay: 50 * time.Millisecond,
		Delay:        DefaultRandomDelay(),
		Chunker:      chunking.SplitMarkdown,
		NewID:        uuid.NewString,
	}
}

// Emitter turns complete text into a timed sequence of envelopes.
type Emitter struct {
	cfg EmitterConfig
}

// NewEmitter fills unset fields of cfg from DefaultEmitterConfig.
func NewEmitter(cfg EmitterConfig) *Emitter {
	def := DefaultEmitterConfig()
	if cfg.TargetChunks <= 0 {
		cfg.TargetChunks = def.TargetChunks
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	if cfg.Delay == nil {
		cfg.Delay = def.Delay
	}
	if cfg.Chunker == nil {
		cfg.Chunker = def.Chunker
	}
	if cfg.NewID == nil {
		cfg.NewID = def.NewID
	}
	if cfg.Buffer < 0 {
		cfg.Buffer = 0
	}
	return &Emitter{cfg: cfg}
}

// Config returns the effective configuration.
func (e *Emitter) Config() EmitterConfig { return e.cfg }

// Stream starts a producer goroutine and returns its envelope channel. The
// sequence is an empty start envelope, one envelope per chunk, then exactly
// one terminal envelope, after which the channel is closed. Cancelling ctx
// stops the producer; the channel is closed without a terminal envelope.
func (e *Emitter) Stream(ctx context.Context, text string) <-chan Envelope {
	out := make(chan Envelope, e.cfg.Buffer)
	go e.produce(ctx, text, out)
	return out
}

func (e *Emitter) produce(ctx context.Context, text string, out chan<- Envelope) {
	defer close(out)
	id := e.cfg.NewID()

	if !send(ctx, out, textEnvelope(id, "")) {
		return
	}

	chunks, err := e.chunk(text)
	if err != nil {
		log.WithError(err).WithField("stream_id", id).Error("chunking failed")
		send(ctx, out, errorEnvelope(id, "failed to prepare response"))
		return
	}

	for i, chunk := range chunks {
		wait := e.cfg.Delay.Next(i)
		if i == 0 {
			wait = e.cfg.InitialDelay
		}
		if !sleep(ctx, wait) {
			return
		}
		if !send(ctx, out, textEnvelope(id, chunk)) {
			return
		}
	}

	send(ctx, out, completeEnvelope(id))
}

func (e *Emitter) chunk(text string) (chunks []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"error": r,
				"stack": string(debug.Stack()),
			}).Error("Panic in chunker")
			err = fmt.Errorf("chunker panic: %v", r)
		}
	}()
	return e.cfg.Chunker(text, e.cfg.TargetChunks), nil
}

func send(ctx context.Context, out chan<- Envelope, env Envelope) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case <-ctx.Done():
		return false
	case out <- env:
		return true
	}
}
