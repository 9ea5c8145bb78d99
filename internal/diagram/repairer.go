package diagram

import (
	"context"
	"errors"
	"strings"

	"learnify-go/internal/monitoring"
	"learnify-go/internal/monitoring/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// State is a position in the repair state machine:
//
//	NotAttempted -> Pass1Applied -> Done
//	                             -> Pass2Applied -> Done | Failed
type State string

const (
	StateNotAttempted State = "not_attempted"
	StatePass1Applied State = "pass1_applied"
	StatePass2Applied State = "pass2_applied"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// ErrEmptySource is reported for blank diagram source.
var ErrEmptySource = errors.New("diagram source is empty")

// Result is the outcome of a repair run. A failed run is still a value: the
// caller shows Err and EditorURL instead of a broken diagram.
type Result struct {
	State    State
	Source   string // last source handed to the renderer
	SVG      []byte
	Attempts int
	Level    Level // highest pass that changed the source, 0 for none
	Err      error
	// EditorURL opens Source in the online editor.
	EditorURL string
}

// Repairer drives render attempts through at most two repair passes.
type Repairer struct {
	Renderer Renderer
	// MaxLevel caps the passes tried; 0 means LevelAggressive.
	MaxLevel Level
}

// NewRepairer creates a repairer trying both passes.
func NewRepairer(r Renderer) *Repairer {
	return &Repairer{Renderer: r, MaxLevel: LevelAggressive}
}

// Run applies pass 1 and renders the result; on failure it re-renders after
// pass 2. A pass that leaves the source unchanged is not rendered again, so
// clean input costs one render.
func (r *Repairer) Run(ctx context.Context, source string) Result {
	ctx, span := tracing.StartSpan(ctx, "diagram", "diagram.repair")
	res := r.run(ctx, source)
	span.SetAttributes(
		attribute.String("diagram.state", string(res.State)),
		attribute.Int("diagram.attempts", res.Attempts),
	)
	tracing.EndSpan(span, res.Err)
	monitoring.DiagramRepairsTotal.WithLabelValues(string(res.State)).Inc()
	return res
}

func (r *Repairer) run(ctx context.Context, source string) Result {
	res := Result{State: StateNotAttempted, Source: source}
	if strings.TrimSpace(source) == "" {
		return r.fail(res, ErrEmptySource)
	}
	maxLevel := r.MaxLevel
	if maxLevel == 0 {
		maxLevel = LevelAggressive
	}

	fixed := Pass1(source)
	res.State = StatePass1Applied
	if fixed != source {
		res.Level = LevelTargeted
	}
	svg, err := r.attempt(ctx, &res, fixed)
	if err == nil {
		return r.done(res, svg)
	}
	if ctx.Err() != nil || errors.Is(err, ErrRendererUnavailable) || maxLevel < LevelAggressive {
		return r.fail(res, err)
	}

	aggressive := Pass2(fixed, err.Error())
	if aggressive == fixed {
		return r.fail(res, err)
	}
	res.State, res.Level = StatePass2Applied, LevelAggressive
	svg, err = r.attempt(ctx, &res, aggressive)
	if err == nil {
		return r.done(res, svg)
	}
	return r.fail(res, err)
}

func (r *Repairer) attempt(ctx context.Context, res *Result, source string) ([]byte, error) {
	res.Attempts++
	res.Source = source
	svg, err := r.Renderer.Render(ctx, source)
	if err != nil {
		log.WithFields(log.Fields{
			"attempt": res.Attempts,
			"state":   res.State,
		}).WithError(err).Debug("diagram render failed")
	}
	return svg, err
}

func (r *Repairer) done(res Result, svg []byte) Result {
	res.State = StateDone
	res.SVG = svg
	return res
}

func (r *Repairer) fail(res Result, err error) Result {
	res.State = StateFailed
	res.Err = err
	res.EditorURL = EditorURL(res.Source)
	log.WithFields(log.Fields{
		"attempts": res.Attempts,
		"level":    res.Level.String(),
	}).WithError(err).Warn("diagram could not be repaired")
	return res
}
