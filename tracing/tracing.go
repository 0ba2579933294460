// Package tracing records the heuristic decisions the pipeline takes (which
// rule matched, the confidence, whether a fallback was used) as data.
package tracing

import (
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Stages of the pipeline.
const (
	StageInput       = "input"
	StagePrompt      = "prompt"
	StageExtract     = "extract"
	StageResolve     = "resolve"
	StageBuild       = "build"
	StageNormalize   = "normalize"
	StageValidate    = "validate"
	StageRepair      = "repair"
	StagePostProcess = "postprocess"
)

// Decision is a single recorded heuristic choice.
type Decision struct {
	Stage      string  `json:"stage"`
	Rule       string  `json:"rule"`
	Subject    string  `json:"subject,omitempty"`
	Detail     string  `json:"detail,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Fallback   bool    `json:"fallback,omitempty"`
}

// Tracer receives decisions. Implementations must be safe to call from the
// goroutine running the pipeline; they are never shared across invocations
// by the engine itself.
type Tracer interface {
	Record(d Decision)
}

// Nop discards every decision.
type Nop struct{}

func (Nop) Record(Decision) {}

// OrNop returns t, or Nop when t is nil.
func OrNop(t Tracer) Tracer {
	if t == nil {
		return Nop{}
	}
	return t
}

// Recorder keeps decisions in memory.
type Recorder struct {
	mu        sync.Mutex
	decisions []Decision
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(d Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, d)
}

// Decisions returns a copy of everything recorded so far.
func (r *Recorder) Decisions() []Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Decision(nil), r.decisions...)
}

// Find returns the recorded decisions of a stage, optionally filtered by rule.
func (r *Recorder) Find(stage, rule string) []Decision {
	var out []Decision
	for _, d := range r.Decisions() {
		if d.Stage == stage && (rule == "" || d.Rule == rule) {
			out = append(out, d)
		}
	}
	return out
}

// Multi fans decisions out to several tracers.
type Multi []Tracer

// NewMulti drops nil tracers and collapses trivial cases.
func NewMulti(ts ...Tracer) Tracer {
	filtered := make(Multi, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			filtered = append(filtered, t)
		}
	}
	switch len(filtered) {
	case 0:
		return Nop{}
	case 1:
		return filtered[0]
	}
	return filtered
}

func (m Multi) Record(d Decision) {
	for _, t := range m {
		t.Record(d)
	}
}

// ZapTracer logs every decision at debug level.
type ZapTracer struct {
	L *zap.Logger
}

func (z ZapTracer) Record(d Decision) {
	if z.L == nil {
		return
	}
	fields := []zap.Field{
		zap.String("stage", d.Stage),
		zap.String("rule", d.Rule),
	}
	if d.Subject != "" {
		fields = append(fields, zap.String("subject", d.Subject))
	}
	if d.Detail != "" {
		fields = append(fields, zap.String("detail", d.Detail))
	}
	if d.Confidence != 0 {
		fields = append(fields, zap.Float64("confidence", d.Confidence))
	}
	if d.Fallback {
		fields = append(fields, zap.Bool("fallback", true))
	}
	z.L.Debug("pipeline decision", fields...)
}

// SpanTracer attaches decisions as events of an OpenTelemetry span.
type SpanTracer struct {
	Span trace.Span
}

func (s SpanTracer) Record(d Decision) {
	if s.Span == nil || !s.Span.IsRecording() {
		return
	}
	s.Span.AddEvent(d.Stage+"."+d.Rule, trace.WithAttributes(
		attribute.String("subject", d.Subject),
		attribute.String("detail", d.Detail),
		attribute.Float64("confidence", d.Confidence),
		attribute.Bool("fallback", d.Fallback),
	))
}
