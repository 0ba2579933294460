// Package engine runs the build pipeline: classify the input, build a
// document from a draft or from extracted requirements, validate, repair and
// post-process it.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Tsinling0525/flowsmith/builder"
	"github.com/Tsinling0525/flowsmith/format/n8n"
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/postprocess"
	"github.com/Tsinling0525/flowsmith/prompt"
	"github.com/Tsinling0525/flowsmith/requirements"
	"github.com/Tsinling0525/flowsmith/resolver"
	"github.com/Tsinling0525/flowsmith/tracing"
	"github.com/Tsinling0525/flowsmith/validate"
)

// MaxInputBytes is the default input size limit.
const MaxInputBytes = 64 << 10

// Input kinds.
const (
	InputJSON = "json"
	InputText = "text"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n(.*?)```")

type Options struct {
	// Name overrides the document name.
	Name          string
	MaxInputBytes int
	Threshold     float64
	Layout        builder.Layout
	RowTolerance  float64
	Repair        RepairPolicy
	// Hook runs once on the repaired document. Nil means postprocess.Default.
	Hook   postprocess.Hook
	Tracer tracing.Tracer
	// NewID generates document-level ids; tests pin it.
	NewID func() string
}

// DefaultOptions returns the options BuildWorkflow uses.
func DefaultOptions() Options {
	return Options{
		MaxInputBytes: MaxInputBytes,
		Threshold:     resolver.DefaultThreshold,
		Layout:        builder.DefaultLayout(),
		RowTolerance:  validate.DefaultRowTolerance,
		Repair:        DefaultRepairPolicy(),
	}
}

// Engine is safe for concurrent use; every Build gets its own recorder.
type Engine struct {
	opts   Options
	tracer trace.Tracer
}

func New(opts Options) *Engine {
	if opts.MaxInputBytes <= 0 {
		opts.MaxInputBytes = MaxInputBytes
	}
	if opts.Threshold <= 0 {
		opts.Threshold = resolver.DefaultThreshold
	}
	if opts.Hook == nil {
		opts.Hook = postprocess.Default
	}
	return &Engine{opts: opts, tracer: otel.Tracer("github.com/Tsinling0525/flowsmith/engine")}
}

// Result is everything a build produces.
type Result struct {
	Document *model.Document `json:"workflow"`
	// Validation is the report after repair, Initial the one before it.
	Validation validate.Report    `json:"validation"`
	Initial    validate.Report    `json:"initialValidation"`
	Fixes      int                `json:"fixesApplied"`
	Input      string             `json:"inputKind"`
	Decisions  []tracing.Decision `json:"decisions"`
}

// BuildWorkflow builds raw with default options.
func BuildWorkflow(raw string) (Result, error) {
	return New(DefaultOptions()).Build(context.Background(), raw)
}

// Build turns raw model output into a validated workflow document. The only
// error it returns wraps model.ErrStructural.
func (e *Engine) Build(ctx context.Context, raw string) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "flowsmith.build")
	defer span.End()

	rec := tracing.NewRecorder()
	tr := tracing.NewMulti(rec, e.opts.Tracer, tracing.SpanTracer{Span: span})

	res, err := e.build(ctx, raw, tr)
	res.Decisions = rec.Decisions()
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	span.SetAttributes(
		attribute.String("flowsmith.input", res.Input),
		attribute.Int("flowsmith.nodes", len(res.Document.Nodes)),
		attribute.Int("flowsmith.score", res.Validation.Score),
		attribute.Int("flowsmith.fixes", res.Fixes),
	)
	return res, nil
}

func (e *Engine) build(ctx context.Context, raw string, tr tracing.Tracer) (Result, error) {
	res := Result{Input: InputText}
	bopts := builder.Options{
		Name:     e.opts.Name,
		Layout:   e.opts.Layout,
		Resolver: resolver.New(resolver.Options{Threshold: e.opts.Threshold, Tracer: tr}),
		Tracer:   tr,
		NewID:    e.opts.NewID,
	}

	var doc *model.Document
	if payload, ok := jsonPayload(raw, tr); ok {
		if len(payload) > e.opts.MaxInputBytes {
			return res, &model.StructuralError{Reason: fmt.Sprintf("JSON input of %d bytes", len(payload)), Err: model.ErrInputTooLarge}
		}
		if !json.Valid([]byte(payload)) {
			tr.Record(tracing.Decision{Stage: tracing.StageInput, Rule: "invalid-json-as-text", Fallback: true})
		} else {
			draft, err := n8n.ParseDraft([]byte(payload))
			if err != nil {
				return res, err
			}
			res.Input = InputJSON
			tr.Record(tracing.Decision{Stage: tracing.StageInput, Rule: "json-draft"})
			_, span := e.tracer.Start(ctx, "flowsmith.preserve")
			doc = builder.Preserve(draft, bopts)
			span.End()
		}
	}
	if doc == nil {
		text := truncate(raw, e.opts.MaxInputBytes, tr)
		_, span := e.tracer.Start(ctx, "flowsmith.synthesize")
		cleaned := prompt.New(tr).Normalize(text).Text
		tree := requirements.Extract(cleaned, tr)
		doc = builder.Synthesize(tree, bopts)
		span.End()
	}
	if len(doc.Nodes) == 0 {
		return res, &model.StructuralError{Reason: res.Input + " input", Err: model.ErrNoNodes}
	}

	_, span := e.tracer.Start(ctx, "flowsmith.validate")
	vopts := validate.Options{RowTolerance: e.opts.RowTolerance, Tracer: tr}
	res.Initial, res.Validation, res.Fixes = repairLoop(doc, e.opts.Repair, vopts)
	span.End()

	res.Document = e.opts.Hook(doc)
	tr.Record(tracing.Decision{Stage: tracing.StagePostProcess, Rule: "hook"})
	return res, nil
}

// jsonPayload returns the JSON object carried by raw: either raw itself or a
// fenced block holding an object. A fenced object inside surrounding prose is
// only taken when it looks like a draft; otherwise it is example data and raw
// stays text.
func jsonPayload(raw string, tr tracing.Tracer) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed, true
	}
	loc := fencedJSON.FindStringSubmatchIndex(raw)
	if loc == nil {
		return "", false
	}
	body := strings.TrimSpace(raw[loc[2]:loc[3]])
	if !strings.HasPrefix(body, "{") {
		return "", false
	}
	if strings.TrimSpace(raw[:loc[0]]+raw[loc[1]:]) == "" || hasDraftKeys(body) {
		return body, true
	}
	tracing.OrNop(tr).Record(tracing.Decision{Stage: tracing.StageInput, Rule: "fenced-json-as-text", Fallback: true})
	return "", false
}

func hasDraftKeys(body string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return false
	}
	_, nodes := obj["nodes"]
	_, conns := obj["connections"]
	return nodes || conns
}

// truncate cuts text to at most limit bytes on a rune boundary.
func truncate(text string, limit int, tr tracing.Tracer) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	tr.Record(tracing.Decision{Stage: tracing.StageInput, Rule: "truncate", Detail: fmt.Sprintf("%d of %d bytes kept", cut, len(text)), Fallback: true})
	return text[:cut]
}
