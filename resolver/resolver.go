// Package resolver maps free-text node requirements onto catalog node types.
package resolver

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/tracing"
)

const (
	DefaultThreshold = 0.5

	// DefaultType is the generic processing node used when nothing matches.
	DefaultType       = "n8n-nodes-base.code"
	defaultConfidence = 0.1

	MethodScored   = "scored"
	MethodLookup   = "keyword-lookup"
	MethodOverride = "override"
	MethodDefault  = "default"
	MethodHint     = "hint"

	maxAlternatives = 3
)

type override struct {
	name    string
	pattern *regexp.Regexp
	kind    catalog.Kind
}

// overrides apply only after scoring and keyword lookup both failed.
var overrides = []override{
	{"central-router", regexp.MustCompile(`(?i)\bcentral\s+rout|\brouting\s+hub\b|\bmain\s+router\b`), catalog.KindSwitch},
	{"collect-results", regexp.MustCompile(`(?i)\b(?:collect|gather)(?:s|ing)?\s+(?:all\s+)?(?:the\s+)?results\b`), catalog.KindMerge},
}

var (
	scheduleWords = regexp.MustCompile(`(?i)\b(?:schedule[ds]?|cron|every|daily|hourly|weekly|monthly|nightly|interval)\b`)
	webhookWords  = regexp.MustCompile(`(?i)\b(?:webhook|http|api|request|form|submission|submitted|received|receives|incoming|endpoint|order|call)\b`)
)

type Options struct {
	Threshold float64
	Tracer    tracing.Tracer
}

// Resolver is deterministic: the same description always yields the same result.
type Resolver struct {
	threshold float64
	tracer    tracing.Tracer
	entries   []catalog.Entry
}

// New snapshots the catalog's non-trigger entries in type order.
func New(opts Options) *Resolver {
	th := opts.Threshold
	if th <= 0 {
		th = DefaultThreshold
	}
	var entries []catalog.Entry
	for _, e := range catalog.All() {
		if !e.IsTrigger() {
			entries = append(entries, e)
		}
	}
	return &Resolver{threshold: th, tracer: tracing.OrNop(opts.Tracer), entries: entries}
}

type scored struct {
	entry catalog.Entry
	score float64
}

// Resolve never fails: nonsense input falls through to the generic default.
func (r *Resolver) Resolve(description string) model.MatchResult {
	t := newText(description)
	ranked := make([]scored, 0, len(r.entries))
	for _, e := range r.entries {
		ranked = append(ranked, scored{entry: e, score: combined(t, e)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var res model.MatchResult
	switch {
	case len(ranked) > 0 && ranked[0].score >= r.threshold:
		best := ranked[0]
		res = model.MatchResult{
			NodeType:   best.entry.Type,
			Confidence: best.score,
			Method:     MethodScored,
			Reasoning: fmt.Sprintf("keyword %.0f, concept %.0f, use-case %.0f",
				keywordScore(t, best.entry.Keywords), conceptScore(t, best.entry.Concepts), useCaseScore(t, best.entry.UseCases)),
		}
	default:
		res = r.fallback(t, description)
	}
	res.Alternatives = alternatives(ranked, res.NodeType)
	r.tracer.Record(tracing.Decision{
		Stage:      tracing.StageResolve,
		Rule:       res.Method,
		Subject:    description,
		Detail:     res.NodeType,
		Confidence: res.Confidence,
		Fallback:   res.Method != MethodScored && res.Method != MethodHint,
	})
	return res
}

func (r *Resolver) fallback(t text, description string) model.MatchResult {
	bestHits := 0
	var best catalog.Entry
	for _, e := range r.entries {
		hits := 0
		for _, kw := range e.Keywords {
			if keywordHit(t, strings.ToLower(kw)) == weightExact {
				hits++
			}
		}
		if name := strings.ToLower(e.DisplayName); name != "" && strings.Contains(t.raw, " "+name+" ") {
			hits += 2
		}
		if hits > bestHits {
			bestHits, best = hits, e
		}
	}
	if bestHits > 0 {
		conf := 0.2 + 0.05*float64(bestHits)
		if conf > 0.45 {
			conf = 0.45
		}
		return model.MatchResult{
			NodeType:   best.Type,
			Confidence: conf,
			Method:     MethodLookup,
			Reasoning:  fmt.Sprintf("%d keyword hits", bestHits),
		}
	}
	for _, o := range overrides {
		if !o.pattern.MatchString(description) {
			continue
		}
		if e, ok := catalog.ByKind(o.kind); ok {
			return model.MatchResult{NodeType: e.Type, Confidence: 0.4, Method: MethodOverride, Reasoning: o.name}
		}
	}
	typ := DefaultType
	if e, ok := catalog.ByKind(catalog.KindCode); ok {
		typ = e.Type
	}
	return model.MatchResult{NodeType: typ, Confidence: defaultConfidence, Method: MethodDefault, Reasoning: "no catalog entry matched"}
}

func alternatives(ranked []scored, chosen string) []model.Alternative {
	var out []model.Alternative
	for _, s := range ranked {
		if len(out) == maxAlternatives {
			break
		}
		if s.entry.Type == chosen || s.score <= 0 {
			continue
		}
		out = append(out, model.Alternative{NodeType: s.entry.Type, Confidence: s.score})
	}
	return out
}

// ResolveHint maps an explicit type tag or display name ("HTTP Request").
func (r *Resolver) ResolveHint(hint string) (model.MatchResult, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return model.MatchResult{}, false
	}
	e, ok := catalog.ByName(hint)
	if !ok {
		return model.MatchResult{}, false
	}
	res := model.MatchResult{NodeType: e.Type, Confidence: 1, Method: MethodHint, Reasoning: "explicit type " + hint}
	r.tracer.Record(tracing.Decision{Stage: tracing.StageResolve, Rule: MethodHint, Subject: hint, Detail: e.Type, Confidence: 1})
	return res, true
}

// ResolveRequirement prefers the requirement's explicit type hint, then its
// name and description.
func (r *Resolver) ResolveRequirement(req model.Requirement) model.MatchResult {
	if res, ok := r.ResolveHint(req.Type); ok {
		return res
	}
	desc := strings.TrimSpace(req.Name + " " + req.Description + " " + req.Type)
	return r.Resolve(desc)
}

// ResolveTrigger picks the trigger node for a branch trigger description.
func (r *Resolver) ResolveTrigger(description string) model.MatchResult {
	kind, rule, conf := catalog.KindManualTrigger, "manual-default", 0.5
	if e, ok := catalog.ByName(description); ok && e.IsTrigger() {
		kind, rule, conf = e.Kind, MethodHint, 1
	} else if scheduleWords.MatchString(description) {
		kind, rule, conf = catalog.KindSchedule, "schedule-words", 0.9
	} else if webhookWords.MatchString(description) {
		kind, rule, conf = catalog.KindWebhook, "webhook-words", 0.9
	}
	typ := "n8n-nodes-base.manualTrigger"
	if e, ok := catalog.ByKind(kind); ok {
		typ = e.Type
	}
	r.tracer.Record(tracing.Decision{Stage: tracing.StageResolve, Rule: rule, Subject: description, Detail: typ, Confidence: conf})
	return model.MatchResult{NodeType: typ, Confidence: conf, Method: rule, Reasoning: "trigger " + rule}
}
