// Package prompt strips accidental duplicate task descriptions from raw
// model output before it is parsed.
package prompt

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Tsinling0525/flowsmith/tracing"
)

//go:embed rules.yaml
var defaultRules []byte

// Signature detects the start of a second, unrelated task description.
type Signature struct {
	Name       string `yaml:"name"`
	Priority   int    `yaml:"priority"`
	Pattern    string `yaml:"pattern"`
	Occurrence int    `yaml:"occurrence"`

	re *regexp.Regexp
}

// EndMarker closes a task description.
type EndMarker struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// RuleSet is the ordered rule table the normalizer applies.
type RuleSet struct {
	Signatures []Signature `yaml:"signatures"`
	EndMarkers []EndMarker `yaml:"end_markers"`
}

// ParseRules decodes and compiles a YAML rule table. Signatures are sorted by
// priority; equal priorities keep file order.
func ParseRules(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("decode prompt rules: %w", err)
	}
	for i := range rs.Signatures {
		re, err := regexp.Compile(rs.Signatures[i].Pattern)
		if err != nil {
			return RuleSet{}, fmt.Errorf("signature %q: %w", rs.Signatures[i].Name, err)
		}
		rs.Signatures[i].re = re
		if rs.Signatures[i].Occurrence < 1 {
			rs.Signatures[i].Occurrence = 1
		}
	}
	for i := range rs.EndMarkers {
		re, err := regexp.Compile(rs.EndMarkers[i].Pattern)
		if err != nil {
			return RuleSet{}, fmt.Errorf("end marker %q: %w", rs.EndMarkers[i].Name, err)
		}
		rs.EndMarkers[i].re = re
	}
	sort.SliceStable(rs.Signatures, func(i, j int) bool {
		return rs.Signatures[i].Priority < rs.Signatures[j].Priority
	})
	return rs, nil
}

var (
	defaultOnce sync.Once
	defaultSet  RuleSet
)

// DefaultRules returns the embedded rule table.
func DefaultRules() RuleSet {
	defaultOnce.Do(func() {
		rs, err := ParseRules(defaultRules)
		if err != nil {
			panic(err)
		}
		defaultSet = rs
	})
	return defaultSet
}

// Result describes what the normalizer did.
type Result struct {
	Text      string
	Truncated bool
	// Rule is the signature that matched, Boundary the end marker used (empty
	// when the text was cut at the match point).
	Rule     string
	Boundary string
}

// Normalizer applies a rule table.
type Normalizer struct {
	Rules  RuleSet
	Tracer tracing.Tracer
}

// New returns a normalizer over the embedded rules.
func New(t tracing.Tracer) *Normalizer {
	return &Normalizer{Rules: DefaultRules(), Tracer: tracing.OrNop(t)}
}

// Clean is Normalize with the default rules, returning only the text.
func Clean(text string) string {
	return New(nil).Normalize(text).Text
}

// Normalize truncates text at the first confident duplicate boundary. It
// never fails; when no signature matches the input is returned unchanged.
func (n *Normalizer) Normalize(text string) Result {
	tr := tracing.OrNop(n.Tracer)
	for _, sig := range n.Rules.Signatures {
		at := nthMatch(sig.re, text, sig.Occurrence)
		if at <= 0 {
			continue
		}
		cut, marker := n.boundary(text[:at])
		if cut < 0 {
			cut = at
		}
		out := strings.TrimRight(text[:cut], " \t\r\n")
		tr.Record(tracing.Decision{
			Stage:    tracing.StagePrompt,
			Rule:     sig.Name,
			Detail:   fmt.Sprintf("duplicate at %d, cut at %d", at, cut),
			Fallback: marker == "",
		})
		return Result{Text: out, Truncated: true, Rule: sig.Name, Boundary: marker}
	}
	return Result{Text: text}
}

// boundary returns the earliest end marker in head that still leaves some
// description before it, or -1.
func (n *Normalizer) boundary(head string) (int, string) {
	best, name := -1, ""
	for _, m := range n.Rules.EndMarkers {
		for _, loc := range m.re.FindAllStringIndex(head, -1) {
			if strings.TrimSpace(head[:loc[0]]) == "" {
				continue
			}
			if best < 0 || loc[0] < best {
				best, name = loc[0], m.Name
			}
			break
		}
	}
	return best, name
}

// nthMatch returns the start offset of the n-th match of re, or -1.
func nthMatch(re *regexp.Regexp, s string, n int) int {
	locs := re.FindAllStringIndex(s, n)
	if len(locs) < n {
		return -1
	}
	return locs[n-1][0]
}
