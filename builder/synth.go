package builder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/tracing"
)

const (
	mergeType   = "n8n-nodes-base.merge"
	switchType  = "n8n-nodes-base.switch"
	respondType = "n8n-nodes-base.respondToWebhook"
)

// step is the scan state a motif hands back: the node later requirements
// attach to, the next free column and the next requirement to consume.
type step struct {
	source string
	x      float64
	next   int
}

// motif tries to consume requirements at cur.next. ok is false when the
// motif does not apply.
type motif func(s *synth, reqs []model.Requirement, cur step) (next step, ok bool)

// motifs are tried in order; the sequential case applies when none match.
var motifs = []struct {
	name string
	fn   motif
}{
	{"switch", (*synth).switchMotif},
	{"parallel", (*synth).parallelMotif},
}

type synth struct {
	*doc
	opts Options
	// row is the y of the branch being built; bottom the lowest row used.
	row    float64
	bottom float64
	// respond is set when the branch must end in a response node.
	respond bool
}

// Synthesize lays out a requirement tree. Each branch gets its own trigger
// and its own band of rows; nodes advance left to right on a fixed grid.
func Synthesize(tree model.RequirementTree, opts Options) *model.Document {
	opts = opts.withDefaults()
	name := opts.Name
	if name == "" && len(tree.Branches) > 0 {
		name = tree.Branches[0].Title
	}
	s := &synth{doc: newDoc(name, opts), opts: opts}
	s.row = opts.Layout.StartY
	for _, br := range tree.Branches {
		s.branch(br)
		s.row = s.bottom + 2*opts.Layout.YSpacing
	}
	return s.Document
}

func (s *synth) branch(br model.Branch) {
	lay := s.opts.Layout
	s.bottom = s.row

	trig := s.opts.Resolver.ResolveTrigger(br.Trigger)
	entry := catalog.Classify(trig.NodeType)
	var params map[string]any
	if entry.Kind == catalog.KindWebhook && br.Title != "" {
		params = map[string]any{"path": slug(br.Title)}
	}
	trigger := s.add(entry.DisplayName, trig.NodeType, model.Position{X: lay.StartX, Y: s.row}, params)
	s.respond = entry.Kind == catalog.KindWebhook

	cur := step{source: trigger, x: lay.StartX + lay.XSpacing}
	for cur.next < len(br.Requirements) {
		matched := false
		for _, m := range motifs {
			if next, ok := m.fn(s, br.Requirements, cur); ok {
				s.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "motif-" + m.name, Subject: br.Requirements[cur.next].Name})
				cur, matched = next, true
				break
			}
		}
		if !matched {
			cur = s.sequential(br.Requirements, cur)
		}
	}

	if s.respond && s.typeOf(cur.source) != respondType {
		name := s.add("Respond to Webhook", respondType, model.Position{X: cur.x, Y: s.row}, nil)
		s.connect(cur.source, 0, name, 0)
		if n, ok := s.Node(trigger); ok {
			n.Parameters["responseMode"] = "responseNode"
		}
		s.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "append-respond", Subject: trigger, Detail: name})
	}
}

func (s *synth) resolve(r model.Requirement) string {
	return s.opts.Resolver.ResolveRequirement(r).NodeType
}

func (s *synth) place(x, y float64) model.Position {
	if y > s.bottom {
		s.bottom = y
	}
	return model.Position{X: x, Y: y}
}

func (s *synth) sequential(reqs []model.Requirement, cur step) step {
	r := reqs[cur.next]
	name := s.add(r.Name, s.resolve(r), s.place(cur.x, s.row), nil)
	s.connect(cur.source, 0, name, 0)
	return step{source: name, x: cur.x + s.opts.Layout.XSpacing, next: cur.next + 1}
}

// parallelMotif places sibling requirements on separate rows of one column
// and reconverges them in a merge node.
func (s *synth) parallelMotif(reqs []model.Requirement, cur step) (step, bool) {
	sibs, consumed := parallelGroup(reqs, cur.next)
	if len(sibs) < 2 {
		return step{}, false
	}
	lay := s.opts.Layout
	names := make([]string, len(sibs))
	for k, r := range sibs {
		names[k] = s.add(r.Name, s.resolve(r), s.place(cur.x, s.row+float64(k)*lay.YSpacing), nil)
		s.connect(cur.source, 0, names[k], 0)
	}
	next := cur.next + consumed
	merge, next := s.mergeNode(reqs, next, "Merge Results", len(names), cur.x+lay.XSpacing)
	for k, n := range names {
		s.connect(n, 0, merge, k)
	}
	return step{source: merge, x: cur.x + 2*lay.XSpacing, next: next}, true
}

// switchMotif turns a routing requirement into a switch node whose outputs
// lead to the following requirements, one per inferred route label.
func (s *synth) switchMotif(reqs []model.Requirement, cur step) (step, bool) {
	r := reqs[cur.next]
	if !r.IsSwitch {
		return step{}, false
	}
	lay := s.opts.Layout
	labels, field := switchLabels(r.Name + " " + r.Description)

	avail := 0
	for j := cur.next + 1; j < len(reqs) && !reqs[j].IsMerge && !reqs[j].IsSwitch; j++ {
		avail++
	}
	heads := min(len(labels), avail)
	n := max(2, heads)
	labels = labels[:n]

	routerType := switchType
	if e, ok := catalog.ByKind(catalog.KindSwitch); ok {
		routerType = e.Type
	}
	router := s.add(r.Name, routerType, s.place(cur.x, s.row), nil)
	s.connect(cur.source, 0, router, 0)
	if node, ok := s.Node(router); ok {
		catalog.SetPath(node.Parameters, "rules.values", switchRules(labels, field))
	}
	s.Connections.EnsurePorts(router, n)

	names := make([]string, 0, heads)
	for k := 0; k < heads; k++ {
		h := reqs[cur.next+1+k]
		name := s.add(h.Name, s.resolve(h), s.place(cur.x+lay.XSpacing, s.row+float64(k)*lay.YSpacing), nil)
		s.connect(router, k, name, 0)
		names = append(names, name)
	}
	if heads < n {
		s.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "empty-switch-port", Subject: router,
			Detail: strconv.Itoa(n-heads) + " of " + strconv.Itoa(n) + " outputs have no requirement"})
	}

	next := cur.next + 1 + heads
	continues := next < len(reqs) || s.respond
	switch {
	case len(names) == 0:
		return step{source: router, x: cur.x + lay.XSpacing, next: next}, true
	case len(names) == 1 || !continues:
		return step{source: names[len(names)-1], x: cur.x + 2*lay.XSpacing, next: next}, true
	}
	merge, next := s.mergeNode(reqs, next, "Merge Routes", len(names), cur.x+2*lay.XSpacing)
	for k, name := range names {
		s.connect(name, 0, merge, k)
	}
	return step{source: merge, x: cur.x + 3*lay.XSpacing, next: next}, true
}

// mergeNode adds a merge with the given number of inputs. A merge-marked
// requirement at i names it and is consumed.
func (s *synth) mergeNode(reqs []model.Requirement, i int, fallback string, inputs int, x float64) (string, int) {
	name := fallback
	if i < len(reqs) && reqs[i].IsMerge {
		name = reqs[i].Name
		i++
	}
	typ := mergeType
	if e, ok := catalog.ByKind(catalog.KindMerge); ok {
		typ = e.Type
	}
	merge := s.add(name, typ, s.place(x, s.row), nil)
	if node, ok := s.Node(merge); ok {
		node.Parameters["numberInputs"] = inputs
	}
	return merge, i
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	out := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if out == "" {
		return "webhook"
	}
	return out
}
