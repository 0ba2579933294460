// Package validate checks workflow documents against the structural
// invariants of the platform and applies conservative repairs.
package validate

import (
	"fmt"
	"strings"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/tracing"
)

const (
	errorPenalty   = 20
	warningPenalty = 5
)

type Options struct {
	// RowTolerance is the vertical band used by the row-proximity rules.
	RowTolerance float64
	// MergeSpacing is the horizontal gap between a branch end and a
	// synthesized merge node.
	MergeSpacing float64
	Tracer       tracing.Tracer
}

func (o Options) withDefaults() Options {
	if o.RowTolerance <= 0 {
		o.RowTolerance = DefaultRowTolerance
	}
	if o.MergeSpacing <= 0 {
		o.MergeSpacing = 220
	}
	o.Tracer = tracing.OrNop(o.Tracer)
	return o
}

// Report is the validation summary handed to callers.
type Report struct {
	IsValid bool                    `json:"isValid"`
	Score   int                     `json:"score"`
	Issues  []model.ValidationIssue `json:"issues"`
}

func (r Report) count(s model.Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

func (r Report) Errors() int   { return r.count(model.SeverityError) }
func (r Report) Warnings() int { return r.count(model.SeverityWarning) }

// Score is max(0, 100 - 20*errors - 5*warnings).
func Score(errors, warnings int) int {
	return max(0, 100-errorPenalty*errors-warningPenalty*warnings)
}

type checker struct {
	doc    *model.Document
	opts   Options
	issues []model.ValidationIssue
}

func (c *checker) add(sev model.Severity, cat model.Category, node string, fixable bool, format string, args ...any) {
	c.issues = append(c.issues, model.ValidationIssue{
		Severity:    sev,
		Category:    cat,
		Message:     fmt.Sprintf(format, args...),
		Node:        node,
		Autofixable: fixable,
	})
}

// Validate inspects doc without modifying it.
func Validate(doc *model.Document, opts Options) Report {
	opts = opts.withDefaults()
	c := &checker{doc: doc, opts: opts}
	if doc == nil || len(doc.Nodes) == 0 {
		c.add(model.SeverityError, model.CategoryStructure, "", false, "workflow has no nodes")
		return c.report()
	}
	c.names()
	c.triggers()
	c.edges()
	disconnected := c.disconnected()
	c.outgoing(disconnected)
	c.parameters()
	c.switches()
	c.types()
	c.cycles()
	return c.report()
}

func (c *checker) report() Report {
	r := Report{Issues: c.issues}
	if r.Issues == nil {
		r.Issues = []model.ValidationIssue{}
	}
	r.Score = Score(r.Errors(), r.Warnings())
	r.IsValid = r.Errors() == 0
	c.opts.Tracer.Record(tracing.Decision{
		Stage:  tracing.StageValidate,
		Rule:   "score",
		Detail: fmt.Sprintf("%d errors, %d warnings, score %d", r.Errors(), r.Warnings(), r.Score),
	})
	return r
}

func (c *checker) names() {
	seen := map[string]bool{}
	for _, n := range c.doc.Nodes {
		if strings.TrimSpace(n.Name) == "" {
			c.add(model.SeverityError, model.CategoryStructure, "", false, "node %q has no name", n.ID)
			continue
		}
		if seen[n.Name] {
			c.add(model.SeverityError, model.CategoryStructure, n.Name, false, "duplicate node name %q", n.Name)
		}
		seen[n.Name] = true
	}
}

func (c *checker) triggers() {
	for _, n := range c.doc.Nodes {
		if catalog.IsTriggerType(n.Type) {
			return
		}
	}
	c.add(model.SeverityError, model.CategoryTrigger, "", false, "workflow has no trigger node")
}

func (c *checker) edges() {
	names := c.doc.NodeNames()
	for _, src := range c.doc.Connections.Sources() {
		if !names[src] {
			c.add(model.SeverityError, model.CategoryConnectivity, src, true, "connection source %q is not a node", src)
			continue
		}
		for _, target := range c.doc.Connections.Targets(src) {
			n, ok := c.doc.Node(target)
			switch {
			case !ok:
				c.add(model.SeverityError, model.CategoryConnectivity, src, true, "%q connects to missing node %q", src, target)
			case catalog.IsTriggerType(n.Type):
				c.add(model.SeverityError, model.CategoryTrigger, target, true, "trigger %q is the target of %q", target, src)
			}
		}
	}
}

// disconnected flags non-trigger nodes nothing points at and returns them.
func (c *checker) disconnected() map[string]bool {
	incoming := c.doc.Connections.IncomingSet()
	out := map[string]bool{}
	for _, n := range c.doc.Nodes {
		if catalog.IsTriggerType(n.Type) || incoming[n.Name] {
			continue
		}
		out[n.Name] = true
		c.add(model.SeverityError, model.CategoryConnectivity, n.Name, true, "node %q has no incoming connection", n.Name)
	}
	return out
}

// outgoing warns about non-terminal nodes without an outgoing edge. A node is
// terminal when it is a completion node or has no following row neighbour.
// When the row neighbour is itself disconnected the missing edge is already
// reported there.
func (c *checker) outgoing(disconnected map[string]bool) {
	for i, n := range c.doc.Nodes {
		if disconnected[n.Name] || c.doc.Connections.HasOutgoing(n.Name) || IsCompletion(n) {
			continue
		}
		next, ok := nextInRow(c.doc, i, c.opts.RowTolerance)
		if !ok || disconnected[c.doc.Nodes[next].Name] {
			continue
		}
		c.add(model.SeverityWarning, model.CategoryConnectivity, n.Name, true, "node %q has no outgoing connection", n.Name)
	}
}

func (c *checker) parameters() {
	for _, n := range c.doc.Nodes {
		e, ok := catalog.Lookup(n.Type)
		if !ok {
			continue
		}
		for _, key := range e.MissingRequired(n.Parameters) {
			c.add(model.SeverityWarning, model.CategoryParameters, n.Name, true, "node %q is missing required parameter %q", n.Name, key)
		}
	}
}

// switches checks that a switch has one port per declared output and that
// no port is empty. Neither is repaired.
func (c *checker) switches() {
	for _, n := range c.doc.Nodes {
		if catalog.Classify(n.Type).Kind != catalog.KindSwitch {
			continue
		}
		ports := c.doc.Connections.Ports(n.Name)
		declared := catalog.SwitchOutputs(n.Parameters)
		if declared > 0 && len(ports) != declared {
			c.add(model.SeverityError, model.CategorySwitch, n.Name, false,
				"switch %q declares %d outputs but has %d", n.Name, declared, len(ports))
		}
		for i, p := range ports {
			if len(p) == 0 {
				c.add(model.SeverityError, model.CategorySwitch, n.Name, false, "switch %q output %d has no target", n.Name, i)
			}
		}
	}
}

func (c *checker) types() {
	for _, n := range c.doc.Nodes {
		if catalog.Classify(n.Type).Kind == catalog.KindUnrecognized {
			c.add(model.SeverityWarning, model.CategoryType, n.Name, false, "node %q has unrecognized type %q", n.Name, n.Type)
		}
	}
}

func (c *checker) cycles() {
	if _, cyclic := topo(c.doc); len(cyclic) > 0 {
		c.add(model.SeverityWarning, model.CategoryCycle, cyclic[0], false, "connections form a cycle through %s", strings.Join(cyclic, ", "))
	}
}
