package validate

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/tracing"
)

const mergeType = "n8n-nodes-base.merge"

type repairer struct {
	doc   *model.Document
	opts  Options
	fixes int
}

func (r *repairer) fixed(rule, subject, detail string) {
	r.fixes++
	r.opts.Tracer.Record(tracing.Decision{Stage: tracing.StageRepair, Rule: rule, Subject: subject, Detail: detail})
}

// Repair applies conservative fixes to doc in place and returns it with the
// number of fixes applied. It never invents a destination for an empty
// switch output, and it does not guarantee a valid result: callers validate
// again afterwards.
func Repair(doc *model.Document, opts Options) (out *model.Document, fixes int) {
	if doc == nil {
		return nil, 0
	}
	opts = opts.withDefaults()
	r := &repairer{doc: doc, opts: opts}
	defer func() {
		if rec := recover(); rec != nil {
			opts.Tracer.Record(tracing.Decision{Stage: tracing.StageRepair, Rule: "aborted", Detail: fmt.Sprint(rec), Fallback: true})
			out, fixes = doc, r.fixes
		}
	}()
	if doc.Connections == nil {
		doc.Connections = model.Connections{}
	}
	r.dropBadEdges()
	r.connectDisconnected()
	r.mergeSwitchBranches()
	r.chainDeadEnds()
	r.fillParameters()
	return doc, r.fixes
}

// dropBadEdges removes edges to missing nodes and into triggers, and
// adjacency entries of sources that are not nodes.
func (r *repairer) dropBadEdges() {
	names := r.doc.NodeNames()
	for _, src := range r.doc.Connections.Sources() {
		if !names[src] {
			delete(r.doc.Connections, src)
			r.fixed("drop-unknown-source", src, "")
		}
	}
	r.doc.Connections.RemoveTargets(func(src string, e model.Edge) bool {
		n, ok := r.doc.Node(e.Node)
		switch {
		case !ok:
			r.fixed("drop-dangling-edge", src, e.Node)
			return true
		case catalog.IsTriggerType(n.Type):
			r.fixed("drop-trigger-target", src, e.Node)
			return true
		}
		return false
	})
}

// connectDisconnected links every non-trigger node without an incoming edge
// to its nearest preceding row neighbour that can take the edge.
func (r *repairer) connectDisconnected() {
	incoming := r.doc.Connections.IncomingSet()
	for _, i := range byX(r.doc) {
		n := r.doc.Nodes[i]
		if catalog.IsTriggerType(n.Type) || incoming[n.Name] {
			continue
		}
		for _, j := range neighbours(r.doc, i, r.opts.RowTolerance, false) {
			pred := r.doc.Nodes[j]
			if reaches(r.doc.Connections, n.Name, pred.Name) {
				continue
			}
			port, ok := r.freePort(pred)
			if !ok {
				continue
			}
			r.doc.Connections.Connect(pred.Name, port, n.Name, 0)
			r.fixed("connect-disconnected", n.Name, pred.Name)
			incoming[n.Name] = true
			break
		}
	}
}

// freePort returns the output a new edge from n should use. Switches only
// accept edges on an empty declared output.
func (r *repairer) freePort(n model.Node) (int, bool) {
	if catalog.Classify(n.Type).Kind != catalog.KindSwitch {
		return 0, true
	}
	ports := r.doc.Connections.Ports(n.Name)
	for i, p := range ports {
		if len(p) == 0 {
			return i, true
		}
	}
	if declared := catalog.SwitchOutputs(n.Parameters); len(ports) < declared {
		return len(ports), true
	}
	if len(ports) == 0 {
		return 0, true
	}
	return 0, false
}

// mergeSwitchBranches reconverges switch branches. Each output is followed
// to its end; when more than one end is not a completion node, those ends
// are redirected into a new merge node right of the rightmost end.
func (r *repairer) mergeSwitchBranches() {
	for si := 0; si < len(r.doc.Nodes); si++ {
		sw := r.doc.Nodes[si]
		if catalog.Classify(sw.Type).Kind != catalog.KindSwitch {
			continue
		}
		var open []string
		seen := map[string]bool{}
		for _, p := range r.doc.Connections.Ports(sw.Name) {
			if len(p) == 0 {
				continue
			}
			end := r.branchEnd(p[0].Node)
			if seen[end] {
				continue
			}
			seen[end] = true
			n, ok := r.doc.Node(end)
			if !ok || IsCompletion(*n) || catalog.Classify(n.Type).Kind == catalog.KindMerge {
				continue
			}
			open = append(open, end)
		}
		if len(open) < 2 {
			continue
		}

		maxX := 0.0
		for k, name := range open {
			n, _ := r.doc.Node(name)
			if k == 0 || n.Position.X > maxX {
				maxX = n.Position.X
			}
		}
		name := r.uniqueName("Merge " + sw.Name)
		typ := mergeType
		params := map[string]any{"mode": "append"}
		if e, ok := catalog.ByKind(catalog.KindMerge); ok {
			typ = e.Type
			params = e.DefaultParams()
		}
		params["numberInputs"] = len(open)
		version := catalog.Classify(typ).Version
		if version == 0 {
			version = 1
		}
		r.doc.Nodes = append(r.doc.Nodes, model.Node{
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(r.doc.ID+"/"+name)).String(),
			Name:        name,
			Type:        typ,
			TypeVersion: version,
			Position:    model.Position{X: maxX + r.opts.MergeSpacing, Y: sw.Position.Y},
			Parameters:  params,
		})
		r.fixed("synthesize-merge", sw.Name, name)
		for k, end := range open {
			r.doc.Connections.Connect(end, 0, name, k)
			r.fixed("redirect-branch-end", end, name)
		}
	}
}

// branchEnd follows the first main edge from start until a node without
// one, stopping on a cycle.
func (r *repairer) branchEnd(start string) string {
	cur := start
	seen := map[string]bool{}
	for !seen[cur] {
		seen[cur] = true
		next, ok := firstMainTarget(r.doc.Connections, cur)
		if !ok {
			return cur
		}
		cur = next
	}
	return cur
}

func firstMainTarget(c model.Connections, from string) (string, bool) {
	for _, p := range c.Ports(from) {
		if len(p) > 0 {
			return p[0].Node, true
		}
	}
	return "", false
}

// chainDeadEnds connects non-completion nodes without outgoing edges to
// their nearest following row neighbour.
func (r *repairer) chainDeadEnds() {
	for _, i := range byX(r.doc) {
		n := r.doc.Nodes[i]
		if r.doc.Connections.HasOutgoing(n.Name) || IsCompletion(n) {
			continue
		}
		j, ok := nextInRow(r.doc, i, r.opts.RowTolerance)
		if !ok {
			continue
		}
		next := r.doc.Nodes[j]
		if catalog.IsTriggerType(next.Type) || reaches(r.doc.Connections, next.Name, n.Name) {
			continue
		}
		port, ok := r.freePort(n)
		if !ok {
			continue
		}
		r.doc.Connections.Connect(n.Name, port, next.Name, 0)
		r.fixed("chain-dead-end", n.Name, next.Name)
	}
}

func (r *repairer) fillParameters() {
	for i := range r.doc.Nodes {
		n := &r.doc.Nodes[i]
		e, ok := catalog.Lookup(n.Type)
		if !ok {
			continue
		}
		if n.Parameters == nil {
			n.Parameters = map[string]any{}
		}
		for _, key := range e.MissingRequired(n.Parameters) {
			catalog.SetPath(n.Parameters, key, catalog.Placeholder(key))
			r.fixed("placeholder-param", n.Name, key)
		}
	}
}

func (r *repairer) uniqueName(base string) string {
	names := r.doc.NodeNames()
	name := base
	for i := 2; names[name]; i++ {
		name = base + " " + strconv.Itoa(i)
	}
	return name
}
