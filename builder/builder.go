// Package builder turns either an AI-authored draft or a requirement tree
// into a workflow document.
package builder

import (
	"fmt"
	"strconv"

	"dario.cat/mergo"
	"github.com/google/uuid"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/resolver"
	"github.com/Tsinling0525/flowsmith/tracing"
)

const DefaultName = "Generated Workflow"

// nodeNamespace seeds the name-derived node ids.
var nodeNamespace = uuid.MustParse("6f1c2a7e-3d4b-5c8e-9a0f-1b2c3d4e5f60")

type Options struct {
	Name     string
	Layout   Layout
	Resolver *resolver.Resolver
	Tracer   tracing.Tracer
	// NewID generates document-level ids (id, versionId, instanceId).
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.Layout == (Layout{}) {
		o.Layout = DefaultLayout()
	}
	o.Tracer = tracing.OrNop(o.Tracer)
	if o.Resolver == nil {
		o.Resolver = resolver.New(resolver.Options{Tracer: o.Tracer})
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// doc wraps a document under construction with its name and id sets.
type doc struct {
	*model.Document
	names map[string]bool
	ids   map[string]bool
	tr    tracing.Tracer
}

func newDoc(name string, opts Options) *doc {
	if name == "" {
		name = DefaultName
	}
	d := model.NewDocument(name)
	d.ID = opts.NewID()
	d.VersionID = opts.NewID()
	d.Meta.InstanceID = opts.NewID()
	return &doc{Document: d, names: map[string]bool{}, ids: map[string]bool{}, tr: opts.Tracer}
}

// uniqueName returns base, or base suffixed " 2", " 3", ... when taken, and
// reserves the result.
func (d *doc) uniqueName(base string) string {
	if base == "" {
		base = "Node"
	}
	name := base
	for i := 2; d.names[name]; i++ {
		name = base + " " + strconv.Itoa(i)
	}
	if name != base {
		d.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "rename-duplicate", Subject: base, Detail: name})
	}
	d.names[name] = true
	return name
}

// uniqueID keeps a supplied id when it is free and otherwise derives one
// from the node name.
func (d *doc) uniqueID(supplied, name string) string {
	if supplied != "" && !d.ids[supplied] {
		d.ids[supplied] = true
		return supplied
	}
	id := uuid.NewSHA1(nodeNamespace, []byte(name)).String()
	for i := 2; d.ids[id]; i++ {
		id = uuid.NewSHA1(nodeNamespace, []byte(fmt.Sprintf("%s#%d", name, i))).String()
	}
	d.ids[id] = true
	return id
}

// add appends a node with catalog defaults applied and returns its final name.
func (d *doc) add(name, nodeType string, pos model.Position, params map[string]any) string {
	name = d.uniqueName(name)
	entry := catalog.Classify(nodeType)
	version := entry.Version
	if version == 0 {
		version = 1
	}
	d.Nodes = append(d.Nodes, model.Node{
		ID:          d.uniqueID("", name),
		Name:        name,
		Type:        nodeType,
		TypeVersion: version,
		Position:    pos,
		Parameters:  completeParams(entry, params, d.tr, name),
	})
	return name
}

func (d *doc) connect(from string, port int, to string, input int) {
	if from == "" || to == "" || catalog.IsTriggerType(d.typeOf(to)) {
		return
	}
	d.Connections.Connect(from, port, to, input)
}

func (d *doc) typeOf(name string) string {
	if n, ok := d.Node(name); ok {
		return n.Type
	}
	return ""
}

// completeParams merges catalog defaults under params, corrects list-typed
// parameters given as scalars and fills required keys with placeholders.
func completeParams(entry catalog.Entry, params map[string]any, tr tracing.Tracer, node string) map[string]any {
	supplied := model.CloneMap(params)
	if supplied == nil {
		supplied = map[string]any{}
	}
	for _, key := range fixLists(entry, supplied) {
		tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "wrap-scalar-list", Subject: node, Detail: key})
	}
	out := entry.DefaultParams()
	// Supplied values override defaults; defaults fill the gaps.
	if err := mergo.Merge(&out, supplied, mergo.WithOverride); err != nil {
		tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "merge-defaults-failed", Subject: node, Detail: err.Error(), Fallback: true})
		out = supplied
	}
	fixLists(entry, out)
	for _, key := range entry.MissingRequired(out) {
		catalog.SetPath(out, key, catalog.Placeholder(key))
		tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "placeholder-param", Subject: node, Detail: key})
	}
	return out
}

// fixLists wraps scalar values of list parameters in a one-element list and
// returns the keys it wrapped.
func fixLists(entry catalog.Entry, params map[string]any) []string {
	var wrapped []string
	for _, key := range entry.ListParams {
		v, ok := catalog.GetPath(params, key)
		if !ok {
			continue
		}
		switch v.(type) {
		case []any:
		case nil:
			catalog.SetPath(params, key, []any{})
		default:
			catalog.SetPath(params, key, []any{v})
			wrapped = append(wrapped, key)
		}
	}
	return wrapped
}
