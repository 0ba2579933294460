package builder

import (
	"strconv"
	"strings"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/format/n8n"
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/tracing"
)

// Preserve keeps an AI-authored draft as close to its original shape as
// possible while making it well-formed. It never rejects a draft.
func Preserve(draft *n8n.Draft, opts Options) *model.Document {
	opts = opts.withDefaults()
	if draft == nil {
		draft = &n8n.Draft{}
	}
	name := draft.Name
	if opts.Name != "" {
		name = opts.Name
	}
	d := newDoc(name, opts)
	if draft.Tags != nil {
		d.Tags = append([]string{}, draft.Tags...)
	}
	d.Settings = model.CloneMap(draft.Settings)

	// Draft references (original names and ids) to final node names.
	refs := map[string]string{}
	for i, dn := range draft.Nodes {
		nodeType := resolveDraftType(dn, opts)
		entry := catalog.Classify(nodeType)

		base := strings.TrimSpace(dn.Name)
		if base == "" {
			base = entry.DisplayName
			if base == "" {
				base = "Node " + strconv.Itoa(i+1)
			}
		}
		final := d.uniqueName(base)

		pos := opts.Layout.Indexed(i)
		if dn.Position != nil {
			pos = *dn.Position
		} else {
			d.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "default-position", Subject: final})
		}
		version := dn.TypeVersion
		if version <= 0 {
			version = 1
		}
		if entry.Kind == catalog.KindUnrecognized {
			d.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "unrecognized-type", Subject: final, Detail: nodeType})
		}

		d.Nodes = append(d.Nodes, model.Node{
			ID:          d.uniqueID(dn.ID, final),
			Name:        final,
			Type:        nodeType,
			TypeVersion: version,
			Position:    pos,
			Parameters:  completeParams(entry, dn.Parameters, d.tr, final),
			Credentials: model.CloneMap(dn.Credentials),
			Notes:       dn.Notes,
			Extra:       model.CloneMap(dn.Extra),
		})
		if dn.Name != "" {
			if _, seen := refs[dn.Name]; !seen {
				refs[dn.Name] = final
			}
		}
		if dn.ID != "" {
			if _, seen := refs[dn.ID]; !seen {
				refs[dn.ID] = final
			}
		}
	}

	preserveConnections(d, n8n.ParseConnections(draft.Connections), refs)
	return d.Document
}

// resolveDraftType fills in a missing type from the node name and expands
// short tags such as "httpRequest" to the full platform tag.
func resolveDraftType(dn n8n.DraftNode, opts Options) string {
	t := strings.TrimSpace(dn.Type)
	if t != "" {
		if _, ok := catalog.Lookup(t); ok {
			return t
		}
		if e, ok := catalog.ByName(t); ok {
			return e.Type
		}
		return t
	}
	if res, ok := opts.Resolver.ResolveHint(dn.Name); ok {
		return res.NodeType
	}
	return opts.Resolver.Resolve(dn.Name).NodeType
}

func preserveConnections(d *doc, conns model.Connections, refs map[string]string) {
	for _, rawSrc := range conns.Sources() {
		src, ok := refs[rawSrc]
		if !ok {
			d.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "drop-unknown-source", Subject: rawSrc})
			continue
		}
		for typ, ports := range conns[rawSrc] {
			if typ == model.MainOutput {
				d.Connections.EnsurePorts(src, len(ports))
			}
			for i, port := range ports {
				for _, e := range port {
					target, ok := refs[e.Node]
					switch {
					case !ok:
						d.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "drop-dangling-edge", Subject: src, Detail: e.Node})
						continue
					case catalog.IsTriggerType(d.typeOf(target)):
						d.tr.Record(tracing.Decision{Stage: tracing.StageBuild, Rule: "drop-trigger-target", Subject: src, Detail: target})
						continue
					}
					if typ == model.MainOutput {
						d.Connections.Connect(src, i, target, e.Index)
						continue
					}
					connectTyped(d.Connections, src, typ, i, model.Edge{Node: target, Type: e.Type, Index: e.Index})
				}
			}
		}
	}
}

// connectTyped adds an edge on a non-main connection type (for example the
// sub-node links of AI nodes).
func connectTyped(c model.Connections, from, typ string, port int, e model.Edge) {
	outs, ok := c[from]
	if !ok {
		outs = model.NodeOutputs{}
		c[from] = outs
	}
	ports := outs[typ]
	for len(ports) <= port {
		ports = append(ports, model.Port{})
	}
	ports[port] = append(ports[port], e)
	outs[typ] = ports
}
