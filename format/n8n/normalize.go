package n8n

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/Tsinling0525/flowsmith/model"
)

// NormalizeConnections rewrites an externally supplied adjacency map into the
// canonical shape: source -> connection type -> ports -> descriptors.
//
// Recognized malformations:
//   - a flat list of descriptors (no port wrapper) becomes a single port
//   - a bare target name becomes {node, type: "main", index: 0}
//   - a source value that is a string, a single descriptor or a list is
//     treated as the "main" output
//
// Canonical input passes through unchanged and the function is idempotent.
func NormalizeConnections(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for src, v := range raw {
		out[src] = normalizeSource(v)
	}
	return out
}

func normalizeSource(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if isDescriptor(t) {
			return map[string]any{model.MainOutput: normalizePorts(t)}
		}
		out := make(map[string]any, len(t))
		for typ, ports := range t {
			out[typ] = normalizePorts(ports)
		}
		return out
	case nil:
		return map[string]any{model.MainOutput: []any{}}
	default:
		return map[string]any{model.MainOutput: normalizePorts(t)}
	}
}

// normalizePorts returns the port list of one connection type.
func normalizePorts(v any) []any {
	switch t := v.(type) {
	case string, map[string]any:
		if d, ok := descriptor(t); ok {
			return []any{[]any{d}}
		}
		return []any{}
	case []any:
		if len(t) > 0 && !hasList(t) {
			// Flat descriptor list: one port.
			return []any{normalizePort(t)}
		}
		ports := make([]any, 0, len(t))
		for _, p := range t {
			switch pv := p.(type) {
			case []any:
				ports = append(ports, normalizePort(pv))
			case nil:
				ports = append(ports, []any{})
			default:
				port := []any{}
				if d, ok := descriptor(pv); ok {
					port = append(port, d)
				}
				ports = append(ports, port)
			}
		}
		return ports
	}
	return []any{}
}

// normalizePort returns one port. Nested lists are flattened one level;
// elements that are not descriptors are dropped.
func normalizePort(items []any) []any {
	port := []any{}
	for _, it := range items {
		if nested, ok := it.([]any); ok {
			for _, n := range nested {
				if d, ok := descriptor(n); ok {
					port = append(port, d)
				}
			}
			continue
		}
		if d, ok := descriptor(it); ok {
			port = append(port, d)
		}
	}
	return port
}

func hasList(items []any) bool {
	for _, it := range items {
		if _, ok := it.([]any); ok {
			return true
		}
		if it == nil {
			return true
		}
	}
	return false
}

func isDescriptor(m map[string]any) bool {
	if _, ok := m[model.MainOutput]; ok {
		return false
	}
	return targetName(m) != ""
}

func targetName(m map[string]any) string {
	for _, k := range []string{"node", "name", "target"} {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// descriptor converts a bare name or a loosely keyed map into the canonical
// {node, type, index} descriptor.
func descriptor(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, false
		}
		return map[string]any{"node": t, "type": model.MainOutput, "index": 0}, true
	case map[string]any:
		name := targetName(t)
		if name == "" {
			return nil, false
		}
		typ, _ := t["type"].(string)
		if typ == "" {
			typ = model.MainOutput
		}
		return map[string]any{"node": name, "type": typ, "index": index(t["index"])}, true
	}
	return nil, false
}

func index(v any) int {
	var f float64
	switch t := v.(type) {
	case int:
		return max(t, 0)
	case int64:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		f, _ = t.Float64()
	case string:
		f, _ = strconv.ParseFloat(t, 64)
	default:
		return 0
	}
	if math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// ParseConnections converts raw adjacency (any supported shape) into the
// typed model.
func ParseConnections(raw map[string]any) model.Connections {
	c := model.Connections{}
	for src, v := range NormalizeConnections(raw) {
		outs := model.NodeOutputs{}
		for typ, portsAny := range v.(map[string]any) {
			rawPorts := portsAny.([]any)
			ports := make([]model.Port, len(rawPorts))
			for i, p := range rawPorts {
				port := model.Port{}
				for _, d := range p.([]any) {
					dm := d.(map[string]any)
					port = append(port, model.Edge{Node: dm["node"].(string), Type: dm["type"].(string), Index: dm["index"].(int)})
				}
				ports[i] = port
			}
			outs[typ] = ports
		}
		c[src] = outs
	}
	return c
}
