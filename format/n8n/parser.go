package n8n

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Tsinling0525/flowsmith/model"
)

// Draft is a lenient decode of an AI-authored workflow object. Nothing in it
// is trusted: nodes may lack ids, positions or types, and Connections may be
// in any of the malformed shapes NormalizeConnections understands.
type Draft struct {
	Name        string
	Tags        []string
	Settings    map[string]any
	Nodes       []DraftNode
	Connections map[string]any

	HasNodes       bool
	HasConnections bool
}

// DraftNode is one node of a draft. Zero values mean "not supplied".
type DraftNode struct {
	ID          string
	Name        string
	Type        string
	TypeVersion float64
	Position    *model.Position
	Parameters  map[string]any
	Credentials map[string]any
	Notes       string
	Extra       map[string]any
}

var knownNodeKeys = map[string]bool{
	"id": true, "name": true, "type": true, "typeVersion": true, "position": true,
	"parameters": true, "credentials": true, "notes": true,
}

// ParseDraft decodes a JSON object into a Draft. An object carrying neither
// nodes nor connections is a structural error; everything else is accepted.
// A request envelope of the form {"workflow": {...}} is unwrapped.
func ParseDraft(data []byte) (*Draft, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &model.StructuralError{Reason: "input is not a JSON object", Err: err}
	}
	if raw == nil {
		return nil, &model.StructuralError{Reason: "input is null", Err: model.ErrMissingShape}
	}
	if _, ok := raw["nodes"]; !ok {
		if wf, ok := raw["workflow"].(map[string]any); ok {
			raw = wf
		}
	}

	d := &Draft{Name: str(raw["name"])}
	nodes, hasNodes := raw["nodes"]
	conns, hasConns := raw["connections"]
	if !hasNodes && !hasConns {
		return nil, &model.StructuralError{Reason: "draft", Err: model.ErrMissingShape}
	}
	d.HasNodes, d.HasConnections = hasNodes, hasConns

	if list, ok := nodes.([]any); ok {
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			d.Nodes = append(d.Nodes, parseNode(m))
		}
	}
	if m, ok := conns.(map[string]any); ok {
		d.Connections = plain(m).(map[string]any)
	}
	if tags, ok := raw["tags"].([]any); ok {
		for _, t := range tags {
			switch v := t.(type) {
			case string:
				d.Tags = append(d.Tags, v)
			case map[string]any:
				if name := str(v["name"]); name != "" {
					d.Tags = append(d.Tags, name)
				}
			}
		}
	}
	if s, ok := raw["settings"].(map[string]any); ok {
		d.Settings = plain(s).(map[string]any)
	}
	return d, nil
}

func parseNode(m map[string]any) DraftNode {
	n := DraftNode{
		ID:          str(m["id"]),
		Name:        str(m["name"]),
		Type:        str(m["type"]),
		Notes:       str(m["notes"]),
		TypeVersion: num(m["typeVersion"]),
	}
	if p, ok := m["parameters"].(map[string]any); ok {
		n.Parameters = plain(p).(map[string]any)
	}
	if c, ok := m["credentials"].(map[string]any); ok {
		n.Credentials = plain(c).(map[string]any)
	}
	n.Position = position(m["position"])
	for k, v := range m {
		if knownNodeKeys[k] {
			continue
		}
		if n.Extra == nil {
			n.Extra = map[string]any{}
		}
		n.Extra[k] = plain(v)
	}
	return n
}

func position(v any) *model.Position {
	switch p := v.(type) {
	case []any:
		if len(p) == 2 {
			return &model.Position{X: num(p[0]), Y: num(p[1])}
		}
	case map[string]any:
		if _, ok := p["x"]; ok {
			return &model.Position{X: num(p["x"]), Y: num(p["y"])}
		}
	}
	return nil
}

// Document converts a draft literally, without defaults or repair. It is
// used to validate documents that are already meant to be complete.
func (d *Draft) Document() *model.Document {
	doc := model.NewDocument(d.Name)
	if d.Tags != nil {
		doc.Tags = append([]string{}, d.Tags...)
	}
	doc.Settings = model.CloneMap(d.Settings)
	for _, dn := range d.Nodes {
		n := model.Node{
			ID:          dn.ID,
			Name:        dn.Name,
			Type:        dn.Type,
			TypeVersion: dn.TypeVersion,
			Parameters:  model.CloneMap(dn.Parameters),
			Credentials: model.CloneMap(dn.Credentials),
			Notes:       dn.Notes,
			Extra:       model.CloneMap(dn.Extra),
		}
		if n.Parameters == nil {
			n.Parameters = map[string]any{}
		}
		if dn.Position != nil {
			n.Position = *dn.Position
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	doc.Connections = ParseConnections(d.Connections)
	return doc
}

// Decode parses a workflow document as-is.
func Decode(data []byte) (*model.Document, error) {
	d, err := ParseDraft(data)
	if err != nil {
		return nil, err
	}
	return d.Document(), nil
}

// Encode renders a document as indented platform JSON.
func Encode(doc *model.Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	return b, nil
}

// plain converts json.Number values into int or float64 so drafts carry
// ordinary JSON-like values.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}

func num(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}
