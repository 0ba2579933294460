package model

import (
	"encoding/json"
	"fmt"
)

// Document is an n8n workflow document as emitted by the builders.
type Document struct {
	Name        string         `json:"name"`
	ID          string         `json:"id"`
	VersionID   string         `json:"versionId"`
	Meta        Meta           `json:"meta"`
	Tags        []string       `json:"tags"`
	PinData     map[string]any `json:"pinData"`
	Active      bool           `json:"active"`
	Nodes       []Node         `json:"nodes"`
	Connections Connections    `json:"connections"`
	Settings    map[string]any `json:"settings,omitempty"`
}

type Meta struct {
	InstanceID string `json:"instanceId"`
}

// Node is a single typed processing node. Name doubles as the adjacency key.
type Node struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    Position       `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Notes       string         `json:"notes,omitempty"`

	// Extra keeps top-level draft keys the platform schema does not know about.
	Extra map[string]any `json:"-"`
}

type Position struct {
	X float64
	Y float64
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON accepts both the platform form [x, y] and the object form {"x":..,"y":..}.
func (p *Position) UnmarshalJSON(b []byte) error {
	var arr []float64
	if err := json.Unmarshal(b, &arr); err == nil {
		if len(arr) != 2 {
			return fmt.Errorf("position: expected 2 coordinates, got %d", len(arr))
		}
		p.X, p.Y = arr[0], arr[1]
		return nil
	}
	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	p.X, p.Y = obj.X, obj.Y
	return nil
}

// NewDocument returns an empty document with every collection initialised so
// that it serializes with [] and {} rather than null.
func NewDocument(name string) *Document {
	return &Document{
		Name:        name,
		Tags:        []string{},
		PinData:     map[string]any{},
		Nodes:       []Node{},
		Connections: Connections{},
	}
}

// Node returns a pointer to the node with the given name.
func (d *Document) Node(name string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].Name == name {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

func (d *Document) HasNode(name string) bool {
	_, ok := d.Node(name)
	return ok
}

// NodeNames returns the set of node names in the document.
func (d *Document) NodeNames() map[string]bool {
	out := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		out[n.Name] = true
	}
	return out
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Tags = append([]string{}, d.Tags...)
	c.PinData = CloneMap(d.PinData)
	c.Settings = CloneMap(d.Settings)
	c.Nodes = make([]Node, len(d.Nodes))
	for i, n := range d.Nodes {
		c.Nodes[i] = n.Clone()
	}
	c.Connections = d.Connections.Clone()
	return &c
}

func (n Node) Clone() Node {
	c := n
	c.Parameters = CloneMap(n.Parameters)
	c.Credentials = CloneMap(n.Credentials)
	c.Extra = CloneMap(n.Extra)
	return c
}

// CloneMap deep-copies JSON-like values (maps, slices, scalars).
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		return append([]string{}, t...)
	default:
		return v
	}
}
