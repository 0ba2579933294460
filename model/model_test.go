package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	c := Connections{}
	assert.True(t, c.Connect("A", 2, "B", 0))
	assert.False(t, c.Connect("A", 2, "B", 0))
	assert.False(t, c.Connect("", 0, "B", 0))
	assert.False(t, c.Connect("A", -1, "B", 0))

	ports := c.Ports("A")
	require.Len(t, ports, 3)
	assert.Empty(t, ports[0])
	assert.Equal(t, Port{{Node: "B", Type: MainOutput, Index: 0}}, ports[2])
	assert.True(t, c.HasOutgoing("A"))
	assert.False(t, c.HasOutgoing("B"))
}

func TestTargetsOrdersConnectionTypes(t *testing.T) {
	c := Connections{}
	c.Connect("Agent", 0, "Next", 0)
	c["Agent"]["ai_tool"] = []Port{{{Node: "Tool", Type: "ai_tool"}}}
	c["Agent"]["ai_memory"] = []Port{{{Node: "Memory", Type: "ai_memory"}}}

	for i := 0; i < 10; i++ {
		assert.Equal(t, []string{"Next", "Memory", "Tool"}, c.Targets("Agent"))
	}
}

func TestEnsurePortsAndIncoming(t *testing.T) {
	c := Connections{}
	c.EnsurePorts("S", 3)
	assert.Len(t, c.Ports("S"), 3)
	assert.False(t, c.HasOutgoing("S"))

	c.Connect("S", 0, "X", 0)
	c.Connect("S", 1, "X", 1)
	c.Connect("T", 0, "Y", 0)
	assert.Equal(t, map[string]bool{"X": true, "Y": true}, c.IncomingSet())
	assert.Equal(t, 2, c.IncomingCount()["X"])
	assert.Equal(t, []string{"S", "T"}, c.Sources())
	assert.Equal(t, []string{"X", "X"}, c.Targets("S"))
}

func TestRemoveTargetsKeepsPortPositions(t *testing.T) {
	c := Connections{}
	c.Connect("S", 0, "Gone", 0)
	c.Connect("S", 1, "Kept", 0)

	n := c.RemoveTargets(func(_ string, e Edge) bool { return e.Node == "Gone" })
	assert.Equal(t, 1, n)
	require.Len(t, c.Ports("S"), 2)
	assert.Empty(t, c.Ports("S")[0])
	assert.Equal(t, []string{"Kept"}, c.Targets("S"))
}

func TestCloneIsDeep(t *testing.T) {
	d := NewDocument("wf")
	d.Nodes = append(d.Nodes, Node{Name: "A", Parameters: map[string]any{"list": []any{map[string]any{"k": "v"}}}})
	d.Connections.Connect("A", 0, "B", 0)

	c := d.Clone()
	c.Nodes[0].Parameters["list"].([]any)[0].(map[string]any)["k"] = "changed"
	c.Connections.Connect("A", 0, "C", 0)
	c.Tags = append(c.Tags, "x")

	assert.Equal(t, "v", d.Nodes[0].Parameters["list"].([]any)[0].(map[string]any)["k"])
	assert.Equal(t, []string{"B"}, d.Connections.Targets("A"))
	assert.Empty(t, d.Tags)
	assert.Nil(t, (*Document)(nil).Clone())
}

func TestDocumentJSON(t *testing.T) {
	d := NewDocument("wf")
	d.Nodes = append(d.Nodes, Node{ID: "1", Name: "A", Type: "t", TypeVersion: 1, Position: Position{X: 250, Y: 300}, Parameters: map[string]any{}, Extra: map[string]any{"hidden": true}})

	b, err := json.Marshal(d)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"position":[250,300]`)
	assert.Contains(t, s, `"tags":[]`)
	assert.Contains(t, s, `"pinData":{}`)
	assert.Contains(t, s, `"meta":{"instanceId":""}`)
	assert.NotContains(t, s, "hidden")

	var back Document
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Position{X: 250, Y: 300}, back.Nodes[0].Position)
}

func TestPositionAcceptsObjectForm(t *testing.T) {
	var p Position
	require.NoError(t, json.Unmarshal([]byte(`{"x": 1, "y": 2}`), &p))
	assert.Equal(t, Position{X: 1, Y: 2}, p)
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &p))
}

func TestNodeLookup(t *testing.T) {
	d := NewDocument("wf")
	d.Nodes = append(d.Nodes, Node{Name: "A"})
	n, ok := d.Node("A")
	require.True(t, ok)
	n.Type = "changed"
	assert.Equal(t, "changed", d.Nodes[0].Type)
	assert.False(t, d.HasNode("B"))
	assert.Equal(t, map[string]bool{"A": true}, d.NodeNames())
}

func TestStructuralErrors(t *testing.T) {
	err := &StructuralError{Reason: "text input", Err: ErrNoNodes}
	assert.True(t, errors.Is(err, ErrStructural))
	assert.True(t, errors.Is(err, ErrNoNodes))
	assert.Contains(t, err.Error(), "text input")
	assert.True(t, errors.Is(ErrInputTooLarge, ErrStructural))
	assert.Equal(t, "structural error: bare", (&StructuralError{Reason: "bare"}).Error())
	assert.Equal(t, "text input: structural error: no nodes after extraction", err.Error())
	assert.Equal(t, "structural error: decode: boom", (&StructuralError{Reason: "decode", Err: errors.New("boom")}).Error())
}
