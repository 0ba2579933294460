package n8n

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsinling0525/flowsmith/model"
)

func TestParseDraft(t *testing.T) {
	data := []byte(`{
		"name": "Orders",
		"tags": ["shop", {"name": "ops"}],
		"nodes": [
			{"id": "n1", "name": "Start", "type": "n8n-nodes-base.manualTrigger", "typeVersion": 1, "position": [100, 200]},
			{"name": "Run", "type": "n8n-nodes-base.code", "position": {"x": 320, "y": 200}, "jsCode": "return [];", "parameters": {"retries": 3}},
			"garbage"
		],
		"connections": {"Start": {"main": [[{"node": "Run", "type": "main", "index": 0}]]}}
	}`)

	d, err := ParseDraft(data)
	require.NoError(t, err)
	assert.Equal(t, "Orders", d.Name)
	assert.Equal(t, []string{"shop", "ops"}, d.Tags)
	require.Len(t, d.Nodes, 2)

	start := d.Nodes[0]
	assert.Equal(t, "n1", start.ID)
	assert.Equal(t, 1.0, start.TypeVersion)
	require.NotNil(t, start.Position)
	assert.Equal(t, model.Position{X: 100, Y: 200}, *start.Position)

	run := d.Nodes[1]
	assert.Empty(t, run.ID)
	assert.Zero(t, run.TypeVersion)
	assert.Equal(t, model.Position{X: 320, Y: 200}, *run.Position)
	assert.Equal(t, "return [];", run.Extra["jsCode"])
	assert.Equal(t, 3, run.Parameters["retries"])
}

func TestParseDraftRejectsMissingShape(t *testing.T) {
	_, err := ParseDraft([]byte(`{"name": "nothing here"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrStructural))

	var se *model.StructuralError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, model.ErrMissingShape)
}

func TestParseDraftRejectsNonObject(t *testing.T) {
	for _, in := range []string{`[1,2]`, `not json`, `null`} {
		_, err := ParseDraft([]byte(in))
		assert.ErrorIs(t, err, model.ErrStructural, in)
	}
}

func TestParseDraftUnwrapsEnvelope(t *testing.T) {
	d, err := ParseDraft([]byte(`{"workflow": {"name": "wrapped", "nodes": []}, "data": {}}`))
	require.NoError(t, err)
	assert.Equal(t, "wrapped", d.Name)
	assert.True(t, d.HasNodes)
	assert.False(t, d.HasConnections)
}

func TestDecodeAndEncode(t *testing.T) {
	data := []byte(`{
		"name": "Pipe",
		"nodes": [
			{"id": "1", "name": "A", "type": "n8n-nodes-base.manualTrigger", "typeVersion": 1, "position": [0, 0], "parameters": {}},
			{"id": "2", "name": "B", "type": "n8n-nodes-base.code", "typeVersion": 2, "position": [220, 0], "parameters": {"jsCode": "x"}}
		],
		"connections": {"A": {"main": [{"node": "B", "type": "main", "index": 0}]}}
	}`)
	doc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, doc.Connections.Targets("A"))

	out, err := Encode(doc)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	for _, key := range []string{"name", "id", "versionId", "meta", "tags", "pinData", "active", "nodes", "connections"} {
		assert.Contains(t, generic, key)
	}
	nodes := generic["nodes"].([]any)
	assert.Equal(t, []any{220.0, 0.0}, nodes[1].(map[string]any)["position"])
	conn := generic["connections"].(map[string]any)["A"].(map[string]any)["main"].([]any)
	require.Len(t, conn, 1)
	assert.Len(t, conn[0], 1)
}
