package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/tracing"
)

func TestRepairDisconnectedNode(t *testing.T) {
	d := document(
		node("Trigger", manualType, 0, 0),
		node("Fetch", codeType, 200, 0),
		node("Process", codeType, 400, 0),
	)
	d.Connections.Connect("Trigger", 0, "Fetch", 0)

	before := Validate(d, Options{})
	assert.Equal(t, 80, before.Score)
	require.Len(t, before.Issues, 1)
	assert.Equal(t, "Process", before.Issues[0].Node)
	assert.True(t, before.Issues[0].Autofixable)

	rec := tracing.NewRecorder()
	out, fixes := Repair(d, Options{Tracer: rec})
	assert.Same(t, d, out)
	assert.Equal(t, 1, fixes)
	assert.Equal(t, []string{"Process"}, out.Connections.Targets("Fetch"))

	after := Validate(out, Options{})
	assert.Equal(t, 100, after.Score)
	assert.True(t, after.IsValid)

	ds := rec.Find(tracing.StageRepair, "connect-disconnected")
	require.Len(t, ds, 1)
	assert.Equal(t, "Fetch", ds[0].Detail)
}

func TestRepairConnectsNearestPredecessor(t *testing.T) {
	d := document(
		node("Trigger", manualType, 0, 0),
		node("Save Order", codeType, 200, 0),
		node("Process", codeType, 400, 0),
	)
	d.Connections.Connect("Trigger", 0, "Save Order", 0)

	out, fixes := Repair(d, Options{})
	assert.Equal(t, 1, fixes)
	assert.Equal(t, []string{"Process"}, out.Connections.Targets("Save Order"))
	assert.Equal(t, []string{"Save Order"}, out.Connections.Targets("Trigger"))
}

func switchDocument(endA, endB string) *model.Document {
	d := document(
		node("Trigger", manualType, 0, 0),
		switchNode("Route", 220, 0, 2),
		node("Handle A", codeType, 440, 0),
		node("Handle B", codeType, 440, 180),
		node(endA, codeType, 660, 0),
		node(endB, codeType, 660, 180),
	)
	d.Connections.Connect("Trigger", 0, "Route", 0)
	d.Connections.Connect("Route", 0, "Handle A", 0)
	d.Connections.Connect("Route", 1, "Handle B", 0)
	d.Connections.Connect("Handle A", 0, endA, 0)
	d.Connections.Connect("Handle B", 0, endB, 0)
	return d
}

func TestRepairSwitchWithIncompleteBranches(t *testing.T) {
	d := switchDocument("Enrich A", "Enrich B")

	out, fixes := Repair(d, Options{})
	assert.Equal(t, 3, fixes)

	var merges []model.Node
	for _, n := range out.Nodes {
		if catalog.Classify(n.Type).Kind == catalog.KindMerge {
			merges = append(merges, n)
		}
	}
	require.Len(t, merges, 1)
	merge := merges[0]
	assert.Equal(t, "Merge Route", merge.Name)
	assert.Equal(t, 2, merge.Parameters["numberInputs"])
	assert.Greater(t, merge.Position.X, 660.0)

	assert.Equal(t, model.Port{{Node: merge.Name, Type: "main", Index: 0}}, out.Connections.Ports("Enrich A")[0])
	assert.Equal(t, model.Port{{Node: merge.Name, Type: "main", Index: 1}}, out.Connections.Ports("Enrich B")[0])

	r := Validate(out, Options{})
	assert.True(t, r.IsValid)
}

func TestRepairSwitchFollowsMainOutputs(t *testing.T) {
	d := switchDocument("Enrich A", "Enrich B")
	d.Nodes = append(d.Nodes, node("Model", codeType, 440, 900))
	d.Connections["Handle A"]["ai_languageModel"] = []model.Port{{{Node: "Model", Type: "ai_languageModel"}}}

	out, _ := Repair(d, Options{})
	require.True(t, out.HasNode("Merge Route"))
	assert.Equal(t, []string{"Merge Route"}, out.Connections.Targets("Enrich A"))
	assert.Equal(t, []string{"Merge Route"}, out.Connections.Targets("Enrich B"))
	assert.False(t, out.Connections.HasOutgoing("Model"))
}

func TestRepairLeavesCompleteSwitchBranches(t *testing.T) {
	d := switchDocument("Save Record", "Save Record 2")
	before := d.Connections.Clone()
	nodes := len(d.Nodes)

	out, fixes := Repair(d, Options{})
	assert.Zero(t, fixes)
	assert.Len(t, out.Nodes, nodes)
	assert.Equal(t, before, out.Connections)
	assert.False(t, out.Connections.HasOutgoing("Save Record"))
	assert.False(t, out.Connections.HasOutgoing("Save Record 2"))
}

func TestRepairMixedSwitchBranchesNeedNoMerge(t *testing.T) {
	d := switchDocument("Save Record", "Enrich B")

	out, _ := Repair(d, Options{})
	assert.False(t, out.HasNode("Merge Route"))
	assert.False(t, out.Connections.HasOutgoing("Save Record"))
}

func TestRepairDoesNotFillEmptySwitchOutput(t *testing.T) {
	d := document(node("Trigger", manualType, 0, 0), switchNode("Route", 220, 0, 2), node("A", codeType, 440, 0))
	d.Connections.Connect("Trigger", 0, "Route", 0)
	d.Connections.Connect("Route", 0, "A", 0)
	d.Connections.EnsurePorts("Route", 2)
	nodes := len(d.Nodes)

	out, _ := Repair(d, Options{})
	assert.Len(t, out.Nodes, nodes)
	assert.Empty(t, out.Connections.Ports("Route")[1])

	r := Validate(out, Options{})
	assert.False(t, r.IsValid)
	assert.Contains(t, categories(r), model.CategorySwitch)
}

func TestRepairDropsBadEdges(t *testing.T) {
	d := document(node("Start", manualType, 0, 0), node("Run", codeType, 220, 0))
	d.Connections.Connect("Start", 0, "Run", 0)
	d.Connections.Connect("Run", 0, "Start", 0)
	d.Connections.Connect("Run", 0, "Ghost", 0)
	d.Connections.Connect("Nobody", 0, "Run", 0)

	out, fixes := Repair(d, Options{})
	assert.Equal(t, 3, fixes)
	assert.NotContains(t, out.Connections, "Nobody")
	assert.Empty(t, out.Connections.Targets("Run"))
	assert.True(t, Validate(out, Options{}).IsValid)
}

func TestRepairChainsDeadEnds(t *testing.T) {
	d := document(node("Start", manualType, 0, 0), node("Transform", codeType, 220, 0), node("Finish Up", codeType, 440, 0))
	d.Connections.Connect("Start", 0, "Transform", 0)
	d.Connections.Connect("Start", 0, "Finish Up", 0)

	r := Validate(d, Options{})
	assert.Equal(t, 95, r.Score)

	out, fixes := Repair(d, Options{})
	assert.Equal(t, 1, fixes)
	assert.Equal(t, []string{"Finish Up"}, out.Connections.Targets("Transform"))
}

func TestRepairFillsRequiredParameters(t *testing.T) {
	d := document(node("Start", manualType, 0, 0), model.Node{
		Name: "Fetch", Type: "n8n-nodes-base.httpRequest", Position: model.Position{X: 220},
	})
	d.Connections.Connect("Start", 0, "Fetch", 0)

	out, fixes := Repair(d, Options{})
	assert.Equal(t, 1, fixes)
	fetch, _ := out.Node("Fetch")
	assert.Equal(t, "={{ $json.url }}", fetch.Parameters["url"])
	assert.Equal(t, 100, Validate(out, Options{}).Score)
}

func TestRepairIsTotal(t *testing.T) {
	out, fixes := Repair(nil, Options{})
	assert.Nil(t, out)
	assert.Zero(t, fixes)

	d := &model.Document{Nodes: []model.Node{{Name: "Lonely"}}}
	out, _ = Repair(d, Options{})
	assert.NotNil(t, out.Connections)
}
