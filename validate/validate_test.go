package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsinling0525/flowsmith/model"
	_ "github.com/Tsinling0525/flowsmith/nodes/all"
	"github.com/Tsinling0525/flowsmith/tracing"
)

const (
	manualType = "n8n-nodes-base.manualTrigger"
	codeType   = "n8n-nodes-base.code"
	switchType = "n8n-nodes-base.switch"
)

func node(name, typ string, x, y float64) model.Node {
	params := map[string]any{}
	if typ == codeType {
		params["jsCode"] = "return $input.all();"
	}
	return model.Node{ID: name, Name: name, Type: typ, TypeVersion: 1, Position: model.Position{X: x, Y: y}, Parameters: params}
}

func switchNode(name string, x, y float64, outputs int) model.Node {
	n := node(name, switchType, x, y)
	values := make([]any, outputs)
	for i := range values {
		values[i] = map[string]any{"outputKey": "route"}
	}
	n.Parameters["rules"] = map[string]any{"values": values}
	return n
}

func document(nodes ...model.Node) *model.Document {
	d := model.NewDocument("test")
	d.Nodes = nodes
	return d
}

func categories(r Report) []model.Category {
	var out []model.Category
	for _, i := range r.Issues {
		out = append(out, i.Category)
	}
	return out
}

func TestValidateEmpty(t *testing.T) {
	r := Validate(document(), Options{})
	assert.False(t, r.IsValid)
	assert.Equal(t, 80, r.Score)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, model.CategoryStructure, r.Issues[0].Category)

	assert.Equal(t, 80, Validate(nil, Options{}).Score)
}

func TestValidateCleanDocument(t *testing.T) {
	d := document(node("Start", manualType, 0, 0), node("Run", codeType, 220, 0))
	d.Connections.Connect("Start", 0, "Run", 0)

	rec := tracing.NewRecorder()
	r := Validate(d, Options{Tracer: rec})
	assert.True(t, r.IsValid)
	assert.Equal(t, 100, r.Score)
	assert.Empty(t, r.Issues)
	assert.NotNil(t, r.Issues)
	assert.Len(t, rec.Find(tracing.StageValidate, "score"), 1)
}

func TestValidateFindings(t *testing.T) {
	d := document(
		node("Run", codeType, 0, 0),
		node("Run", codeType, 220, 0),
		node("Mystery", "acme.thing", 440, 400),
		model.Node{Name: "Mail", Type: "n8n-nodes-base.emailSend", Position: model.Position{X: 660, Y: 400}, Parameters: map[string]any{}},
	)
	d.Connections.Connect("Run", 0, "Ghost", 0)
	d.Connections.Connect("Mystery", 0, "Mail", 0)

	r := Validate(d, Options{})
	assert.False(t, r.IsValid)
	cats := categories(r)
	assert.Contains(t, cats, model.CategoryStructure)
	assert.Contains(t, cats, model.CategoryTrigger)
	assert.Contains(t, cats, model.CategoryConnectivity)
	assert.Contains(t, cats, model.CategoryParameters)
	assert.Contains(t, cats, model.CategoryType)
	assert.Equal(t, Score(r.Errors(), r.Warnings()), r.Score)
}

func TestValidateTriggerAsTarget(t *testing.T) {
	d := document(node("Start", manualType, 0, 0), node("Run", codeType, 220, 0))
	d.Connections.Connect("Start", 0, "Run", 0)
	d.Connections.Connect("Run", 0, "Start", 0)

	r := Validate(d, Options{})
	require.False(t, r.IsValid)
	var found bool
	for _, i := range r.Issues {
		if i.Category == model.CategoryTrigger && i.Node == "Start" {
			found = true
			assert.True(t, i.Autofixable)
		}
	}
	assert.True(t, found)
}

func TestValidateSwitchPorts(t *testing.T) {
	d := document(node("Start", manualType, 0, 0), switchNode("Route", 220, 0, 3), node("A", codeType, 440, 0))
	d.Connections.Connect("Start", 0, "Route", 0)
	d.Connections.Connect("Route", 0, "A", 0)
	d.Connections.EnsurePorts("Route", 2)

	r := Validate(d, Options{})
	var sw []model.ValidationIssue
	for _, i := range r.Issues {
		if i.Category == model.CategorySwitch {
			sw = append(sw, i)
			assert.False(t, i.Autofixable)
		}
	}
	// Two ports where three are declared, and port 1 is empty.
	assert.Len(t, sw, 2)
}

func TestValidateCycleWarning(t *testing.T) {
	d := document(node("Start", manualType, 0, 0), node("A", codeType, 220, 0), node("B", codeType, 440, 0))
	d.Connections.Connect("Start", 0, "A", 0)
	d.Connections.Connect("A", 0, "B", 0)
	d.Connections.Connect("B", 0, "A", 1)

	r := Validate(d, Options{})
	assert.True(t, r.IsValid)
	assert.Equal(t, []model.Category{model.CategoryCycle}, categories(r))
	assert.Equal(t, 95, r.Score)
}

func TestScoreMonotonicity(t *testing.T) {
	for e := 0; e < 7; e++ {
		for w := 0; w < 5; w++ {
			assert.Equal(t, max(0, Score(e, w)-20), Score(e+1, w), "errors=%d warnings=%d", e, w)
		}
	}

	d := document(node("Start", manualType, 0, 0), node("Run", codeType, 220, 0))
	d.Connections.Connect("Start", 0, "Run", 0)
	before := Validate(d, Options{}).Score

	// An isolated node on its own row adds exactly one error.
	d.Nodes = append(d.Nodes, node("Orphan", codeType, 0, 900))
	after := Validate(d, Options{}).Score
	assert.Equal(t, before-20, after)
}

func TestIsCompletion(t *testing.T) {
	assert.True(t, IsCompletion(node("Save Record", codeType, 0, 0)))
	assert.True(t, IsCompletion(node("Notify Customer", codeType, 0, 0)))
	assert.True(t, IsCompletion(node("Anything", "n8n-nodes-base.postgres", 0, 0)))
	assert.False(t, IsCompletion(node("Process Payment", codeType, 0, 0)))
	assert.False(t, IsCompletion(node("Catalogue", codeType, 0, 0)))
}
