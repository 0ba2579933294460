package engine

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/model"
	_ "github.com/Tsinling0525/flowsmith/nodes/all"
	"github.com/Tsinling0525/flowsmith/tracing"
	"github.com/Tsinling0525/flowsmith/validate"
)

func testOptions() Options {
	opts := DefaultOptions()
	n := 0
	opts.NewID = func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
	return opts
}

const disconnectedDraft = `{
  "name": "Disconnected",
  "nodes": [
    {"name": "Trigger", "type": "n8n-nodes-base.manualTrigger", "position": [0, 0]},
    {"name": "Fetch", "type": "n8n-nodes-base.code", "position": [200, 0], "parameters": {"jsCode": "return [];"}},
    {"name": "Process", "type": "n8n-nodes-base.code", "position": [400, 0], "parameters": {"jsCode": "return [];"}}
  ],
  "connections": {"Trigger": {"main": [[{"node": "Fetch", "type": "main", "index": 0}]]}}
}`

func TestBuildRepairsDisconnectedDraft(t *testing.T) {
	res, err := New(testOptions()).Build(context.Background(), disconnectedDraft)
	require.NoError(t, err)

	assert.Equal(t, InputJSON, res.Input)
	assert.Equal(t, 80, res.Initial.Score)
	assert.Equal(t, 100, res.Validation.Score)
	assert.True(t, res.Validation.IsValid)
	assert.Equal(t, 1, res.Fixes)
	assert.Equal(t, []string{"Process"}, res.Document.Connections.Targets("Fetch"))
	assert.NotEmpty(t, res.Decisions)
}

func TestBuildCanonicalizesMalformedAdjacency(t *testing.T) {
	raw := `{"nodes": [
	    {"name": "Start", "type": "n8n-nodes-base.manualTrigger", "position": [0, 0]},
	    {"name": "Step", "type": "n8n-nodes-base.code", "position": [220, 0], "parameters": {"jsCode": "return [];"}}
	  ],
	  "connections": {"Start": {"main": [{"node": "Step", "type": "main", "index": 0}]}}}`

	res, err := New(testOptions()).Build(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, model.Port{{Node: "Step", Type: "main", Index: 0}}, res.Document.Connections.Ports("Start")[0])
	assert.True(t, res.Validation.IsValid)
}

func TestBuildAcceptsFencedJSON(t *testing.T) {
	raw := "Here is the workflow:\n```json\n" + disconnectedDraft + "\n```\nEnjoy."
	res, err := New(testOptions()).Build(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, InputJSON, res.Input)
	assert.Equal(t, "Disconnected", res.Document.Name)
}

func TestBuildFromText(t *testing.T) {
	raw := "1. Fetch Orders - Call the REST API to fetch orders\n2. Save Orders - Save the order to the database\n"
	res, err := New(testOptions()).Build(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, InputText, res.Input)
	require.Len(t, res.Document.Nodes, 3)
	assert.True(t, catalog.IsTriggerType(res.Document.Nodes[0].Type))
	assert.True(t, res.Document.HasNode("Save Orders"))
	assert.True(t, res.Validation.IsValid)
}

func TestBuildStructuralErrors(t *testing.T) {
	cases := map[string]string{
		"missing shape":   `{"name": "nothing here"}`,
		"no requirements": "just some chatter without any steps",
		"empty nodes":     `{"nodes": [], "connections": {}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := BuildWorkflow(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrStructural))
		})
	}
}

func TestBuildRejectsOversizedJSON(t *testing.T) {
	opts := testOptions()
	opts.MaxInputBytes = 64
	_, err := New(opts).Build(context.Background(), disconnectedDraft)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInputTooLarge)
	assert.ErrorIs(t, err, model.ErrStructural)
}

func TestBuildInvalidJSONFallsBackToText(t *testing.T) {
	raw := "{ not json\n1. Fetch Orders - Call the REST API to fetch orders\n"
	res, err := New(testOptions()).Build(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, InputText, res.Input)

	var fallback bool
	for _, d := range res.Decisions {
		if d.Stage == tracing.StageInput && d.Rule == "invalid-json-as-text" {
			fallback = true
		}
	}
	assert.True(t, fallback)
}

func TestBuildRunsHookOnceOnRepairedDocument(t *testing.T) {
	opts := testOptions()
	calls := 0
	replacement := model.NewDocument("replaced")
	opts.Hook = func(doc *model.Document) *model.Document {
		calls++
		assert.Equal(t, []string{"Process"}, doc.Connections.Targets("Fetch"))
		return replacement
	}

	res, err := New(opts).Build(context.Background(), disconnectedDraft)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Same(t, replacement, res.Document)
	assert.Equal(t, 100, res.Validation.Score)
}

func TestBuildWithoutRepair(t *testing.T) {
	opts := testOptions()
	opts.Repair.Enabled = false
	res, err := New(opts).Build(context.Background(), disconnectedDraft)
	require.NoError(t, err)
	assert.Zero(t, res.Fixes)
	assert.Equal(t, res.Initial, res.Validation)
	assert.False(t, res.Validation.IsValid)
}

func TestBuildRecordsIntoCallerTracer(t *testing.T) {
	opts := testOptions()
	rec := tracing.NewRecorder()
	opts.Tracer = rec
	res, err := New(opts).Build(context.Background(), disconnectedDraft)
	require.NoError(t, err)
	assert.Equal(t, res.Decisions, rec.Decisions())
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("é", 10)
	out := truncate(text, 5, tracing.Nop{})
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 4, len(out))
	assert.Equal(t, text, truncate(text, 100, tracing.Nop{}))
}

func TestJSONPayload(t *testing.T) {
	_, ok := jsonPayload("plain text", nil)
	assert.False(t, ok)

	body, ok := jsonPayload("```\n{\"nodes\": []}\n```", nil)
	assert.True(t, ok)
	assert.Equal(t, `{"nodes": []}`, body)

	_, ok = jsonPayload("```json\n[1, 2]\n```", nil)
	assert.False(t, ok)

	body, ok = jsonPayload("Here is the workflow:\n```json\n{\"connections\": {}}\n```\nEnjoy.", nil)
	assert.True(t, ok)
	assert.Equal(t, `{"connections": {}}`, body)

	rec := tracing.NewRecorder()
	_, ok = jsonPayload("Send the order.\n```json\n{\"orderId\": 42}\n```", rec)
	assert.False(t, ok)
	assert.Len(t, rec.Find(tracing.StageInput, "fenced-json-as-text"), 1)
}

const textWithPayload = `BRANCH 1: Orders
Trigger: webhook receives order
Processing Flow:
1. Validate Order - check required fields
2. Save Order - store the order in the database

Example payload:
` + "```json\n{\"orderId\": 42}\n```\n"

func TestBuildTextWithExamplePayload(t *testing.T) {
	res, err := New(testOptions()).Build(context.Background(), textWithPayload)
	require.NoError(t, err)

	assert.Equal(t, InputText, res.Input)
	assert.True(t, res.Document.HasNode("Validate Order"))
	assert.True(t, res.Document.HasNode("Save Order"))

	var fellBack bool
	for _, d := range res.Decisions {
		if d.Stage == tracing.StageInput && d.Rule == "fenced-json-as-text" {
			fellBack = true
		}
	}
	assert.True(t, fellBack)
}

func TestBuildWorkflowConcurrent(t *testing.T) {
	inputs := []string{disconnectedDraft, textWithPayload}
	results := make([]Result, 32)
	errs := make([]error, len(results))

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = BuildWorkflow(inputs[i%len(inputs)])
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		require.NoError(t, errs[i])
		want := results[i%len(inputs)]
		assert.Equal(t, want.Input, res.Input)
		assert.Equal(t, want.Validation.Score, res.Validation.Score)
		assert.Equal(t, want.Fixes, res.Fixes)
		assert.Len(t, res.Document.Nodes, len(want.Document.Nodes))
	}
}

func TestRepairLoopStopsWhenNothingChanges(t *testing.T) {
	doc := model.NewDocument("empty")
	initial, final, fixes := repairLoop(doc, RepairPolicy{Enabled: true, MaxPasses: 5}, validate.Options{})
	assert.Equal(t, initial, final)
	assert.Zero(t, fixes)
}
