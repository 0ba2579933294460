package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsinling0525/flowsmith/model"
	_ "github.com/Tsinling0525/flowsmith/nodes/all"
	"github.com/Tsinling0525/flowsmith/tracing"
)

func TestResolveScored(t *testing.T) {
	r := New(Options{})
	tests := []struct {
		desc string
		want string
	}{
		{"Call the REST API to fetch customer data", "n8n-nodes-base.httpRequest"},
		{"Save the order to the database", "n8n-nodes-base.postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			res := r.Resolve(tt.desc)
			assert.Equal(t, tt.want, res.NodeType)
			assert.Equal(t, MethodScored, res.Method)
			assert.GreaterOrEqual(t, res.Confidence, DefaultThreshold)
			assert.LessOrEqual(t, len(res.Alternatives), 3)
			for _, a := range res.Alternatives {
				assert.NotEqual(t, res.NodeType, a.NodeType)
				assert.LessOrEqual(t, a.Confidence, res.Confidence)
			}
		})
	}
}

func TestResolveKeywordLookup(t *testing.T) {
	res := New(Options{}).Resolve("Send Slack Alert")
	assert.Equal(t, "n8n-nodes-base.slack", res.NodeType)
	assert.Equal(t, MethodLookup, res.Method)
	assert.Less(t, res.Confidence, DefaultThreshold)
}

func TestResolveOverrides(t *testing.T) {
	// With no scoring entries only the overrides and the default remain.
	r := &Resolver{threshold: DefaultThreshold, tracer: tracing.Nop{}}

	res := r.Resolve("acts as the central router for tickets")
	assert.Equal(t, "n8n-nodes-base.switch", res.NodeType)
	assert.Equal(t, MethodOverride, res.Method)
	assert.Equal(t, 0.4, res.Confidence)

	res = r.Resolve("collect all the results")
	assert.Equal(t, "n8n-nodes-base.merge", res.NodeType)
	assert.Equal(t, MethodOverride, res.Method)
}

func TestResolveDefaultsForNonsense(t *testing.T) {
	rec := tracing.NewRecorder()
	res := New(Options{Tracer: rec}).Resolve("xyzzy qwerty")
	assert.Equal(t, DefaultType, res.NodeType)
	assert.Equal(t, MethodDefault, res.Method)
	assert.Equal(t, 0.1, res.Confidence)
	assert.Empty(t, res.Alternatives)

	ds := rec.Find(tracing.StageResolve, MethodDefault)
	require.Len(t, ds, 1)
	assert.True(t, ds[0].Fallback)
	assert.Equal(t, "xyzzy qwerty", ds[0].Subject)
}

func TestResolveIsTotalAndDeterministic(t *testing.T) {
	r := New(Options{})
	inputs := []string{
		"", "   ", "!!!", "a", "if", "route", "日本語のテキスト",
		strings.Repeat("process the payment and email the receipt ", 200),
		"Check if the amount exceeds the limit",
		"Summarize the support ticket with GPT",
		"Wait one hour",
	}
	for _, in := range inputs {
		first := r.Resolve(in)
		assert.NotEmpty(t, first.NodeType, in)
		assert.GreaterOrEqual(t, first.Confidence, 0.0, in)
		assert.LessOrEqual(t, first.Confidence, 1.0, in)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, r.Resolve(in), in)
		}
		assert.Equal(t, first, New(Options{}).Resolve(in), in)
	}
}

func TestResolveHint(t *testing.T) {
	r := New(Options{})
	for hint, want := range map[string]string{
		"HTTP Request":                "n8n-nodes-base.httpRequest",
		"httpRequest":                 "n8n-nodes-base.httpRequest",
		"n8n-nodes-base.googleSheets": "n8n-nodes-base.googleSheets",
		"  send email ":               "n8n-nodes-base.emailSend",
	} {
		res, ok := r.ResolveHint(hint)
		require.True(t, ok, hint)
		assert.Equal(t, want, res.NodeType, hint)
		assert.Equal(t, 1.0, res.Confidence)
	}
	_, ok := r.ResolveHint("Flux Capacitor")
	assert.False(t, ok)
	_, ok = r.ResolveHint("")
	assert.False(t, ok)
}

func TestResolveRequirementPrefersHint(t *testing.T) {
	r := New(Options{})
	res := r.ResolveRequirement(model.Requirement{Name: "Store it", Description: "save the order to the database", Type: "Google Sheets"})
	assert.Equal(t, "n8n-nodes-base.googleSheets", res.NodeType)
	assert.Equal(t, MethodHint, res.Method)

	res = r.ResolveRequirement(model.Requirement{Name: "Store it", Description: "save the order to the database"})
	assert.Equal(t, "n8n-nodes-base.postgres", res.NodeType)
}

func TestResolveTrigger(t *testing.T) {
	r := New(Options{})
	tests := []struct {
		text string
		want string
	}{
		{"Every day at 9am", "n8n-nodes-base.scheduleTrigger"},
		{"Webhook receives a new order", "n8n-nodes-base.webhook"},
		{"Form submission from the website", "n8n-nodes-base.webhook"},
		{"Schedule Trigger", "n8n-nodes-base.scheduleTrigger"},
		{"", "n8n-nodes-base.manualTrigger"},
		{"someone clicks go", "n8n-nodes-base.manualTrigger"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.ResolveTrigger(tt.text).NodeType, tt.text)
	}
}

func TestKeywordHitShortWords(t *testing.T) {
	txt := newText("verify the gift card")
	assert.Zero(t, keywordHit(txt, "if"))
	assert.Equal(t, weightExact, keywordHit(newText("check if it is paid"), "if"))
	assert.Equal(t, weightPartial, keywordHit(newText("validation step"), "validate"))
	assert.Equal(t, weightStem, keywordHit(newText("the routing table"), "router"))
}
