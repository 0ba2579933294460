package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const draft = `{
  "name": "Disconnected",
  "nodes": [
    {"name": "Trigger", "type": "n8n-nodes-base.manualTrigger", "position": [0, 0]},
    {"name": "Fetch", "type": "n8n-nodes-base.code", "position": [200, 0], "parameters": {"jsCode": "return [];"}},
    {"name": "Process", "type": "n8n-nodes-base.code", "position": [400, 0], "parameters": {"jsCode": "return [];"}}
  ],
  "connections": {"Trigger": {"main": [{"node": "Fetch", "type": "main", "index": 0}]}}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-format", "json"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "flowsmith "))
}

func TestBuildCommand(t *testing.T) {
	path := writeFile(t, "draft.json", draft)
	out, _, err := run(t, "build", path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Disconnected", doc["name"])
	conns := doc["connections"].(map[string]any)
	assert.Contains(t, conns, "Fetch")
}

func TestBuildCommandMultipleFilesKeepOrder(t *testing.T) {
	a := writeFile(t, "a.json", strings.Replace(draft, "Disconnected", "First", 1))
	b := writeFile(t, "b.json", strings.Replace(draft, "Disconnected", "Second", 1))

	out, _, err := run(t, "build", "--report", a, b)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var names []string
	for dec.More() {
		var res struct {
			Workflow struct {
				Name string `json:"name"`
			} `json:"workflow"`
			FixesApplied int `json:"fixesApplied"`
		}
		require.NoError(t, dec.Decode(&res))
		names = append(names, res.Workflow.Name)
		assert.Equal(t, 1, res.FixesApplied)
	}
	assert.Equal(t, []string{"First", "Second"}, names)
}

func TestBuildCommandYAMLAndStructuralError(t *testing.T) {
	path := writeFile(t, "draft.json", draft)
	out, _, err := run(t, "build", "-o", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Disconnected")

	bad := writeFile(t, "bad.json", `{"name": "nothing"}`)
	_, _, err = run(t, "build", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structural")
}

func TestValidateCommand(t *testing.T) {
	path := writeFile(t, "draft.json", draft)

	out, _, err := run(t, "validate", path)
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `"score": 80`)

	out, stderr, err := run(t, "validate", "--repair", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 fixes applied, score 100")
	assert.Contains(t, out, `"Process"`)
}

func TestNormalizeCommand(t *testing.T) {
	path := writeFile(t, "draft.json", draft)
	out, _, err := run(t, "normalize", path)
	require.NoError(t, err)

	var doc struct {
		Connections map[string]map[string][][]map[string]any `json:"connections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Fetch", doc.Connections["Trigger"]["main"][0][0]["node"])
}
