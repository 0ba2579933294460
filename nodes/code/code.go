// Package code registers the general-purpose processing nodes. The code node
// is the resolver's default when nothing more specific matches.
package code

import "github.com/Tsinling0525/flowsmith/catalog"

const (
	Type    = "n8n-nodes-base.code"
	SetType = "n8n-nodes-base.set"
)

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindCode,
		Type:        Type,
		DisplayName: "Code",
		Version:     2,
		Category:    catalog.CategoryTransform,
		Keywords:    []string{"code", "script", "javascript", "calculate", "compute", "process", "parse", "validate", "transform"},
		Concepts:    []string{"custom logic", "calculate total", "validate data", "parse input"},
		UseCases: []string{
			"validate the order fields",
			"calculate the total price with tax",
			"parse and clean the payload",
		},
		Defaults: map[string]any{
			"jsCode": "return $input.all();",
		},
		Required: []string{"jsCode"},
	})
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindSet,
		Type:        SetType,
		DisplayName: "Edit Fields",
		Version:     3.4,
		Category:    catalog.CategoryTransform,
		Keywords:    []string{"set", "field", "fields", "map", "rename", "format", "assign", "enrich"},
		Concepts:    []string{"set fields", "map fields", "format data"},
		UseCases:    []string{"rename fields before sending", "add a status field to each item", "format the response data"},
		Defaults: map[string]any{
			"assignments": map[string]any{"assignments": []any{}},
			"options":     map[string]any{},
		},
		ListParams: []string{"assignments.assignments"},
	})
}
