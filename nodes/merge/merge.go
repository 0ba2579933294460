package merge

import "github.com/Tsinling0525/flowsmith/catalog"

const Type = "n8n-nodes-base.merge"

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindMerge,
		Type:        Type,
		DisplayName: "Merge",
		Version:     3,
		Category:    catalog.CategoryLogic,
		Keywords:    []string{"merge", "combine", "join", "collect", "aggregate", "reconverge"},
		Concepts:    []string{"merge results", "combine results", "collect results", "wait for all"},
		UseCases:    []string{"combine the results of all branches", "join data from both sources"},
		Defaults: map[string]any{
			"mode":         "append",
			"numberInputs": 2,
		},
	})
}
