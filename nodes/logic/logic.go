// Package logic registers routing and flow-control nodes.
package logic

import "github.com/Tsinling0525/flowsmith/catalog"

const (
	IfType     = "n8n-nodes-base.if"
	SwitchType = "n8n-nodes-base.switch"
	WaitType   = "n8n-nodes-base.wait"
)

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindIf,
		Type:        IfType,
		DisplayName: "If",
		Version:     2,
		Category:    catalog.CategoryLogic,
		Keywords:    []string{"if", "condition", "check", "whether", "filter", "approve", "threshold"},
		Concepts:    []string{"check if", "check whether", "true false"},
		UseCases:    []string{"check if the amount exceeds the limit", "continue only when approved"},
		Defaults: map[string]any{
			"conditions": map[string]any{
				"options":    map[string]any{"caseSensitive": true},
				"conditions": []any{},
				"combinator": "and",
			},
			"options": map[string]any{},
		},
		ListParams: []string{"conditions.conditions"},
	})
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindSwitch,
		Type:        SwitchType,
		DisplayName: "Switch",
		Version:     3,
		Category:    catalog.CategoryLogic,
		Keywords:    []string{"switch", "route", "routing", "router", "branch", "decide", "decision", "categorize", "dispatch"},
		Concepts:    []string{"route by", "based on type", "depending on", "central router"},
		UseCases:    []string{"route orders by payment method", "send items down different paths based on category"},
		Defaults: map[string]any{
			"mode":    "rules",
			"rules":   map[string]any{"values": []any{}},
			"options": map[string]any{},
		},
		ListParams: []string{"rules.values"},
	})
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindWait,
		Type:        WaitType,
		DisplayName: "Wait",
		Version:     1.1,
		Category:    catalog.CategoryLogic,
		Keywords:    []string{"wait", "delay", "pause", "sleep", "later"},
		Concepts:    []string{"wait for", "delay before"},
		UseCases:    []string{"wait one hour before following up"},
		Defaults: map[string]any{
			"amount": 1,
			"unit":   "hours",
		},
	})
}
