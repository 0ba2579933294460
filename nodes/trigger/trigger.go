// Package trigger registers the workflow-starting node types.
package trigger

import "github.com/Tsinling0525/flowsmith/catalog"

const (
	ManualType   = "n8n-nodes-base.manualTrigger"
	WebhookType  = "n8n-nodes-base.webhook"
	ScheduleType = "n8n-nodes-base.scheduleTrigger"
)

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindManualTrigger,
		Type:        ManualType,
		DisplayName: "Manual Trigger",
		Version:     1,
		Category:    catalog.CategoryTrigger,
		Keywords:    []string{"manual", "trigger", "start", "button", "test"},
		Concepts:    []string{"manual trigger", "start workflow"},
		UseCases:    []string{"run the workflow manually", "start on demand"},
		Defaults:    map[string]any{},
	})
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindWebhook,
		Type:        WebhookType,
		DisplayName: "Webhook",
		Version:     2,
		Category:    catalog.CategoryTrigger,
		Keywords:    []string{"webhook", "incoming", "receive", "received", "endpoint", "callback", "submission"},
		Concepts:    []string{"incoming request", "order received", "form submission"},
		UseCases:    []string{"receive data from an external system", "when an order is received", "handle incoming webhook"},
		Defaults: map[string]any{
			"httpMethod":   "POST",
			"path":         "webhook",
			"responseMode": "onReceived",
			"options":      map[string]any{},
		},
		Required: []string{"httpMethod", "path"},
	})
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindSchedule,
		Type:        ScheduleType,
		DisplayName: "Schedule Trigger",
		Version:     1.2,
		Category:    catalog.CategoryTrigger,
		Keywords:    []string{"schedule", "cron", "daily", "hourly", "weekly", "every", "interval", "periodic"},
		Concepts:    []string{"run every", "on a schedule", "every day"},
		UseCases:    []string{"run the workflow every morning", "check periodically for new data"},
		Defaults: map[string]any{
			"rule": map[string]any{
				"interval": []any{map[string]any{"field": "hours"}},
			},
		},
		Required:   []string{"rule.interval"},
		ListParams: []string{"rule.interval"},
	})
}
