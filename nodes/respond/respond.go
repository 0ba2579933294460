package respond

import "github.com/Tsinling0525/flowsmith/catalog"

const Type = "n8n-nodes-base.respondToWebhook"

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindRespond,
		Type:        Type,
		DisplayName: "Respond to Webhook",
		Version:     1.1,
		Category:    catalog.CategoryResponse,
		Keywords:    []string{"respond", "response", "reply", "return", "acknowledge"},
		Concepts:    []string{"respond to webhook", "return response", "send response"},
		UseCases:    []string{"return the result to the caller", "acknowledge the request"},
		Defaults: map[string]any{
			"respondWith":  "json",
			"responseBody": "={{ $json }}",
			"options":      map[string]any{},
		},
		Terminal: true,
	})
}
