// Package llm registers the language-model node. The builders only place it
// in a document; calling the model is the platform's business.
package llm

import "github.com/Tsinling0525/flowsmith/catalog"

const OpenAIType = "@n8n/n8n-nodes-langchain.openAi"

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindAI,
		Type:        OpenAIType,
		DisplayName: "OpenAI",
		Version:     1.8,
		Category:    catalog.CategoryAI,
		Keywords:    []string{"openai", "gpt", "llm", "summarize", "summary", "classify", "generate", "sentiment", "ai"},
		Concepts:    []string{"summarize text", "classify sentiment", "generate reply", "ai model"},
		UseCases:    []string{"summarize the support ticket", "classify the email sentiment", "draft a reply with ai"},
		Defaults: map[string]any{
			"resource":  "text",
			"operation": "message",
			"modelId":   map[string]any{"__rl": true, "mode": "list", "value": "gpt-4o-mini"},
			"messages":  map[string]any{"values": []any{}},
			"options":   map[string]any{},
		},
		ListParams: []string{"messages.values"},
	})
}
