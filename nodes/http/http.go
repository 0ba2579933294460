package httpnode

import "github.com/Tsinling0525/flowsmith/catalog"

const RequestType = "n8n-nodes-base.httpRequest"

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindHTTPRequest,
		Type:        RequestType,
		DisplayName: "HTTP Request",
		Version:     4.2,
		Category:    catalog.CategoryAction,
		Keywords:    []string{"http", "api", "request", "fetch", "call", "rest", "url", "download", "external"},
		Concepts:    []string{"call api", "fetch data", "http request", "external service", "rest api"},
		UseCases: []string{
			"fetch data from an external api",
			"call a rest endpoint",
			"check inventory with the warehouse api",
			"retrieve customer details from the crm",
		},
		Defaults: map[string]any{
			"method":  "GET",
			"url":     "",
			"options": map[string]any{},
		},
		Required: []string{"url"},
	})
}
