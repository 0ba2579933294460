// Package store registers persistence nodes.
package store

import "github.com/Tsinling0525/flowsmith/catalog"

const (
	PostgresType = "n8n-nodes-base.postgres"
	SheetsType   = "n8n-nodes-base.googleSheets"
)

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindDatabase,
		Type:        PostgresType,
		DisplayName: "Postgres",
		Version:     2.5,
		Category:    catalog.CategoryPersistence,
		Keywords:    []string{"database", "postgres", "sql", "insert", "table", "persist", "store", "record", "save"},
		Concepts:    []string{"save to database", "insert into table", "store record"},
		UseCases:    []string{"save the order to the database", "insert a new row in the customers table"},
		Defaults: map[string]any{
			"operation": "insert",
			"schema":    map[string]any{"__rl": true, "mode": "list", "value": "public"},
			"table":     map[string]any{"__rl": true, "mode": "name", "value": ""},
			"options":   map[string]any{},
		},
		Required: []string{"table"},
		Terminal: true,
	})
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindSpreadsheet,
		Type:        SheetsType,
		DisplayName: "Google Sheets",
		Version:     4.5,
		Category:    catalog.CategoryPersistence,
		Keywords:    []string{"sheet", "sheets", "spreadsheet", "google", "row", "append", "log"},
		Concepts:    []string{"append row", "google sheets", "log to spreadsheet"},
		UseCases:    []string{"log the result in a google sheet", "append a row to the tracking spreadsheet"},
		Defaults: map[string]any{
			"operation":  "append",
			"documentId": map[string]any{"__rl": true, "mode": "id", "value": ""},
			"sheetName":  map[string]any{"__rl": true, "mode": "name", "value": ""},
		},
		Required: []string{"documentId", "sheetName"},
		Terminal: true,
	})
}
