package fs

import "github.com/Tsinling0525/flowsmith/catalog"

const (
	ReadType  = "n8n-nodes-base.readBinaryFile"
	WriteType = "n8n-nodes-base.writeBinaryFile"
)

func init() {
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindReadFile,
		Type:        ReadType,
		DisplayName: "Read Binary File",
		Version:     1,
		Category:    catalog.CategoryFile,
		Keywords:    []string{"read", "load", "open", "file", "disk", "csv"},
		Concepts:    []string{"read file", "load file", "open csv"},
		UseCases:    []string{"load the csv file from disk"},
		Defaults: map[string]any{
			"filePath": "",
		},
		Required: []string{"filePath"},
	})
	catalog.Register(catalog.Entry{
		Kind:        catalog.KindWriteFile,
		Type:        WriteType,
		DisplayName: "Write Binary File",
		Version:     1,
		Category:    catalog.CategoryFile,
		Keywords:    []string{"write", "export", "file", "disk", "pdf", "archive"},
		Concepts:    []string{"write file", "export to file", "save file"},
		UseCases:    []string{"write the invoice pdf to disk", "export the report as a file"},
		Defaults: map[string]any{
			"fileName":         "",
			"dataPropertyName": "data",
		},
		Required: []string{"fileName"},
		Terminal: true,
	})
}
