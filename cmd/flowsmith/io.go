package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Tsinling0525/flowsmith/format/n8n"
	"github.com/Tsinling0525/flowsmith/model"
)

// readInput reads a file, or stdin for "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

// render encodes v as indented JSON or YAML. YAML goes through the JSON
// form so that field names match the platform schema.
func render(v any, format string) ([]byte, error) {
	var b []byte
	var err error
	if doc, ok := v.(*model.Document); ok {
		b, err = n8n.Encode(doc)
	} else {
		b, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return nil, err
	}
	switch format {
	case "json", "":
		return append(b, '\n'), nil
	case "yaml":
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return nil, err
		}
		return yaml.Marshal(generic)
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
