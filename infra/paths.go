package infra

import (
	"os"
	"path/filepath"
)

// DefaultDataDir is used when no data directory is configured.
const DefaultDataDir = "data"

func ensureDir(path string) error { return os.MkdirAll(path, 0o755) }

// WorkflowsDir is the directory storing workflow JSON files.
func WorkflowsDir(dataDir string) string {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return filepath.Join(dataDir, "workflows")
}
