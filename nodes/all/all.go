// Package all registers every node type of the catalog.
package all

import (
	_ "github.com/Tsinling0525/flowsmith/nodes/code"
	_ "github.com/Tsinling0525/flowsmith/nodes/fs"
	_ "github.com/Tsinling0525/flowsmith/nodes/http"
	_ "github.com/Tsinling0525/flowsmith/nodes/llm"
	_ "github.com/Tsinling0525/flowsmith/nodes/logic"
	_ "github.com/Tsinling0525/flowsmith/nodes/merge"
	_ "github.com/Tsinling0525/flowsmith/nodes/notify"
	_ "github.com/Tsinling0525/flowsmith/nodes/respond"
	_ "github.com/Tsinling0525/flowsmith/nodes/store"
	_ "github.com/Tsinling0525/flowsmith/nodes/trigger"
)
