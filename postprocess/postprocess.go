// Package postprocess holds hooks that correct quirks of the upstream
// text-generation source. The engine calls the configured hook once, last.
package postprocess

import (
	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/tracing"
)

// Hook receives the repaired document and returns the document to emit.
type Hook func(*model.Document) *model.Document

// Identity returns the document unchanged.
func Identity(doc *model.Document) *model.Document { return doc }

// Chain runs hooks left to right. Nil hooks are skipped.
func Chain(hooks ...Hook) Hook {
	return func(doc *model.Document) *model.Document {
		for _, h := range hooks {
			if h != nil {
				doc = h(doc)
			}
		}
		return doc
	}
}

// codeFields are parameter keys some generators emit beside "parameters"
// instead of inside it.
var codeFields = []string{"jsCode", "pythonCode", "functionCode", "code"}

// HoistCodeFields moves code fields found outside a node's parameters into
// them. A non-default value already present in parameters wins.
func HoistCodeFields(tr tracing.Tracer) Hook {
	tr = tracing.OrNop(tr)
	return func(doc *model.Document) *model.Document {
		if doc == nil {
			return nil
		}
		hoist(doc, tr)
		return doc
	}
}

func hoist(doc *model.Document, tr tracing.Tracer) {
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		for _, key := range codeFields {
			v, ok := n.Extra[key]
			if !ok {
				continue
			}
			delete(n.Extra, key)
			if n.Parameters == nil {
				n.Parameters = map[string]any{}
			}
			if cur, exists := n.Parameters[key]; !exists || cur == "" || cur == defaultCode {
				n.Parameters[key] = v
				tr.Record(tracing.Decision{Stage: tracing.StagePostProcess, Rule: "hoist-code-field", Subject: n.Name, Detail: key})
			}
		}
	}
}

const defaultCode = "return $input.all();"

// Default is the hook used when none is configured.
var Default = HoistCodeFields(nil)
