package model

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Category string

const (
	CategoryStructure    Category = "structure"
	CategoryTrigger      Category = "trigger"
	CategoryConnectivity Category = "connectivity"
	CategoryParameters   Category = "parameters"
	CategorySwitch       Category = "switch"
	CategoryType         Category = "type"
	CategoryCycle        Category = "cycle"
)

// ValidationIssue is a single finding of the structural validator.
type ValidationIssue struct {
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	Message     string   `json:"message"`
	Node        string   `json:"node,omitempty"`
	Autofixable bool     `json:"autofixable"`
}
