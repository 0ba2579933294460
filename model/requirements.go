package model

// Requirement is one free-text node requirement extracted from a task description.
type Requirement struct {
	Name        string
	Description string
	// Type is an explicit node type hint, or the type inferred by the resolver.
	Type       string
	BranchID   int
	IsParallel bool
	IsSwitch   bool
	IsMerge    bool
}

// Branch is an ordered sequence of requirements sharing one trigger.
type Branch struct {
	ID           int
	Title        string
	Trigger      string
	Requirements []Requirement
}

// RequirementTree is the extractor output. An empty Branches slice is the
// non-throwing "nothing recognised" result.
type RequirementTree struct {
	Grammar  string
	Branches []Branch
}

func (t RequirementTree) Empty() bool { return len(t.Branches) == 0 }

// Alternative is a runner-up node type candidate.
type Alternative struct {
	NodeType   string  `json:"nodeType"`
	Confidence float64 `json:"confidence"`
}

// MatchResult is the outcome of node type resolution.
type MatchResult struct {
	NodeType     string        `json:"nodeType"`
	Confidence   float64       `json:"confidence"`
	Reasoning    string        `json:"reasoning"`
	Method       string        `json:"method"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}
