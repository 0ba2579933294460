// Package requirements parses a cleaned task description into branches of
// node requirements.
package requirements

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Tsinling0525/flowsmith/model"
	"github.com/Tsinling0525/flowsmith/tracing"
)

const (
	GrammarBranches = "branches"
	GrammarSteps    = "steps"

	// MaxRequirements bounds the number of requirements kept per branch.
	MaxRequirements = 200
)

var (
	branchHeader = regexp.MustCompile(`(?i)^[ \t#*]*branch\s+(\d+)\s*[:.\-–]\s*(.*)$`)
	triggerField = regexp.MustCompile(`(?i)^[ \t\-*#]*trigger\s*\**\s*:\s*\**\s*(.*)$`)
	flowHeader   = regexp.MustCompile(`(?i)^[ \t\-*#]*processing\s+flow\s*\**\s*:\s*\**\s*(.*)$`)
	numbered     = regexp.MustCompile(`^[ \t]*(?:\*\*)?(\d{1,3})[.)](?:\*\*)?\s+(.+)$`)
	stepLine     = regexp.MustCompile(`(?i)^[ \t#*]*(?:step\s+)?(\d{1,3})\s*[.):]\s*(.*)$`)
	subField     = regexp.MustCompile(`(?i)^[ \t\-*]*(node\s*type|node|description|purpose)\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.*)$`)
	sectionLine  = regexp.MustCompile(`^[^ \t\-*\d].*:\s*$`)
)

// Extractor turns text into a requirement tree.
type Extractor struct {
	Tracer tracing.Tracer
}

// Extract is a convenience wrapper around Extractor.
func Extract(text string, t tracing.Tracer) model.RequirementTree {
	return (&Extractor{Tracer: t}).Extract(text)
}

// Extract tries the branch grammar, then the numbered-step grammar. When
// neither yields a branch the tree is empty.
func (x *Extractor) Extract(text string) model.RequirementTree {
	tr := tracing.OrNop(x.Tracer)
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	if branches := parseBranches(lines); len(branches) > 0 {
		tr.Record(tracing.Decision{Stage: tracing.StageExtract, Rule: GrammarBranches, Detail: strconv.Itoa(len(branches)) + " branches"})
		return model.RequirementTree{Grammar: GrammarBranches, Branches: finish(branches, tr)}
	}
	if branch, ok := parseSteps(lines); ok {
		tr.Record(tracing.Decision{Stage: tracing.StageExtract, Rule: GrammarSteps, Detail: strconv.Itoa(len(branch.Requirements)) + " steps"})
		return model.RequirementTree{Grammar: GrammarSteps, Branches: finish([]model.Branch{branch}, tr)}
	}
	tr.Record(tracing.Decision{Stage: tracing.StageExtract, Rule: "no-grammar", Fallback: true})
	return model.RequirementTree{}
}

func parseBranches(lines []string) []model.Branch {
	var (
		out    []model.Branch
		cur    *model.Branch
		inFlow bool
	)
	// A header without a processing flow does not make a branch.
	flush := func() {
		if cur != nil && len(cur.Requirements) > 0 {
			out = append(out, *cur)
		}
	}
	for _, line := range lines {
		if m := branchHeader.FindStringSubmatch(line); m != nil {
			flush()
			id, _ := strconv.Atoi(m[1])
			cur = &model.Branch{ID: id, Title: cleanText(m[2])}
			inFlow = false
			continue
		}
		if cur == nil {
			continue
		}
		if m := triggerField.FindStringSubmatch(line); m != nil && !inFlow {
			cur.Trigger = cleanText(m[1])
			continue
		}
		if m := flowHeader.FindStringSubmatch(line); m != nil {
			inFlow = true
			continue
		}
		if !inFlow {
			continue
		}
		if m := numbered.FindStringSubmatch(line); m != nil {
			if len(cur.Requirements) < MaxRequirements {
				cur.Requirements = append(cur.Requirements, newRequirement(m[2], cur.ID))
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case sectionLine.MatchString(line):
			inFlow = false
		case len(cur.Requirements) > 0:
			last := &cur.Requirements[len(cur.Requirements)-1]
			last.Description = strings.TrimSpace(last.Description + " " + cleanText(trimmed))
		}
	}
	flush()
	return out
}

func parseSteps(lines []string) (model.Branch, bool) {
	branch := model.Branch{ID: 1}
	var cur *model.Requirement
	var hasDesc bool
	for _, line := range lines {
		if m := triggerField.FindStringSubmatch(line); m != nil && cur == nil {
			branch.Trigger = cleanText(m[1])
			continue
		}
		if m := subField.FindStringSubmatch(line); m != nil && cur != nil {
			val := cleanText(m[2])
			switch strings.ToLower(strings.Join(strings.Fields(m[1]), " ")) {
			case "node type", "nodetype", "node":
				cur.Type = val
			case "description", "purpose":
				if !hasDesc {
					cur.Description = val
					hasDesc = true
				} else {
					cur.Description = strings.TrimSpace(cur.Description + " " + val)
				}
			}
			continue
		}
		if m := stepLine.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[2]) != "" {
			if len(branch.Requirements) >= MaxRequirements {
				break
			}
			branch.Requirements = append(branch.Requirements, newRequirement(m[2], 1))
			cur = &branch.Requirements[len(branch.Requirements)-1]
			hasDesc = false
			continue
		}
	}
	return branch, len(branch.Requirements) > 0
}

// finish elides trigger-like first steps and sets motif markers.
func finish(branches []model.Branch, tr tracing.Tracer) []model.Branch {
	for i := range branches {
		b := &branches[i]
		if len(b.Requirements) > 0 {
			first := b.Requirements[0]
			if IsTriggerLike(first.Name + " " + first.Description + " " + first.Type) {
				if b.Trigger == "" {
					b.Trigger = strings.TrimSpace(first.Description + " " + first.Type)
				}
				b.Requirements = b.Requirements[1:]
				tr.Record(tracing.Decision{Stage: tracing.StageExtract, Rule: "elide-trigger-step", Subject: first.Name})
			}
		}
		for j := range b.Requirements {
			b.Requirements[j].BranchID = b.ID
			MarkMotifs(&b.Requirements[j])
		}
	}
	return branches
}

// newRequirement splits "Name - description" / "Name: description" style
// step text. Without a separator the name is derived from the first words.
func newRequirement(text string, branchID int) model.Requirement {
	text = cleanText(text)
	name, desc := text, text
	for _, sep := range []string{" - ", " – ", " — ", ": "} {
		if i := strings.Index(text, sep); i > 0 {
			left := strings.TrimSpace(text[:i])
			if len(strings.Fields(left)) <= 6 {
				name = left
				desc = strings.TrimSpace(text[i+len(sep):])
				if desc == "" {
					desc = left
				}
				return model.Requirement{Name: name, Description: desc, BranchID: branchID}
			}
			break
		}
	}
	return model.Requirement{Name: deriveName(text), Description: desc, BranchID: branchID}
}

func deriveName(text string) string {
	words := strings.Fields(text)
	if len(words) > 4 {
		words = words[:4]
	}
	for i, w := range words {
		w = strings.Trim(w, ".,;:!?()[]\"'")
		if w == "" {
			continue
		}
		r := []rune(w)
		words[i] = string(unicode.ToUpper(r[0])) + string(r[1:])
	}
	name := strings.TrimSpace(strings.Join(words, " "))
	if name == "" {
		return "Step"
	}
	return name
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.Trim(s, " \t`*")
	return strings.Join(strings.Fields(s), " ")
}
