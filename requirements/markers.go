package requirements

import (
	"regexp"

	"github.com/Tsinling0525/flowsmith/model"
)

// Motif identifies a structural pattern the synthesis builder handles specially.
type Motif string

const (
	MotifParallel Motif = "parallel"
	MotifSwitch   Motif = "switch"
	MotifMerge    Motif = "merge"
)

// MarkerRule flags a requirement with a motif when its text matches.
type MarkerRule struct {
	Motif   Motif
	Pattern *regexp.Regexp
}

// Markers is the ordered marker table. Every rule is tested; a requirement
// can carry more than one marker.
var Markers = []MarkerRule{
	{MotifParallel, regexp.MustCompile(`(?i)\bin\s+parallel\b|\bsimultaneously\b|\bat\s+the\s+same\s+time\b|\bconcurrently\b`)},
	{MotifSwitch, regexp.MustCompile(`(?i)\brout(?:e|es|ing|er)\b|\bswitch\b|\bdepending\s+on\b|\bbased\s+on\s+(?:the\s+)?\w+\s+(?:type|method|category|level|status|score|tier)\b|\bdecide\b|\bdecision\b`)},
	{MotifMerge, regexp.MustCompile(`(?i)\bmerge\b|\bcombine\b|\bcollect\s+(?:all\s+)?(?:the\s+)?results\b|\breconverge\b|\bjoin\s+(?:the\s+)?(?:results|branches)\b`)},
}

// MarkMotifs sets the motif flags of r from its name and description.
func MarkMotifs(r *model.Requirement) {
	text := r.Name + " " + r.Description
	for _, m := range Markers {
		if !m.Pattern.MatchString(text) {
			continue
		}
		switch m.Motif {
		case MotifParallel:
			r.IsParallel = true
		case MotifSwitch:
			r.IsSwitch = true
		case MotifMerge:
			r.IsMerge = true
		}
	}
}

var triggerLike = regexp.MustCompile(`(?i)\btrigger(?:ed|s)?\b|\border\s+received\b|\bwebhook\s+(?:receives|is\s+called|fires)\b|\bwhen\s+(?:a|an|the)\s+(?:new\s+)?\w+\s+(?:is\s+)?(?:received|submitted|created|placed|arrives)\b`)

// IsTriggerLike reports whether a step describes the event that starts the
// flow rather than a processing node.
func IsTriggerLike(text string) bool {
	return triggerLike.MatchString(text)
}
