package validate

import (
	"regexp"

	"github.com/Tsinling0525/flowsmith/catalog"
	"github.com/Tsinling0525/flowsmith/model"
)

// completionWords are name fragments suggesting a node concludes its branch.
var completionWords = regexp.MustCompile(`(?i)\b(?:` +
	`sav(?:e|es|ed|ing)|stor(?:e|es|ed|ing)|persist(?:s|ed|ing)?|record(?:s|ed|ing)?|archiv(?:e|es|ed|ing)|` +
	`notif(?:y|ies|ied|ication|ications)|send(?:s|ing)?|sent|email(?:s|ed)?|` +
	`log(?:s|ged|ging)?|writ(?:e|es|ing|ten)|respond(?:s|ed)?|response|` +
	`complet(?:e|es|ed|ion)|finish(?:es|ed)?|done|end)\b`)

// IsCompletion reports whether a node logically concludes a branch: its
// catalog entry is terminal (persistence write, notification, file write,
// response) or its name contains a completion word.
func IsCompletion(n model.Node) bool {
	if catalog.Classify(n.Type).Terminal {
		return true
	}
	return completionWords.MatchString(n.Name)
}
