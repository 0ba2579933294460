package resolver

import (
	"strings"
	"unicode"

	"github.com/Tsinling0525/flowsmith/catalog"
)

const (
	weightExact   = 10
	weightPartial = 5
	weightStem    = 3

	// keywordSaturation is the number of exact keyword hits that earns the
	// full keyword score.
	keywordSaturation = 3

	partialPrefixRatio = 0.7
	useCaseRatio       = 0.6
)

// text is a lowercased description with its word set.
type text struct {
	raw   string
	words []string
	set   map[string]bool
	stems map[string]bool
}

func newText(s string) text {
	raw := strings.ToLower(s)
	words := tokenize(raw)
	set := make(map[string]bool, len(words))
	stems := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
		stems[stem(w)] = true
	}
	return text{raw: " " + strings.Join(words, " ") + " ", words: words, set: set, stems: stems}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// keywordScore weighs exact substring hits, prefix partial hits and stem
// hits, normalized to 0..100.
func keywordScore(t text, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	total := 0
	for _, kw := range keywords {
		total += keywordHit(t, strings.ToLower(kw))
	}
	denom := keywordSaturation
	if len(keywords) < denom {
		denom = len(keywords)
	}
	score := float64(total) * 100 / float64(denom*weightExact)
	if score > 100 {
		score = 100
	}
	return score
}

func keywordHit(t text, kw string) int {
	// Short keywords ("if", "set", "api") must match a whole word; as plain
	// substrings they hit inside unrelated words.
	if len([]rune(kw)) <= 3 {
		if t.set[kw] {
			return weightExact
		}
	} else if strings.Contains(t.raw, kw) {
		return weightExact
	}
	need := int(float64(len(kw))*partialPrefixRatio + 0.999)
	if len(kw) >= 4 {
		for _, w := range t.words {
			if commonPrefix(w, kw) >= need {
				return weightPartial
			}
		}
	}
	if t.stems[stem(kw)] {
		return weightStem
	}
	return 0
}

// conceptScore awards 100/|concepts| for each concept whose words are all present.
func conceptScore(t text, concepts []string) float64 {
	if len(concepts) == 0 {
		return 0
	}
	per := 100 / float64(len(concepts))
	score := 0.0
	for _, c := range concepts {
		words := tokenize(strings.ToLower(c))
		if len(words) == 0 {
			continue
		}
		all := true
		for _, w := range words {
			if !t.set[w] {
				all = false
				break
			}
		}
		if all {
			score += per
		}
	}
	return score
}

// useCaseScore awards 100/|useCases| for each use case with at least 60% of
// its words present.
func useCaseScore(t text, useCases []string) float64 {
	if len(useCases) == 0 {
		return 0
	}
	per := 100 / float64(len(useCases))
	score := 0.0
	for _, u := range useCases {
		words := tokenize(strings.ToLower(u))
		if len(words) == 0 {
			continue
		}
		hit := 0
		for _, w := range words {
			if t.set[w] {
				hit++
			}
		}
		if float64(hit)/float64(len(words)) >= useCaseRatio {
			score += per
		}
	}
	return score
}

// combined is the weighted average of the three scores, scaled to 0..1.
func combined(t text, e catalog.Entry) float64 {
	k := keywordScore(t, e.Keywords)
	c := conceptScore(t, e.Concepts)
	u := useCaseScore(t, e.UseCases)
	s := (0.5*k + 0.3*c + 0.2*u) / 100
	return clamp01(s)
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

var suffixes = []string{"ations", "ation", "ings", "ing", "ied", "ies", "ers", "er", "ed", "es", "s"}

// stem strips one common English suffix.
func stem(w string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(w, suf) && len(w)-len(suf) >= 3 {
			return w[:len(w)-len(suf)]
		}
	}
	return w
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
