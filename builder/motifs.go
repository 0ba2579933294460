package builder

import (
	"regexp"
	"strings"

	"github.com/Tsinling0525/flowsmith/model"
)

// alternativeGroup is a family of mutually exclusive named alternatives.
// Contiguous requirements naming distinct members of one group fan out in
// parallel.
type alternativeGroup struct {
	name    string
	members []alternative
}

type alternative struct {
	label   string
	pattern *regexp.Regexp
}

func alt(label, pattern string) alternative {
	return alternative{label: label, pattern: regexp.MustCompile(`(?i)\b(?:` + pattern + `)\b`)}
}

// word is alt for short names that also occur as hyphenated suffixes
// ("follow-ups"); the name must start the text or follow a non-hyphen
// separator.
func word(label, pattern string) alternative {
	return alternative{label: label, pattern: regexp.MustCompile(`(?i)(?:^|[^\w-])(?:` + pattern + `)\b`)}
}

var alternativeGroups = []alternativeGroup{
	{"payment", []alternative{
		alt("Stripe", `stripe`),
		alt("PayPal", `paypal`),
		alt("Credit Card", `credit\s+cards?|card\s+payments?`),
		alt("Bank Transfer", `bank\s+transfers?|wire\s+transfers?`),
		alt("Crypto", `crypto(?:currency)?|bitcoin`),
	}},
	{"notification", []alternative{
		alt("Email", `e-?mails?`),
		alt("Slack", `slack`),
		alt("SMS", `sms|text\s+messages?`),
		alt("Teams", `teams`),
		alt("Discord", `discord`),
		alt("Telegram", `telegram`),
	}},
	{"shipping", []alternative{
		alt("FedEx", `fedex`),
		word("UPS", `ups`),
		alt("DHL", `dhl`),
		alt("USPS", `usps`),
	}},
}

// alternativesIn returns, per group, the labels of the members text mentions.
func alternativesIn(text string) map[string][]string {
	out := map[string][]string{}
	for _, g := range alternativeGroups {
		for _, m := range g.members {
			if m.pattern.MatchString(text) {
				out[g.name] = append(out[g.name], m.label)
			}
		}
	}
	return out
}

// alternativeOf returns the group and member a requirement names when it
// names exactly one member of a group.
func alternativeOf(r model.Requirement) (group, label string) {
	found := alternativesIn(r.Name + " " + r.Description)
	for _, g := range alternativeGroups {
		if labels := found[g.name]; len(labels) == 1 {
			return g.name, labels[0]
		}
	}
	return "", ""
}

// parallelGroup returns the sibling requirements starting at i that fan out
// in parallel, and how many input requirements they consume.
func parallelGroup(reqs []model.Requirement, i int) ([]model.Requirement, int) {
	if reqs[i].IsSwitch {
		return nil, 0
	}
	// Distinct alternatives of one group.
	if group, first := alternativeOf(reqs[i]); group != "" {
		used := map[string]bool{first: true}
		j := i + 1
		for ; j < len(reqs) && !reqs[j].IsSwitch && !reqs[j].IsMerge; j++ {
			g, label := alternativeOf(reqs[j])
			if g != group || used[label] {
				break
			}
			used[label] = true
		}
		if j-i >= 2 {
			return reqs[i:j], j - i
		}
	}
	// Explicitly parallel neighbours.
	j := i
	for j < len(reqs) && reqs[j].IsParallel && !reqs[j].IsSwitch && !reqs[j].IsMerge {
		j++
	}
	if j-i >= 2 {
		return reqs[i:j], j - i
	}
	// One parallel requirement naming several alternatives.
	if reqs[i].IsParallel {
		found := alternativesIn(reqs[i].Name + " " + reqs[i].Description)
		for _, g := range alternativeGroups {
			labels := found[g.name]
			if len(labels) < 2 {
				continue
			}
			sibs := make([]model.Requirement, 0, len(labels))
			for _, l := range labels {
				r := reqs[i]
				r.Name = r.Name + " (" + l + ")"
				r.Description = l + ": " + r.Description
				r.Type = ""
				r.IsParallel = false
				sibs = append(sibs, r)
			}
			return sibs, 1
		}
	}
	return nil, 0
}

type labelSet struct {
	pattern *regexp.Regexp
	labels  []string
	field   string
}

// switchLabelSets infer route labels from category keywords.
var switchLabelSets = []labelSet{
	{regexp.MustCompile(`(?i)\bpayments?\b|\bpay\b|\bcard\b|\bpaypal\b`), []string{"Credit Card", "PayPal", "Bank Transfer"}, "paymentMethod"},
	{regexp.MustCompile(`(?i)\bshipping\b|\bcarriers?\b|\bshipments?\b|\bdelivery\b`), []string{"FedEx", "UPS", "DHL"}, "carrier"},
	{regexp.MustCompile(`(?i)\brisk\b|\bfraud\b`), []string{"Low", "Medium", "High"}, "riskLevel"},
}

func switchLabels(text string) ([]string, string) {
	for _, s := range switchLabelSets {
		if s.pattern.MatchString(text) {
			return append([]string(nil), s.labels...), s.field
		}
	}
	return []string{"Case 1", "Case 2"}, "route"
}

func switchRules(labels []string, field string) []any {
	values := make([]any, len(labels))
	for k, l := range labels {
		values[k] = map[string]any{
			"conditions": map[string]any{
				"options": map[string]any{"caseSensitive": false},
				"conditions": []any{map[string]any{
					"leftValue":  "={{ $json." + field + " }}",
					"rightValue": strings.ToLower(l),
					"operator":   map[string]any{"type": "string", "operation": "equals"},
				}},
				"combinator": "and",
			},
			"renameOutput": true,
			"outputKey":    l,
		}
	}
	return values
}
