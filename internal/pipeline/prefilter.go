package pipeline

import (
	_ "embed"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/relaymind/autopilot/internal/model"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// prefilterKeywords maps each extraction kind to the phrases that make an
// email worth a model call.
var prefilterKeywords = mustLoadKeywords()

func mustLoadKeywords() map[model.ExtractionKind][]string {
	var raw map[string][]string
	if err := yaml.Unmarshal(keywordsYAML, &raw); err != nil {
		panic("pipeline: embedded keywords.yaml is invalid: " + err.Error())
	}
	table := make(map[model.ExtractionKind][]string, len(raw))
	for kind, words := range raw {
		lowered := make([]string, len(words))
		for i, w := range words {
			lowered[i] = strings.ToLower(w)
		}
		table[model.ExtractionKind(kind)] = lowered
	}
	return table
}

var (
	// 3pm, 10:30am, 15:00
	timePattern = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\b|\b\d{1,2}\s*(?:am|pm)\b`)
	// tomorrow, next Monday, ISO dates, 3/14
	datePattern = regexp.MustCompile(`(?i)\btoday\b|\btomorrow\b|\bnext\s+(?:week|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}\b`)

	noReplyPattern = regexp.MustCompile(`(?i)no-?reply`)
)

// Prefilter is the cheap textual screen applied before any model call. It is
// a pure predicate: unmatched text fails closed and the email is skipped.
type Prefilter struct {
	minBodyChars int
}

// NewPrefilter creates a prefilter. minBodyChars guards the lead/invoice/task
// kinds against near-empty bodies.
func NewPrefilter(minBodyChars int) *Prefilter {
	if minBodyChars <= 0 {
		minBodyChars = 30
	}
	return &Prefilter{minBodyChars: minBodyChars}
}

// ShouldExtract decides whether the email merits an extraction attempt for
// the given kind.
//
// Meetings pass on a keyword hit, or on a time pattern and a date pattern
// appearing together. The other kinds require a keyword hit, a body of at
// least minBodyChars, and a sender that isn't an automated no-reply address.
func (f *Prefilter) ShouldExtract(kind model.ExtractionKind, from, subject, body string) bool {
	text := strings.ToLower(subject + "\n" + body)

	if kind == model.KindMeeting {
		if containsAny(text, prefilterKeywords[kind]) {
			return true
		}
		return timePattern.MatchString(text) && datePattern.MatchString(text)
	}

	if noReplyPattern.MatchString(from) {
		return false
	}
	if len(body) < f.minBodyChars {
		return false
	}
	return containsAny(text, prefilterKeywords[kind])
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
