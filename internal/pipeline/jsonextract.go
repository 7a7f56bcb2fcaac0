package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoJSON is returned when no recovery strategy finds a parsable object.
var ErrNoJSON = eris.New("pipeline: no JSON object recovered from model reply")

var (
	fencedBlockPattern   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	backtickObjectPattern = regexp.MustCompile("(?s)`(\\{.*?\\})`")
	// Greedy: first '{' through last '}'. Not nesting-safe when prose after
	// the object contains a brace; kept as-is rather than replaced with a
	// balancing scanner.
	braceObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON recovers a JSON object from model output that may wrap it in
// prose or markdown. Strategies are tried in order, each swallowing its own
// parse error:
//
//  1. the whole text as JSON
//  2. a fenced ```json (or bare ```) block
//  3. a backtick-delimited `{...}` object
//  4. the first greedy {...} substring
func ExtractJSON(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoJSON
	}

	if obj, ok := tryParse(text); ok {
		return obj, nil
	}

	if m := fencedBlockPattern.FindStringSubmatch(text); m != nil {
		if obj, ok := tryParse(m[1]); ok {
			return obj, nil
		}
	}

	if m := backtickObjectPattern.FindStringSubmatch(text); m != nil {
		if obj, ok := tryParse(m[1]); ok {
			return obj, nil
		}
	}

	if m := braceObjectPattern.FindString(text); m != "" {
		if obj, ok := tryParse(m); ok {
			return obj, nil
		}
	}

	return nil, ErrNoJSON
}

func tryParse(candidate string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
