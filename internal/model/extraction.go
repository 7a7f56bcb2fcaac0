package model

import "strings"

// ExtractionKind is the type of entity an extraction attempt targets.
type ExtractionKind string

const (
	KindMeeting ExtractionKind = "meeting"
	KindLead    ExtractionKind = "lead"
	KindInvoice ExtractionKind = "invoice"
	KindTask    ExtractionKind = "task"
)

// ExtractionResult is the parsed model reply for one email. Produced fresh
// per attempt and consumed immediately; never persisted.
type ExtractionResult struct {
	Kind       ExtractionKind `json:"kind"`
	Confidence float64        `json:"confidence"`
	Fields     map[string]any `json:"fields"`
}

// StringField returns the named field as a trimmed string, or "" when the
// field is absent or not a string.
func (r *ExtractionResult) StringField(key string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	s, _ := r.Fields[key].(string)
	return strings.TrimSpace(s)
}

// FloatField returns the named field as a float64. Models sometimes emit
// numbers as strings; those are not coerced here.
func (r *ExtractionResult) FloatField(key string) (float64, bool) {
	if r == nil || r.Fields == nil {
		return 0, false
	}
	switch n := r.Fields[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// StringsField returns the named field as a string slice. JSON arrays decode
// as []any, so each element is asserted individually.
func (r *ExtractionResult) StringsField(key string) []string {
	if r == nil || r.Fields == nil {
		return nil
	}
	raw, ok := r.Fields[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// BoolField returns the named field as a bool, defaulting to false.
func (r *ExtractionResult) BoolField(key string) bool {
	if r == nil || r.Fields == nil {
		return false
	}
	b, _ := r.Fields[key].(bool)
	return b
}
