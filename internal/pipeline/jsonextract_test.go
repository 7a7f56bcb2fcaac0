package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_Direct(t *testing.T) {
	obj, err := ExtractJSON(`{"is_lead": true, "confidence": 0.9}`)
	require.NoError(t, err)
	assert.Equal(t, true, obj["is_lead"])
	assert.InDelta(t, 0.9, obj["confidence"].(float64), 0.001)
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "Here is the result:\n```json\n{\"title\": \"Quick sync\"}\n```\nLet me know if you need more."
	obj, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "Quick sync", obj["title"])
}

func TestExtractJSON_BareFence(t *testing.T) {
	text := "```\n{\"has_task\": false}\n```"
	obj, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, false, obj["has_task"])
}

func TestExtractJSON_BacktickObject(t *testing.T) {
	text := "The answer is `{\"amount\": 1200}` as requested."
	obj, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.InDelta(t, 1200.0, obj["amount"].(float64), 0.001)
}

func TestExtractJSON_EmbeddedInProse(t *testing.T) {
	text := `Based on the email, {"is_meeting_request": true, "confidence": 0.8} is my assessment.`
	obj, err := ExtractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, true, obj["is_meeting_request"])
}

// The brace strategy is greedy: a closing brace in trailing prose makes the
// candidate span too far and parsing fails.
func TestExtractJSON_GreedyBraceTrailingBrace(t *testing.T) {
	text := `{"is_lead": true} and note the config uses {braces} too`
	_, err := ExtractJSON(text)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := ExtractJSON("I could not find anything relevant in this email.")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractJSON_Empty(t *testing.T) {
	_, err := ExtractJSON("   ")
	assert.ErrorIs(t, err, ErrNoJSON)
}
