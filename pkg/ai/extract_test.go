package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPayloadDirect(t *testing.T) {
	payload, err := ExtractPayload(`{"overall_score": 80, "feedback": "good"}`)
	require.NoError(t, err)
	require.Equal(t, 80.0, payload["overall_score"])
}

func TestExtractPayloadEmbedded(t *testing.T) {
	text := "Here is the grading result:\n```json\n{\"overall_score\": 70}\n```\nDone."
	payload, err := ExtractPayload(text)
	require.NoError(t, err)
	require.Equal(t, 70.0, payload["overall_score"])
}

func TestExtractPayloadBracesInsideStrings(t *testing.T) {
	text := `noise {"feedback": "use {braces} carefully", "overall_score": 55} trailing`
	payload, err := ExtractPayload(text)
	require.NoError(t, err)
	require.Equal(t, "use {braces} carefully", payload["feedback"])
}

func TestExtractPayloadNested(t *testing.T) {
	text := `{"overall_score": 60, "details": {"Method": {"score": 0.5}}}`
	payload, err := ExtractPayload(text)
	require.NoError(t, err)
	details, ok := payload["details"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, details, "Method")
}

func TestExtractPayloadFailure(t *testing.T) {
	_, err := ExtractPayload("")
	require.Error(t, err)

	_, err = ExtractPayload("no json here at all")
	require.Error(t, err)

	_, err = ExtractPayload("{broken json")
	require.Error(t, err)
}
