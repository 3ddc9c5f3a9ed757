package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlsift/internal/diag"
)

func sampleDiags() []diag.Diagnostic {
	return []diag.Diagnostic{
		{
			Code:        diag.UnknownColumn,
			Severity:    diag.SeverityError,
			Span:        diag.Span{File: "q.sql", Line: 3, Column: 8},
			Message:     `column "naem" does not exist`,
			Suggestions: []string{"name"},
		},
	}
}

func TestNewFormatterDefaultsToText(t *testing.T) {
	f, err := NewFormatter("")
	require.NoError(t, err)
	assert.IsType(t, textFormatter{}, f)
}

func TestNewFormatterRejectsUnknown(t *testing.T) {
	_, err := NewFormatter("xml")
	assert.Error(t, err)
}

func TestTextFormatterRendersLocationAndSuggestion(t *testing.T) {
	f, err := NewFormatter("text")
	require.NoError(t, err)

	s, err := f.Format(sampleDiags())
	require.NoError(t, err)
	assert.Contains(t, s, "q.sql:3:8:")
	assert.Contains(t, s, string(diag.UnknownColumn))
	assert.Contains(t, s, "did you mean: name?")
}

func TestTextFormatterEmptyBatch(t *testing.T) {
	f, err := NewFormatter("text")
	require.NoError(t, err)

	s, err := f.Format(nil)
	require.NoError(t, err)
	assert.Equal(t, "no issues found\n", s)
}

func TestJSONFormatterSummaryCounts(t *testing.T) {
	f, err := NewFormatter("json")
	require.NoError(t, err)

	s, err := f.Format(sampleDiags())
	require.NoError(t, err)

	var payload diagnosticPayload
	require.NoError(t, json.Unmarshal([]byte(s), &payload))
	assert.Equal(t, 1, payload.Summary.Total)
	assert.Equal(t, 1, payload.Summary.Errors)
	require.Len(t, payload.Diagnostics, 1)
	assert.Equal(t, "E0002", payload.Diagnostics[0].Code)
	assert.Equal(t, []string{"name"}, payload.Diagnostics[0].Suggestions)
}
