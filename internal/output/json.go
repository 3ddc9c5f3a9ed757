package output

import (
	"encoding/json"

	"sqlsift/internal/diag"
)

type jsonFormatter struct{}

type diagnosticSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Hints    int `json:"hints"`
	Total    int `json:"total"`
}

type relatedJSON struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

type diagnosticJSON struct {
	Code        string        `json:"code"`
	Severity    string        `json:"severity"`
	File        string        `json:"file"`
	Line        int           `json:"line"`
	Column      int           `json:"column"`
	Message     string        `json:"message"`
	Suggestions []string      `json:"suggestions,omitempty"`
	Related     []relatedJSON `json:"related,omitempty"`
}

type diagnosticPayload struct {
	Format      string            `json:"format"`
	Summary     diagnosticSummary `json:"summary"`
	Diagnostics []diagnosticJSON  `json:"diagnostics"`
}

func (jsonFormatter) Format(diags []diag.Diagnostic) (string, error) {
	payload := diagnosticPayload{
		Format:      string(FormatJSON),
		Diagnostics: make([]diagnosticJSON, 0, len(diags)),
	}

	for _, d := range diags {
		switch d.Severity {
		case diag.SeverityWarning:
			payload.Summary.Warnings++
		case diag.SeverityHint:
			payload.Summary.Hints++
		default:
			payload.Summary.Errors++
		}

		var related []relatedJSON
		for _, rel := range d.Related {
			related = append(related, relatedJSON{
				File: rel.Span.File, Line: rel.Span.Line, Column: rel.Span.Column, Message: rel.Message,
			})
		}

		payload.Diagnostics = append(payload.Diagnostics, diagnosticJSON{
			Code:        string(d.Code),
			Severity:    d.Severity.String(),
			File:        d.Span.File,
			Line:        d.Span.Line,
			Column:      d.Span.Column,
			Message:     d.Message,
			Suggestions: d.Suggestions,
			Related:     related,
		})
	}
	payload.Summary.Total = len(diags)

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
