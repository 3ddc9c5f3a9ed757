package output

import (
	"fmt"
	"strings"

	"sqlsift/internal/diag"
)

type textFormatter struct{}

// Format renders one "file:line:col: severity CODE: message" line per
// diagnostic, plus an indented "did you mean" line for any
// suggestions. An empty batch renders a single summary line.
func (textFormatter) Format(diags []diag.Diagnostic) (string, error) {
	if len(diags) == 0 {
		return "no issues found\n", nil
	}

	var sb strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&sb, "%s:%d:%d: %s %s: %s\n",
			d.Span.File, d.Span.Line, d.Span.Column, d.Severity, d.Code, d.Message)
		if len(d.Suggestions) > 0 {
			fmt.Fprintf(&sb, "  did you mean: %s?\n", strings.Join(d.Suggestions, ", "))
		}
		for _, rel := range d.Related {
			fmt.Fprintf(&sb, "  %s:%d:%d: %s\n", rel.Span.File, rel.Span.Line, rel.Span.Column, rel.Message)
		}
	}
	fmt.Fprintf(&sb, "%d issue(s) found\n", len(diags))
	return sb.String(), nil
}
