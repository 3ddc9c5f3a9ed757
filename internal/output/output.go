// Package output formats a batch of diagnostics for the CLI. It
// mirrors the teacher's internal/output package (a Format enum, a
// NewFormatter constructor switching on a lower-cased name string,
// one formatter type per format) retargeted from rendering schema
// diffs/migrations to rendering diag.Diagnostic lists.
package output

import (
	"fmt"
	"strings"

	"sqlsift/internal/diag"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter renders a diagnostic batch to a string.
type Formatter interface {
	Format(diags []diag.Diagnostic) (string, error)
}

// NewFormatter creates a Formatter for name. An empty name defaults to
// text.
func NewFormatter(name string) (Formatter, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case "", FormatText:
		return textFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'text' or 'json'", name)
	}
}
