// Package analyzer implements the Analyzer (spec.md §4.6): the single
// entry point that runs NameResolver/TypeResolver over a batch of
// query statements against a Catalog, then applies rule disabling,
// suppression-comment filtering, stable sorting, and max-errors
// truncation before returning the final diagnostic list.
package analyzer

import (
	"context"
	"sort"

	"sqlsift/internal/catalog"
	"sqlsift/internal/diag"
	"sqlsift/internal/dialect"
	"sqlsift/internal/queryast"
	"sqlsift/internal/resolve"
	"sqlsift/internal/scope"
	"sqlsift/internal/suppress"
)

// Options configures one Analyze call (spec.md §4.6).
type Options struct {
	Dialect       dialect.Predicates
	DisabledRules map[diag.Code]bool
	MaxErrors     int // 0 means unlimited
	Suppressions  *suppress.Map
}

// Analyze runs NameResolver+TypeResolver over statements against db,
// filters and sorts the result, and returns the final diagnostic
// list. file is stamped onto every diagnostic's span for multi-file
// callers; statements is walked in order, checking ctx for
// cancellation between each (spec.md §5's cooperative cancellation).
func Analyze(ctx context.Context, db *catalog.Database, file string, statements []queryast.Statement, opts Options) []diag.Diagnostic {
	var all []diag.Diagnostic

	for _, stmt := range statements {
		select {
		case <-ctx.Done():
			return finalize(all, file, opts)
		default:
		}

		r := resolve.New(db, opts.Dialect)
		stack := scope.NewStack()
		r.ResolveStatement(stack, stmt)
		all = append(all, r.Diagnostics()...)
	}

	return finalize(all, file, opts)
}

func finalize(diags []diag.Diagnostic, file string, opts Options) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if opts.DisabledRules != nil && opts.DisabledRules[d.Code] {
			continue
		}
		if d.Span.File == "" {
			d.Span.File = file
		}
		out = append(out, d)
	}

	if opts.Suppressions != nil {
		out = opts.Suppressions.Filter(out)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Span.File != b.Span.File {
			return a.Span.File < b.Span.File
		}
		if a.Span.Line != b.Span.Line {
			return a.Span.Line < b.Span.Line
		}
		if a.Span.Column != b.Span.Column {
			return a.Span.Column < b.Span.Column
		}
		return a.Code < b.Code
	})

	if opts.MaxErrors > 0 && len(out) > opts.MaxErrors {
		out = out[:opts.MaxErrors]
	}

	return out
}
