// Package diag defines the Diagnostic value Analyzer produces: one
// per rule violation found during query analysis, carrying its code,
// severity, source location, message, and any "did you mean"
// suggestions. Distinct from catalog.ValidationError, which reports
// catalog-build failures rather than query-analysis findings.
package diag

// Code identifies a diagnostic rule. E0004 is reserved (spec.md) and
// intentionally has no constant.
type Code string

const (
	UnknownTable     Code = "E0001" // table-not-found
	UnknownColumn    Code = "E0002" // column-not-found
	TypeMismatch     Code = "E0003" // type-mismatch
	InsertArity      Code = "E0005" // insert-column-count-mismatch
	AmbiguousColumn  Code = "E0006" // ambiguous-column
	JoinTypeMismatch Code = "E0007" // join-type-mismatch
	ParseError       Code = "E1000" // parse-error

	// Build diagnostics (spec.md §3/§4.1): SchemaBuilder findings about
	// the DDL batch itself, rather than query-analysis findings. These
	// never appear in a suppress.Map directive or a DisabledRules set
	// built from the analyzer's wire codes above, since they're
	// reported alongside the Catalog, before any query is analyzed.
	DuplicateObject Code = "W0001" // duplicate-catalog-object, first kept
	DuplicateColumn Code = "W0002" // duplicate-column-in-table, last kept
)

// Severity is the diagnostic's reporting level.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	default:
		return "error"
	}
}

// Span locates a diagnostic in the original source text. File is the
// path or logical name of the source the caller passed to Analyzer;
// it is carried on the span (rather than only on Diagnostic) so
// Related locations pointing into a different file remain unambiguous.
type Span struct {
	File   string
	Line   int
	Column int
	Len    int
}

// Related is a secondary location referenced from a diagnostic's
// message (e.g. the CTE declaration an out-of-scope reference names).
type Related struct {
	Span    Span
	Message string
}

// Diagnostic is one finding emitted by Analyzer or SchemaBuilder.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Span     Span
	Message  string

	// Suggestions holds "did you mean" candidates (edit distance <= 2)
	// for E0001/E0002; empty otherwise.
	Suggestions []string

	Related []Related
}
