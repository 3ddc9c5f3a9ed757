// Package sqlite registers the SQLite dialect predicates. SQLite accepts
// double-quoted, backtick, and bracketed identifiers; double quotes are
// the canonical form used when rendering diagnostic messages.
package sqlite

import (
	"strings"

	"sqlsift/internal/dialect"
)

func init() {
	dialect.Register(dialect.SQLite, predicates{})
}

type predicates struct{}

func (predicates) Name() dialect.Name { return dialect.SQLite }

func (predicates) QuoteIdentifier(name string) string {
	name = strings.ReplaceAll(name, `"`, `""`)
	return `"` + name + `"`
}

// DistinctOnAllowed is false: SQLite has no DISTINCT ON construct.
func (predicates) DistinctOnAllowed() bool { return false }

// TableValuedFunction: SQLite has no hard-coded TVF signatures in this
// analyzer; every call degrades to a single Unknown output column.
func (predicates) TableValuedFunction(string) (dialect.TVFSignature, bool) {
	return dialect.TVFSignature{}, false
}
