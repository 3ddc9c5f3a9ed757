// Package postgresql registers the PostgreSQL dialect predicates: double-
// quoted identifier escaping, DISTINCT ON support, and the one hard-coded
// table-valued function (generate_series) called out in spec.md §9's
// open-question resolution.
package postgresql

import (
	"strings"

	"sqlsift/internal/dialect"
)

func init() {
	dialect.Register(dialect.PostgreSQL, predicates{})
}

type predicates struct{}

func (predicates) Name() dialect.Name { return dialect.PostgreSQL }

func (predicates) QuoteIdentifier(name string) string {
	name = strings.ReplaceAll(name, `"`, `""`)
	return `"` + name + `"`
}

func (predicates) DistinctOnAllowed() bool { return true }

func (predicates) TableValuedFunction(name string) (dialect.TVFSignature, bool) {
	if strings.ToLower(name) == "generate_series" {
		return dialect.TVFSignature{Columns: []string{"value"}}, true
	}
	return dialect.TVFSignature{}, false
}
