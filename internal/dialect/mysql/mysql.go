// Package mysql registers the MySQL dialect predicates. Identifier
// quoting is grounded on the teacher's internal/dialect/mysql/mysql.go
// QuoteIdentifier, which backtick-escapes by doubling embedded backticks.
package mysql

import (
	"strings"

	"sqlsift/internal/dialect"
)

func init() {
	dialect.Register(dialect.MySQL, predicates{})
}

type predicates struct{}

func (predicates) Name() dialect.Name { return dialect.MySQL }

func (predicates) QuoteIdentifier(name string) string {
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// DistinctOnAllowed is always false: MySQL has no DISTINCT ON construct.
func (predicates) DistinctOnAllowed() bool { return false }

// TableValuedFunction: MySQL has no hard-coded TVF signatures in this
// analyzer; every call degrades to a single Unknown output column.
func (predicates) TableValuedFunction(string) (dialect.TVFSignature, bool) {
	return dialect.TVFSignature{}, false
}
