package mysql

import (
	"database/sql"
	"strings"

	"sqlsift/internal/ddlast"
)

// introspectIndexes appends one ddlast.IndexDef per secondary index
// declared on stmt's table. The synthetic "PRIMARY" index
// information_schema always reports for a primary key is skipped
// here since introspectConstraints already recorded it as a
// ConstraintDef.
func introspectIndexes(ic *introspectCtx, stmt *ddlast.CreateTableStmt) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			i.index_name,
			i.non_unique,
			GROUP_CONCAT(c.column_name ORDER BY c.seq_in_index SEPARATOR ',')
		FROM information_schema.statistics i
		JOIN information_schema.statistics c
			ON i.table_schema = c.table_schema
			AND i.table_name = c.table_name
			AND i.index_name = c.index_name
		WHERE i.table_schema = DATABASE() AND i.table_name = ? AND i.index_name <> 'PRIMARY'
		GROUP BY i.index_name, i.non_unique
	`, stmt.Table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, nonUnique, columns sql.NullString
		if err := rows.Scan(&name, &nonUnique, &columns); err != nil {
			return err
		}

		stmt.Indexes = append(stmt.Indexes, ddlast.IndexDef{
			Name:    name.String,
			Columns: strings.Split(columns.String, ","),
			Unique:  nonUnique.String == "0",
		})
	}

	return rows.Err()
}
