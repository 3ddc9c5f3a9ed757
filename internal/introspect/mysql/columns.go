package mysql

import (
	"database/sql"
	"strings"

	"sqlsift/internal/ddlast"
)

// introspectColumns appends one ddlast.ColumnDef per column of stmt's
// table, in ordinal position order. auto_increment is folded back
// into RawType (as a real CREATE TABLE dump would render it) rather
// than tracked as a separate flag, since ddlast.ColumnDef carries only
// the shape SchemaBuilder's type lattice needs.
func introspectColumns(ic *introspectCtx, stmt *ddlast.CreateTableStmt) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT column_name, column_type, is_nullable, extra
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position
	`, stmt.Table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, colType, nullable, extra sql.NullString
		if err := rows.Scan(&name, &colType, &nullable, &extra); err != nil {
			return err
		}

		rawType := colType.String
		if strings.Contains(extra.String, "auto_increment") {
			rawType += " AUTO_INCREMENT"
		}

		stmt.Columns = append(stmt.Columns, ddlast.ColumnDef{
			Name:     name.String,
			RawType:  rawType,
			Nullable: nullable.String == "YES",
		})
	}

	return rows.Err()
}
