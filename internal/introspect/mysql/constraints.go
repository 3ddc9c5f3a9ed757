package mysql

import (
	"database/sql"

	"sqlsift/internal/ddlast"
)

// introspectConstraints appends one ddlast.ConstraintDef per primary
// key, unique, and foreign key constraint declared on stmt's table.
// CHECK constraints have no stable cross-version information_schema
// shape in MySQL/MariaDB/TiDB and are left to the real parser's DDL
// path; introspection never sees one.
func introspectConstraints(ic *introspectCtx, stmt *ddlast.CreateTableStmt) error {
	rows, err := ic.db.QueryContext(ic.ctx, `
		SELECT
			tc.constraint_name,
			tc.constraint_type,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_schema = kcu.constraint_schema
			AND tc.constraint_name = kcu.constraint_name
			AND tc.table_name = kcu.table_name
		WHERE tc.table_schema = DATABASE() AND tc.table_name = ?
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`, stmt.Table)
	if err != nil {
		return err
	}
	defer rows.Close()

	type acc struct {
		name       string
		kind       ddlast.ConstraintKind
		columns    []string
		refTable   string
		refColumns []string
	}
	order := make([]string, 0)
	byName := make(map[string]*acc)

	for rows.Next() {
		var name, constraintType, column, refTable, refColumn sql.NullString
		if err := rows.Scan(&name, &constraintType, &column, &refTable, &refColumn); err != nil {
			return err
		}

		a, ok := byName[name.String]
		if !ok {
			a = &acc{name: name.String, kind: constraintKindOf(constraintType.String)}
			byName[name.String] = a
			order = append(order, name.String)
		}
		a.columns = append(a.columns, column.String)
		if refTable.Valid {
			a.refTable = refTable.String
			a.refColumns = append(a.refColumns, refColumn.String)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range order {
		a := byName[name]
		stmt.Constraints = append(stmt.Constraints, ddlast.ConstraintDef{
			Kind:       a.kind,
			Name:       a.name,
			Columns:    a.columns,
			RefTable:   a.refTable,
			RefColumns: a.refColumns,
		})
	}

	return nil
}

func constraintKindOf(constraintType string) ddlast.ConstraintKind {
	switch constraintType {
	case "PRIMARY KEY":
		return ddlast.ConstraintPrimaryKey
	case "FOREIGN KEY":
		return ddlast.ConstraintForeignKey
	case "UNIQUE":
		return ddlast.ConstraintUnique
	default:
		return ddlast.ConstraintCheck
	}
}
