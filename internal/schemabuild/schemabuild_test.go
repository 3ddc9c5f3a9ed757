package schemabuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlsift/internal/ddlast"
	"sqlsift/internal/diag"
	"sqlsift/internal/queryast"
)

// stubQueryParser lets tests control CREATE VIEW body parsing without
// pulling in the real TiDB-backed ingester.
type stubQueryParser struct {
	sel *queryast.SelectStmt
	ok  bool
}

func (s stubQueryParser) ParseSelect(string) (*queryast.SelectStmt, bool) { return s.sel, s.ok }

func intCol(name string) ddlast.ColumnDef { return ddlast.ColumnDef{Name: name, RawType: "INT", Nullable: true} }

func TestBuildCreateTableWithPrimaryKey(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{
			Table: "users",
			Columns: []ddlast.ColumnDef{
				{Name: "id", RawType: "INT", Nullable: false},
				{Name: "name", RawType: "VARCHAR(255)", Nullable: true},
			},
			Constraints: []ddlast.ConstraintDef{
				{Kind: ddlast.ConstraintPrimaryKey, Columns: []string{"id"}},
			},
		},
	}
	db, diags := Build(stmts, nil, nil)
	assert.Empty(t, diags)

	tbl, ok := db.FindTable("USERS")
	require.True(t, ok)
	col, ok := tbl.FindColumn("id")
	require.True(t, ok)
	assert.False(t, col.Nullable)
	require.NotNil(t, tbl.PrimaryKey())
}

func TestBuildSkipsUnsupportedStatement(t *testing.T) {
	db, diags := Build([]ddlast.Statement{nil}, nil, nil)
	assert.Empty(t, diags)
	assert.Equal(t, 0, db.Tables.Len())
}

func TestBuildAlterTableAddColumn(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id")}},
		&ddlast.AlterTableStmt{Table: "t", Ops: []ddlast.AlterOp{
			{Kind: ddlast.AlterAddColumn, Column: &ddlast.ColumnDef{Name: "created_at", RawType: "TIMESTAMP"}},
		}},
	}
	db, diags := Build(stmts, nil, nil)
	assert.Empty(t, diags)

	tbl, _ := db.FindTable("t")
	_, ok := tbl.FindColumn("created_at")
	assert.True(t, ok)
}

func TestBuildAlterRenameColumnCollisionEmitsDiagnostic(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id"), intCol("other")}},
		&ddlast.AlterTableStmt{Table: "t", Ops: []ddlast.AlterOp{
			{Kind: ddlast.AlterRenameColumn, ColumnName: "id", NewName: "other"},
		}},
	}
	_, diags := Build(stmts, nil, nil)
	require.Len(t, diags, 1)
}

func TestBuildDropTableRemovesRelation(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id")}},
		&ddlast.DropStmt{Kind: ddlast.ObjectTable, Name: "t"},
	}
	db, _ := Build(stmts, nil, nil)
	_, ok := db.FindTable("t")
	assert.False(t, ok)
}

func TestBuildCreateEnum(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateEnumStmt{Name: "status", Labels: []string{"active", "inactive"}},
	}
	db, diags := Build(stmts, nil, nil)
	assert.Empty(t, diags)

	e, ok := db.FindEnum("status")
	require.True(t, ok)
	assert.Equal(t, []string{"active", "inactive"}, e.Labels)
}

func TestBuildViewUnresolvedWithoutQueryParser(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id")}},
		&ddlast.CreateViewStmt{View: "v", Query: "SELECT id FROM t"},
	}
	db, _ := Build(stmts, nil, nil)

	view, ok := db.FindView("v")
	require.True(t, ok)
	assert.False(t, view.Resolved)
}

func TestBuildViewResolvesColumnsViaQueryParser(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id")}},
		&ddlast.CreateViewStmt{View: "v", Query: "SELECT id FROM t"},
	}
	qp := stubQueryParser{ok: true, sel: &queryast.SelectStmt{
		From:       []queryast.FromItem{{Table: "t"}},
		Projection: []queryast.SelectItem{{Expr: &queryast.ColumnRef{Column: "id"}}},
	}}
	db, diags := Build(stmts, nil, qp)
	assert.Empty(t, diags)

	view, ok := db.FindView("v")
	require.True(t, ok)
	assert.True(t, view.Resolved)
	require.Len(t, view.Columns, 1)
	assert.Equal(t, "id", view.Columns[0].Name)
}

func TestBuildViewForwardReferencingAnotherViewDegrades(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateViewStmt{View: "v1", Query: "SELECT id FROM v2"},
		&ddlast.CreateViewStmt{View: "v2", Query: "SELECT id FROM t"},
	}
	qp := stubQueryParser{ok: true, sel: &queryast.SelectStmt{
		From:       []queryast.FromItem{{Table: "v2"}},
		Projection: []queryast.SelectItem{{Expr: &queryast.ColumnRef{Column: "id"}}},
	}}
	db, diags := Build(stmts, nil, qp)
	require.NotEmpty(t, diags) // v2 unresolved at v1's build time -> unknown table

	v1, _ := db.FindView("v1")
	require.Len(t, v1.Columns, 1)
	assert.True(t, v1.Columns[0].Type.IsUnknown())
}

func TestBuildDuplicateTableKeepsFirstDefinitionAndWarns(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id")}},
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id"), intCol("name")}},
	}
	db, diags := Build(stmts, nil, nil)

	require.Len(t, diags, 1)
	assert.Equal(t, diag.DuplicateObject, diags[0].Code)
	assert.Equal(t, diag.SeverityWarning, diags[0].Severity)

	tbl, ok := db.FindTable("t")
	require.True(t, ok)
	assert.Len(t, tbl.Columns, 1) // first definition kept, not the second
}

func TestBuildDuplicateTableWithIfNotExistsIsSilent(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id")}},
		&ddlast.CreateTableStmt{Table: "t", IfNotExists: true, Columns: []ddlast.ColumnDef{intCol("id"), intCol("name")}},
	}
	db, diags := Build(stmts, nil, nil)

	assert.Empty(t, diags)
	tbl, ok := db.FindTable("t")
	require.True(t, ok)
	assert.Len(t, tbl.Columns, 1)
}

func TestBuildDuplicateColumnKeepsLastDefinitionAndWarns(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{
			{Name: "id", RawType: "INT"},
			{Name: "id", RawType: "BIGINT"},
		}},
	}
	db, diags := Build(stmts, nil, nil)

	require.Len(t, diags, 1)
	assert.Equal(t, diag.DuplicateColumn, diags[0].Code)
	assert.Equal(t, diag.SeverityWarning, diags[0].Severity)

	tbl, ok := db.FindTable("t")
	require.True(t, ok)
	require.Len(t, tbl.Columns, 1)
	col, ok := tbl.FindColumn("id")
	require.True(t, ok)
	assert.Equal(t, 64, col.Type.IntWidth)
}

func TestBuildDuplicateEnumKeepsFirstDefinitionAndWarns(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateEnumStmt{Name: "status", Labels: []string{"active", "inactive"}},
		&ddlast.CreateEnumStmt{Name: "status", Labels: []string{"on", "off"}},
	}
	db, diags := Build(stmts, nil, nil)

	require.Len(t, diags, 1)
	assert.Equal(t, diag.DuplicateObject, diags[0].Code)

	e, ok := db.FindEnum("status")
	require.True(t, ok)
	assert.Equal(t, []string{"active", "inactive"}, e.Labels)
}

func TestBuildDuplicateViewKeepsFirstDefinitionAndWarns(t *testing.T) {
	stmts := []ddlast.Statement{
		&ddlast.CreateTableStmt{Table: "t", Columns: []ddlast.ColumnDef{intCol("id")}},
		&ddlast.CreateViewStmt{View: "v", Query: "SELECT id FROM t"},
		&ddlast.CreateViewStmt{View: "v", Query: "SELECT id FROM t"},
	}
	db, diags := Build(stmts, nil, nil)

	require.Len(t, diags, 1)
	assert.Equal(t, diag.DuplicateObject, diags[0].Code)

	view, ok := db.FindView("v")
	require.True(t, ok)
	assert.False(t, view.Resolved)
}
