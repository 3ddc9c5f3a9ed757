package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlsift/internal/queryast"
)

func TestParseQuerySimpleSelect(t *testing.T) {
	ing := NewIngester()
	stmts, err := ing.ParseQuery("SELECT id, name FROM users WHERE id = 1")
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	sel, ok := stmts[0].(*queryast.SelectStmt)
	require.True(t, ok)
	require.Len(t, sel.Projection, 2)
	assert.Equal(t, "id", sel.Projection[0].Expr.(*queryast.ColumnRef).Column)
	require.Len(t, sel.From, 1)
	assert.Equal(t, "users", sel.From[0].Table)
	require.NotNil(t, sel.Where)
}

func TestParseQueryJoin(t *testing.T) {
	ing := NewIngester()
	stmts, err := ing.ParseQuery("SELECT u.id FROM users u JOIN orgs o ON u.org_id = o.id")
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	sel := stmts[0].(*queryast.SelectStmt)
	require.Len(t, sel.From, 1)
	assert.Equal(t, "users", sel.From[0].Table)
	require.Len(t, sel.From[0].Joins, 1)
	assert.Equal(t, "orgs", sel.From[0].Joins[0].Right.Table)
	assert.NotNil(t, sel.From[0].Joins[0].On)
}

func TestParseQueryUnion(t *testing.T) {
	ing := NewIngester()
	stmts, err := ing.ParseQuery("SELECT id FROM users UNION SELECT id FROM orgs")
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	sel := stmts[0].(*queryast.SelectStmt)
	assert.True(t, sel.IsSet)
	assert.Equal(t, queryast.SetOpUnion, sel.SetOp)
	require.NotNil(t, sel.Rhs)
}

func TestParseSelectForViewInference(t *testing.T) {
	ing := NewIngester()
	sel, ok := ing.ParseSelect("SELECT * FROM users")
	require.True(t, ok)
	require.Len(t, sel.Projection, 1)
	assert.NotNil(t, sel.Projection[0].Star)
}

func TestParseQueryInsertValues(t *testing.T) {
	ing := NewIngester()
	stmts, err := ing.ParseQuery("INSERT INTO users (id, name) VALUES (1, 'a')")
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	ins := stmts[0].(*queryast.InsertStmt)
	assert.Equal(t, "users", ins.Table)
	assert.Equal(t, []string{"id", "name"}, ins.Columns)
	require.Len(t, ins.Values, 1)
	require.Len(t, ins.Values[0], 2)
}

func TestParseQueryUpdate(t *testing.T) {
	ing := NewIngester()
	stmts, err := ing.ParseQuery("UPDATE users SET name = 'a' WHERE id = 1")
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	upd := stmts[0].(*queryast.UpdateStmt)
	assert.Equal(t, "users", upd.Table)
	require.Len(t, upd.Assignments, 1)
	assert.Equal(t, "name", upd.Assignments[0].Column)
}
