package mysql

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"sqlsift/internal/ddlast"
)

func TestIntrospectIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db := setupMySQL(t, ctx)

	const ddl = `
		CREATE TABLE orgs (
			id INT PRIMARY KEY AUTO_INCREMENT,
			name VARCHAR(255) NOT NULL
		);
		CREATE TABLE users (
			id INT PRIMARY KEY AUTO_INCREMENT,
			org_id INT NOT NULL,
			email VARCHAR(255) NOT NULL,
			UNIQUE KEY uniq_email (email),
			FOREIGN KEY (org_id) REFERENCES orgs(id)
		);
	`
	_, err := db.ExecContext(ctx, ddl)
	require.NoError(t, err)

	stmts, err := Introspect(ctx, db)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	byName := make(map[string]*ddlast.CreateTableStmt)
	for _, s := range stmts {
		tbl, ok := s.(*ddlast.CreateTableStmt)
		require.True(t, ok)
		byName[tbl.Table] = tbl
	}

	users, ok := byName["users"]
	require.True(t, ok)
	assert.Len(t, users.Columns, 3)

	var pk, fk *ddlast.ConstraintDef
	for i := range users.Constraints {
		c := &users.Constraints[i]
		switch c.Kind {
		case ddlast.ConstraintPrimaryKey:
			pk = c
		case ddlast.ConstraintForeignKey:
			fk = c
		}
	}
	require.NotNil(t, pk)
	assert.Equal(t, []string{"id"}, pk.Columns)
	require.NotNil(t, fk)
	assert.Equal(t, "orgs", fk.RefTable)

	var uniqueIdx *ddlast.IndexDef
	for i := range users.Indexes {
		if users.Indexes[i].Name == "uniq_email" {
			uniqueIdx = &users.Indexes[i]
		}
	}
	require.NotNil(t, uniqueIdx)
	assert.True(t, uniqueIdx.Unique)
}

func setupMySQL(t *testing.T, ctx context.Context) *sql.DB {
	t.Helper()

	container, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	require.NoError(t, db.PingContext(ctx), "failed to ping database")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}
