package mysql

import (
	"context"
	"database/sql"
	"strings"
)

// flavor identifies which MySQL-family engine Introspect is talking
// to. All three share the same information_schema shape this package
// queries, so flavor is informational only — SchemaBuilder never
// branches on it.
type flavor string

const (
	flavorMySQL   flavor = "mysql"
	flavorMariaDB flavor = "mariadb"
	flavorTiDB    flavor = "tidb"
)

func detectFlavor(ctx context.Context, db *sql.DB) (flavor, string, error) {
	var varName, comment string

	if err := db.QueryRowContext(ctx, "SHOW VARIABLES LIKE 'version_comment'").Scan(&varName, &comment); err != nil {
		return "", "", err
	}

	comment = strings.ToLower(comment)
	switch {
	case strings.Contains(comment, "mariadb"):
		return flavorMariaDB, getVersion(ctx, db), nil
	case strings.Contains(comment, "tidb"):
		return flavorTiDB, getVersion(ctx, db), nil
	default:
		return flavorMySQL, getVersion(ctx, db), nil
	}
}

func getVersion(ctx context.Context, db *sql.DB) string {
	var version string
	_ = db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version)
	if idx := strings.Index(version, "-"); idx > 0 {
		version = version[:idx]
	}
	return version
}
