package types

import (
	"regexp"
	"strconv"
	"strings"
)

// parenRe matches a parenthesized argument list so it can be pulled off
// the base type keyword, e.g. "VARCHAR(255)" -> "VARCHAR", "255".
var parenRe = regexp.MustCompile(`\(([^)]*)\)`)

// arrayRe recognizes PostgreSQL-style array suffixes, e.g. "INTEGER[]".
var arrayRe = regexp.MustCompile(`\[\]$`)

var wsRe = regexp.MustCompile(`\s+`)

// FromRawType maps a raw SQL type string (as it appears in DDL text, e.g.
// "VARCHAR(255)", "NUMERIC(10,2)", "INTEGER[]", "TIMESTAMP WITH TIME ZONE")
// to a SqlType. Matching is case-insensitive and dialect-aware only where
// dialects actually diverge (SERIAL, JSONB); unrecognized base keywords
// degrade to Unknown rather than erroring, keeping the catalog builder
// resilient to exotic or misspelled type names.
func FromRawType(raw string) SqlType {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unknown
	}

	isArray := arrayRe.MatchString(s)
	if isArray {
		s = arrayRe.ReplaceAllString(s, "")
	}

	args := ""
	if m := parenRe.FindStringSubmatch(s); m != nil {
		args = m[1]
		s = parenRe.ReplaceAllString(s, "")
	}

	base := strings.ToUpper(wsRe.ReplaceAllString(strings.TrimSpace(s), " "))

	t := baseRawType(base, args)
	if isArray {
		return Array(t)
	}
	return t
}

func baseRawType(base, args string) SqlType {
	switch base {
	case "TINYINT":
		return Integer(8)
	case "SMALLINT", "INT2":
		return Integer(16)
	case "MEDIUMINT", "INT", "INTEGER", "INT4", "SERIAL", "SERIAL4":
		return Integer(32)
	case "BIGINT", "INT8", "BIGSERIAL", "SERIAL8":
		return Integer(64)

	case "DECIMAL", "DEC", "NUMERIC", "FIXED":
		p, scale, known := parseDecimalArgs(args)
		return Decimal(p, scale, known)

	case "FLOAT", "FLOAT4", "REAL":
		return Float(32)
	case "DOUBLE", "DOUBLE PRECISION", "FLOAT8":
		return Float(64)

	case "BOOL", "BOOLEAN":
		return Boolean

	case "CHAR", "CHARACTER", "VARCHAR", "CHARACTER VARYING", "NCHAR", "NVARCHAR":
		return Text(true)
	case "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "CLOB", "STRING":
		return Text(false)

	case "BINARY", "VARBINARY", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BYTEA":
		return Bytea

	case "DATE":
		return Date
	case "TIME", "TIME WITHOUT TIME ZONE":
		return Time
	case "TIME WITH TIME ZONE", "TIMETZ":
		return Time
	case "TIMESTAMP", "DATETIME", "TIMESTAMP WITHOUT TIME ZONE":
		return Timestamp(false)
	case "TIMESTAMP WITH TIME ZONE", "TIMESTAMPTZ", "DATETIMEOFFSET":
		return Timestamp(true)
	case "INTERVAL":
		return Interval

	case "UUID", "UNIQUEIDENTIFIER":
		return Uuid

	case "JSON":
		return Json(false)
	case "JSONB":
		return Json(true)

	default:
		return Unknown
	}
}

func parseDecimalArgs(args string) (precision, scale int, known bool) {
	parts := strings.Split(args, ",")
	if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
		return 0, 0, false
	}
	p, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	if len(parts) > 1 {
		if sc, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			return p, sc, true
		}
	}
	return p, 0, true
}
