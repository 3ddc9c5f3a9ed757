// Package mysql ingests MySQL-family DDL text into ddlast.Statement
// values using TiDB's SQL parser. It is grounded on the teacher's
// internal/parser/mysql/parser.go (same parser.New()/p.Parse() call,
// same ast.CreateTableStmt walk, same exprToString via
// format.NewRestoreCtx), extended to also recognize CREATE VIEW, ALTER
// TABLE, and DROP statements, none of which the teacher's migration
// tool needed. CREATE TYPE ... AS ENUM has no TiDB grammar production
// (the grammar is MySQL-family only), so it is recognized by a small
// line-oriented scan before the statement reaches the real parser.
package mysql

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"sqlsift/internal/ddlast"
)

// Ingester parses MySQL-family DDL text into ddlast statements.
type Ingester struct {
	p *parser.Parser
}

// NewIngester constructs an Ingester with a fresh TiDB parser instance.
// *parser.Parser is not safe for concurrent use, so callers running a
// worker pool (cmd/sqlsift) must construct one Ingester per goroutine.
func NewIngester() *Ingester {
	return &Ingester{p: parser.New()}
}

// ParseDDL splits raw on statement-terminating semicolons only enough
// to recognize CREATE TYPE ... AS ENUM (via splitStatements), parses
// the remaining text through the real TiDB parser in one call for
// efficiency, then merges the two result streams back into the
// original source order.
func (ing *Ingester) ParseDDL(raw string) ([]ddlast.Statement, error) {
	slots := splitStatements(raw)

	var rest []string
	for _, s := range slots {
		if s.enum == nil {
			rest = append(rest, s.text)
		}
	}

	var parsed []ddlast.Statement
	if len(rest) > 0 {
		stmtNodes, _, err := ing.p.Parse(strings.Join(rest, ";"), "", "")
		if err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
		for _, stmt := range stmtNodes {
			switch n := stmt.(type) {
			case *ast.CreateTableStmt:
				parsed = append(parsed, ing.convertCreateTable(n))
			case *ast.CreateViewStmt:
				parsed = append(parsed, ing.convertCreateView(n))
			case *ast.AlterTableStmt:
				parsed = append(parsed, ing.convertAlterTable(n))
			case *ast.DropTableStmt:
				parsed = append(parsed, ing.convertDropTable(n))
			case *ast.DropViewStmt:
				parsed = append(parsed, ing.convertDropView(n))
			default:
				// Keeps one entry per parsed statement so the merge
				// below stays aligned with the slot list.
				parsed = append(parsed, nil)
			}
		}
	}

	out := make([]ddlast.Statement, 0, len(slots))
	next := 0
	for _, s := range slots {
		if s.enum != nil {
			out = append(out, s.enum)
			continue
		}
		if next < len(parsed) {
			if parsed[next] != nil {
				out = append(out, parsed[next])
			}
			next++
		}
	}

	return out, nil
}

func (ing *Ingester) convertCreateTable(stmt *ast.CreateTableStmt) *ddlast.CreateTableStmt {
	out := &ddlast.CreateTableStmt{
		Table:       stmt.Table.Name.O,
		IfNotExists: stmt.IfNotExists,
	}

	for _, colDef := range stmt.Cols {
		col := ddlast.ColumnDef{
			Name:     colDef.Name.Name.O,
			RawType:  colDef.Tp.String(),
			Nullable: true,
		}
		var pk bool
		for _, opt := range colDef.Options {
			switch opt.Tp {
			case ast.ColumnOptionNotNull:
				col.Nullable = false
			case ast.ColumnOptionNull:
				col.Nullable = true
			case ast.ColumnOptionAutoIncrement:
				col.RawType += " AUTO_INCREMENT"
			case ast.ColumnOptionPrimaryKey:
				pk = true
				col.Nullable = false
			case ast.ColumnOptionUniqKey:
				out.Constraints = append(out.Constraints, ddlast.ConstraintDef{
					Kind:    ddlast.ConstraintUnique,
					Columns: []string{col.Name},
				})
			case ast.ColumnOptionReference:
				c := ddlast.ConstraintDef{
					Kind:     ddlast.ConstraintForeignKey,
					Columns:  []string{col.Name},
					RefTable: opt.Refer.Table.Name.O,
				}
				for _, spec := range opt.Refer.IndexPartSpecifications {
					if spec.Column != nil {
						c.RefColumns = append(c.RefColumns, spec.Column.Name.O)
					}
				}
				out.Constraints = append(out.Constraints, c)
			case ast.ColumnOptionCheck:
				if s := exprToString(opt.Expr); s != "" {
					out.Constraints = append(out.Constraints, ddlast.ConstraintDef{
						Kind:    ddlast.ConstraintCheck,
						Columns: []string{col.Name},
					})
				}
			}
		}
		out.Columns = append(out.Columns, col)
		if pk {
			out.Constraints = append(out.Constraints, ddlast.ConstraintDef{
				Kind:    ddlast.ConstraintPrimaryKey,
				Columns: []string{col.Name},
			})
		}
	}

	for _, constraint := range stmt.Constraints {
		columns := make([]string, 0, len(constraint.Keys))
		for _, key := range constraint.Keys {
			if key.Column != nil {
				columns = append(columns, key.Column.Name.O)
			}
		}
		switch constraint.Tp {
		case ast.ConstraintPrimaryKey:
			out.Constraints = append(out.Constraints, ddlast.ConstraintDef{
				Kind: ddlast.ConstraintPrimaryKey, Name: "PRIMARY", Columns: columns,
			})
		case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
			out.Constraints = append(out.Constraints, ddlast.ConstraintDef{
				Kind: ddlast.ConstraintUnique, Name: constraint.Name, Columns: columns,
			})
		case ast.ConstraintForeignKey:
			c := ddlast.ConstraintDef{
				Kind: ddlast.ConstraintForeignKey, Name: constraint.Name, Columns: columns,
			}
			if constraint.Refer != nil {
				c.RefTable = constraint.Refer.Table.Name.O
				for _, spec := range constraint.Refer.IndexPartSpecifications {
					if spec.Column != nil {
						c.RefColumns = append(c.RefColumns, spec.Column.Name.O)
					}
				}
			}
			out.Constraints = append(out.Constraints, c)
		case ast.ConstraintIndex, ast.ConstraintKey:
			out.Indexes = append(out.Indexes, ddlast.IndexDef{Name: constraint.Name, Columns: columns})
		case ast.ConstraintCheck:
			out.Constraints = append(out.Constraints, ddlast.ConstraintDef{
				Kind: ddlast.ConstraintCheck, Name: constraint.Name, Columns: columns,
			})
		}
	}

	return out
}

func (ing *Ingester) convertCreateView(stmt *ast.CreateViewStmt) *ddlast.CreateViewStmt {
	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if stmt.Select != nil {
		_ = stmt.Select.Restore(restoreCtx)
	}
	return &ddlast.CreateViewStmt{
		View:      stmt.ViewName.Name.O,
		OrReplace: stmt.OrReplace,
		Query:     sb.String(),
	}
}

func (ing *Ingester) convertAlterTable(stmt *ast.AlterTableStmt) *ddlast.AlterTableStmt {
	out := &ddlast.AlterTableStmt{Table: stmt.Table.Name.O}
	for _, spec := range stmt.Specs {
		switch spec.Tp {
		case ast.AlterTableAddColumns:
			for _, colDef := range spec.NewColumns {
				nullable := true
				for _, opt := range colDef.Options {
					if opt.Tp == ast.ColumnOptionNotNull {
						nullable = false
					}
				}
				out.Ops = append(out.Ops, ddlast.AlterOp{
					Kind: ddlast.AlterAddColumn,
					Column: &ddlast.ColumnDef{
						Name:     colDef.Name.Name.O,
						RawType:  colDef.Tp.String(),
						Nullable: nullable,
					},
				})
			}
		case ast.AlterTableDropColumn:
			out.Ops = append(out.Ops, ddlast.AlterOp{
				Kind:       ddlast.AlterDropColumn,
				ColumnName: spec.OldColumnName.Name.O,
			})
		case ast.AlterTableRenameColumn:
			out.Ops = append(out.Ops, ddlast.AlterOp{
				Kind:       ddlast.AlterRenameColumn,
				ColumnName: spec.OldColumnName.Name.O,
				NewName:    spec.NewColumnName.Name.O,
			})
		case ast.AlterTableRenameTable:
			out.Ops = append(out.Ops, ddlast.AlterOp{
				Kind:         ddlast.AlterRenameTable,
				NewTableName: spec.NewTable.Name.O,
			})
		case ast.AlterTableAddConstraint:
			if spec.Constraint == nil {
				continue
			}
			columns := make([]string, 0, len(spec.Constraint.Keys))
			for _, key := range spec.Constraint.Keys {
				if key.Column != nil {
					columns = append(columns, key.Column.Name.O)
				}
			}
			var kind ddlast.ConstraintKind
			switch spec.Constraint.Tp {
			case ast.ConstraintPrimaryKey:
				kind = ddlast.ConstraintPrimaryKey
			case ast.ConstraintForeignKey:
				kind = ddlast.ConstraintForeignKey
			case ast.ConstraintCheck:
				kind = ddlast.ConstraintCheck
			default:
				kind = ddlast.ConstraintUnique
			}
			c := ddlast.ConstraintDef{Kind: kind, Name: spec.Constraint.Name, Columns: columns}
			if spec.Constraint.Refer != nil {
				c.RefTable = spec.Constraint.Refer.Table.Name.O
			}
			out.Ops = append(out.Ops, ddlast.AlterOp{Kind: ddlast.AlterAddConstraint, Constraint: &c})
		case ast.AlterTableDropPrimaryKey:
			out.Ops = append(out.Ops, ddlast.AlterOp{Kind: ddlast.AlterDropConstraint, ConstraintName: "PRIMARY"})
		case ast.AlterTableDropForeignKey:
			out.Ops = append(out.Ops, ddlast.AlterOp{Kind: ddlast.AlterDropConstraint, ConstraintName: spec.Name})
		case ast.AlterTableDropIndex:
			out.Ops = append(out.Ops, ddlast.AlterOp{Kind: ddlast.AlterDropConstraint, ConstraintName: spec.Name})
		}
	}
	return out
}

func (ing *Ingester) convertDropTable(stmt *ast.DropTableStmt) *ddlast.DropStmt {
	name := ""
	if len(stmt.Tables) > 0 {
		name = stmt.Tables[0].Name.O
	}
	return &ddlast.DropStmt{Kind: ddlast.ObjectTable, Name: name, IfExists: stmt.IfExists}
}

func (ing *Ingester) convertDropView(stmt *ast.DropViewStmt) *ddlast.DropStmt {
	name := ""
	if len(stmt.Tables) > 0 {
		name = stmt.Tables[0].Name.O
	}
	return &ddlast.DropStmt{Kind: ddlast.ObjectView, Name: name, IfExists: stmt.IfExists}
}

func exprToString(expr ast.ExprNode) string {
	if expr == nil {
		return ""
	}
	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := expr.Restore(restoreCtx); err != nil {
		return ""
	}
	return strings.TrimSpace(sb.String())
}
