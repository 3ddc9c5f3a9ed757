// Package schemabuild implements SchemaBuilder (spec.md §4.1): it
// folds an ordered sequence of ddlast.Statement values into a
// catalog.Database, accumulating non-fatal build diagnostics rather
// than aborting on the first unsupported or malformed statement.
package schemabuild

import (
	"strings"

	"sqlsift/internal/catalog"
	"sqlsift/internal/ddlast"
	"sqlsift/internal/diag"
	"sqlsift/internal/dialect"
	"sqlsift/internal/queryast"
	"sqlsift/internal/resolve"
	"sqlsift/internal/scope"
	"sqlsift/internal/types"
)

// QueryParser is the capability SchemaBuilder needs from a DML
// adapter to infer a CREATE VIEW body's output columns. internal/
// ingest/mysql.Ingester.ParseSelect satisfies this.
type QueryParser interface {
	ParseSelect(raw string) (*queryast.SelectStmt, bool)
}

// Builder folds DDL statements into a catalog.Database.
type Builder struct {
	db      *catalog.Database
	dialect dialect.Predicates
	qp      QueryParser
	diags   []diag.Diagnostic

	pendingViews []*ddlast.CreateViewStmt
}

// New constructs a Builder. qp may be nil, in which case every view
// degrades to an unresolved relation with no columns.
func New(d dialect.Predicates, qp QueryParser) *Builder {
	return &Builder{db: catalog.NewDatabase(), dialect: d, qp: qp}
}

// Build folds stmts into the catalog in order and returns it along
// with accumulated build diagnostics. Safe to call once per Builder.
func Build(stmts []ddlast.Statement, d dialect.Predicates, qp QueryParser) (*catalog.Database, []diag.Diagnostic) {
	b := New(d, qp)
	for _, s := range stmts {
		b.apply(s)
	}
	b.resolveViews()
	return b.db, b.diags
}

func (b *Builder) emit(d diag.Diagnostic) { b.diags = append(b.diags, d) }

func (b *Builder) apply(stmt ddlast.Statement) {
	switch s := stmt.(type) {
	case *ddlast.CreateTableStmt:
		b.applyCreateTable(s)
	case *ddlast.CreateViewStmt:
		// Deferred: resolved after every CREATE TABLE/ENUM has landed,
		// so a view referencing a table declared later in the same DDL
		// batch still resolves (spec.md only requires views not to
		// forward-reference *other views*).
		b.pendingViews = append(b.pendingViews, s)
	case *ddlast.CreateEnumStmt:
		b.applyCreateEnum(s)
	case *ddlast.AlterTableStmt:
		b.applyAlterTable(s)
	case *ddlast.DropStmt:
		b.applyDrop(s)
	default:
		// Unsupported statement kind: silently skipped per spec.md §4.1.
	}
}

func (b *Builder) applyCreateTable(s *ddlast.CreateTableStmt) {
	if b.db.Tables.Has(s.Table) {
		if !s.IfNotExists {
			b.emit(diag.Diagnostic{
				Code:     diag.DuplicateObject,
				Severity: diag.SeverityWarning,
				Message:  "table '" + s.Table + "' already declared; keeping the first definition",
			})
		}
		return
	}

	tbl := catalog.NewTable(s.Table)
	seen := make(map[string]int, len(s.Columns))
	for _, c := range s.Columns {
		// Both ingest paths render auto-increment as a RawType suffix.
		raw, identity := c.RawType, false
		if i := strings.Index(strings.ToUpper(raw), " AUTO_INCREMENT"); i >= 0 {
			raw, identity = raw[:i], true
		}
		col := &catalog.Column{
			Name:                c.Name,
			Type:                types.FromRawType(raw),
			Nullable:            c.Nullable,
			GeneratedAsIdentity: identity,
		}
		key := foldKey(c.Name)
		if idx, dup := seen[key]; dup {
			b.emit(diag.Diagnostic{
				Code:     diag.DuplicateColumn,
				Severity: diag.SeverityWarning,
				Message:  "column '" + c.Name + "' declared more than once on table '" + s.Table + "'; keeping the last definition",
			})
			tbl.Columns[idx] = col
			continue
		}
		seen[key] = len(tbl.Columns)
		tbl.Columns = append(tbl.Columns, col)
	}
	tbl.IndexColumns()

	for _, c := range s.Constraints {
		tbl.Constraints = append(tbl.Constraints, &catalog.Constraint{
			Name:       c.Name,
			Kind:       catalog.ConstraintKind(c.Kind),
			Columns:    c.Columns,
			RefTable:   c.RefTable,
			RefColumns: c.RefColumns,
		})
	}
	for _, idx := range s.Indexes {
		tbl.Indexes = append(tbl.Indexes, &catalog.Index{Name: idx.Name, Columns: idx.Columns, Unique: idx.Unique})
	}

	if pk := tbl.PrimaryKey(); pk != nil && len(pk.Columns) == 1 {
		if col, ok := tbl.FindColumn(pk.Columns[0]); ok {
			tbl.IsIdentityPK = col.GeneratedAsIdentity
		}
	}

	b.db.Tables.Put(s.Table, tbl)
}

func (b *Builder) applyCreateEnum(s *ddlast.CreateEnumStmt) {
	if b.db.Enums.Has(s.Name) {
		b.emit(diag.Diagnostic{
			Code:     diag.DuplicateObject,
			Severity: diag.SeverityWarning,
			Message:  "enum '" + s.Name + "' already declared; keeping the first definition",
		})
		return
	}
	b.db.Enums.Put(s.Name, &catalog.Enum{Name: s.Name, Labels: append([]string{}, s.Labels...)})
}

func (b *Builder) applyAlterTable(s *ddlast.AlterTableStmt) {
	tbl, ok := b.db.Tables.Get(s.Table)
	if !ok {
		return
	}

	for _, op := range s.Ops {
		switch op.Kind {
		case ddlast.AlterAddColumn:
			if op.Column == nil {
				continue
			}
			tbl.Columns = append(tbl.Columns, &catalog.Column{
				Name:     op.Column.Name,
				Type:     types.FromRawType(op.Column.RawType),
				Nullable: op.Column.Nullable,
			})
			tbl.IndexColumns()

		case ddlast.AlterDropColumn:
			kept := tbl.Columns[:0]
			for _, c := range tbl.Columns {
				if !foldEqual(c.Name, op.ColumnName) {
					kept = append(kept, c)
				}
			}
			tbl.Columns = kept
			tbl.IndexColumns()

		case ddlast.AlterRenameColumn:
			if _, collides := tbl.FindColumn(op.NewName); collides {
				b.emit(diag.Diagnostic{
					Code:     diag.UnknownColumn,
					Severity: diag.SeverityError,
					Message:  "cannot rename column '" + op.ColumnName + "' to '" + op.NewName + "': a column with that name already exists on '" + tbl.Name + "'",
				})
				continue
			}
			if col, ok := tbl.FindColumn(op.ColumnName); ok {
				col.Name = op.NewName
				tbl.IndexColumns()
			}

		case ddlast.AlterAddConstraint:
			if op.Constraint == nil {
				continue
			}
			c := op.Constraint
			tbl.Constraints = append(tbl.Constraints, &catalog.Constraint{
				Name:       c.Name,
				Kind:       catalog.ConstraintKind(c.Kind),
				Columns:    c.Columns,
				RefTable:   c.RefTable,
				RefColumns: c.RefColumns,
			})

		case ddlast.AlterDropConstraint:
			kept := tbl.Constraints[:0]
			for _, c := range tbl.Constraints {
				if !foldEqual(c.Name, op.ConstraintName) {
					kept = append(kept, c)
				}
			}
			tbl.Constraints = kept

		case ddlast.AlterRenameTable:
			b.db.Tables.Delete(tbl.Name)
			b.db.Tables.Put(op.NewTableName, tbl)
			tbl.Name = op.NewTableName
		}
	}
}

func (b *Builder) applyDrop(s *ddlast.DropStmt) {
	switch s.Kind {
	case ddlast.ObjectTable:
		b.db.Tables.Delete(s.Name)
	case ddlast.ObjectView:
		b.db.Views.Delete(s.Name)
	case ddlast.ObjectType:
		b.db.Enums.Delete(s.Name)
	}
}

func (b *Builder) resolveViews() {
	for _, v := range b.pendingViews {
		b.resolveView(v)
	}
}

func (b *Builder) resolveView(s *ddlast.CreateViewStmt) {
	if b.db.Views.Has(s.View) || b.db.Tables.Has(s.View) {
		b.emit(diag.Diagnostic{
			Code:     diag.DuplicateObject,
			Severity: diag.SeverityWarning,
			Message:  "view '" + s.View + "': a table or view of that name is already declared; keeping the first definition",
		})
		return
	}

	view := catalog.NewView(s.View)

	if b.qp == nil {
		b.db.Views.Put(s.View, view)
		return
	}

	sel, ok := b.qp.ParseSelect(s.Query)
	if !ok {
		view.Resolved = false
		b.db.Views.Put(s.View, view)
		return
	}

	r := resolve.New(b.db, b.dialect)
	stack := scope.NewStack()
	cols := resolve.ResolveSelectForView(r, stack, sel)

	b.diags = append(b.diags, r.Diagnostics()...)
	view.Columns = cols
	view.Resolved = true
	view.IndexColumns()
	b.db.Views.Put(s.View, view)
}

func foldEqual(a, b string) bool { return foldKey(a) == foldKey(b) }

func foldKey(s string) string {
	bs := []byte(s)
	for i, c := range bs {
		if c >= 'A' && c <= 'Z' {
			bs[i] = c + ('a' - 'A')
		}
	}
	return string(bs)
}
