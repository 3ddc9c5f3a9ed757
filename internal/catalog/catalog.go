// Package catalog is the in-memory schema model NameResolver and
// TypeResolver look up relations and columns against. It is trimmed
// from the teacher's internal/core/schema.go Table/Column/Constraint/
// Index shapes: the teacher's ~15 per-dialect TableOptions/
// ColumnOptions structs (storage engine, collation, TiDB placement
// policy knobs) are migration-generation concerns with nothing to read
// them here, and are dropped.
package catalog

import "sqlsift/internal/types"

// Database is the root of the catalog: every table, view, and enum
// type known to the analyzer for one analysis run.
type Database struct {
	Tables *ObjectEntry[*Table]
	Views  *ObjectEntry[*View]
	Enums  *ObjectEntry[*Enum]
}

// NewDatabase constructs an empty catalog.
func NewDatabase() *Database {
	return &Database{
		Tables: NewObjectEntry[*Table](),
		Views:  NewObjectEntry[*View](),
		Enums:  NewObjectEntry[*Enum](),
	}
}

// FindTable looks up a table by case-insensitive name.
func (d *Database) FindTable(name string) (*Table, bool) { return d.Tables.Get(name) }

// FindView looks up a view by case-insensitive name.
func (d *Database) FindView(name string) (*View, bool) { return d.Views.Get(name) }

// FindEnum looks up an enum type by case-insensitive name.
func (d *Database) FindEnum(name string) (*Enum, bool) { return d.Enums.Get(name) }

// FindRelation looks up name as either a table or a view, tables
// taking precedence when a name somehow collides (the builder
// prevents that in practice).
func (d *Database) FindRelation(name string) (Relation, bool) {
	if t, ok := d.Tables.Get(name); ok {
		return t, true
	}
	if v, ok := d.Views.Get(name); ok {
		return v, true
	}
	return nil, false
}

// Relation is implemented by Table and View: anything with a column
// list a FROM item can resolve against.
type Relation interface {
	RelationName() string
	ColumnNames() []string
	FindColumn(name string) (*Column, bool)
}

// Column is one column of a Table or View.
type Column struct {
	Name    string
	Type    types.SqlType
	Nullable bool

	// HasDefault reports whether the column carries a default
	// expression; the expression text itself is not modeled, since no
	// component needs to evaluate it.
	HasDefault bool

	// GeneratedAsIdentity marks an auto-incrementing / identity column.
	GeneratedAsIdentity bool
}

// ConstraintKind mirrors ddlast.ConstraintKind at the catalog layer.
type ConstraintKind int

const (
	ConstraintPrimaryKey ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
)

// Constraint is a resolved table constraint.
type Constraint struct {
	Name       string
	Kind       ConstraintKind
	Columns    []string
	RefTable   string
	RefColumns []string
}

// Index is a resolved table index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is a base relation with columns, constraints, and indexes.
type Table struct {
	Name        string
	Columns     []*Column
	Constraints []*Constraint
	Indexes     []*Index

	// IsIdentityPK reports whether the table's primary key is a single
	// auto-generated identity column, a common FK-target shape queries
	// lean on for arity/type checks.
	IsIdentityPK bool

	colsByName map[string]*Column
}

// NewTable constructs an empty table. Callers append to Columns,
// Constraints, and Indexes directly, then call IndexColumns once the
// column list is final.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) RelationName() string { return t.Name }

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// IndexColumns (re)builds the case-insensitive column lookup index.
// Must be called after Columns is populated and before FindColumn is
// used.
func (t *Table) IndexColumns() {
	t.colsByName = make(map[string]*Column, len(t.Columns))
	for _, c := range t.Columns {
		t.colsByName[foldKey(c.Name)] = c
	}
}

func (t *Table) FindColumn(name string) (*Column, bool) {
	if t.colsByName == nil {
		t.IndexColumns()
	}
	c, ok := t.colsByName[foldKey(name)]
	return c, ok
}

// PrimaryKey returns the table's primary key constraint, if any.
func (t *Table) PrimaryKey() *Constraint {
	for _, c := range t.Constraints {
		if c.Kind == ConstraintPrimaryKey {
			return c
		}
	}
	return nil
}

// FindConstraint looks up a constraint by case-insensitive name.
func (t *Table) FindConstraint(name string) (*Constraint, bool) {
	for _, c := range t.Constraints {
		if foldKey(c.Name) == foldKey(name) {
			return c, true
		}
	}
	return nil, false
}

// FindIndex looks up an index by case-insensitive name.
func (t *Table) FindIndex(name string) (*Index, bool) {
	for _, idx := range t.Indexes {
		if foldKey(idx.Name) == foldKey(name) {
			return idx, true
		}
	}
	return nil, false
}

// View is a relation whose columns are inferred from its defining
// query by SchemaBuilder's nested analysis pass, rather than declared.
type View struct {
	Name    string
	Columns []*Column

	// Resolved is false when SchemaBuilder had no QueryParser or the
	// parser could not read the view's query; such a view has no
	// columns, and the rest of the catalog build goes on regardless.
	Resolved bool

	colsByName map[string]*Column
}

func NewView(name string) *View { return &View{Name: name} }

func (v *View) RelationName() string { return v.Name }

func (v *View) ColumnNames() []string {
	names := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		names[i] = c.Name
	}
	return names
}

func (v *View) IndexColumns() {
	v.colsByName = make(map[string]*Column, len(v.Columns))
	for _, c := range v.Columns {
		v.colsByName[foldKey(c.Name)] = c
	}
}

func (v *View) FindColumn(name string) (*Column, bool) {
	if v.colsByName == nil {
		v.IndexColumns()
	}
	c, ok := v.colsByName[foldKey(name)]
	return c, ok
}

// Enum is a named enumerated type declared via CREATE TYPE ... AS ENUM.
type Enum struct {
	Name   string
	Labels []string
}

func foldKey(s string) string {
	// Identifiers fold to lower-case for lookup purposes across all
	// three supported dialects (spec.md §3 invariant 1); dialect-specific
	// quoted-identifier case sensitivity is out of scope.
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
