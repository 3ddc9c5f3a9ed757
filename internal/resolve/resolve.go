// Package resolve implements NameResolver (spec.md §4.3): it walks a
// query AST against a ScopeStack + Catalog, resolving every
// identifier and emitting E0001 (table not found), E0002 (column not
// found), and E0006 (ambiguous column). It hands off per-expression
// type inference to internal/typeresolve, populating a resolved-
// column-type map as it goes so typeresolve never has to re-resolve a
// name itself.
package resolve

import (
	"sort"

	"sqlsift/internal/catalog"
	"sqlsift/internal/diag"
	"sqlsift/internal/dialect"
	"sqlsift/internal/queryast"
	"sqlsift/internal/scope"
	"sqlsift/internal/typeresolve"
	"sqlsift/internal/types"
)

// Resolver walks one or more query statements against a shared
// Catalog. Construct one per analyzed statement (or reuse across
// statements in the same file; it carries no statement-specific
// state between calls beyond the diagnostics/colTypes accumulators,
// which callers should drain between files).
type Resolver struct {
	db       *catalog.Database
	dialect  dialect.Predicates
	colTypes map[*queryast.ColumnRef]types.SqlType
	tr       *typeresolve.Resolver
	diags    []diag.Diagnostic
}

// New constructs a Resolver against db. dialect may be nil.
func New(db *catalog.Database, d dialect.Predicates) *Resolver {
	r := &Resolver{db: db, dialect: d, colTypes: make(map[*queryast.ColumnRef]types.SqlType)}
	r.tr = typeresolve.New(func(ref *queryast.ColumnRef) (types.SqlType, bool) {
		t, ok := r.colTypes[ref]
		return t, ok
	}, d)
	return r
}

// Diagnostics returns every diagnostic accumulated so far.
func (r *Resolver) Diagnostics() []diag.Diagnostic { return r.diags }

func (r *Resolver) emit(d diag.Diagnostic)   { r.diags = append(r.diags, d) }
func (r *Resolver) emitAll(ds []diag.Diagnostic) { r.diags = append(r.diags, ds...) }

// ResolveSelectForView resolves sel and returns its output columns,
// for SchemaBuilder's view-column-inference pass (spec.md §4.1): a
// partial Analyzer run against the in-progress catalog, reusing the
// same resolution machinery a top-level query uses.
func ResolveSelectForView(r *Resolver, stack *scope.Stack, sel *queryast.SelectStmt) []*catalog.Column {
	return r.resolveSelect(stack, sel)
}

// resolveSelectFrame resolves sel exactly like resolveSelect, but
// marks the frame it pushes as lateral or not: the frame sel's own
// body resolves against must itself carry IsLateral, since that's the
// frame ResolveBareColumn inspects as the stack top.
func (r *Resolver) resolveSelectFrame(stack *scope.Stack, sel *queryast.SelectStmt, lateral bool) []*catalog.Column {
	frame := stack.Push()
	frame.IsLateral = lateral
	defer stack.Pop()
	return r.resolveSelectBody(stack, frame, sel)
}

// ResolveStatement resolves one top-level statement against a fresh
// top-level frame on stack.
func (r *Resolver) ResolveStatement(stack *scope.Stack, stmt queryast.Statement) {
	switch s := stmt.(type) {
	case *queryast.SelectStmt:
		r.resolveSelect(stack, s)
	case *queryast.InsertStmt:
		r.resolveInsert(stack, s)
	case *queryast.UpdateStmt:
		r.resolveUpdate(stack, s)
	case *queryast.DeleteStmt:
		r.resolveDelete(stack, s)
	}
}

// resolveSelect resolves sel (and, if it chains a set operation via
// Rhs/IsSet, the right branch too) and returns the statement's output
// columns, for use as a CTE/derived-table/view column binding.
func (r *Resolver) resolveSelect(stack *scope.Stack, sel *queryast.SelectStmt) []*catalog.Column {
	frame := stack.Push()
	defer stack.Pop()
	return r.resolveSelectBody(stack, frame, sel)
}

// resolveSelectBody resolves sel's FROM/projection/WHERE/etc. against
// frame, which the caller has already pushed (and tagged lateral or
// not, as appropriate).
func (r *Resolver) resolveSelectBody(stack *scope.Stack, frame *scope.Frame, sel *queryast.SelectStmt) []*catalog.Column {
	r.resolveCTEs(stack, frame, sel.CTEs)

	for i := range sel.From {
		binding := r.resolveFromItem(stack, frame, &sel.From[i])
		frame.Relations = append(frame.Relations, binding)
		for _, j := range sel.From[i].Joins {
			r.resolveJoin(stack, frame, j)
		}
	}

	if sel.Where != nil {
		r.resolveExprNames(stack, sel.Where)
		_, diags := r.tr.Infer(sel.Where)
		r.emitAll(diags)
	}

	cols := r.resolveProjection(stack, frame, sel.Projection)

	for _, g := range sel.GroupBy {
		r.resolveExprNames(stack, g)
	}
	if sel.Having != nil {
		r.resolveExprNames(stack, sel.Having)
		_, diags := r.tr.Infer(sel.Having)
		r.emitAll(diags)
	}
	for _, o := range sel.OrderBy {
		r.resolveExprNames(stack, o)
	}
	for _, d := range sel.DistinctOn {
		r.resolveExprNames(stack, d)
	}

	if sel.IsSet && sel.Rhs != nil {
		rhsCols := r.resolveSelect(stack, sel.Rhs)
		return unifySetOp(cols, rhsCols)
	}

	return cols
}

// unifySetOp combines two branches' output columns per spec.md §4.3:
// names come from the left branch, per-column type is the lattice
// meet (Unknown on mismatch). On an arity difference the output has
// the left branch's width; left columns with no right counterpart are
// passed through unchanged.
func unifySetOp(left, right []*catalog.Column) []*catalog.Column {
	out := make([]*catalog.Column, len(left))
	for i, l := range left {
		if i >= len(right) {
			out[i] = l
			continue
		}
		out[i] = &catalog.Column{Name: l.Name, Type: types.Meet(l.Type, right[i].Type), Nullable: l.Nullable || right[i].Nullable}
	}
	return out
}

func (r *Resolver) resolveCTEs(stack *scope.Stack, frame *scope.Frame, ctes []queryast.CTE) {
	for _, cte := range ctes {
		if cte.Recursive {
			placeholder := make([]*catalog.Column, len(cte.ColAliases))
			for i, name := range cte.ColAliases {
				placeholder[i] = &catalog.Column{Name: name, Type: types.Unknown}
			}
			frame.CTEs[cte.Name] = scope.CTEBinding{Name: cte.Name, Columns: placeholder, Recursive: true}
		}

		var cols []*catalog.Column
		if cte.Query != nil {
			cols = r.resolveSelect(stack, cte.Query)
		}
		if len(cte.ColAliases) > 0 {
			cols = applyColAliases(cols, cte.ColAliases)
		}
		frame.CTEs[cte.Name] = scope.CTEBinding{Name: cte.Name, Columns: cols, Recursive: cte.Recursive}
	}
}

func applyColAliases(cols []*catalog.Column, aliases []string) []*catalog.Column {
	out := make([]*catalog.Column, len(aliases))
	for i, a := range aliases {
		if i < len(cols) {
			out[i] = &catalog.Column{Name: a, Type: cols[i].Type, Nullable: cols[i].Nullable}
		} else {
			out[i] = &catalog.Column{Name: a, Type: types.Unknown}
		}
	}
	return out
}

func (r *Resolver) resolveFromItem(stack *scope.Stack, enclosing *scope.Frame, item *queryast.FromItem) scope.RelationBinding {
	switch {
	case item.Subquery != nil:
		cols := r.resolveSelectFrame(stack, item.Subquery, item.Lateral)
		if len(item.ColAliases) > 0 {
			cols = applyColAliases(cols, item.ColAliases)
		}
		name := item.Alias
		if name == "" {
			name = "?subquery"
		}
		return scope.RelationBinding{BindingName: name, Columns: cols, Origin: scope.OriginDerived}

	case item.TVFCall != nil:
		return r.resolveTVF(item)

	default:
		return r.resolveBaseFromItem(stack, item)
	}
}

func (r *Resolver) resolveBaseFromItem(stack *scope.Stack, item *queryast.FromItem) scope.RelationBinding {
	name := item.Table
	bindingName := item.Alias
	if bindingName == "" {
		bindingName = name
	}

	if cte, ok := stack.LookupCTE(name); ok {
		return scope.RelationBinding{BindingName: bindingName, Columns: cte.Columns, Origin: scope.OriginCTE}
	}

	if rel, ok := r.db.FindRelation(name); ok {
		cols := relationColumns(rel)
		origin := scope.OriginTable
		if _, isView := rel.(*catalog.View); isView {
			origin = scope.OriginView
		}
		return scope.RelationBinding{BindingName: bindingName, Columns: cols, Origin: origin}
	}

	r.emit(diag.Diagnostic{
		Code:        diag.UnknownTable,
		Severity:    diag.SeverityError,
		Span:        diag.Span{Line: item.Span.Line, Column: item.Span.Column},
		Message:     "table '" + name + "' not found",
		Suggestions: r.suggestRelationNames(name),
	})
	return scope.RelationBinding{BindingName: bindingName, Origin: scope.OriginTable}
}

func relationColumns(rel catalog.Relation) []*catalog.Column {
	names := rel.ColumnNames()
	cols := make([]*catalog.Column, len(names))
	for i, n := range names {
		c, _ := rel.FindColumn(n)
		cols[i] = c
	}
	return cols
}

func (r *Resolver) resolveTVF(item *queryast.FromItem) scope.RelationBinding {
	bindingName := item.Alias
	if bindingName == "" {
		bindingName = item.TVFCall.Name
	}
	var cols []*catalog.Column
	if r.dialect != nil {
		if sig, ok := r.dialect.TableValuedFunction(item.TVFCall.Name); ok {
			cols = make([]*catalog.Column, len(sig.Columns))
			for i, n := range sig.Columns {
				cols[i] = &catalog.Column{Name: n, Type: types.Integer(32)}
			}
		}
	}
	if cols == nil {
		// Unrecognized TVF: degrade to one Unknown output column
		// (spec.md §9).
		cols = []*catalog.Column{{Name: "value", Type: types.Unknown}}
	}
	return scope.RelationBinding{BindingName: bindingName, Columns: cols, Origin: scope.OriginTableFn}
}

func (r *Resolver) resolveJoin(stack *scope.Stack, frame *scope.Frame, j queryast.JoinClause) {
	binding := r.resolveFromItem(stack, frame, &j.Right)
	frame.Relations = append(frame.Relations, binding)

	if len(j.Using) > 0 {
		for _, col := range j.Using {
			left := findRelationWithColumn(frame.Relations[:len(frame.Relations)-1], col)
			if left == nil || !hasColumn(binding, col) {
				r.emit(diag.Diagnostic{
					Code:     diag.UnknownColumn,
					Severity: diag.SeverityError,
					Span:     diag.Span{Line: j.Span.Line, Column: j.Span.Column},
					Message:  "column '" + col + "' not present in both USING operands",
				})
			}
		}
	}

	if j.On != nil {
		r.resolveExprNames(stack, j.On)
		_, diags := r.tr.InferJoinOn(j.On)
		r.emitAll(diags)
	}
}

func findRelationWithColumn(rels []scope.RelationBinding, col string) *scope.RelationBinding {
	for i := range rels {
		if _, ok := rels[i].FindColumn(col); ok {
			return &rels[i]
		}
	}
	return nil
}

func hasColumn(b scope.RelationBinding, col string) bool {
	_, ok := b.FindColumn(col)
	return ok
}

func (r *Resolver) resolveProjection(stack *scope.Stack, frame *scope.Frame, items []queryast.SelectItem) []*catalog.Column {
	var out []*catalog.Column
	for _, item := range items {
		if item.Star != nil {
			out = append(out, r.expandStar(frame, item.Star)...)
			continue
		}

		r.resolveExprNames(stack, item.Expr)
		t, diags := r.tr.Infer(item.Expr)
		r.emitAll(diags)

		name := item.Alias
		if name == "" {
			if ref, ok := item.Expr.(*queryast.ColumnRef); ok {
				name = ref.Column
			} else {
				name = "?column?"
			}
		}
		col := &catalog.Column{Name: name, Type: t}
		out = append(out, col)
		frame.ProjectionAliases[foldKey(name)] = col
	}
	return out
}

// expandStar expands "*" (Qualifier == "") to every visible relation's
// columns in FROM order, or "t.*" to one relation's columns, dropping
// duplicate case-folded names with first-wins (spec.md §4.1's view-
// inference rule, reused here for any bare/projected star).
func (r *Resolver) expandStar(frame *scope.Frame, star *queryast.StarExpr) []*catalog.Column {
	var out []*catalog.Column
	seen := make(map[string]bool)

	add := func(rel scope.RelationBinding) {
		for _, c := range rel.Columns {
			key := foldKey(c.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}

	if star.Qualifier == "" {
		for _, rel := range frame.Relations {
			add(rel)
		}
		return out
	}

	for _, rel := range frame.Relations {
		if foldKey(rel.BindingName) == foldKey(star.Qualifier) {
			add(rel)
			return out
		}
	}
	return out
}

// resolveExprNames walks expr, resolving every ColumnRef it contains
// against stack and recording E0001/E0002/E0006 plus the resolved
// type into r.colTypes for typeresolve to consume.
func (r *Resolver) resolveExprNames(stack *scope.Stack, expr queryast.Expr) {
	switch e := expr.(type) {
	case nil:
		return
	case *queryast.ColumnRef:
		r.resolveColumnRef(stack, e)
	case *queryast.StarExpr:
		// handled by resolveProjection; a StarExpr elsewhere has no
		// names to resolve.
	case *queryast.Literal:
	case *queryast.BinaryExpr:
		r.resolveExprNames(stack, e.Left)
		r.resolveExprNames(stack, e.Right)
	case *queryast.UnaryExpr:
		r.resolveExprNames(stack, e.Operand)
	case *queryast.FuncCall:
		for _, a := range e.Args {
			r.resolveExprNames(stack, a)
		}
		if e.Window != nil {
			for _, p := range e.Window.PartitionBy {
				r.resolveExprNames(stack, p)
			}
			for _, o := range e.Window.OrderBy {
				r.resolveExprNames(stack, o)
			}
		}
	case *queryast.CaseExpr:
		if e.Operand != nil {
			r.resolveExprNames(stack, e.Operand)
		}
		for _, w := range e.Whens {
			r.resolveExprNames(stack, w.When)
			r.resolveExprNames(stack, w.Then)
		}
		if e.Else != nil {
			r.resolveExprNames(stack, e.Else)
		}
	case *queryast.CastExpr:
		r.resolveExprNames(stack, e.Operand)
	case *queryast.InExpr:
		r.resolveExprNames(stack, e.Operand)
		for _, it := range e.List {
			r.resolveExprNames(stack, it)
		}
		if e.Sub != nil {
			r.resolveSelect(stack, e.Sub.Query)
		}
	case *queryast.Subquery:
		r.resolveSelect(stack, e.Query)
	}
}

func (r *Resolver) resolveColumnRef(stack *scope.Stack, ref *queryast.ColumnRef) {
	if ref.Qualifier != "" {
		if col, ok := stack.ResolveQualifiedColumn(ref.Qualifier, ref.Column); ok {
			r.colTypes[ref] = col.Type
			return
		}
		r.emit(diag.Diagnostic{
			Code:        diag.UnknownColumn,
			Severity:    diag.SeverityError,
			Span:        diag.Span{Line: ref.Span.Line, Column: ref.Span.Column},
			Message:     "column '" + ref.Qualifier + "." + ref.Column + "' not found",
			Suggestions: r.suggestColumnNames(stack, ref.Column),
		})
		return
	}

	result, col, _ := stack.ResolveBareColumn(ref.Column)
	switch result {
	case scope.ColumnFound:
		r.colTypes[ref] = col.Type
	case scope.ColumnAmbiguous:
		r.emit(diag.Diagnostic{
			Code:     diag.AmbiguousColumn,
			Severity: diag.SeverityError,
			Span:     diag.Span{Line: ref.Span.Line, Column: ref.Span.Column},
			Message:  "column '" + ref.Column + "' is ambiguous",
		})
	default:
		// An unknown table (already reported as E0001) is bound with no
		// column list; a bare name that might belong to it stays silent.
		if top := stack.Top(); top != nil {
			for _, rel := range top.Relations {
				if rel.Origin == scope.OriginTable && rel.Columns == nil {
					return
				}
			}
		}
		r.emit(diag.Diagnostic{
			Code:        diag.UnknownColumn,
			Severity:    diag.SeverityError,
			Span:        diag.Span{Line: ref.Span.Line, Column: ref.Span.Column},
			Message:     "column '" + ref.Column + "' not found",
			Suggestions: r.suggestColumnNames(stack, ref.Column),
		})
	}
}

func (r *Resolver) resolveInsert(stack *scope.Stack, stmt *queryast.InsertStmt) {
	tbl, ok := r.db.FindTable(stmt.Table)
	if !ok {
		r.emit(diag.Diagnostic{
			Code:        diag.UnknownTable,
			Severity:    diag.SeverityError,
			Span:        diag.Span{Line: stmt.Span.Line, Column: stmt.Span.Column},
			Message:     "table '" + stmt.Table + "' not found",
			Suggestions: r.suggestRelationNames(stmt.Table),
		})
		return
	}

	targetCols := stmt.Columns
	if len(targetCols) == 0 {
		targetCols = tbl.ColumnNames()
	}
	for _, name := range stmt.Columns {
		if _, ok := tbl.FindColumn(name); !ok {
			r.emit(diag.Diagnostic{
				Code:        diag.UnknownColumn,
				Severity:    diag.SeverityError,
				Span:        diag.Span{Line: stmt.Span.Line, Column: stmt.Span.Column},
				Message:     "column '" + name + "' not found on table '" + tbl.Name + "'",
				Suggestions: r.suggestTableColumnNames(tbl, name),
			})
		}
	}

	for _, row := range stmt.Values {
		if len(row) != len(targetCols) {
			r.emit(diag.Diagnostic{
				Code:     diag.InsertArity,
				Severity: diag.SeverityError,
				Span:     diag.Span{Line: stmt.Span.Line, Column: stmt.Span.Column},
				Message:  "expected " + itoa(len(targetCols)) + " values, got " + itoa(len(row)),
			})
			continue
		}
		for i, v := range row {
			r.resolveExprNames(stack, v)
			vt, diags := r.tr.Infer(v)
			r.emitAll(diags)
			if col, ok := tbl.FindColumn(targetCols[i]); ok && !vt.IsUnknown() && !col.Type.IsUnknown() && !types.Compatible(col.Type, vt) {
				r.emit(diag.Diagnostic{
					Code:     diag.TypeMismatch,
					Severity: diag.SeverityError,
					Span:     diag.Span{Line: stmt.Span.Line, Column: stmt.Span.Column},
					Message:  "value type " + vt.String() + " incompatible with column '" + col.Name + "' of type " + col.Type.String(),
				})
			}
		}
	}

	if stmt.Query != nil {
		r.resolveSelect(stack, stmt.Query)
	}
}

func (r *Resolver) resolveUpdate(stack *scope.Stack, stmt *queryast.UpdateStmt) {
	tbl, ok := r.db.FindTable(stmt.Table)
	if !ok {
		r.emit(diag.Diagnostic{
			Code:        diag.UnknownTable,
			Severity:    diag.SeverityError,
			Span:        diag.Span{Line: stmt.Span.Line, Column: stmt.Span.Column},
			Message:     "table '" + stmt.Table + "' not found",
			Suggestions: r.suggestRelationNames(stmt.Table),
		})
		return
	}

	frame := stack.Push()
	defer stack.Pop()
	bindingName := stmt.Alias
	if bindingName == "" {
		bindingName = tbl.Name
	}
	frame.Relations = append(frame.Relations, scope.RelationBinding{BindingName: bindingName, Columns: relationColumns(tbl)})
	for i := range stmt.From {
		binding := r.resolveFromItem(stack, frame, &stmt.From[i])
		frame.Relations = append(frame.Relations, binding)
	}

	for _, a := range stmt.Assignments {
		col, ok := tbl.FindColumn(a.Column)
		if !ok {
			r.emit(diag.Diagnostic{
				Code:        diag.UnknownColumn,
				Severity:    diag.SeverityError,
				Span:        diag.Span{Line: a.Span.Line, Column: a.Span.Column},
				Message:     "column '" + a.Column + "' not found on table '" + tbl.Name + "'",
				Suggestions: r.suggestTableColumnNames(tbl, a.Column),
			})
			continue
		}
		r.resolveExprNames(stack, a.Value)
		vt, diags := r.tr.Infer(a.Value)
		r.emitAll(diags)
		if !vt.IsUnknown() && !col.Type.IsUnknown() && !types.Compatible(col.Type, vt) {
			r.emit(diag.Diagnostic{
				Code:     diag.TypeMismatch,
				Severity: diag.SeverityError,
				Span:     diag.Span{Line: a.Span.Line, Column: a.Span.Column},
				Message:  "value type " + vt.String() + " incompatible with column '" + col.Name + "' of type " + col.Type.String(),
			})
		}
	}

	if stmt.Where != nil {
		r.resolveExprNames(stack, stmt.Where)
		_, diags := r.tr.Infer(stmt.Where)
		r.emitAll(diags)
	}
}

func (r *Resolver) resolveDelete(stack *scope.Stack, stmt *queryast.DeleteStmt) {
	tbl, ok := r.db.FindTable(stmt.Table)
	if !ok {
		r.emit(diag.Diagnostic{
			Code:        diag.UnknownTable,
			Severity:    diag.SeverityError,
			Span:        diag.Span{Line: stmt.Span.Line, Column: stmt.Span.Column},
			Message:     "table '" + stmt.Table + "' not found",
			Suggestions: r.suggestRelationNames(stmt.Table),
		})
		return
	}

	frame := stack.Push()
	defer stack.Pop()
	bindingName := stmt.Alias
	if bindingName == "" {
		bindingName = tbl.Name
	}
	frame.Relations = append(frame.Relations, scope.RelationBinding{BindingName: bindingName, Columns: relationColumns(tbl)})
	for i := range stmt.Using {
		binding := r.resolveFromItem(stack, frame, &stmt.Using[i])
		frame.Relations = append(frame.Relations, binding)
	}

	if stmt.Where != nil {
		r.resolveExprNames(stack, stmt.Where)
		_, diags := r.tr.Infer(stmt.Where)
		r.emitAll(diags)
	}
}

func (r *Resolver) suggestRelationNames(name string) []string {
	var candidates []string
	candidates = append(candidates, r.db.Tables.Names()...)
	candidates = append(candidates, r.db.Views.Names()...)
	return suggest(name, candidates)
}

func (r *Resolver) suggestColumnNames(stack *scope.Stack, name string) []string {
	top := stack.Top()
	if top == nil {
		return nil
	}
	var candidates []string
	for _, rel := range top.Relations {
		for _, c := range rel.Columns {
			candidates = append(candidates, c.Name)
		}
	}
	return suggest(name, candidates)
}

func (r *Resolver) suggestTableColumnNames(tbl *catalog.Table, name string) []string {
	return suggest(name, tbl.ColumnNames())
}

// suggest returns candidates within edit distance 2 of name, sharing
// at least a one-character prefix (spec.md §4.3/§9), sorted and
// capped to keep messages short.
func suggest(name string, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if len(c) == 0 || len(name) == 0 {
			continue
		}
		if foldKey(c[:1]) != foldKey(name[:1]) {
			continue
		}
		if editDistance(foldKey(name), foldKey(c)) <= 2 {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func editDistance(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func foldKey(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
