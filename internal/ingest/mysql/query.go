package mysql

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/opcode"

	"sqlsift/internal/queryast"
)

// ParseQuery parses one query_source string into queryast statements,
// in source order. This is the query-analysis counterpart to ParseDDL
// and also what SchemaBuilder calls on a CREATE VIEW's stored query
// text to infer the view's output columns.
func (ing *Ingester) ParseQuery(raw string) ([]queryast.Statement, error) {
	stmtNodes, _, err := ing.p.Parse(raw, "", "")
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	out := make([]queryast.Statement, 0, len(stmtNodes))
	for _, n := range stmtNodes {
		if s := convertStatement(n); s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

// ParseSelect parses a single SELECT (a CREATE VIEW body, typically)
// and returns its queryast shape, or ok=false if raw doesn't parse to
// exactly one recognized query statement.
func (ing *Ingester) ParseSelect(raw string) (*queryast.SelectStmt, bool) {
	stmts, err := ing.ParseQuery(raw)
	if err != nil || len(stmts) != 1 {
		return nil, false
	}
	sel, ok := stmts[0].(*queryast.SelectStmt)
	return sel, ok
}

func convertStatement(n ast.StmtNode) queryast.Statement {
	switch s := n.(type) {
	case *ast.SelectStmt:
		return convertSelect(s)
	case *ast.SetOprStmt:
		return convertSetOpr(s)
	case *ast.InsertStmt:
		return convertInsert(s)
	case *ast.UpdateStmt:
		return convertUpdate(s)
	case *ast.DeleteStmt:
		return convertDelete(s)
	default:
		return nil
	}
}

func convertSelect(stmt *ast.SelectStmt) *queryast.SelectStmt {
	out := &queryast.SelectStmt{}

	if stmt.With != nil {
		for _, cte := range stmt.With.CTEs {
			c := queryast.CTE{Name: cte.Name.O}
			for _, col := range cte.ColNameList {
				c.ColAliases = append(c.ColAliases, col.O)
			}
			if cte.Query != nil && cte.Query.Query != nil {
				c.Query = convertResultSetNode(cte.Query.Query)
			}
			c.Recursive = stmt.With.IsRecursive
			out.CTEs = append(out.CTEs, c)
		}
	}

	if stmt.SelectStmtOpts != nil {
		out.Distinct = stmt.SelectStmtOpts.Distinct
	}
	if stmt.Distinct {
		out.Distinct = true
	}

	if stmt.Fields != nil {
		for _, f := range stmt.Fields.Fields {
			out.Projection = append(out.Projection, convertSelectField(f))
		}
	}

	if stmt.From != nil && stmt.From.TableRefs != nil {
		out.From = convertJoinChain(stmt.From.TableRefs)
	}

	if stmt.Where != nil {
		out.Where = convertExpr(stmt.Where)
	}
	if stmt.GroupBy != nil {
		for _, item := range stmt.GroupBy.Items {
			out.GroupBy = append(out.GroupBy, convertExpr(item.Expr))
		}
	}
	if stmt.Having != nil {
		out.Having = convertExpr(stmt.Having.Expr)
	}
	if stmt.OrderBy != nil {
		for _, item := range stmt.OrderBy.Items {
			out.OrderBy = append(out.OrderBy, convertExpr(item.Expr))
		}
	}
	if stmt.Limit != nil && stmt.Limit.Count != nil {
		out.Limit = convertExpr(stmt.Limit.Count)
	}

	return out
}

// convertResultSetNode converts a node appearing where a query is
// expected (a CTE body, a derived table, a set-operation branch).
func convertResultSetNode(n ast.ResultSetNode) *queryast.SelectStmt {
	switch s := n.(type) {
	case *ast.SelectStmt:
		return convertSelect(s)
	case *ast.SetOprStmt:
		return convertSetOpr(s)
	default:
		return nil
	}
}

func convertSetOpr(stmt *ast.SetOprStmt) *queryast.SelectStmt {
	if stmt.SelectList == nil || len(stmt.SelectList.Selects) == 0 {
		return &queryast.SelectStmt{}
	}

	selects := stmt.SelectList.Selects
	var branches []*queryast.SelectStmt
	var ops []queryast.SetOpKind
	for _, sel := range selects {
		var branch *queryast.SelectStmt
		var opAfter *ast.SetOprType
		switch n := sel.(type) {
		case *ast.SelectStmt:
			branch = convertSelect(n)
			opAfter = n.AfterSetOperator
		case *ast.SetOprSelectList:
			// Nested parenthesized set-operation list; flatten best-effort
			// by taking its first branch.
			if len(n.Selects) > 0 {
				branch = convertResultSetNode(n.Selects[0])
			}
		}
		if branch == nil {
			branch = &queryast.SelectStmt{}
		}
		branches = append(branches, branch)
		if opAfter != nil {
			ops = append(ops, convertSetOpKind(*opAfter))
		} else {
			ops = append(ops, queryast.SetOpUnion)
		}
	}

	// Chain right-nested: a op1 (b op2 (c ...)). A SelectStmt's own
	// fields describe its left branch and Rhs holds the rest of the
	// chain, so every branch is kept.
	result := branches[len(branches)-1]
	for i := len(branches) - 2; i >= 0; i-- {
		node := *branches[i]
		node.IsSet, node.SetOp, node.Rhs = true, ops[i+1], result
		result = &node
	}
	return result
}

func convertSetOpKind(t ast.SetOprType) queryast.SetOpKind {
	switch t {
	case ast.Union:
		return queryast.SetOpUnion
	case ast.UnionAll:
		return queryast.SetOpUnionAll
	case ast.Intersect, ast.IntersectAll:
		return queryast.SetOpIntersect
	case ast.Except, ast.ExceptAll:
		return queryast.SetOpExcept
	default:
		return queryast.SetOpUnion
	}
}

func convertSelectField(f *ast.SelectField) queryast.SelectItem {
	if f.WildCard != nil {
		qualifier := ""
		if f.WildCard.Table.L != "" {
			qualifier = f.WildCard.Table.O
		}
		return queryast.SelectItem{Star: &queryast.StarExpr{Qualifier: qualifier}}
	}
	item := queryast.SelectItem{Expr: convertExpr(f.Expr)}
	if f.AsName.L != "" {
		item.Alias = f.AsName.O
	}
	return item
}

// convertJoinChain flattens a (possibly deeply nested) *ast.Join into
// a single FromItem with its Joins attached, matching queryast's flat
// FromItem.Joins shape.
func convertJoinChain(n ast.ResultSetNode) []queryast.FromItem {
	join, ok := n.(*ast.Join)
	if !ok {
		return []queryast.FromItem{convertFromItem(n)}
	}
	if join.Right == nil {
		return convertJoinChain(join.Left)
	}

	left := convertJoinChain(join.Left)
	right := convertFromItem(join.Right)
	clause := queryast.JoinClause{Kind: convertJoinKind(join), Right: right}
	if join.On != nil {
		clause.On = convertExpr(join.On.Expr)
	}
	for _, col := range join.Using {
		clause.Using = append(clause.Using, col.Name.O)
	}

	if len(left) == 0 {
		return []queryast.FromItem{{Joins: []queryast.JoinClause{clause}}}
	}
	last := &left[len(left)-1]
	last.Joins = append(last.Joins, clause)
	return left
}

func convertJoinKind(join *ast.Join) queryast.JoinKind {
	switch join.Tp {
	case ast.LeftJoin:
		return queryast.JoinLeft
	case ast.RightJoin:
		return queryast.JoinRight
	case ast.CrossJoin:
		if join.On == nil && len(join.Using) == 0 {
			return queryast.JoinCross
		}
		return queryast.JoinInner
	default:
		return queryast.JoinInner
	}
}

func convertFromItem(n ast.ResultSetNode) queryast.FromItem {
	switch s := n.(type) {
	case *ast.TableSource:
		item := convertFromSource(s.Source)
		if s.AsName.L != "" {
			item.Alias = s.AsName.O
		}
		return item
	case *ast.TableName:
		name := s.Name.O
		if s.Schema.L != "" {
			name = s.Schema.O + "." + name
		}
		return queryast.FromItem{Table: name}
	case *ast.Join:
		nested := convertJoinChain(s)
		if len(nested) == 1 {
			return nested[0]
		}
		// A deeply nested parenthesized join tree collapsing to more
		// than one item: fold joins onto the first, best-effort.
		first := nested[0]
		for _, extra := range nested[1:] {
			first.Joins = append(first.Joins, extra.Joins...)
		}
		return first
	default:
		return queryast.FromItem{}
	}
}

func convertFromSource(n ast.ResultSetNode) queryast.FromItem {
	switch s := n.(type) {
	case *ast.TableName:
		name := s.Name.O
		if s.Schema.L != "" {
			name = s.Schema.O + "." + name
		}
		return queryast.FromItem{Table: name}
	case *ast.SelectStmt:
		return queryast.FromItem{Subquery: convertSelect(s)}
	case *ast.SetOprStmt:
		return queryast.FromItem{Subquery: convertSetOpr(s)}
	default:
		return queryast.FromItem{}
	}
}

func convertInsert(stmt *ast.InsertStmt) *queryast.InsertStmt {
	out := &queryast.InsertStmt{}
	if stmt.Table != nil && stmt.Table.TableRefs != nil {
		if items := convertJoinChain(stmt.Table.TableRefs); len(items) > 0 {
			out.Table = items[0].Table
		}
	}
	for _, col := range stmt.Columns {
		out.Columns = append(out.Columns, col.Name.O)
	}
	for _, row := range stmt.Lists {
		var exprs []queryast.Expr
		for _, e := range row {
			exprs = append(exprs, convertExpr(e))
		}
		out.Values = append(out.Values, exprs)
	}
	if stmt.Select != nil {
		out.Query = convertResultSetNode(stmt.Select)
	}
	return out
}

func convertUpdate(stmt *ast.UpdateStmt) *queryast.UpdateStmt {
	out := &queryast.UpdateStmt{}
	if stmt.TableRefs != nil && stmt.TableRefs.TableRefs != nil {
		items := convertJoinChain(stmt.TableRefs.TableRefs)
		if len(items) > 0 {
			out.Table = items[0].Table
			out.Alias = items[0].Alias
			out.From = items[1:]
		}
	}
	for _, a := range stmt.List {
		out.Assignments = append(out.Assignments, queryast.Assignment{
			Column: a.Column.Name.O,
			Value:  convertExpr(a.Expr),
		})
	}
	if stmt.Where != nil {
		out.Where = convertExpr(stmt.Where)
	}
	return out
}

func convertDelete(stmt *ast.DeleteStmt) *queryast.DeleteStmt {
	out := &queryast.DeleteStmt{}
	if stmt.TableRefs != nil && stmt.TableRefs.TableRefs != nil {
		items := convertJoinChain(stmt.TableRefs.TableRefs)
		if len(items) > 0 {
			out.Table = items[0].Table
			out.Alias = items[0].Alias
			out.Using = items[1:]
		}
	}
	if stmt.Where != nil {
		out.Where = convertExpr(stmt.Where)
	}
	return out
}

func convertExpr(n ast.ExprNode) queryast.Expr {
	if n == nil {
		return nil
	}
	switch e := n.(type) {
	case *ast.ColumnNameExpr:
		qualifier := ""
		if e.Name.Table.L != "" {
			qualifier = e.Name.Table.O
		}
		return &queryast.ColumnRef{Qualifier: qualifier, Column: e.Name.Name.O}

	case *ast.BinaryOperationExpr:
		if op, ok := convertBinaryOp(e.Op); ok {
			return &queryast.BinaryExpr{Op: op, Left: convertExpr(e.L), Right: convertExpr(e.R)}
		}
		return &queryast.Literal{Kind: queryast.LiteralNull}

	case *ast.UnaryOperationExpr:
		switch e.Op {
		case opcode.Not, opcode.Not2:
			return &queryast.UnaryExpr{Op: queryast.OpNot, Operand: convertExpr(e.V)}
		case opcode.Minus:
			return &queryast.UnaryExpr{Op: queryast.OpNeg, Operand: convertExpr(e.V)}
		default:
			return convertExpr(e.V)
		}

	case *ast.IsNullExpr:
		op := queryast.OpIsNull
		if e.Not {
			op = queryast.OpIsNotNull
		}
		return &queryast.UnaryExpr{Op: op, Operand: convertExpr(e.Expr)}

	case *ast.IsTruthExpr:
		return convertExpr(e.Expr)

	case *ast.BetweenExpr:
		lower := &queryast.BinaryExpr{Op: queryast.OpGte, Left: convertExpr(e.Expr), Right: convertExpr(e.Left)}
		upper := &queryast.BinaryExpr{Op: queryast.OpLte, Left: convertExpr(e.Expr), Right: convertExpr(e.Right)}
		between := queryast.Expr(&queryast.BinaryExpr{Op: queryast.OpAnd, Left: lower, Right: upper})
		if e.Not {
			return &queryast.UnaryExpr{Op: queryast.OpNot, Operand: between}
		}
		return between

	case *ast.PatternInExpr:
		in := &queryast.InExpr{Operand: convertExpr(e.Expr), Negated: e.Not}
		if e.Sel != nil {
			if sub, ok := e.Sel.(*ast.SubqueryExpr); ok {
				in.Sub = &queryast.Subquery{Query: convertResultSetNode(sub.Query)}
			}
		} else {
			for _, item := range e.List {
				in.List = append(in.List, convertExpr(item))
			}
		}
		return in

	case *ast.PatternLikeOrIlikeExpr:
		call := &queryast.FuncCall{Name: "LIKE", Args: []queryast.Expr{convertExpr(e.Expr), convertExpr(e.Pattern)}}
		if e.Not {
			return &queryast.UnaryExpr{Op: queryast.OpNot, Operand: call}
		}
		return call

	case *ast.ParenthesesExpr:
		return convertExpr(e.Expr)

	case *ast.FuncCallExpr:
		call := &queryast.FuncCall{Name: e.FnName.O}
		for _, a := range e.Args {
			call.Args = append(call.Args, convertExpr(a))
		}
		return call

	case *ast.AggregateFuncExpr:
		call := &queryast.FuncCall{Name: e.F, Distinct: e.Distinct}
		for _, a := range e.Args {
			call.Args = append(call.Args, convertExpr(a))
		}
		return call

	case *ast.WindowFuncExpr:
		call := &queryast.FuncCall{Name: e.Name, Window: &queryast.WindowSpec{}}
		for _, a := range e.Args {
			call.Args = append(call.Args, convertExpr(a))
		}
		for _, p := range e.Spec.PartitionBy.Items {
			call.Window.PartitionBy = append(call.Window.PartitionBy, convertExpr(p.Expr))
		}
		for _, o := range e.Spec.OrderBy.Items {
			call.Window.OrderBy = append(call.Window.OrderBy, convertExpr(o.Expr))
		}
		return call

	case *ast.CaseExpr:
		c := &queryast.CaseExpr{}
		if e.Value != nil {
			c.Operand = convertExpr(e.Value)
		}
		for _, w := range e.WhenClauses {
			c.Whens = append(c.Whens, queryast.CaseWhen{When: convertExpr(w.Expr), Then: convertExpr(w.Result)})
		}
		if e.ElseClause != nil {
			c.Else = convertExpr(e.ElseClause)
		}
		return c

	case *ast.SubqueryExpr:
		return &queryast.Subquery{Query: convertResultSetNode(e.Query)}

	case ast.ValueExpr:
		return convertLiteral(e)

	default:
		return &queryast.Literal{Kind: queryast.LiteralNull, Text: exprToString(n)}
	}
}

func convertLiteral(v ast.ValueExpr) *queryast.Literal {
	datum := v.GetValue()
	if datum == nil {
		return &queryast.Literal{Kind: queryast.LiteralNull}
	}
	switch val := datum.(type) {
	case int64, uint64:
		return &queryast.Literal{Kind: queryast.LiteralInteger, Text: fmt.Sprint(val)}
	case float32, float64:
		return &queryast.Literal{Kind: queryast.LiteralFloat, Text: fmt.Sprint(val)}
	case bool:
		return &queryast.Literal{Kind: queryast.LiteralBoolean, Text: fmt.Sprint(val)}
	case string:
		return &queryast.Literal{Kind: queryast.LiteralString, Text: val}
	default:
		return &queryast.Literal{Kind: queryast.LiteralString, Text: fmt.Sprint(val)}
	}
}

func convertBinaryOp(op opcode.Op) (queryast.BinaryOp, bool) {
	switch op {
	case opcode.Plus:
		return queryast.OpAdd, true
	case opcode.Minus:
		return queryast.OpSub, true
	case opcode.Mul:
		return queryast.OpMul, true
	case opcode.Div:
		return queryast.OpDiv, true
	case opcode.Mod, opcode.IntDiv:
		return queryast.OpMod, true
	case opcode.EQ:
		return queryast.OpEq, true
	case opcode.NE:
		return queryast.OpNeq, true
	case opcode.LT:
		return queryast.OpLt, true
	case opcode.LE:
		return queryast.OpLte, true
	case opcode.GT:
		return queryast.OpGt, true
	case opcode.GE:
		return queryast.OpGte, true
	case opcode.LogicAnd:
		return queryast.OpAnd, true
	case opcode.LogicOr:
		return queryast.OpOr, true
	default:
		return 0, false
	}
}
