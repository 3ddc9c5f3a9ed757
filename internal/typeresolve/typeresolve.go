// Package typeresolve infers the SqlType of a resolved query
// expression and emits type-mismatch diagnostics (spec.md §4.4). It
// runs after internal/resolve has resolved every ColumnRef against
// the catalog: typeresolve never looks a name up itself, it only
// consults the ColumnTypeLookup resolve.Resolver hands it, keeping the
// two passes decoupled per spec.md §2's component split.
package typeresolve

import (
	"strconv"

	"sqlsift/internal/diag"
	"sqlsift/internal/dialect"
	"sqlsift/internal/queryast"
	"sqlsift/internal/types"
)

// ColumnTypeLookup returns the resolved type of a column reference
// internal/resolve already resolved, and false if that reference could
// not be resolved (name resolution already reported it; typeresolve
// must then treat it as Unknown without emitting of its own, per the
// non-cascade property).
type ColumnTypeLookup func(*queryast.ColumnRef) (types.SqlType, bool)

// Resolver infers expression types bottom-up over a resolved query.
type Resolver struct {
	lookup  ColumnTypeLookup
	dialect dialect.Predicates
}

// New constructs a Resolver. dialect may be nil; dialect-specific
// inference (none currently needed beyond NameResolver's FROM-item
// handling) simply degrades.
func New(lookup ColumnTypeLookup, d dialect.Predicates) *Resolver {
	return &Resolver{lookup: lookup, dialect: d}
}

// Infer computes expr's type and any E0003 diagnostics found within
// it. It is the default entry point; use InferJoinOn for a JOIN ON
// clause, whose top-level equality conjuncts emit E0007 instead.
func (r *Resolver) Infer(expr queryast.Expr) (types.SqlType, []diag.Diagnostic) {
	return r.infer(expr, false)
}

// InferJoinOn computes a JOIN ON condition's type, emitting E0007
// (rather than E0003) for top-level conjuncts of equality comparisons
// (spec.md §4.4).
func (r *Resolver) InferJoinOn(expr queryast.Expr) (types.SqlType, []diag.Diagnostic) {
	return r.infer(expr, true)
}

func (r *Resolver) infer(expr queryast.Expr, joinOn bool) (types.SqlType, []diag.Diagnostic) {
	if expr == nil {
		return types.Unknown, nil
	}

	switch e := expr.(type) {
	case *queryast.Literal:
		return r.inferLiteral(e), nil

	case *queryast.ColumnRef:
		if t, ok := r.lookup(e); ok {
			return t, nil
		}
		return types.Unknown, nil

	case *queryast.StarExpr:
		return types.Unknown, nil

	case *queryast.BinaryExpr:
		return r.inferBinary(e, joinOn)

	case *queryast.UnaryExpr:
		return r.inferUnary(e)

	case *queryast.FuncCall:
		return r.inferFuncCall(e)

	case *queryast.CaseExpr:
		return r.inferCase(e)

	case *queryast.CastExpr:
		// CAST never raises E0003 (spec.md §4.4); operand is still
		// walked so nested mismatches are still reported.
		_, diags := r.infer(e.Operand, false)
		return types.FromRawType(e.RawType), diags

	case *queryast.InExpr:
		return r.inferIn(e)

	case *queryast.Subquery:
		// Scalar/IN subquery column typing is out of NameResolver's
		// remit here (it resolves the subquery's own FROM/projection
		// separately); typeresolve treats its result as Unknown.
		return types.Unknown, nil

	default:
		return types.Unknown, nil
	}
}

func (r *Resolver) inferLiteral(lit *queryast.Literal) types.SqlType {
	switch lit.Kind {
	case queryast.LiteralNull:
		return types.Unknown
	case queryast.LiteralInteger:
		return integerLiteralType(lit.Text)
	case queryast.LiteralFloat:
		return types.Float(64)
	case queryast.LiteralString:
		return types.Text(false)
	case queryast.LiteralBoolean:
		return types.Boolean
	default:
		return types.Unknown
	}
}

func integerLiteralType(text string) types.SqlType {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// Out of int64 range or unparseable (shouldn't happen for a
		// well-formed literal) — widest width, never emits on its own.
		return types.Integer(64)
	}
	switch {
	case v >= -128 && v <= 127:
		return types.Integer(8)
	case v >= -32768 && v <= 32767:
		return types.Integer(16)
	case v >= -2147483648 && v <= 2147483647:
		return types.Integer(32)
	default:
		return types.Integer(64)
	}
}

func comparisonOp(op queryast.BinaryOp) bool {
	switch op {
	case queryast.OpEq, queryast.OpNeq, queryast.OpLt, queryast.OpLte, queryast.OpGt, queryast.OpGte, queryast.OpIsDistinctFrom:
		return true
	default:
		return false
	}
}

func arithmeticOp(op queryast.BinaryOp) bool {
	switch op {
	case queryast.OpAdd, queryast.OpSub, queryast.OpMul, queryast.OpDiv, queryast.OpMod:
		return true
	default:
		return false
	}
}

func (r *Resolver) inferBinary(e *queryast.BinaryExpr, joinOn bool) (types.SqlType, []diag.Diagnostic) {
	// Top-level AND in a JOIN ON condition: recurse into each conjunct
	// still under joinOn=true so every equality gets E0007, not just
	// the outermost expression.
	if joinOn && e.Op == queryast.OpAnd {
		_, ld := r.infer(e.Left, true)
		_, rd := r.infer(e.Right, true)
		return types.Boolean, append(ld, rd...)
	}

	lt, ld := r.infer(e.Left, false)
	rt, rd := r.infer(e.Right, false)
	diags := append(ld, rd...)

	switch {
	case comparisonOp(e.Op):
		if !lt.IsUnknown() && !rt.IsUnknown() && !types.Compatible(lt, rt) {
			code := diag.TypeMismatch
			if joinOn && e.Op == queryast.OpEq {
				code = diag.JoinTypeMismatch
			}
			diags = append(diags, diag.Diagnostic{
				Code:     code,
				Severity: diag.SeverityError,
				Span:     diag.Span{Line: e.Span.Line, Column: e.Span.Column},
				Message:  "incompatible operand types " + lt.String() + " and " + rt.String(),
			})
		}
		return types.Boolean, diags

	case arithmeticOp(e.Op):
		lUnknown, rUnknown := lt.IsUnknown(), rt.IsUnknown()
		if !lUnknown && !lt.IsNumeric() {
			diags = append(diags, mismatchDiag(e.Span, "expected numeric operand, got "+lt.String()))
		}
		if !rUnknown && !rt.IsNumeric() {
			diags = append(diags, mismatchDiag(e.Span, "expected numeric operand, got "+rt.String()))
		}
		if lUnknown {
			return rt, diags
		}
		if rUnknown {
			return lt, diags
		}
		return types.Meet(lt, rt), diags

	case e.Op == queryast.OpConcat:
		if !lt.IsUnknown() && lt.Category != types.CategoryText {
			diags = append(diags, mismatchDiag(e.Span, "expected text operand, got "+lt.String()))
		}
		if !rt.IsUnknown() && rt.Category != types.CategoryText {
			diags = append(diags, mismatchDiag(e.Span, "expected text operand, got "+rt.String()))
		}
		return types.Text(false), diags

	case e.Op == queryast.OpAnd || e.Op == queryast.OpOr:
		if !lt.IsUnknown() && lt.Category != types.CategoryBoolean {
			diags = append(diags, mismatchDiag(e.Span, "expected boolean operand, got "+lt.String()))
		}
		if !rt.IsUnknown() && rt.Category != types.CategoryBoolean {
			diags = append(diags, mismatchDiag(e.Span, "expected boolean operand, got "+rt.String()))
		}
		return types.Boolean, diags

	default:
		return types.Unknown, diags
	}
}

func (r *Resolver) inferUnary(e *queryast.UnaryExpr) (types.SqlType, []diag.Diagnostic) {
	t, diags := r.infer(e.Operand, false)
	switch e.Op {
	case queryast.OpNot:
		if !t.IsUnknown() && t.Category != types.CategoryBoolean {
			diags = append(diags, mismatchDiag(e.Span, "expected boolean operand, got "+t.String()))
		}
		return types.Boolean, diags
	case queryast.OpNeg:
		if !t.IsUnknown() && !t.IsNumeric() {
			diags = append(diags, mismatchDiag(e.Span, "expected numeric operand, got "+t.String()))
		}
		return t, diags
	case queryast.OpIsNull, queryast.OpIsNotNull:
		return types.Boolean, diags
	default:
		return types.Unknown, diags
	}
}

func (r *Resolver) inferIn(e *queryast.InExpr) (types.SqlType, []diag.Diagnostic) {
	operandType, diags := r.infer(e.Operand, false)

	if e.Sub != nil {
		return types.Boolean, diags
	}

	for _, item := range e.List {
		it, id := r.infer(item, false)
		diags = append(diags, id...)
		if !operandType.IsUnknown() && !it.IsUnknown() && !types.Compatible(operandType, it) {
			diags = append(diags, mismatchDiag(item.ExprSpan(), "incompatible operand types "+operandType.String()+" and "+it.String()))
		}
	}
	return types.Boolean, diags
}

func (r *Resolver) inferCase(e *queryast.CaseExpr) (types.SqlType, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	result := types.Unknown
	first := true

	for _, w := range e.Whens {
		if e.Operand == nil {
			_, wd := r.infer(w.When, false)
			diags = append(diags, wd...)
		}
		t, td := r.infer(w.Then, false)
		diags = append(diags, td...)
		if first {
			result = t
			first = false
		} else {
			result = types.Meet(result, t)
		}
	}
	if e.Else != nil {
		t, ed := r.infer(e.Else, false)
		diags = append(diags, ed...)
		if first {
			result = t
		} else {
			result = types.Meet(result, t)
		}
	}
	return result, diags
}

func (r *Resolver) inferFuncCall(e *queryast.FuncCall) (types.SqlType, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	var argTypes []types.SqlType
	for _, a := range e.Args {
		t, d := r.infer(a, false)
		diags = append(diags, d...)
		argTypes = append(argTypes, t)
	}

	result := aggregateResultType(e.Name, argTypes)

	if e.Window != nil {
		// Window function result type is the wrapped aggregate's result
		// (spec.md §4.4); PARTITION BY / ORDER BY exprs are walked only
		// for nested diagnostics, their own types are not surfaced.
		for _, p := range e.Window.PartitionBy {
			_, d := r.infer(p, false)
			diags = append(diags, d...)
		}
		for _, o := range e.Window.OrderBy {
			_, d := r.infer(o, false)
			diags = append(diags, d...)
		}
	}

	return result, diags
}

func aggregateResultType(name string, argTypes []types.SqlType) types.SqlType {
	switch lowerASCII(name) {
	case "count":
		return types.Integer(64)
	case "sum":
		if len(argTypes) == 1 && argTypes[0].Category == types.CategoryInteger {
			return types.Decimal(0, 0, false)
		}
		if len(argTypes) == 1 {
			return argTypes[0]
		}
		return types.Unknown
	case "avg":
		return types.Decimal(0, 0, false)
	case "min", "max":
		if len(argTypes) == 1 {
			return argTypes[0]
		}
		return types.Unknown
	case "string_agg", "group_concat":
		return types.Text(false)
	default:
		return types.Unknown
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func mismatchDiag(span queryast.Span, msg string) diag.Diagnostic {
	return diag.Diagnostic{
		Code:     diag.TypeMismatch,
		Severity: diag.SeverityError,
		Span:     diag.Span{Line: span.Line, Column: span.Column},
		Message:  msg,
	}
}
