package typeresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlsift/internal/diag"
	"sqlsift/internal/queryast"
	"sqlsift/internal/types"
)

func lookupTypes(m map[string]types.SqlType) ColumnTypeLookup {
	return func(ref *queryast.ColumnRef) (types.SqlType, bool) {
		t, ok := m[ref.Column]
		return t, ok
	}
}

func TestInferLiteralTypes(t *testing.T) {
	r := New(lookupTypes(nil), nil)

	typ, diags := r.Infer(&queryast.Literal{Kind: queryast.LiteralInteger, Text: "5"})
	assert.Empty(t, diags)
	assert.Equal(t, types.CategoryInteger, typ.Category)

	typ, _ = r.Infer(&queryast.Literal{Kind: queryast.LiteralString, Text: "x"})
	assert.Equal(t, types.CategoryText, typ.Category)

	typ, _ = r.Infer(&queryast.Literal{Kind: queryast.LiteralNull})
	assert.True(t, typ.IsUnknown())
}

func TestInferBinaryComparisonMismatch(t *testing.T) {
	r := New(lookupTypes(map[string]types.SqlType{"id": types.Integer(32)}), nil)

	expr := &queryast.BinaryExpr{
		Op:    queryast.OpEq,
		Left:  &queryast.ColumnRef{Column: "id"},
		Right: &queryast.Literal{Kind: queryast.LiteralString, Text: "x"},
		Span:  queryast.Span{Line: 1, Column: 20},
	}

	typ, diags := r.Infer(expr)
	assert.Equal(t, types.CategoryBoolean, typ.Category)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.TypeMismatch, diags[0].Code)
}

func TestInferIsDistinctFromMismatch(t *testing.T) {
	r := New(lookupTypes(map[string]types.SqlType{"id": types.Integer(32)}), nil)

	expr := &queryast.BinaryExpr{
		Op:    queryast.OpIsDistinctFrom,
		Left:  &queryast.ColumnRef{Column: "id"},
		Right: &queryast.Literal{Kind: queryast.LiteralString, Text: "x"},
		Span:  queryast.Span{Line: 1, Column: 20},
	}

	typ, diags := r.Infer(expr)
	assert.Equal(t, types.CategoryBoolean, typ.Category)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.TypeMismatch, diags[0].Code)
}

// IS DISTINCT FROM in a JOIN ON clause is not the "equi-join" shape
// spec.md's JOIN-ON rule downgrades to E0007 for (only OpEq is), so a
// mismatch there still reports as a plain E0003.
func TestInferIsDistinctFromInJoinOnStillTypeMismatch(t *testing.T) {
	r := New(lookupTypes(map[string]types.SqlType{
		"id":        types.Integer(32),
		"user_name": types.Text(false),
	}), nil)

	expr := &queryast.BinaryExpr{
		Op:    queryast.OpIsDistinctFrom,
		Left:  &queryast.ColumnRef{Column: "id"},
		Right: &queryast.ColumnRef{Column: "user_name"},
	}

	_, diags := r.InferJoinOn(expr)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.TypeMismatch, diags[0].Code)
}

func TestInferJoinOnEmitsJoinTypeMismatch(t *testing.T) {
	r := New(lookupTypes(map[string]types.SqlType{
		"id":        types.Integer(32),
		"user_name": types.Text(false),
	}), nil)

	expr := &queryast.BinaryExpr{
		Op:    queryast.OpEq,
		Left:  &queryast.ColumnRef{Column: "id"},
		Right: &queryast.ColumnRef{Column: "user_name"},
	}

	_, diags := r.InferJoinOn(expr)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.JoinTypeMismatch, diags[0].Code)
}

func TestUnresolvedColumnSuppressesFurtherDiagnostics(t *testing.T) {
	r := New(lookupTypes(nil), nil) // "naem" not in map -> unresolved

	expr := &queryast.BinaryExpr{
		Op:    queryast.OpEq,
		Left:  &queryast.ColumnRef{Column: "naem"},
		Right: &queryast.Literal{Kind: queryast.LiteralString, Text: "x"},
	}

	_, diags := r.Infer(expr)
	assert.Empty(t, diags)
}

func TestInferCaseMeetsBranchTypes(t *testing.T) {
	r := New(lookupTypes(nil), nil)

	expr := &queryast.CaseExpr{
		Whens: []queryast.CaseWhen{
			{When: &queryast.Literal{Kind: queryast.LiteralBoolean, Text: "true"}, Then: &queryast.Literal{Kind: queryast.LiteralInteger, Text: "1"}},
		},
		Else: &queryast.Literal{Kind: queryast.LiteralInteger, Text: "200000"},
	}

	typ, diags := r.Infer(expr)
	assert.Empty(t, diags)
	assert.Equal(t, types.CategoryInteger, typ.Category)
}

func TestAggregateResultTypes(t *testing.T) {
	r := New(lookupTypes(map[string]types.SqlType{"amount": types.Integer(32)}), nil)

	countType, _ := r.Infer(&queryast.FuncCall{Name: "COUNT", Args: []queryast.Expr{&queryast.StarExpr{}}})
	assert.Equal(t, types.CategoryInteger, countType.Category)
	assert.Equal(t, 64, countType.IntWidth)

	sumType, _ := r.Infer(&queryast.FuncCall{Name: "SUM", Args: []queryast.Expr{&queryast.ColumnRef{Column: "amount"}}})
	assert.Equal(t, types.CategoryDecimal, sumType.Category)
}

func TestCastNeverEmits(t *testing.T) {
	r := New(lookupTypes(nil), nil)
	expr := &queryast.CastExpr{Operand: &queryast.Literal{Kind: queryast.LiteralString, Text: "1"}, RawType: "INTEGER"}

	typ, diags := r.Infer(expr)
	assert.Empty(t, diags)
	assert.Equal(t, types.CategoryInteger, typ.Category)
}
