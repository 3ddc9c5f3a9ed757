package suppress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlsift/internal/diag"
)

func TestBareDirectiveSuppressesAllCodesOnNextLine(t *testing.T) {
	src := "-- sqlsift:disable\nSELECT naem FROM users;"
	m := Build(src)

	diags := []diag.Diagnostic{{Code: diag.UnknownColumn, Span: diag.Span{Line: 2}}}
	filtered := m.Filter(diags)
	assert.Empty(t, filtered)
}

func TestCodedDirectiveSuppressesOnlyListedCodes(t *testing.T) {
	src := "-- sqlsift:disable E0002\nSELECT naem FROM users;"
	m := Build(src)

	diags := []diag.Diagnostic{
		{Code: diag.UnknownColumn, Span: diag.Span{Line: 2}},
		{Code: diag.TypeMismatch, Span: diag.Span{Line: 2}},
	}
	filtered := m.Filter(diags)
	require.Len(t, filtered, 1)
	assert.Equal(t, diag.TypeMismatch, filtered[0].Code)
}

func TestEndOfLineDirectiveSuppressesSameLineOnly(t *testing.T) {
	src := "SELECT naem FROM users; -- sqlsift:disable E0002\nSELECT naem FROM users;"
	m := Build(src)

	diags := []diag.Diagnostic{
		{Code: diag.UnknownColumn, Span: diag.Span{Line: 1}},
		{Code: diag.UnknownColumn, Span: diag.Span{Line: 2}},
	}
	filtered := m.Filter(diags)
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].Span.Line)
}

func TestDirectiveScopeIsSingleLine(t *testing.T) {
	src := "-- sqlsift:disable\nSELECT 1;\nSELECT naem FROM users;"
	m := Build(src)

	diags := []diag.Diagnostic{{Code: diag.UnknownColumn, Span: diag.Span{Line: 3}}}
	filtered := m.Filter(diags)
	require.Len(t, filtered, 1)
}

func TestNoDirectiveLeavesDiagnosticsUntouched(t *testing.T) {
	m := Build("SELECT 1;")
	diags := []diag.Diagnostic{{Code: diag.UnknownColumn, Span: diag.Span{Line: 1}}}
	assert.Equal(t, diags, m.Filter(diags))
}

func TestIdempotenceRemovingDirectiveReinstatesDiagnostic(t *testing.T) {
	withDirective := Build("-- sqlsift:disable E0002\nSELECT naem FROM users;")
	withoutDirective := Build("SELECT naem FROM users;")

	d := diag.Diagnostic{Code: diag.UnknownColumn, Span: diag.Span{Line: 2}, Message: "column 'naem' not found"}

	assert.Empty(t, withDirective.Filter([]diag.Diagnostic{d}))
	reinstated := withoutDirective.Filter([]diag.Diagnostic{d})
	require.Len(t, reinstated, 1)
	assert.Equal(t, d, reinstated[0])
}
