package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlsift/internal/catalog"
)

func idCol(name string) *catalog.Column { return &catalog.Column{Name: name} }

func TestResolveBareColumnUnique(t *testing.T) {
	s := NewStack()
	f := s.Push()
	f.Relations = []RelationBinding{
		{BindingName: "u", Columns: []*catalog.Column{idCol("id"), idCol("name")}},
	}

	res, col, binding := s.ResolveBareColumn("name")
	assert.Equal(t, ColumnFound, res)
	require.NotNil(t, col)
	assert.Equal(t, "u", binding)
}

func TestResolveBareColumnAmbiguous(t *testing.T) {
	s := NewStack()
	f := s.Push()
	f.Relations = []RelationBinding{
		{BindingName: "a", Columns: []*catalog.Column{idCol("x")}},
		{BindingName: "b", Columns: []*catalog.Column{idCol("x")}},
	}

	res, _, _ := s.ResolveBareColumn("x")
	assert.Equal(t, ColumnAmbiguous, res)
}

func TestResolveBareColumnNotFound(t *testing.T) {
	s := NewStack()
	s.Push()

	res, _, _ := s.ResolveBareColumn("missing")
	assert.Equal(t, ColumnNotFound, res)
}

func TestLateralSeesEnclosingFrameRelationsSoFar(t *testing.T) {
	s := NewStack()
	outer := s.Push()
	outer.Relations = []RelationBinding{{BindingName: "a", Columns: []*catalog.Column{idCol("id")}}}

	f := s.Push()
	f.IsLateral = true
	// The pushed frame for a LATERAL derived table's own body sees the
	// enclosing select frame's FROM items resolved so far.
	res, _, binding := s.ResolveBareColumn("id")
	assert.Equal(t, ColumnFound, res)
	assert.Equal(t, "a", binding)
}

func TestNonLateralDoesNotSeeEnclosingFrameRelations(t *testing.T) {
	s := NewStack()
	outer := s.Push()
	outer.Relations = []RelationBinding{{BindingName: "a", Columns: []*catalog.Column{idCol("id")}}}

	s.Push() // non-lateral by default
	res, _, _ := s.ResolveBareColumn("id")
	assert.Equal(t, ColumnNotFound, res)
}

func TestResolveQualifiedColumnWalksOuterFrames(t *testing.T) {
	s := NewStack()
	outer := s.Push()
	outer.Relations = []RelationBinding{{BindingName: "o", Columns: []*catalog.Column{idCol("id")}}}
	s.Push() // inner frame, no relations of its own

	col, ok := s.ResolveQualifiedColumn("o", "id")
	require.True(t, ok)
	assert.Equal(t, "id", col.Name)
}

func TestLookupCTEWalksOuterFrames(t *testing.T) {
	s := NewStack()
	outer := s.Push()
	outer.CTEs["recent"] = CTEBinding{Name: "recent", Columns: []*catalog.Column{idCol("id")}}
	s.Push()

	cte, ok := s.LookupCTE("RECENT")
	require.True(t, ok)
	assert.Equal(t, "recent", cte.Name)
}

func TestProjectionAliasTakesPrecedence(t *testing.T) {
	s := NewStack()
	f := s.Push()
	f.Relations = []RelationBinding{{BindingName: "t", Columns: []*catalog.Column{idCol("id")}}}
	f.ProjectionAliases["id"] = &catalog.Column{Name: "id", HasDefault: true}

	res, col, _ := s.ResolveBareColumn("id")
	assert.Equal(t, ColumnFound, res)
	assert.True(t, col.HasDefault)
}
