package dialect

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPredicates struct {
	name Name
}

func (m *mockPredicates) Name() Name                       { return m.name }
func (m *mockPredicates) QuoteIdentifier(name string) string { return `"` + name + `"` }
func (m *mockPredicates) DistinctOnAllowed() bool           { return false }
func (m *mockPredicates) TableValuedFunction(string) (TVFSignature, bool) {
	return TVFSignature{}, false
}

func snapshotRegistry() map[Name]Predicates {
	registryMu.RLock()
	defer registryMu.RUnlock()
	snap := make(map[Name]Predicates, len(registry))
	maps.Copy(snap, registry)
	return snap
}

func withCleanRegistry(t *testing.T) {
	t.Helper()
	prev := snapshotRegistry()
	resetRegistry(map[Name]Predicates{})
	t.Cleanup(func() { resetRegistry(prev) })
}

func TestRegisterAndGet(t *testing.T) {
	withCleanRegistry(t)

	t.Run("unregistered dialect errors", func(t *testing.T) {
		_, err := Get(MySQL)
		assert.Error(t, err)
	})

	t.Run("registered dialect is retrievable", func(t *testing.T) {
		Register(MySQL, &mockPredicates{name: MySQL})
		p, err := Get(MySQL)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, MySQL, p.Name())
	})

	t.Run("last registration wins", func(t *testing.T) {
		Register(SQLite, &mockPredicates{name: SQLite})
		second := &mockPredicates{name: SQLite}
		Register(SQLite, second)
		p, err := Get(SQLite)
		require.NoError(t, err)
		assert.Same(t, second, p)
	})
}

func TestNameValid(t *testing.T) {
	cases := []struct {
		name  Name
		valid bool
	}{
		{PostgreSQL, true},
		{MySQL, true},
		{SQLite, true},
		{Name("mssql"), false},
		{Name(""), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.valid, tc.name.Valid(), "dialect %q", tc.name)
	}
}
