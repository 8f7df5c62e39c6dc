package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAll(t *testing.T) map[string]Scope {
	t.Helper()
	dir := t.TempDir()
	scopes := map[string]Scope{}
	for _, backend := range []string{BackendMemory, BackendFile, BackendLevelDB, BackendSQLite} {
		path := filepath.Join(dir, backend)
		if backend == BackendFile {
			path = filepath.Join(dir, "state", "wallet.json")
		}
		scope, closer, err := Open(Options{Backend: backend, Path: path, Scope: "test"})
		require.NoError(t, err, backend)
		t.Cleanup(func() { _ = closer.Close() })
		scopes[backend] = scope
	}
	return scopes
}

func TestScopeGetSetClear(t *testing.T) {
	for name, scope := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := scope.Get("credential")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, scope.Set("credential", `{"a":1}`))
			require.NoError(t, scope.Set("other", "x"))
			require.NoError(t, scope.Set("credential", `{"a":2}`))

			v, ok, err := scope.Get("credential")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"a":2}`, v)

			require.NoError(t, scope.Clear())
			for _, key := range []string{"credential", "other"} {
				_, ok, err = scope.Get(key)
				require.NoError(t, err)
				assert.False(t, ok, "clear must wipe %q", key)
			}

			require.NoError(t, scope.Clear(), "clearing an empty scope is a no-op")
		})
	}
}

func TestFileScopeSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("credential", "v"))

	second, err := NewFile(path)
	require.NoError(t, err)
	v, ok, err := second.Get("credential")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestSharedDatabaseScopesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.sqlite")
	a, err := OpenSQLite(path, "a")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Set("credential", "from-a"))

	b, err := OpenSQLite(path, "b")
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Set("credential", "from-b"))
	require.NoError(t, b.Clear())

	v, ok, err := a.Get("credential")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-a", v)
}

func TestLevelDBScopePrefix(t *testing.T) {
	db, err := OpenLevelDB(filepath.Join(t.TempDir(), "ldb"), "alpha")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Set("k", "v"))
	raw, err := db.db.Get(append([]byte{5}, "alphak"...), nil)
	require.NoError(t, err)
	assert.Equal(t, "v", string(raw))
}

func TestLevelDBClearKeepsNestedScopeName(t *testing.T) {
	a, err := OpenLevelDB(filepath.Join(t.TempDir(), "ldb"), "a")
	require.NoError(t, err)
	defer a.Close()
	nested := &LevelDB{db: a.db, prefix: scopePrefix("a/b")}

	require.NoError(t, a.Set("credential", "from-a"))
	require.NoError(t, nested.Set("credential", "from-a/b"))
	require.NoError(t, a.Clear())

	_, ok, err := a.Get("credential")
	require.NoError(t, err)
	assert.False(t, ok)
	v, ok, err := nested.Get("credential")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-a/b", v)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, _, err := Open(Options{Backend: "redis"})
	assert.Error(t, err)

	_, _, err = Open(Options{Backend: BackendFile})
	assert.Error(t, err, "file backend needs a path")
}
