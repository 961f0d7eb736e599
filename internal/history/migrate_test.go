package history

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_NoneBackend(t *testing.T) {
	err := Migrate(schema.NoneBackend, "", -1, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestMigrate_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	var out bytes.Buffer

	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "to version 2")

	out.Reset()
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "No migration needed")

	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 1, &out))
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 0, &out))
	require.NoError(t, Migrate(schema.SQLiteBackend, dbPath, 2, &out))

	// The store opens cleanly on a migrated database.
	store, err := NewStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
}

func TestMigrationsEmbedded(t *testing.T) {
	for _, backend := range []string{"sqlite", "mysql", "postgresql"} {
		entries, err := migrationsFS.ReadDir("migrations/" + backend)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 4, backend)
	}
}
