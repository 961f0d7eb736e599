package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_NoneBackend(t *testing.T) {
	store, err := NewStore(schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.BeginLoad(schema.LoadRun{RunID: "x"}))
	assert.NoError(t, store.EndLoad("x", schema.LoadOutcome{}))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	runs, err := store.GetAllLoadRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, store.Close())
}

func TestStore_UnsupportedBackend(t *testing.T) {
	_, err := NewStore(schema.DatabaseBackend("redis"), "")
	assert.Error(t, err)
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	start := time.Date(2024, 1, 8, 12, 0, 0, 123456789, time.UTC)

	require.NoError(t, store.BeginLoad(schema.LoadRun{
		RunID:     "01HM0000000000000000000001",
		Operation: schema.LogsOperation,
		Kind:      schema.MergeRequestKind,
		Query:     "type=mr&authors=bob",
		StartTime: start,
	}))
	require.NoError(t, store.EndLoad("01HM0000000000000000000001", schema.LoadOutcome{
		EndTime:      start.Add(1500 * time.Millisecond),
		Status:       schema.LoadOK,
		RecordCount:  12,
		AverageScore: 74.5,
	}))

	require.NoError(t, store.BeginLoad(schema.LoadRun{
		RunID:     "01HM0000000000000000000002",
		Operation: schema.StatsOperation,
		Kind:      schema.PushKind,
		Query:     "type=push",
		StartTime: start.Add(time.Minute),
	}))
	require.NoError(t, store.EndLoad("01HM0000000000000000000002", schema.LoadOutcome{
		EndTime:      start.Add(time.Minute + time.Second),
		Status:       schema.LoadFailed,
		ErrorMessage: "db down",
	}))

	require.NoError(t, store.BeginLoad(schema.LoadRun{
		RunID:     "01HM0000000000000000000003",
		Operation: schema.LogsOperation,
		Kind:      schema.MergeRequestKind,
		Query:     "type=mr",
		StartTime: start.Add(2 * time.Minute),
	}))

	runs, err := store.GetAllLoadRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)

	first := runs[0]
	assert.Equal(t, "logs", first.Operation)
	assert.Equal(t, "mr", first.ReviewKind)
	assert.Equal(t, "type=mr&authors=bob", first.Query)
	assert.True(t, start.Equal(first.StartTime))
	require.NotNil(t, first.RunDurationMs)
	assert.Equal(t, int64(1500), *first.RunDurationMs)
	require.NotNil(t, first.RecordCount)
	assert.Equal(t, int64(12), *first.RecordCount)
	require.NotNil(t, first.Status)
	assert.Equal(t, "ok", *first.Status)
	assert.Nil(t, first.ErrorMessage)

	require.NotNil(t, runs[1].ErrorMessage)
	assert.Equal(t, "db down", *runs[1].ErrorMessage)

	assert.Nil(t, runs[2].EndTime)
	assert.Nil(t, runs[2].Status)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, 1, status.FailedRuns)
	assert.Equal(t, 12, status.TotalRecords)
	assert.Equal(t, "01HM0000000000000000000003", status.LastRunID)
	assert.True(t, start.Add(2*time.Minute).Equal(status.LastRunTime))
	assert.True(t, start.Equal(status.OldestRunTime))
	assert.Equal(t, int64(3), status.TableSizes[loadRunsTable])
}

func TestStore_EndLoadUnknownRun(t *testing.T) {
	store := newSQLiteStore(t)
	err := store.EndLoad("missing", schema.LoadOutcome{EndTime: time.Now(), Status: schema.LoadOK})
	assert.Error(t, err)
}

func TestStore_EmptyStatus(t *testing.T) {
	store := newSQLiteStore(t)
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
	assert.True(t, status.LastRunTime.IsZero())
}

func TestStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	store, err := NewStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.BeginLoad(schema.LoadRun{RunID: "a", Operation: schema.LogsOperation, Kind: schema.PushKind, StartTime: time.Now()}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	runs, err := reopened.GetAllLoadRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestClearHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clear.db")
	store, err := NewStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.NoError(t, ClearHistory(schema.SQLiteBackend, path, ""))
	assert.NoFileExists(t, path)
	assert.NoError(t, ClearHistory(schema.SQLiteBackend, path, ""), "missing file is not an error")
	assert.Error(t, ClearHistory(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
	assert.Error(t, ClearHistory(schema.DatabaseBackend("redis"), "", ""))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
}

func TestToTime(t *testing.T) {
	want := time.Date(2024, 1, 8, 12, 30, 0, 500000000, time.UTC)

	got, err := toTime(want.Format(time.RFC3339Nano))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = toTime([]byte("2024-01-08 12:30:00.500000"))
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = toTime(42)
	assert.Error(t, err)
}
