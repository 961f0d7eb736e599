package history

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHistory(t *testing.T) {
	store := newSQLiteStore(t)
	now := time.Now()
	require.NoError(t, store.BeginLoad(schema.LoadRun{RunID: "01A", Operation: schema.LogsOperation, Kind: schema.MergeRequestKind, StartTime: now}))
	require.NoError(t, store.EndLoad("01A", schema.LoadOutcome{EndTime: now.Add(time.Second), Status: schema.LoadOK, RecordCount: 3}))

	out := filepath.Join(t.TempDir(), "runs.parquet")
	var buf bytes.Buffer
	require.NoError(t, ExportHistory(store, out, &buf))
	assert.FileExists(t, out)
	assert.Contains(t, buf.String(), "Exported 1 load runs")
}

func TestExportHistoryErrors(t *testing.T) {
	t.Run("missing output file", func(t *testing.T) {
		assert.Error(t, ExportHistory(&MockStore{}, "", &bytes.Buffer{}))
	})

	t.Run("empty history", func(t *testing.T) {
		m := &MockStore{}
		m.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite"}, nil)
		err := ExportHistory(m, "x.parquet", &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no load history")
	})

	t.Run("status failure", func(t *testing.T) {
		m := &MockStore{}
		m.On("GetStatus").Return(schema.HistoryStatus{}, errors.New("gone"))
		assert.Error(t, ExportHistory(m, "x.parquet", &bytes.Buffer{}))
	})

	t.Run("read failure", func(t *testing.T) {
		m := &MockStore{}
		m.On("GetStatus").Return(schema.HistoryStatus{TotalRuns: 2}, nil)
		m.On("GetAllLoadRuns").Return(nil, errors.New("gone"))
		assert.Error(t, ExportHistory(m, "x.parquet", &bytes.Buffer{}))
		m.AssertExpectations(t)
	})
}
