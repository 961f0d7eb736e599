package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/reviewdash/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"review rows", new(ReviewRow), []string{"review_type", "project_name", "author", "branch", "target_branch", "updated_at", "commit_messages", "delta", "score", "score_band", "url"}},
		{"load runs", new(LoadRun), []string{"run_id", "operation", "review_kind", "query", "start_time", "end_time", "run_duration_ms", "record_count", "average_score", "status", "error_message"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteReviewRowsParquet(t *testing.T) {
	target := "main"
	link := "https://git.example.com/mr/3"
	view := schema.TableView{
		Kind: schema.MergeRequestKind,
		Rows: []schema.DisplayRow{
			{ProjectName: "web", Author: "alice", Branch: "feat", TargetBranch: &target, Score: 88.5, ScoreText: "88.5", ScoreBand: schema.HighBand, ActionLink: &link},
			{ProjectName: "api", Author: "bob", Branch: "fix", TargetBranch: &target, Score: 12, ScoreBand: schema.LowBand},
		},
	}

	path := filepath.Join(t.TempDir(), "reviews.parquet")
	require.NoError(t, WriteReviewRowsParquet(ConvertTableView(view), path))

	rows := readAll[ReviewRow](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "mr", rows[0].ReviewType)
	assert.Equal(t, "alice", rows[0].Author)
	assert.InDelta(t, 88.5, rows[0].Score, 0.001)
	assert.Equal(t, "HIGH", rows[0].ScoreBand)
	require.NotNil(t, rows[0].URL)
	assert.Equal(t, link, *rows[0].URL)
	assert.Nil(t, rows[1].URL)
	require.NotNil(t, rows[1].TargetBranch)
	assert.Equal(t, "main", *rows[1].TargetBranch)
}

func TestWriteLoadRunsParquet(t *testing.T) {
	start := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	end := start.Add(250 * time.Millisecond)
	ms := int64(250)
	count := int64(12)
	avg := 71.5
	ok := "ok"

	records := []schema.LoadRunRecord{
		{RunID: "01HZX", Operation: "logs", ReviewKind: "mr", Query: "type=mr", StartTime: start, EndTime: &end, RunDurationMs: &ms, RecordCount: &count, AverageScore: &avg, Status: &ok},
		{RunID: "01HZY", Operation: "stats", ReviewKind: "push", Query: "type=push", StartTime: start},
	}

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteLoadRunsParquet(ConvertLoadRunRecords(records), path))

	rows := readAll[LoadRun](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "01HZX", rows[0].RunID)
	require.NotNil(t, rows[0].EndTime)
	assert.WithinDuration(t, end, *rows[0].EndTime, time.Microsecond)
	require.NotNil(t, rows[0].RecordCount)
	assert.Equal(t, int64(12), *rows[0].RecordCount)
	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].Status)
	assert.Nil(t, rows[1].ErrorMessage)
}

func TestWriteParquetEmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteLoadRunsParquet(nil, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Empty(t, readAll[LoadRun](t, path))
}

func TestWriteParquetBadPath(t *testing.T) {
	err := WriteReviewRowsParquet(nil, filepath.Join(t.TempDir(), "missing", "x.parquet"))
	assert.Error(t, err)
}
