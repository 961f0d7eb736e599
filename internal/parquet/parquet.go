// Package parquet exports review rows and load history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/reviewdash/schema"
	"github.com/parquet-go/parquet-go"
)

// ReviewRow is one displayed review event.
type ReviewRow struct {
	// ReviewType is "mr" or "push"
	ReviewType string `parquet:"review_type,snappy"`

	ProjectName    string `parquet:"project_name,snappy"`
	Author         string `parquet:"author,snappy"`
	Branch         string `parquet:"branch,snappy"`
	UpdatedAt      string `parquet:"updated_at,snappy"`
	CommitMessages string `parquet:"commit_messages,snappy"`
	Delta          string `parquet:"delta,snappy"`

	// TargetBranch is only set for merge requests
	TargetBranch *string `parquet:"target_branch,optional,snappy"`

	Score     float64 `parquet:"score,snappy"`
	ScoreBand string  `parquet:"score_band,snappy"`

	// URL is only set for merge requests that carry a link
	URL *string `parquet:"url,optional,snappy"`
}

// LoadRun represents one dashboard load.
// This struct maps to the reviewdash_load_runs database table.
type LoadRun struct {
	RunID      string    `parquet:"run_id,snappy"`
	Operation  string    `parquet:"operation,snappy"`
	ReviewKind string    `parquet:"review_kind,snappy"`
	Query      string    `parquet:"query,snappy"`
	StartTime  time.Time `parquet:"start_time,snappy"`

	// The remaining fields are null while a load is still running
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int64     `parquet:"run_duration_ms,optional,snappy"`
	RecordCount   *int64     `parquet:"record_count,optional,snappy"`
	AverageScore  *float64   `parquet:"average_score,optional,snappy"`
	Status        *string    `parquet:"status,optional,snappy"`
	ErrorMessage  *string    `parquet:"error_message,optional,snappy"`
}

// WriteReviewRowsParquet writes review rows to a Parquet file.
func WriteReviewRowsParquet(data []ReviewRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteLoadRunsParquet writes load runs to a Parquet file.
func WriteLoadRunsParquet(data []LoadRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet infers the schema from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertTableView converts the rows of a table view for Parquet export.
func ConvertTableView(view schema.TableView) []ReviewRow {
	result := make([]ReviewRow, len(view.Rows))
	for i, row := range view.Rows {
		result[i] = ReviewRow{
			ReviewType:     string(view.Kind),
			ProjectName:    row.ProjectName,
			Author:         row.Author,
			Branch:         row.Branch,
			UpdatedAt:      row.UpdatedAt,
			CommitMessages: row.CommitMessages,
			Delta:          row.Delta,
			TargetBranch:   row.TargetBranch,
			Score:          row.Score,
			ScoreBand:      string(row.ScoreBand),
			URL:            row.ActionLink,
		}
	}
	return result
}

// ConvertLoadRunRecords converts schema.LoadRunRecord to LoadRun for Parquet export.
func ConvertLoadRunRecords(records []schema.LoadRunRecord) []LoadRun {
	result := make([]LoadRun, len(records))
	for i, record := range records {
		result[i] = LoadRun{
			RunID:         record.RunID,
			Operation:     record.Operation,
			ReviewKind:    record.ReviewKind,
			Query:         record.Query,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			RecordCount:   record.RecordCount,
			AverageScore:  record.AverageScore,
			Status:        record.Status,
			ErrorMessage:  record.ErrorMessage,
		}
	}
	return result
}
