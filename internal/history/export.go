package history

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/internal/parquet"
)

// ExportHistory writes every recorded load of store to a Parquet file.
func ExportHistory(store contract.HistoryStore, outputFile string, out io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no load history found to export")
	}

	runs, err := store.GetAllLoadRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve load runs: %w", err)
	}

	rows := parquet.ConvertLoadRunRecords(runs)
	if err := parquet.WriteLoadRunsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write load runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d load runs from %s backend to: %s\n", len(rows), status.Backend, outputFile)
	return nil
}
