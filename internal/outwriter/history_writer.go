package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteHistoryStatus prints the status of the load history store.
func WriteHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Failed Runs: %d\n", status.FailedRuns)
		_, _ = fmt.Fprintf(w, "Last Run ID: %s\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(DateTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(DateTimeFormat))
		_, _ = fmt.Fprintf(w, "Total Records Loaded: %d\n", status.TotalRecords)
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}

// WriteHistoryRuns writes recorded loads in the configured format.
func WriteHistoryRuns(w io.Writer, runs []schema.LoadRunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, runs)
	case schema.CSVOut:
		return writeRunsCSV(w, runs)
	case schema.TextOut:
		return writeRunsTable(w, runs)
	default:
		return fmt.Errorf("history output does not support %s", cfg.Output)
	}
}

var runsHeader = []string{"run_id", "operation", "type", "start_time", "duration_ms", "records", "status", "error"}

func runCells(r schema.LoadRunRecord) []string {
	cells := []string{r.RunID, r.Operation, r.ReviewKind, r.StartTime.Format(DateTimeFormat), "", "", "", ""}
	if r.RunDurationMs != nil {
		cells[4] = strconv.FormatInt(*r.RunDurationMs, 10)
	}
	if r.RecordCount != nil {
		cells[5] = strconv.FormatInt(*r.RecordCount, 10)
	}
	if r.Status != nil {
		cells[6] = *r.Status
	}
	if r.ErrorMessage != nil {
		cells[7] = *r.ErrorMessage
	}
	return cells
}

func writeRunsTable(w io.Writer, runs []schema.LoadRunRecord) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run ID", "Operation", "Type", "Started", "Duration (ms)", "Records", "Status", "Error"})

	var data [][]string
	for _, r := range runs {
		cells := runCells(r)
		for i := range cells {
			cells[i] = SanitizeTerminal(cells[i])
		}
		cells[7] = contract.TruncateText(cells[7], 40)
		data = append(data, cells)
	}
	if len(data) == 0 {
		data = append(data, []string{NoDataText, "", "", "", "", "", "", ""})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeRunsCSV(w io.Writer, runs []schema.LoadRunRecord) error {
	return writeCSVWithHeader(w, runsHeader, func(cw *csv.Writer) error {
		for _, r := range runs {
			if err := cw.Write(runCells(r)); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
