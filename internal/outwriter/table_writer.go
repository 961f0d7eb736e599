package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/internal/parquet"
	"github.com/huangsam/reviewdash/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// DateTimeFormat is how timestamps are shown in terminal output.
const DateTimeFormat = "2006-01-02 15:04:05"

// TableWriter is the CLI table sink. Text output renders a terminal table;
// csv, json and parquet write the rows in that format. In live mode the
// terminal is cleared before every render and the loading row is shown.
type TableWriter struct {
	cfg    *contract.Config
	live   bool
	stdout io.Writer
}

var _ contract.TableSink = &TableWriter{} // Compile-time check

// NewTableWriter creates a table sink for cfg.
func NewTableWriter(cfg *contract.Config, live bool) *TableWriter {
	return &TableWriter{cfg: cfg, live: live, stdout: os.Stdout}
}

// Escaper returns the escaper for the configured output mode.
func (t *TableWriter) Escaper() contract.Escaper {
	return EscaperFor(t.cfg.Output)
}

// RenderLoading shows the loading row on a live terminal.
func (t *TableWriter) RenderLoading(kind schema.ReviewKind) error {
	if !t.live || t.cfg.Output != schema.TextOut {
		return nil
	}
	return t.writePlaceholder(kind, LoadingText)
}

// RenderFailure shows the failure row on a terminal. Other formats leave
// the failure to the caller.
func (t *TableWriter) RenderFailure(kind schema.ReviewKind, err error) error {
	if t.cfg.Output != schema.TextOut {
		return nil
	}
	return t.writePlaceholder(kind, "load failed: "+SanitizeTerminal(contract.FailureMessage(err)))
}

// RenderRows writes the view in the configured format.
func (t *TableWriter) RenderRows(view schema.TableView) error {
	fmtFloat := createFormatter(t.cfg.Precision)

	switch t.cfg.Output {
	case schema.JSONOut:
		return t.emit(func(w io.Writer) error { return writeJSON(w, view) }, "Wrote JSON")
	case schema.CSVOut:
		return t.emit(func(w io.Writer) error { return writeViewCSV(w, view, fmtFloat) }, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteReviewRowsParquet(parquet.ConvertTableView(view), t.cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", t.cfg.OutputFile)
		return nil
	default:
		return t.emit(func(w io.Writer) error { return t.writeViewTable(w, view) }, "Wrote table")
	}
}

// emit writes to the output file when one is configured and to stdout otherwise.
func (t *TableWriter) emit(fn func(io.Writer) error, successMsg string) error {
	if t.cfg.OutputFile != "" {
		return writeWithFile(t.cfg.OutputFile, fn, successMsg)
	}
	return fn(t.stdout)
}

func (t *TableWriter) writePlaceholder(kind schema.ReviewKind, text string) error {
	return t.emit(func(w io.Writer) error {
		if t.live {
			if _, err := io.WriteString(w, clearScreen); err != nil {
				return err
			}
		}
		table := tablewriter.NewWriter(w)
		table.Header(core.TableColumns(kind))
		if err := table.Append(placeholderRow(kind, text)); err != nil {
			return err
		}
		return table.Render()
	}, "Wrote table")
}

// writeViewTable generates and writes the human-readable table.
func (t *TableWriter) writeViewTable(w io.Writer, view schema.TableView) error {
	if t.live {
		if _, err := io.WriteString(w, clearScreen); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header(view.Columns)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxMsg := GetMaxMessageWidth(t.cfg, view.Kind)
	var data [][]string
	for _, row := range view.Rows {
		cells := core.RowCells(row, view.Kind)
		for i, col := range view.Columns {
			switch col {
			case "Commit Messages":
				cells[i] = contract.TruncateText(cells[i], maxMsg)
			case "Score":
				cells[i] = contract.GetColorText(cells[i], row.ScoreBand, t.cfg.UseColors)
			}
		}
		data = append(data, cells)
	}
	if len(data) == 0 {
		data = append(data, placeholderRow(view.Kind, NoDataText))
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Total: %d records, average score: %.2f\n", view.Total, view.AverageScore); err != nil {
		return err
	}
	if !view.LoadedAt.IsZero() {
		if _, err := fmt.Fprintf(w, "Last update: %s\n", view.LoadedAt.In(t.location()).Format(DateTimeFormat)); err != nil {
			return err
		}
	}
	return nil
}

func (t *TableWriter) location() *time.Location {
	if t.cfg.Location == nil {
		return time.Local
	}
	return t.cfg.Location
}

// placeholderRow puts text in the first cell of an otherwise empty row.
func placeholderRow(kind schema.ReviewKind, text string) []string {
	cells := make([]string, core.ColumnCount(kind))
	cells[0] = text
	return cells
}

// viewCSVHeader returns the CSV header for kind.
func viewCSVHeader(kind schema.ReviewKind) []string {
	header := []string{"project_name", "author", "branch"}
	if kind == schema.MergeRequestKind {
		header = append(header, "target_branch")
	}
	header = append(header, "updated_at", "commit_messages", "delta", "score", "score_band")
	if kind == schema.MergeRequestKind {
		header = append(header, "url")
	}
	return header
}

// writeViewCSV writes the rows of view in CSV format.
func writeViewCSV(w io.Writer, view schema.TableView, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, viewCSVHeader(view.Kind), func(cw *csv.Writer) error {
		for _, row := range view.Rows {
			rec := []string{row.ProjectName, row.Author, row.Branch}
			if view.Kind == schema.MergeRequestKind {
				rec = append(rec, deref(row.TargetBranch))
			}
			rec = append(rec, row.UpdatedAt, row.CommitMessages, row.Delta, fmtFloat(row.Score), string(row.ScoreBand))
			if view.Kind == schema.MergeRequestKind {
				rec = append(rec, deref(row.ActionLink))
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
