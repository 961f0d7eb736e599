package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteOptions writes the vocabulary in the configured format. The values
// are expected to be escaped with EscaperFor(cfg.Output) already.
func WriteOptions(opts schema.FilterOptions, cfg *contract.Config) error {
	return writeOptionsTo(os.Stdout, opts, cfg)
}

func writeOptionsTo(stdout io.Writer, opts schema.FilterOptions, cfg *contract.Config) error {
	var fn func(io.Writer) error
	successMsg := "Wrote table"
	switch cfg.Output {
	case schema.JSONOut:
		fn = func(w io.Writer) error { return writeJSON(w, opts) }
		successMsg = "Wrote JSON"
	case schema.CSVOut:
		fn = func(w io.Writer) error { return writeOptionsCSV(w, opts) }
		successMsg = "Wrote CSV"
	case schema.TextOut:
		fn = func(w io.Writer) error { return writeOptionsTable(w, opts) }
	default:
		return fmt.Errorf("filter options output does not support %s", cfg.Output)
	}

	if cfg.OutputFile == "" {
		return fn(stdout)
	}
	return writeWithFile(cfg.OutputFile, fn, successMsg)
}

// writeOptionsTable lists authors and projects side by side.
func writeOptionsTable(w io.Writer, opts schema.FilterOptions) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Authors", "Projects"})

	n := max(len(opts.Authors), len(opts.ProjectNames))
	var data [][]string
	for i := range n {
		row := []string{"", ""}
		if i < len(opts.Authors) {
			row[0] = opts.Authors[i]
		}
		if i < len(opts.ProjectNames) {
			row[1] = opts.ProjectNames[i]
		}
		data = append(data, row)
	}
	if n == 0 {
		data = append(data, []string{NoDataText, ""})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeOptionsCSV(w io.Writer, opts schema.FilterOptions) error {
	return writeCSVWithHeader(w, []string{"field", "value"}, func(cw *csv.Writer) error {
		for _, a := range opts.Authors {
			if err := cw.Write([]string{"author", a}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		for _, p := range opts.ProjectNames {
			if err := cw.Write([]string{"project_name", p}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
