package cmd

import (
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/internal/outwriter"
	"github.com/spf13/cobra"
)

// logsCmd shows the filtered review log as a table.
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the filtered review log as a table",
	Long: `Load the review log for the current filters and print it as a table.

Merge requests show nine columns (with target branch and link), pushes seven.
The summary line carries the total record count and the average score.

Filters:
  --type       mr or push
  --start/--end  YYYY-MM-DD, or none to leave a side unbounded
  --authors    repeat or comma-separate for several authors
  --projects   repeat or comma-separate for several projects

Examples:
  # Merge requests of the last 7 days
  reviewdash logs

  # Pushes by two authors in May, as CSV
  reviewdash logs --type push --start 2024-05-01 --end 2024-05-31 -a alice,bob --output csv

  # Everything up to today, written to Parquet
  reviewdash logs --start none --output parquet --output-file reviews.parquet`,
	PreRunE:  sharedSetupWrapper,
	PostRunE: sharedTeardown,
	Run: func(_ *cobra.Command, _ []string) {
		dash := newDashboard(outwriter.NewTableWriter(cfg, false), nil)
		if _, err := dash.Reload(rootCtx); err != nil {
			contract.LogFatal("Failed to load review logs", err)
		}
	},
}
