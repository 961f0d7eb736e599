package cmd

import (
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/internal/outwriter"
	"github.com/huangsam/reviewdash/schema"
	"github.com/spf13/cobra"
)

// statsCmd shows the aggregate statistics as charts.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review statistics per project and author as bar charts",
	Long: `Load the aggregate statistics for the current filters and draw five charts:
reviews per project, average score per project, reviews per author, average
score per author and code lines per author.

The chart view filters by at most one author and one project; only the first
value of --authors and --projects is used.

Score charts use a fixed 0-100 axis and are colored by score band. Text
output draws terminal bars; csv and json print the series.

Examples:
  # Statistics of the last 7 days
  reviewdash stats

  # Push statistics for one project as JSON
  reviewdash stats --type push -p api --output json`,
	PreRunE:  sharedSetupWrapper,
	PostRunE: sharedTeardown,
	Run: func(_ *cobra.Command, _ []string) {
		var charts contract.ChartSink
		if cfg.Output == schema.TextOut {
			charts = outwriter.NewBarChartWriter(cfg)
		}

		dash := newDashboard(nil, charts)
		defer func() { _ = dash.Close() }()

		series, err := dash.LoadCharts(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to load review statistics", err)
		}
		if charts != nil {
			return
		}
		if err := outwriter.WriteCharts(series, cfg); err != nil {
			contract.LogFatal("Failed to write review statistics", err)
		}
	},
}
