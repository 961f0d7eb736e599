package cmd

import (
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/internal/outwriter"
	"github.com/spf13/cobra"
)

// optionsCmd prints the author and project vocabulary.
var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the authors and projects available for filtering",
	Long: `Print the sorted author and project names known for the review type.

The list is the union of the backend's filter options and the names seen in
the review log for the current filters, plus whatever is selected.

Examples:
  # Authors and projects of merge requests
  reviewdash options

  # Push vocabulary as JSON
  reviewdash options --type push --output json`,
	PreRunE:  sharedSetupWrapper,
	PostRunE: sharedTeardown,
	Run: func(_ *cobra.Command, _ []string) {
		dash := newDashboard(nil, nil)
		if _, err := dash.Reload(rootCtx); err != nil {
			contract.LogWarn("Failed to load review logs", err)
		}

		opts := dash.Session().Vocabulary().Options(outwriter.EscaperFor(cfg.Output))
		if err := outwriter.WriteOptions(opts, cfg); err != nil {
			contract.LogFatal("Failed to write filter options", err)
		}
	},
}
