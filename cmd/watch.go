package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/outwriter"
	"github.com/huangsam/reviewdash/schema"
	"github.com/spf13/cobra"
)

// watchCmd keeps the table on screen and reloads it periodically.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the review table on an interval until interrupted",
	Long: `Show the review table like 'logs' and reload it every --refresh-interval.

The screen is redrawn on every reload and the "Last update" line shows when
the data last arrived. A failed reload shows a failure row and the next tick
tries again. Press Ctrl+C to stop.

Examples:
  # Reload every 30 seconds (default)
  reviewdash watch

  # Reload pushes every 10 seconds
  reviewdash watch --type push --refresh-interval 10s`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		if cfg.Output != schema.TextOut || cfg.OutputFile != "" {
			return errors.New("watch only supports text output to the terminal")
		}
		return nil
	},
	PostRunE: sharedTeardown,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		dash := newDashboard(outwriter.NewTableWriter(cfg, true), nil)
		return runWatch(ctx, dash, cfg.RefreshInterval)
	},
}

// runWatch reloads dash until ctx is done. The first pass also loads the
// filter options; later passes only reload the data.
func runWatch(ctx context.Context, dash *core.Dashboard, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := dash.Reload(ctx); err != nil {
		logger.WithError(err).Warn("Reload failed")
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := dash.LoadData(ctx); err != nil {
				logger.WithError(err).Warn("Reload failed")
			}
		}
	}
}
