package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/reviewdash/internal/web"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds the graceful shutdown of the web dashboard.
const shutdownTimeout = 10 * time.Second

// serveCmd runs the web dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review dashboard in the browser",
	Long: `Start the web dashboard on --listen.

Pages:
  /        review table with type, date, author and project filters
  /charts  the five statistic charts with single-select filters

API:
  /api/view/logs            projected table rows as JSON
  /api/view/stats           chart series as JSON
  /api/view/filter-options  author and project vocabulary as JSON
  /ws                       last-update feed
  /health                   liveness probe

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  # Serve on :8080 against a local backend
  reviewdash serve

  # Serve on another port against a remote backend
  reviewdash serve --listen :9000 --server https://reviews.example.com`,
	PreRunE:  sharedSetupWrapper,
	PostRunE: sharedTeardown,
	RunE: func(_ *cobra.Command, _ []string) error {
		var opts []web.Option
		if historyStore != nil {
			opts = append(opts, web.WithHistory(historyStore))
		}
		srv, err := web.NewServer(cfg, newFetcher(), logger, opts...)
		if err != nil {
			return err
		}

		go func() {
			logger.WithField("addr", cfg.ListenAddr).Info("Starting dashboard")
			if err := srv.Start(cfg.ListenAddr); err != nil {
				logger.WithError(err).Fatal("Dashboard stopped")
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logger.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(rootCtx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		logger.Info("Dashboard exited")
		return nil
	},
}
