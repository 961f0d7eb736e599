package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/internal/history"
	"github.com/huangsam/reviewdash/internal/outwriter"
	"github.com/huangsam/reviewdash/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackend reads and checks the history backend settings without the
// full shared setup. The history commands never talk to the review backend.
func historyBackend() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("history-backend")))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup opens the configured history store for the read commands.
func historySetup() error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	output := schema.OutputMode(strings.ToLower(viper.GetString("output")))
	if _, ok := schema.ValidOutputModes[output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json or parquet", output)
	}

	store, err := history.NewStore(backend, connStr)
	if err != nil {
		return fmt.Errorf("failed to open load history: %w", err)
	}

	historyStore = store
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.Output = output
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMaintenanceSetup loads the backend settings without opening the
// store, so clear and migrate can run on a broken or fresh database.
func historyMaintenanceSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on load history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the history of dashboard loads",
	Long: `Manage the audit trail of dashboard loads.

Every load of logs, statistics or filter options is recorded with its id,
operation, review type, query, timing, record count and outcome. Nothing is
ever rendered from the history; it only tells what was asked and when.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics and connection info
  list    - Print every recorded load
  export  - Export the history to Parquet
  clear   - Remove all recorded loads
  migrate - Run database schema migrations

Examples:
  # Check history status
  reviewdash history status

  # Export for analysis in pandas/DuckDB
  reviewdash history export --output-file loads.parquet`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display load history statistics and connection details",
	Long: `Show the backend, connection status, run counts, the last and oldest run
and the table sizes of the load history.

Examples:
  reviewdash history status`,
	PreRunE:  historySetupWrapper,
	PostRunE: sharedTeardown,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := historyStore.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		outwriter.WriteHistoryStatus(os.Stdout, status)
	},
}

// historyListCmd prints every recorded load.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every recorded load, oldest first",
	Long: `Print the recorded loads as a table, CSV or JSON.

Examples:
  reviewdash history list
  reviewdash history list --output csv`,
	PreRunE:  historySetupWrapper,
	PostRunE: sharedTeardown,
	Run: func(_ *cobra.Command, _ []string) {
		runs, err := historyStore.GetAllLoadRuns()
		if err != nil {
			contract.LogFatal("Failed to read load history", err)
		}
		if err := outwriter.WriteHistoryRuns(os.Stdout, runs, cfg); err != nil {
			contract.LogFatal("Failed to write load history", err)
		}
	},
}

// historyExportCmd exports the load history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the load history to Parquet",
	Long: `Export every recorded load to a Parquet file for DuckDB, pandas or Spark.

Requires: --output-file parameter

Examples:
  reviewdash history export --output-file loads.parquet
  duckdb -c "SELECT operation, count(*) FROM read_parquet('loads.parquet') GROUP BY 1"`,
	PreRunE:  historySetupWrapper,
	PostRunE: sharedTeardown,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExportHistory(historyStore, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export load history", err)
		}
	},
}

// historyClearCmd clears the load history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded loads",
	Long: `Delete the load history from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history table

WARNING: This action cannot be undone. Consider exporting first.

Examples:
  reviewdash history export --output-file backup.parquet
  reviewdash history clear`,
	PreRunE: historyMaintenanceSetup,
	Run: func(_ *cobra.Command, _ []string) {
		dbFile := cfg.HistoryDBConnect
		if dbFile == "" {
			dbFile = contract.GetHistoryDBFilePath()
		}
		if err := history.ClearHistory(cfg.HistoryBackend, dbFile, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear load history", err)
		}
		fmt.Println("Load history cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the load history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  reviewdash history migrate

  # Rollback every migration
  reviewdash history migrate --target-version 0`,
	PreRunE: historyMaintenanceSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.Migrate(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
