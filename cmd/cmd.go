// Package cmd defines the command-line interface for reviewdash.
package cmd

import (
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Add the config subcommands to the parent config command
	configCmd.AddCommand(configShowCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("server", contract.DefaultServerURL, "Base URL of the review log backend")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout of one backend request")
	rootCmd.PersistentFlags().StringP("type", "t", string(schema.MergeRequestKind), "Review type: mr or push")
	rootCmd.PersistentFlags().String("start", "", "Start date as YYYY-MM-DD, or none (default: 7 days ago)")
	rootCmd.PersistentFlags().String("end", "", "End date as YYYY-MM-DD, or none (default: today)")
	rootCmd.PersistentFlags().StringSliceP("authors", "a", nil, "Only show these authors (repeat or comma-separate)")
	rootCmd.PersistentFlags().StringSliceP("projects", "p", nil, "Only show these projects (repeat or comma-separate)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA time zone used for date boundaries (default: local)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "Append logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("history-backend", string(schema.SQLiteBackend), "Load history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("refresh-interval", contract.DefaultRefreshInterval.String(), "Reload interval of watch and last-update interval of serve")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address the dashboard listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
