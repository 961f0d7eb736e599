package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/client"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/internal/history"
	"github.com/huangsam/reviewdash/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// logger is the structured logger built from the validated config.
var logger = contract.NewDiscardLogger()

// logCloser releases the log file, if any.
var logCloser io.Closer = io.NopCloser(nil)

// historyStore records every load. It stays nil for the none backend.
var historyStore contract.HistoryStore

// envFiles are loaded before viper reads the environment.
var envFiles = []string{".env", "config/.env"}

// startProfiling starts CPU and memory profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "reviewdash",
	Short:              "Browse code review logs and statistics from the terminal or the browser.",
	Long:               `Reviewdash filters the review log of merge requests and pushes by date, author and project, and shows it as a table or as aggregate charts.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in .env files, the config file and ENV variables if set.
func initConfig() {
	for _, f := range envFiles {
		// Missing files are fine; real environment variables win.
		_ = godotenv.Load(f)
	}

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".reviewdash")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("REVIEWDASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server", contract.DefaultServerURL)
	viper.SetDefault("type", schema.MergeRequestKind)
	viper.SetDefault("timeout", contract.DefaultTimeout.String())
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("log-format", contract.DefaultLogFormat)
	viper.SetDefault("history-backend", schema.SQLiteBackend)
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("listen", contract.DefaultListenAddr)
	viper.SetDefault("refresh-interval", contract.DefaultRefreshInterval.String())
}

// readConfigFile reads the config file when one exists.
func readConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the logger and
// the history store.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	contract.ProcessProfilingConfig(profile, viper.GetString("profile"))
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := readConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input, time.Now()); err != nil {
		return err
	}

	var err error
	logger, logCloser, err = contract.NewLogger(cfg)
	if err != nil {
		return err
	}

	// 4. Open the history store. Load tracking is auxiliary, so a broken
	// store is reported and the dashboard runs without it.
	historyStore = nil
	if cfg.HistoryBackend != schema.NoneBackend {
		store, err := history.NewStore(cfg.HistoryBackend, cfg.HistoryDBConnect)
		if err != nil {
			logger.WithError(err).WithField("backend", string(cfg.HistoryBackend)).Warn("Load history disabled")
		} else {
			historyStore = store
		}
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// sharedTeardown closes the history store and the log file.
func sharedTeardown(_ *cobra.Command, _ []string) error {
	var errs []error
	if historyStore != nil {
		errs = append(errs, historyStore.Close())
	}
	errs = append(errs, logCloser.Close())
	return errors.Join(errs...)
}

// newFetcher returns the HTTP client for the configured backend.
func newFetcher() *client.Client {
	return client.New(cfg.ServerURL, cfg.Timeout, client.WithLogger(logger))
}

// newDashboard wires a session seeded from cfg to the given sinks.
func newDashboard(table contract.TableSink, charts contract.ChartSink) *core.Dashboard {
	opts := []core.Option{core.WithLogger(logger)}
	if historyStore != nil {
		opts = append(opts, core.WithHistory(historyStore))
	}
	return core.NewDashboard(core.NewSessionFromConfig(cfg), newFetcher(), table, charts, opts...)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// StopProfiling stops profiling if enabled.
func StopProfiling() error {
	return stopProfiling()
}
