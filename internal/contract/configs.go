package contract

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/reviewdash/schema"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultServerURL       = "http://localhost:5002"
	DefaultLookbackDays    = 7
	DefaultPrecision       = 1
	MaxPrecision           = 4
	DefaultTimeout         = 10 * time.Second
	DefaultListenAddr      = ":8080"
	DefaultRefreshInterval = 30 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// NoBound disables one side of the date range when given as --start or --end.
const NoBound = "none"

// Log formats supported by NewLogger.
const (
	TextLogFormat = "text"
	JSONLogFormat = "json"
)

// Config holds the runtime configuration of the dashboard.
// This struct remains the "final, validated" config.
type Config struct {
	ServerURL string
	Timeout   time.Duration

	Kind      schema.ReviewKind
	Range     schema.DateRange
	Selection schema.FilterSelection
	Location  *time.Location

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel  logrus.Level
	LogFormat string
	LogFile   string

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	ListenAddr      string
	RefreshInterval time.Duration
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Server           string   `mapstructure:"server"`
	Timeout          string   `mapstructure:"timeout"`
	Type             string   `mapstructure:"type"`
	Start            string   `mapstructure:"start"`
	End              string   `mapstructure:"end"`
	Authors          []string `mapstructure:"authors"`
	Projects         []string `mapstructure:"projects"`
	Timezone         string   `mapstructure:"timezone"`
	Output           string   `mapstructure:"output"`
	OutputFile       string   `mapstructure:"output-file"`
	Precision        int      `mapstructure:"precision"`
	Width            int      `mapstructure:"width"`
	Color            string   `mapstructure:"color"`
	LogLevel         string   `mapstructure:"log-level"`
	LogFormat        string   `mapstructure:"log-format"`
	LogFile          string   `mapstructure:"log-file"`
	HistoryBackend   string   `mapstructure:"history-backend"`
	HistoryDBConnect string   `mapstructure:"history-db-connect"`
	// --- Fields from serveCmd.Flags() and watchCmd.Flags() ---
	Listen          string `mapstructure:"listen"`
	RefreshInterval string `mapstructure:"refresh-interval"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Selection = schema.FilterSelection{
		Authors:  slices.Clone(c.Selection.Authors),
		Projects: slices.Clone(c.Selection.Projects),
	}
	return &clone
}

// Today returns the current calendar date in the configured location.
func (c *Config) Today(now time.Time) schema.Date {
	return schema.DateOf(now.In(c.location()))
}

func (c *Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. now anchors the default date range.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateServer(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, now); err != nil {
		return err
	}
	if err := validateLogging(cfg, input); err != nil {
		return err
	}
	return validateBackendConfig(cfg, input)
}

// validateSimpleInputs processes and validates the output and filter fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Selection = schema.FilterSelection{
		Authors:  nonBlank(input.Authors),
		Projects: nonBlank(input.Projects),
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Kind = schema.ReviewKind(strings.ToLower(strings.TrimSpace(input.Type)))
	if cfg.Kind == "" {
		cfg.Kind = schema.MergeRequestKind
	}
	if _, ok := schema.ValidReviewKinds[cfg.Kind]; !ok {
		return fmt.Errorf("invalid type '%s'. must be mr or push", input.Type)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json or parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// validateServer checks the backend URL and the durations.
func validateServer(cfg *Config, input *ConfigRawInput) error {
	server := strings.TrimRight(strings.TrimSpace(input.Server), "/")
	if server == "" {
		server = DefaultServerURL
	}
	u, err := url.Parse(server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server URL '%s'. must be an http(s) URL", input.Server)
	}
	cfg.ServerURL = server

	cfg.Timeout, err = parseDurationOr(input.Timeout, DefaultTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	cfg.RefreshInterval, err = parseDurationOr(input.RefreshInterval, DefaultRefreshInterval)
	if err != nil {
		return fmt.Errorf("invalid refresh interval: %w", err)
	}

	cfg.ListenAddr = input.Listen
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	return nil
}

// processTimeRange resolves the location and the date bounds. An empty bound
// falls back to the last-7-days window; "none" leaves the bound absent.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	switch tz := strings.TrimSpace(input.Timezone); tz {
	case "", "Local", "local":
		cfg.Location = time.Local
	default:
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", tz, err)
		}
		cfg.Location = loc
	}

	defaults := schema.LastDays(cfg.Today(now), DefaultLookbackDays)

	start, err := parseBound(input.Start, defaults.Start)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := parseBound(input.End, defaults.End)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	cfg.Range = schema.DateRange{Start: start, End: end}
	return nil
}

// validateLogging parses the logrus level and checks the formatter name.
func validateLogging(cfg *Config, input *ConfigRawInput) error {
	levelStr := input.LogLevel
	if levelStr == "" {
		levelStr = DefaultLogLevel
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	cfg.LogLevel = level

	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.LogFormat != TextLogFormat && cfg.LogFormat != JSONLogFormat {
		return fmt.Errorf("invalid log format '%s'. must be text or json", input.LogFormat)
	}
	cfg.LogFile = input.LogFile
	return nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// RevalidateFilters applies the per-request overrides of the MCP tools and
// the web API on top of an already validated config. Empty values keep the
// configured ones; "none" clears a date bound.
func RevalidateFilters(cfg *Config, kind, start, end string) error {
	if strings.TrimSpace(kind) != "" {
		k := schema.ReviewKind(strings.ToLower(strings.TrimSpace(kind)))
		if _, ok := schema.ValidReviewKinds[k]; !ok {
			return fmt.Errorf("invalid type '%s'. must be mr or push", kind)
		}
		cfg.Kind = k
	}

	startDate, err := parseBound(start, cfg.Range.Start)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err := parseBound(end, cfg.Range.End)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	cfg.Range = schema.DateRange{Start: startDate, End: endDate}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for the host:port address")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}

func parseBound(s string, fallback schema.Date) (schema.Date, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return fallback, nil
	case NoBound:
		return schema.Date{}, nil
	}
	return schema.ParseDate(s)
}

func parseDurationOr(s string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive (received %s)", s)
	}
	return d, nil
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if !schema.IsBlank(v) {
			out = append(out, v)
		}
	}
	return out
}
