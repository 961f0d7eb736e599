package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// effectiveConfig is the YAML view of the validated configuration.
type effectiveConfig struct {
	Server          string   `yaml:"server"`
	Timeout         string   `yaml:"timeout"`
	Type            string   `yaml:"type"`
	Start           string   `yaml:"start"`
	End             string   `yaml:"end"`
	Authors         []string `yaml:"authors,omitempty"`
	Projects        []string `yaml:"projects,omitempty"`
	Timezone        string   `yaml:"timezone"`
	Output          string   `yaml:"output"`
	OutputFile      string   `yaml:"output-file,omitempty"`
	Precision       int      `yaml:"precision"`
	Width           int      `yaml:"width"`
	Color           bool     `yaml:"color"`
	LogLevel        string   `yaml:"log-level"`
	LogFormat       string   `yaml:"log-format"`
	LogFile         string   `yaml:"log-file,omitempty"`
	HistoryBackend  string   `yaml:"history-backend"`
	HistoryConnect  string   `yaml:"history-db-connect,omitempty"`
	Listen          string   `yaml:"listen"`
	RefreshInterval string   `yaml:"refresh-interval"`
}

// redacted replaces a secret with a fixed marker.
const redacted = "********"

func newEffectiveConfig(c *contract.Config) effectiveConfig {
	out := effectiveConfig{
		Server:          c.ServerURL,
		Timeout:         c.Timeout.String(),
		Type:            string(c.Kind),
		Start:           boundText(c.Range.Start.String()),
		End:             boundText(c.Range.End.String()),
		Authors:         c.Selection.Authors,
		Projects:        c.Selection.Projects,
		Output:          string(c.Output),
		OutputFile:      c.OutputFile,
		Precision:       c.Precision,
		Width:           c.Width,
		Color:           c.UseColors,
		LogLevel:        c.LogLevel.String(),
		LogFormat:       c.LogFormat,
		LogFile:         c.LogFile,
		HistoryBackend:  string(c.HistoryBackend),
		Listen:          c.ListenAddr,
		RefreshInterval: c.RefreshInterval.String(),
	}
	if c.Location != nil {
		out.Timezone = c.Location.String()
	}
	if c.HistoryDBConnect != "" {
		out.HistoryConnect = redacted
	}
	return out
}

func boundText(s string) string {
	if s == "" {
		return contract.NoBound
	}
	return s
}

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
	Long: `Inspect the configuration after defaults, .env files, the config file,
REVIEWDASH_* environment variables and flags are merged.`,
}

// configShowCmd prints the effective configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the validated configuration as YAML. The history connection string
is redacted.

Examples:
  reviewdash config show
  REVIEWDASH_TYPE=push reviewdash config show --start none`,
	PreRunE:  sharedSetupWrapper,
	PostRunE: sharedTeardown,
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := yaml.Marshal(newEffectiveConfig(cfg))
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}
