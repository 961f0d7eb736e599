package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/reviewdash/schema"
)

// Color variables for console output.
var (
	HighColor   = color.New(color.FgGreen, color.Bold) // HighColor marks scores of 80 and above.
	MediumColor = color.New(color.FgYellow)            // MediumColor marks scores from 60 up to 80.
	LowColor    = color.New(color.FgRed)               // LowColor marks scores below 60.
)

// GetScoreBand classifies a review score for display.
func GetScoreBand(score float64) schema.ScoreBand {
	switch {
	case score >= 80:
		return schema.HighBand
	case score >= 60:
		return schema.MediumBand
	default:
		return schema.LowBand
	}
}

// GetBandColor returns the console color for a score band.
func GetBandColor(band schema.ScoreBand) *color.Color {
	switch band {
	case schema.HighBand:
		return HighColor
	case schema.MediumBand:
		return MediumColor
	default:
		return LowColor
	}
}

// GetColorText colors text according to the band, or returns it unchanged
// when colors are disabled.
func GetColorText(text string, band schema.ScoreBand, useColors bool) string {
	if !useColors {
		return text
	}
	return GetBandColor(band).Sprint(text)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for load history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".reviewdash_history.db"
	}
	return filepath.Join(homeDir, ".reviewdash_history.db")
}

// TruncateText shortens text to maxWidth runes with an ellipsis suffix.
// maxWidth <= 3 leaves the text unchanged since there is no room for content.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
