// Package outwriter renders dashboard views for the terminal and for files.
package outwriter

import (
	"os"
	"strings"
	"unicode"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"golang.org/x/term"
)

// Fixed text of the placeholder rows.
const (
	LoadingText = "Loading..."
	NoDataText  = "No data"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// GetTerminalWidth returns the width override from cfg, the detected
// terminal width, or 80 when neither is available.
func GetTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// GetMaxMessageWidth calculates how wide the commit message column may be
// for kind on a terminal of the configured width.
func GetMaxMessageWidth(cfg *contract.Config, kind schema.ReviewKind) int {
	// Project + Author + Branch + Updated At + Delta + Score with borders
	baseWidth := 85
	if kind == schema.MergeRequestKind {
		baseWidth += 45 // Target Branch + Link
	}

	available := GetTerminalWidth(cfg) - baseWidth
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}

// SanitizeTerminal is the escaper of terminal sinks. It drops control
// characters so that backend data cannot move the cursor or recolor the
// screen, and flattens whitespace controls to spaces.
func SanitizeTerminal(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// EscaperFor returns the escaper matching an output mode: terminal
// sanitizing for text, HTML escaping for every machine-readable format.
func EscaperFor(mode schema.OutputMode) contract.Escaper {
	if mode == schema.TextOut {
		return SanitizeTerminal
	}
	return contract.HTMLEscape
}
