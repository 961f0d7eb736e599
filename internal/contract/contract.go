// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"html"
	"time"

	"github.com/huangsam/reviewdash/schema"
)

// Escaper neutralizes characters that are significant to a rendering target.
type Escaper func(string) string

// HTMLEscape is the default escaper. It neutralizes <, >, &, ' and ".
func HTMLEscape(s string) string {
	return html.EscapeString(s)
}

// ReviewFetcher defines the three review endpoints the dashboard consumes.
// Implementations return a *LoadError for transport failures and for
// responses that carry a truthy error field.
type ReviewFetcher interface {
	FetchLogs(ctx context.Context, q schema.Query) (schema.LogsResponse, error)
	FetchStats(ctx context.Context, q schema.Query) (schema.StatsResponse, error)
	FetchFilterOptions(ctx context.Context, q schema.Query) (schema.FilterOptionsResponse, error)
}

// TableSink renders the table view.
type TableSink interface {
	// Escaper returns the escaping primitive for this sink's markup.
	Escaper() Escaper

	// RenderLoading replaces the table body with a loading indicator.
	RenderLoading(kind schema.ReviewKind) error

	// RenderRows replaces the table body with the projected rows.
	// An empty view renders a single "no data" row.
	RenderRows(view schema.TableView) error

	// RenderFailure replaces the table body with a failure row.
	RenderFailure(kind schema.ReviewKind, err error) error
}

// ChartSink hands out rendering handles, one per chart.
type ChartSink interface {
	Acquire(stat schema.StatKind) (ChartHandle, error)
}

// ChartHandle is a live chart. Release must be safe to call more than once.
type ChartHandle interface {
	Draw(series schema.ChartSeries) error
	Release() error
}

// HistoryStore defines the interface for tracking dashboard loads.
type HistoryStore interface {
	// BeginLoad records the start of a load run.
	BeginLoad(run schema.LoadRun) error

	// EndLoad records how the load run identified by runID ended.
	EndLoad(runID string, outcome schema.LoadOutcome) error

	// GetStatus returns status information about the history store.
	GetStatus() (schema.HistoryStatus, error)

	// GetAllLoadRuns returns every recorded run, oldest first.
	GetAllLoadRuns() ([]schema.LoadRunRecord, error)

	// Close releases the underlying connection.
	Close() error
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time
