package core

import (
	"time"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
)

// Session is the dashboard state that lives as long as the dashboard does:
// the current review kind, date range and selections, the vocabulary and the
// live chart handles.
type Session struct {
	Kind           schema.ReviewKind
	Range          schema.DateRange
	Selection      schema.FilterSelection // table view, multi-select
	ChartSelection schema.FilterSelection // chart view, at most one of each
	Location       *time.Location

	vocab      VocabularySet
	charts     chartRegistry
	lastUpdate time.Time
}

// NewSession returns a session with the default filters: the last seven days
// through today, no author or project, merge requests.
func NewSession(loc *time.Location, today schema.Date) *Session {
	if loc == nil {
		loc = time.Local
	}
	s := &Session{Location: loc}
	s.applyDefaults(today)
	return s
}

// NewSessionFromConfig seeds a session from validated configuration.
func NewSessionFromConfig(cfg *contract.Config) *Session {
	s := &Session{
		Kind:           cfg.Kind,
		Range:          cfg.Range,
		Selection:      cfg.Clone().Selection,
		ChartSelection: cfg.Selection.Single(),
		Location:       cfg.Location,
	}
	if s.Location == nil {
		s.Location = time.Local
	}
	if s.Kind == "" {
		s.Kind = schema.MergeRequestKind
	}
	return s
}

func (s *Session) applyDefaults(today schema.Date) {
	s.Kind = schema.MergeRequestKind
	s.Range = schema.LastDays(today, contract.DefaultLookbackDays)
	s.Selection = schema.FilterSelection{}
	s.ChartSelection = schema.FilterSelection{}
}

// Reset restores the default filters. The vocabulary is cleared only when
// this switches the review kind.
func (s *Session) Reset(today schema.Date) {
	s.SwitchKind(schema.MergeRequestKind)
	s.applyDefaults(today)
}

// SwitchKind selects a review kind and reports whether it changed. A change
// clears the vocabulary and the selections, which belong to the old kind.
func (s *Session) SwitchKind(kind schema.ReviewKind) bool {
	if kind == s.Kind {
		return false
	}
	s.Kind = kind
	s.vocab.Reset()
	s.Selection = schema.FilterSelection{}
	s.ChartSelection = schema.FilterSelection{}
	return true
}

// LogsQuery builds the query of the table view.
func (s *Session) LogsQuery() schema.Query {
	return BuildQuery(s.Kind, s.Range, s.Selection.Authors, s.Selection.Projects, s.Location)
}

// StatsQuery builds the query of the chart view. It uses at most one author
// and one project.
func (s *Session) StatsQuery() schema.Query {
	single := s.ChartSelection.Single()
	return BuildQuery(s.Kind, s.Range, single.Authors, single.Projects, s.Location)
}

// FilterOptionsQuery builds the query of the filter-options endpoint.
func (s *Session) FilterOptionsQuery() schema.Query {
	return FilterOptionsQuery(s.Kind)
}

// Vocabulary returns the session's vocabulary.
func (s *Session) Vocabulary() *VocabularySet {
	return &s.vocab
}

// selected returns every value that must survive a vocabulary merge.
func (s *Session) selected() schema.FilterSelection {
	return schema.FilterSelection{
		Authors:  append(append([]string(nil), s.Selection.Authors...), s.ChartSelection.Authors...),
		Projects: append(append([]string(nil), s.Selection.Projects...), s.ChartSelection.Projects...),
	}
}

// Today returns the current calendar date in the session location.
func (s *Session) Today(now time.Time) schema.Date {
	return schema.DateOf(now.In(s.Location))
}

// LastUpdate returns when the session last refreshed.
func (s *Session) LastUpdate() time.Time {
	return s.lastUpdate
}

// Touch records a refresh.
func (s *Session) Touch(t time.Time) {
	s.lastUpdate = t
}

// RenderChart replaces the chart of series.Stat. The previous handle is
// always released first, including when the new series is skipped.
func (s *Session) RenderChart(sink contract.ChartSink, series schema.ChartSeries) error {
	return s.charts.render(sink, series)
}

// ActiveCharts lists the statistics that currently hold a chart handle.
func (s *Session) ActiveCharts() []schema.StatKind {
	return s.charts.active()
}

// ReleaseCharts releases every chart handle.
func (s *Session) ReleaseCharts() error {
	return s.charts.releaseAll()
}
