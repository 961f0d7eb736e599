// Package schema holds the data types shared by the dashboard core, its sinks and its stores.
package schema

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// RawRecord is one review event exactly as decoded from the logs endpoint.
// Fields are read through the tolerant accessors below, so records with
// missing or oddly typed fields still project.
type RawRecord map[string]any

// Text returns the field as a string, or "" when absent, null or not representable.
func (r RawRecord) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Number returns the field as a float and whether a usable number was present.
func (r RawRecord) Number(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FilterSelection is the set of chosen authors and projects. The table view
// allows several of each; the chart view uses at most one of each.
type FilterSelection struct {
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Projects []string `json:"project_names,omitempty" yaml:"project_names,omitempty"`
}

// Single narrows the selection to the first author and first project.
func (s FilterSelection) Single() FilterSelection {
	var out FilterSelection
	if len(s.Authors) > 0 {
		out.Authors = []string{s.Authors[0]}
	}
	if len(s.Projects) > 0 {
		out.Projects = []string{s.Projects[0]}
	}
	return out
}

// FilterOptions is the author and project vocabulary offered for filtering.
type FilterOptions struct {
	Authors      []string `json:"authors"`
	ProjectNames []string `json:"project_names"`
}

// DisplayRow is a review record projected for rendering. Every string field
// has already been passed through the sink's escaper.
type DisplayRow struct {
	ProjectName    string    `json:"project_name"`
	Author         string    `json:"author"`
	Branch         string    `json:"branch"`
	TargetBranch   *string   `json:"target_branch,omitempty"`
	UpdatedAt      string    `json:"updated_at"`
	CommitMessages string    `json:"commit_messages"`
	Delta          string    `json:"delta"`
	Score          float64   `json:"score"`
	ScoreText      string    `json:"score_text"`
	ScoreBand      ScoreBand `json:"score_band"`
	ActionLink     *string   `json:"url,omitempty"`
}

// TableView is everything a table sink needs for one successful load.
type TableView struct {
	Kind         ReviewKind   `json:"type"`
	Columns      []string     `json:"columns"`
	Rows         []DisplayRow `json:"rows"`
	Total        int          `json:"total"`
	AverageScore float64      `json:"average_score"`
	LoadedAt     time.Time    `json:"loaded_at"`
}

// StatEntry is one element of an aggregate statistic list.
type StatEntry struct {
	Name         string   `json:"name"`
	Count        *float64 `json:"count,omitempty"`
	AverageScore *float64 `json:"average_score,omitempty"`
	CodeLines    *float64 `json:"code_lines,omitempty"`
}

// UnmarshalJSON decodes an entry leniently: numeric names become strings and
// unusable numbers are treated as absent.
func (e *StatEntry) UnmarshalJSON(data []byte) error {
	var raw RawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = statEntryOf(raw)
	return nil
}

func statEntryOf(raw RawRecord) StatEntry {
	return StatEntry{
		Name:         raw.Text("name"),
		Count:        optionalNumber(raw, "count"),
		AverageScore: optionalNumber(raw, "average_score"),
		CodeLines:    optionalNumber(raw, "code_lines"),
	}
}

func optionalNumber(r RawRecord, key string) *float64 {
	f, ok := r.Number(key)
	if !ok {
		return nil
	}
	return &f
}

// ValueAxis describes the value axis of a chart. When Auto is set, Max is
// derived from the data and Min stays at zero.
type ValueAxis struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max,omitempty"`
	Auto bool    `json:"auto"`
}

// ChartSeries is one aggregate statistic reshaped for a chart sink.
type ChartSeries struct {
	Stat       StatKind  `json:"stat"`
	Title      string    `json:"title"`
	ValueLabel string    `json:"value_label"`
	Labels     []string  `json:"labels"`
	Values     []float64 `json:"values"`
	Axis       ValueAxis `json:"axis"`
	Empty      bool      `json:"empty"`
	SkipRender bool      `json:"skip_render"`
}

// ShouldRender reports whether a chart sink should be invoked for the series.
func (s ChartSeries) ShouldRender() bool {
	return !s.SkipRender
}

// LogsResponse is the body of GET /api/review/logs.
type LogsResponse struct {
	Data         []RawRecord `json:"data"`
	Total        float64     `json:"total"`
	AverageScore float64     `json:"average_score"`
	Error        any         `json:"error,omitempty"`
}

// FilterOptionsResponse is the body of GET /api/review/filter-options.
type FilterOptionsResponse struct {
	Authors      []string `json:"authors"`
	ProjectNames []string `json:"project_names"`
	Error        any      `json:"error,omitempty"`
}

// StatsResponse is the body of GET /api/review/stats.
type StatsResponse struct {
	ProjectCounts   []StatEntry `json:"project_counts"`
	ProjectScores   []StatEntry `json:"project_scores"`
	AuthorCounts    []StatEntry `json:"author_counts"`
	AuthorScores    []StatEntry `json:"author_scores"`
	AuthorCodeLines []StatEntry `json:"author_code_lines"`
	Error           any         `json:"error,omitempty"`
}

// Entries returns the list for the given statistic.
func (r StatsResponse) Entries(stat StatKind) []StatEntry {
	switch stat {
	case ProjectCountsStat:
		return r.ProjectCounts
	case ProjectScoresStat:
		return r.ProjectScores
	case AuthorCountsStat:
		return r.AuthorCounts
	case AuthorScoresStat:
		return r.AuthorScores
	case AuthorCodeLinesStat:
		return r.AuthorCodeLines
	default:
		return nil
	}
}

// The response decoders below only require the body to be a JSON object.
// Fields of the wrong type read as absent, and malformed list elements are
// degraded rather than failing the whole load.

// UnmarshalJSON decodes a logs body. A record that is not an object becomes
// an empty record so that it still projects as a placeholder row.
func (r *LogsResponse) UnmarshalJSON(data []byte) error {
	var raw RawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items := raw.list("data")
	out := LogsResponse{Error: raw["error"]}
	if items != nil {
		out.Data = make([]RawRecord, 0, len(items))
	}
	for _, item := range items {
		rec, _ := item.(map[string]any)
		if rec == nil {
			rec = map[string]any{}
		}
		out.Data = append(out.Data, RawRecord(rec))
	}
	out.Total, _ = raw.Number("total")
	out.AverageScore, _ = raw.Number("average_score")
	*r = out
	return nil
}

// UnmarshalJSON decodes a filter-options body, skipping entries that are
// not strings.
func (r *FilterOptionsResponse) UnmarshalJSON(data []byte) error {
	var raw RawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = FilterOptionsResponse{
		Authors:      raw.stringList("authors"),
		ProjectNames: raw.stringList("project_names"),
		Error:        raw["error"],
	}
	return nil
}

// UnmarshalJSON decodes a stats body, skipping entries that are not objects.
func (r *StatsResponse) UnmarshalJSON(data []byte) error {
	var raw RawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = StatsResponse{
		ProjectCounts:   raw.statEntries(string(ProjectCountsStat)),
		ProjectScores:   raw.statEntries(string(ProjectScoresStat)),
		AuthorCounts:    raw.statEntries(string(AuthorCountsStat)),
		AuthorScores:    raw.statEntries(string(AuthorScoresStat)),
		AuthorCodeLines: raw.statEntries(string(AuthorCodeLinesStat)),
		Error:           raw["error"],
	}
	return nil
}

// list returns the field as a JSON array, or nil when it is anything else.
func (r RawRecord) list(key string) []any {
	items, _ := r[key].([]any)
	return items
}

func (r RawRecord) stringList(key string) []string {
	items := r.list(key)
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (r RawRecord) statEntries(key string) []StatEntry {
	items := r.list(key)
	if items == nil {
		return nil
	}
	out := make([]StatEntry, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, statEntryOf(obj))
		}
	}
	return out
}
