package web

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/labstack/echo/v4"
)

const dateTimeFormat = "2006-01-02 15:04:05"

// option is one entry of a filter dropdown.
type option struct {
	Value    string
	Selected bool
}

// pageFilters is the filter form shared by both pages.
type pageFilters struct {
	Kind     schema.ReviewKind
	Kinds    []schema.ReviewKind
	Start    string
	End      string
	Authors  []option
	Projects []option
	Multi    bool // table filters allow several authors and projects
}

type tablePage struct {
	Filters    pageFilters
	Columns    []string
	Body       template.HTML
	Summary    *summary
	LastUpdate string
	RefreshMs  int64
}

type summary struct {
	Total   int
	Average string
}

type chartsPage struct {
	Filters    pageFilters
	Charts     []barChart
	Error      string
	LastUpdate string
	RefreshMs  int64
}

func errorResponse(code, message string) map[string]any {
	return map[string]any{
		"error": map[string]string{"code": code, "message": message},
	}
}

func (s *Server) handleTablePage(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyFilters(parseFilters(c.QueryParams()), false); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// A failed load is shown in the table body.
	_, _ = s.dashboard.Reload(c.Request().Context())

	return c.Render(http.StatusOK, "index.html", s.tablePage())
}

func (s *Server) handleChartsPage(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyFilters(parseFilters(c.QueryParams()), true); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	_ = s.dashboard.LoadFilterOptions(c.Request().Context())

	page := chartsPage{}
	if _, err := s.dashboard.LoadCharts(c.Request().Context()); err != nil {
		page.Error = "load failed: " + contract.FailureMessage(err)
	}
	page.Filters = s.pageFilters(true)
	page.Charts = s.charts.charts()
	page.LastUpdate = s.lastUpdateText()
	page.RefreshMs = s.refreshInterval().Milliseconds()
	return c.Render(http.StatusOK, "charts.html", page)
}

func (s *Server) handleLogs(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyFilters(parseFilters(c.QueryParams()), false); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("BAD_REQUEST", err.Error()))
	}
	view, err := s.dashboard.Reload(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse("LOAD_FAILED", contract.FailureMessage(err)))
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleStats(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyFilters(parseFilters(c.QueryParams()), true); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("BAD_REQUEST", err.Error()))
	}
	series, err := s.dashboard.LoadCharts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse("LOAD_FAILED", contract.FailureMessage(err)))
	}
	return c.JSON(http.StatusOK, core.EscapeSeries(series, contract.HTMLEscape))
}

func (s *Server) handleFilterOptions(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.switchKind(c.QueryParam("type")); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("BAD_REQUEST", err.Error()))
	}
	if err := s.dashboard.LoadFilterOptions(c.Request().Context()); err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse("LOAD_FAILED", contract.FailureMessage(err)))
	}
	return c.JSON(http.StatusOK, s.dashboard.Session().Vocabulary().Options(contract.HTMLEscape))
}

// tablePage assembles the index page model. The caller holds s.mu.
func (s *Server) tablePage() tablePage {
	body, state, view := s.table.snapshot()
	page := tablePage{
		Filters:    s.pageFilters(false),
		Columns:    core.TableColumns(s.dashboard.Session().Kind),
		Body:       body,
		LastUpdate: s.lastUpdateText(),
		RefreshMs:  s.refreshInterval().Milliseconds(),
	}
	if state == "rows" && view != nil {
		page.Summary = &summary{Total: view.Total, Average: formatAverage(view.AverageScore)}
	}
	return page
}

// pageFilters builds the filter form from the session. Option values are
// raw; the template escapes them.
func (s *Server) pageFilters(chart bool) pageFilters {
	sess := s.dashboard.Session()
	sel := sess.Selection
	if chart {
		sel = sess.ChartSelection
	}
	return pageFilters{
		Kind:     sess.Kind,
		Kinds:    []schema.ReviewKind{schema.MergeRequestKind, schema.PushKind},
		Start:    sess.Range.Start.String(),
		End:      sess.Range.End.String(),
		Authors:  options(sess.Vocabulary().Authors(), sel.Authors),
		Projects: options(sess.Vocabulary().Projects(), sel.Projects),
		Multi:    !chart,
	}
}

func options(values, selected []string) []option {
	chosen := make(map[string]bool, len(selected))
	for _, v := range selected {
		chosen[v] = true
	}
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{Value: v, Selected: chosen[v]}
	}
	return out
}

func (s *Server) lastUpdateText() string {
	t := s.dashboard.Session().LastUpdate()
	if t.IsZero() {
		return ""
	}
	return t.In(s.dashboard.Session().Location).Format(dateTimeFormat)
}

func (s *Server) refreshInterval() time.Duration {
	if s.cfg.RefreshInterval <= 0 {
		return contract.DefaultRefreshInterval
	}
	return s.cfg.RefreshInterval
}

func formatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
