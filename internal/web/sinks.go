package web

import (
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
)

// Fixed text of the placeholder rows.
const (
	loadingText = "Loading..."
	noDataText  = "No data"
)

// tableBody is the HTML table sink. It keeps the last rendered body so the
// page handler can embed it. The rows are escaped by the projector, so the
// body is assembled as markup and trusted by the template.
type tableBody struct {
	mu    sync.Mutex
	kind  schema.ReviewKind
	body  template.HTML
	view  *schema.TableView
	state string
}

var _ contract.TableSink = &tableBody{} // Compile-time check

func (t *tableBody) Escaper() contract.Escaper {
	return contract.HTMLEscape
}

func (t *tableBody) RenderLoading(kind schema.ReviewKind) error {
	t.set(kind, "loading", nil, placeholderRow(kind, loadingText, "loading"))
	return nil
}

func (t *tableBody) RenderRows(view schema.TableView) error {
	if len(view.Rows) == 0 {
		t.set(view.Kind, "rows", &view, placeholderRow(view.Kind, noDataText, "empty"))
		return nil
	}

	var b strings.Builder
	for _, row := range view.Rows {
		b.WriteString(`<tr class="band-`)
		b.WriteString(strings.ToLower(string(row.ScoreBand)))
		b.WriteString(`">`)
		cells := core.RowCells(row, view.Kind)
		for i, col := range view.Columns {
			switch {
			case col == "Link" && isWebLink(cells[i]):
				fmt.Fprintf(&b, `<td><a href="%s" target="_blank" rel="noopener">View</a></td>`, cells[i])
			case col == "Score":
				fmt.Fprintf(&b, `<td class="score">%s</td>`, cells[i])
			default:
				fmt.Fprintf(&b, `<td>%s</td>`, cells[i])
			}
		}
		b.WriteString("</tr>\n")
	}
	t.set(view.Kind, "rows", &view, template.HTML(b.String())) // cells are escaped by the projector
	return nil
}

func (t *tableBody) RenderFailure(kind schema.ReviewKind, err error) error {
	msg := "load failed: " + contract.HTMLEscape(contract.FailureMessage(err))
	t.set(kind, "failure", nil, placeholderRow(kind, msg, "failure"))
	return nil
}

func (t *tableBody) set(kind schema.ReviewKind, state string, view *schema.TableView, body template.HTML) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.kind = kind
	t.state = state
	t.body = body
	t.view = view
}

// snapshot returns the current body, the state that produced it and the
// last successful view (nil after a loading or failure render).
func (t *tableBody) snapshot() (template.HTML, string, *schema.TableView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.body, t.state, t.view
}

func isWebLink(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// placeholderRow spans one cell over every column of kind. text must
// already be safe markup.
func placeholderRow(kind schema.ReviewKind, text, class string) template.HTML {
	return template.HTML(fmt.Sprintf(`<tr class="%s"><td colspan="%d">%s</td></tr>`, class, core.ColumnCount(kind), text)) // text is escaped by the caller
}

// chartBoard is the HTML chart sink. Each handle publishes its series to the
// board until it is released.
type chartBoard struct {
	mu     sync.Mutex
	series map[schema.StatKind]*chartHandle
}

var _ contract.ChartSink = &chartBoard{} // Compile-time check

func newChartBoard() *chartBoard {
	return &chartBoard{series: make(map[schema.StatKind]*chartHandle)}
}

func (b *chartBoard) Acquire(stat schema.StatKind) (contract.ChartHandle, error) {
	return &chartHandle{stat: stat, board: b}, nil
}

// charts returns the drawn charts in layout order.
func (b *chartBoard) charts() []barChart {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []barChart
	for _, stat := range schema.AllStatKinds {
		if h, ok := b.series[stat]; ok {
			out = append(out, newBarChart(h.drawn))
		}
	}
	return out
}

type chartHandle struct {
	stat     schema.StatKind
	board    *chartBoard
	drawn    schema.ChartSeries
	released bool
}

func (h *chartHandle) Draw(series schema.ChartSeries) error {
	h.board.mu.Lock()
	defer h.board.mu.Unlock()
	if h.released {
		return fmt.Errorf("chart %s already released", h.stat)
	}
	h.drawn = series
	h.board.series[h.stat] = h
	return nil
}

func (h *chartHandle) Release() error {
	h.board.mu.Lock()
	defer h.board.mu.Unlock()
	h.released = true
	if h.board.series[h.stat] == h {
		delete(h.board.series, h.stat)
	}
	return nil
}

// barChart is the template model of one chart.
type barChart struct {
	Stat       schema.StatKind
	Title      string
	ValueLabel string
	Empty      bool
	Bars       []bar
}

type bar struct {
	Label   string
	Value   float64
	Percent float64
	Band    string
}

func newBarChart(s schema.ChartSeries) barChart {
	axisMax := core.AxisMax(s)
	c := barChart{Stat: s.Stat, Title: s.Title, ValueLabel: s.ValueLabel, Empty: s.Empty}
	for i, label := range s.Labels {
		v := s.Values[i]
		pct := 0.0
		if axisMax > 0 && v > 0 {
			pct = min(v, axisMax) / axisMax * 100
		}
		b := bar{Label: label, Value: v, Percent: pct}
		if !s.Axis.Auto {
			b.Band = strings.ToLower(string(contract.GetScoreBand(v)))
		}
		c.Bars = append(c.Bars, b)
	}
	return c
}
