package web

import (
	"errors"
	"testing"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableBodyStates(t *testing.T) {
	var tb tableBody

	require.NoError(t, tb.RenderLoading(schema.MergeRequestKind))
	body, state, view := tb.snapshot()
	assert.Equal(t, `<tr class="loading"><td colspan="9">Loading...</td></tr>`, string(body))
	assert.Equal(t, "loading", state)
	assert.Nil(t, view)

	require.NoError(t, tb.RenderRows(schema.TableView{Kind: schema.PushKind, Columns: core.TableColumns(schema.PushKind)}))
	body, state, view = tb.snapshot()
	assert.Equal(t, `<tr class="empty"><td colspan="7">No data</td></tr>`, string(body))
	assert.Equal(t, "rows", state)
	assert.NotNil(t, view)

	require.NoError(t, tb.RenderFailure(schema.PushKind, contract.NewTransportError("logs", errors.New("<refused>"))))
	body, state, _ = tb.snapshot()
	assert.Equal(t, `<tr class="failure"><td colspan="7">load failed: &lt;refused&gt;</td></tr>`, string(body))
	assert.Equal(t, "failure", state)
}

func TestTableBodyRows(t *testing.T) {
	var tb tableBody
	link := "https://git.example.com/1"
	target := "main"
	view := schema.TableView{
		Kind:    schema.MergeRequestKind,
		Columns: core.TableColumns(schema.MergeRequestKind),
		Rows: []schema.DisplayRow{{
			ProjectName: "api", Author: "alice", Branch: "feat", TargetBranch: &target,
			UpdatedAt: "2024-05-01", CommitMessages: "fix &amp; test", Delta: "+1 -1",
			ScoreText: "85.0", ScoreBand: schema.HighBand, ActionLink: &link,
		}},
	}
	require.NoError(t, tb.RenderRows(view))

	body, _, _ := tb.snapshot()
	assert.Equal(t, `<tr class="band-high"><td>api</td><td>alice</td><td>feat</td><td>main</td><td>2024-05-01</td>`+
		`<td>fix &amp; test</td><td>+1 -1</td><td class="score">85.0</td>`+
		`<td><a href="https://git.example.com/1" target="_blank" rel="noopener">View</a></td></tr>`+"\n", string(body))
}

func TestChartBoard(t *testing.T) {
	board := newChartBoard()
	series := core.ToSeries(schema.ProjectScoresStat, []schema.StatEntry{{Name: "api", AverageScore: ptr(50.0)}})

	first, err := board.Acquire(schema.ProjectScoresStat)
	require.NoError(t, err)
	require.NoError(t, first.Draw(series))

	charts := board.charts()
	require.Len(t, charts, 1)
	assert.Equal(t, "Average Score per Project", charts[0].Title)
	require.Len(t, charts[0].Bars, 1)
	assert.InDelta(t, 50.0, charts[0].Bars[0].Percent, 1e-9)
	assert.Equal(t, "low", charts[0].Bars[0].Band)

	second, err := board.Acquire(schema.ProjectScoresStat)
	require.NoError(t, err)
	require.NoError(t, second.Draw(series))

	// Releasing a replaced handle leaves the newer chart in place.
	require.NoError(t, first.Release())
	assert.Len(t, board.charts(), 1)
	assert.Error(t, first.Draw(series))

	require.NoError(t, second.Release())
	require.NoError(t, second.Release())
	assert.Empty(t, board.charts())
}

func TestNewBarChartAutoAxis(t *testing.T) {
	series := core.ToSeries(schema.AuthorCountsStat, []schema.StatEntry{
		{Name: "alice", Count: ptr(4)},
		{Name: "bob", Count: ptr(1)},
		{Name: "carol"},
	})
	chart := newBarChart(series)
	require.Len(t, chart.Bars, 3)
	assert.InDelta(t, 100.0, chart.Bars[0].Percent, 1e-9)
	assert.InDelta(t, 25.0, chart.Bars[1].Percent, 1e-9)
	assert.Zero(t, chart.Bars[2].Percent)
	assert.Empty(t, chart.Bars[0].Band)
}

func ptr(v float64) *float64 { return &v }
