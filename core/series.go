package core

import (
	"slices"

	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
)

// ScoreCeiling is the fixed top of the value axis for score series.
const ScoreCeiling = 100

type seriesMeta struct {
	title      string
	valueLabel string
	value      func(schema.StatEntry) *float64
	scored     bool
}

var seriesCatalog = map[schema.StatKind]seriesMeta{
	schema.ProjectCountsStat: {
		title: "Reviews per Project", valueLabel: "Reviews",
		value: func(e schema.StatEntry) *float64 { return e.Count },
	},
	schema.ProjectScoresStat: {
		title: "Average Score per Project", valueLabel: "Average Score", scored: true,
		value: func(e schema.StatEntry) *float64 { return e.AverageScore },
	},
	schema.AuthorCountsStat: {
		title: "Reviews per Author", valueLabel: "Reviews",
		value: func(e schema.StatEntry) *float64 { return e.Count },
	},
	schema.AuthorScoresStat: {
		title: "Average Score per Author", valueLabel: "Average Score", scored: true,
		value: func(e schema.StatEntry) *float64 { return e.AverageScore },
	},
	schema.AuthorCodeLinesStat: {
		title: "Code Lines per Author", valueLabel: "Code Lines",
		value: func(e schema.StatEntry) *float64 { return e.CodeLines },
	},
}

// ToSeries reshapes one statistic into a chart series. Entry order is kept
// as the category order and missing values count as 0. Score series use a
// fixed 0-100 axis; the others scale from zero. An empty list is flagged as
// Empty, and only the code-lines series is also flagged to skip rendering.
func ToSeries(stat schema.StatKind, entries []schema.StatEntry) schema.ChartSeries {
	meta, ok := seriesCatalog[stat]
	if !ok {
		meta = seriesMeta{title: string(stat), valueLabel: "Value", value: func(schema.StatEntry) *float64 { return nil }}
	}

	series := schema.ChartSeries{
		Stat:       stat,
		Title:      meta.title,
		ValueLabel: meta.valueLabel,
		Labels:     make([]string, 0, len(entries)),
		Values:     make([]float64, 0, len(entries)),
		Axis:       schema.ValueAxis{Min: 0, Auto: true},
	}
	if meta.scored {
		series.Axis = schema.ValueAxis{Min: 0, Max: ScoreCeiling}
	}

	for _, e := range entries {
		series.Labels = append(series.Labels, e.Name)
		var v float64
		if p := meta.value(e); p != nil {
			v = *p
		}
		series.Values = append(series.Values, v)
	}

	if len(entries) == 0 {
		series.Empty = true
		series.SkipRender = stat == schema.AuthorCodeLinesStat
	}
	return series
}

// AllSeries reshapes every statistic of a stats response in chart order.
func AllSeries(resp schema.StatsResponse) []schema.ChartSeries {
	out := make([]schema.ChartSeries, 0, len(schema.AllStatKinds))
	for _, stat := range schema.AllStatKinds {
		out = append(out, ToSeries(stat, resp.Entries(stat)))
	}
	return out
}

// AxisMax returns the top of the value axis: the fixed ceiling, or the
// largest value for auto-scaled series (at least 1 so empty charts still
// have a scale).
func AxisMax(s schema.ChartSeries) float64 {
	if !s.Axis.Auto {
		return s.Axis.Max
	}
	maxV := 0.0
	for _, v := range s.Values {
		if v > maxV {
			maxV = v
		}
	}
	if maxV <= 0 {
		return 1
	}
	return maxV
}

// EscapeSeries returns copies of series with every label passed through
// escape. Sinks that draw labels themselves do not need it.
func EscapeSeries(series []schema.ChartSeries, escape contract.Escaper) []schema.ChartSeries {
	out := make([]schema.ChartSeries, len(series))
	for i, s := range series {
		s.Labels = make([]string, len(series[i].Labels))
		for j, l := range series[i].Labels {
			s.Labels[j] = escape(l)
		}
		s.Values = slices.Clone(s.Values)
		out[i] = s
	}
	return out
}
