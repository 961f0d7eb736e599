package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const (
	barRune     = "█"
	minBarWidth = 10
	maxBarWidth = 50
)

// ErrChartReleased is returned when drawing on a released chart.
var ErrChartReleased = errors.New("chart already released")

// BarChartWriter is the terminal chart sink. Every chart is drawn as a
// table of horizontal bars.
type BarChartWriter struct {
	cfg    *contract.Config
	stdout io.Writer
}

var _ contract.ChartSink = &BarChartWriter{} // Compile-time check

// NewBarChartWriter creates a chart sink writing to stdout.
func NewBarChartWriter(cfg *contract.Config) *BarChartWriter {
	return &BarChartWriter{cfg: cfg, stdout: os.Stdout}
}

// Acquire returns a fresh handle for stat.
func (b *BarChartWriter) Acquire(stat schema.StatKind) (contract.ChartHandle, error) {
	return &barChart{stat: stat, writer: b}, nil
}

type barChart struct {
	stat     schema.StatKind
	writer   *BarChartWriter
	released bool
}

func (c *barChart) Draw(series schema.ChartSeries) error {
	if c.released {
		return fmt.Errorf("%s: %w", c.stat, ErrChartReleased)
	}
	return writeBarChart(c.writer.stdout, series, c.writer.cfg)
}

func (c *barChart) Release() error {
	c.released = true
	return nil
}

// barWidth returns how many columns the bars may use.
func barWidth(cfg *contract.Config) int {
	// Label + Value with borders
	width := GetTerminalWidth(cfg) - 45
	return max(minBarWidth, min(width, maxBarWidth))
}

// scaleBar returns the bar for value on an axis running to axisMax.
func scaleBar(value, axisMax float64, width int) string {
	if axisMax <= 0 || value <= 0 {
		return ""
	}
	n := int(math.Round(math.Min(value, axisMax) / axisMax * float64(width)))
	return strings.Repeat(barRune, n)
}

// writeBarChart draws one series. Score series color each bar by its band.
func writeBarChart(w io.Writer, series schema.ChartSeries, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "\n%s\n", series.Title); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", series.ValueLabel, "Value"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	fmtFloat := createFormatter(cfg.Precision)
	isScore := !series.Axis.Auto
	axisMax := core.AxisMax(series)
	width := barWidth(cfg)

	var data [][]string
	for i, label := range series.Labels {
		v := series.Values[i]
		bar := scaleBar(v, axisMax, width)
		if isScore {
			bar = contract.GetColorText(bar, contract.GetScoreBand(v), cfg.UseColors)
		}
		data = append(data, []string{SanitizeTerminal(label), bar, fmtFloat(v)})
	}
	if series.Empty {
		data = append(data, []string{NoDataText, "", ""})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteCharts writes every series in the configured machine-readable
// format. Text output is drawn by the chart sink instead.
func WriteCharts(series []schema.ChartSeries, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, core.EscapeSeries(series, contract.HTMLEscape))
		}, "Wrote JSON")
	case schema.CSVOut:
		fmtFloat := createFormatter(cfg.Precision)
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartsCSV(w, core.EscapeSeries(series, contract.HTMLEscape), fmtFloat)
		}, "Wrote CSV")
	default:
		return fmt.Errorf("chart output does not support %s", cfg.Output)
	}
}

func writeChartsCSV(w io.Writer, series []schema.ChartSeries, fmtFloat func(float64) string) error {
	header := []string{"stat", "name", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range series {
			for i, label := range s.Labels {
				if err := cw.Write([]string{string(s.Stat), label, fmtFloat(s.Values[i])}); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}
