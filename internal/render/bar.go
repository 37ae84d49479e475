package render

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Bar is one labeled bar.
type Bar struct {
	Label string
	Value float64
}

// BarChartOptions controls the bar chart layout.
type BarChartOptions struct {
	Title  string
	Width  int
	Height int
}

// DefaultBarChartOptions matches the top-bridges view.
func DefaultBarChartOptions() BarChartOptions {
	return BarChartOptions{
		Title:  "Top 20 Bridges by Highest Value",
		Width:  1024,
		Height: 640,
	}
}

// BarChart draws one bar per entry, in order, with x labels rotated 90
// degrees so dense identifiers do not overlap.
func BarChart(w io.Writer, f Format, bars []Bar, opts BarChartOptions) error {
	if len(bars) == 0 {
		return Empty(w, f, opts.Width, opts.Height, opts.Title)
	}

	maxValue := 0.0
	values := make([]chart.Value, len(bars))
	for i, b := range bars {
		if b.Value > maxValue {
			maxValue = b.Value
		}
		values[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{
				FillColor:   barFill,
				StrokeColor: barStroke,
				StrokeWidth: 1,
			},
		}
	}

	barWidth := (opts.Width - 120) / (2 * len(bars))
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 4 {
		barWidth = 4
	}

	bc := chart.BarChart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 160},
		},
		BarWidth: barWidth,
		XAxis: chart.Style{
			TextRotationDegrees: 90.0,
		},
		YAxis: chart.YAxis{
			Name:  "Value",
			Range: &chart.ContinuousRange{Min: 0, Max: niceCeil(maxValue)},
		},
		Bars: values,
	}
	if err := bc.Render(f.provider(), w); err != nil {
		return fmt.Errorf("failed to render bar chart: %w", err)
	}
	return nil
}
