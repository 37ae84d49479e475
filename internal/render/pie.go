package render

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Slice is one pie slice. Percent is shown in the label with one decimal.
type Slice struct {
	Label   string
	Value   float64
	Percent float64
}

// SliceLabel formats a slice label the way the materials view shows it.
func SliceLabel(label string, percent float64) string {
	return fmt.Sprintf("%s %.1f%%", label, percent)
}

// PieChart draws one slice per entry.
func PieChart(w io.Writer, f Format, slices []Slice, title string, size int) error {
	total := 0.0
	for _, s := range slices {
		total += s.Value
	}
	if len(slices) == 0 || total <= 0 {
		return Empty(w, f, size, size, title)
	}

	values := make([]chart.Value, len(slices))
	for i, s := range slices {
		values[i] = chart.Value{
			Label: SliceLabel(s.Label, s.Percent),
			Value: s.Value,
		}
	}

	pc := chart.PieChart{
		Title:  title,
		Width:  size,
		Height: size,
		Values: values,
	}
	if err := pc.Render(f.provider(), w); err != nil {
		return fmt.Errorf("failed to render pie chart: %w", err)
	}
	return nil
}
