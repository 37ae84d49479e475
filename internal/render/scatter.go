package render

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Point is a map position in decimal degrees.
type Point struct {
	Longitude float64
	Latitude  float64
}

// coordinatePad keeps a lone point (or a flat line of points) off the
// chart border.
const coordinatePad = 0.25

// ScatterMap draws points at (longitude, latitude) with a fixed size and
// color. It is the static counterpart of the interactive map page.
func ScatterMap(w io.Writer, f Format, points []Point, title string, width, height int) error {
	if len(points) == 0 {
		return Empty(w, f, width, height, title)
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	xr := &chart.ContinuousRange{Min: points[0].Longitude, Max: points[0].Longitude}
	yr := &chart.ContinuousRange{Min: points[0].Latitude, Max: points[0].Latitude}
	for i, p := range points {
		xs[i], ys[i] = p.Longitude, p.Latitude
		xr.Min, xr.Max = min(xr.Min, p.Longitude), max(xr.Max, p.Longitude)
		yr.Min, yr.Max = min(yr.Min, p.Latitude), max(yr.Max, p.Latitude)
	}
	xr.Min, xr.Max = xr.Min-coordinatePad, xr.Max+coordinatePad
	yr.Min, yr.Max = yr.Min-coordinatePad, yr.Max+coordinatePad

	ch := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{Name: "Longitude", Range: xr},
		YAxis: chart.YAxis{Name: "Latitude", Range: yr},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "bridges",
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    5,
					DotColor:    pointFill,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("failed to render map scatter: %w", err)
	}
	return nil
}
