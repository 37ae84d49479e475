// Package render draws dashboard charts with go-chart.
//
// Every chart renders to SVG or PNG. A chart with nothing to plot renders a
// blank placeholder image instead of failing.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat maps a query value to a Format. Empty means SVG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported image format: %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Fill and stroke colors shared by the charts.
var (
	barFill   = drawing.Color{R: 255, G: 0, B: 0, A: 255}
	barStroke = drawing.Color{R: 0, G: 0, B: 0, A: 255}
	pointFill = drawing.Color{R: 255, G: 0, B: 0, A: 160}
)

// Empty writes a blank chart of the given size with a short message.
func Empty(w io.Writer, f Format, width, height int, title string) error {
	if f == FormatPNG {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
		return png.Encode(w, img)
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")
	if title != "" {
		canvas.Text(width/2, 40, title, "text-anchor:middle;font-family:sans-serif;font-size:18px;fill:#333")
	}
	canvas.Text(width/2, height/2, "No data to display", "text-anchor:middle;font-family:sans-serif;font-size:16px;fill:#777")
	canvas.End()
	return nil
}

// niceCeil rounds v up to 1, 2 or 5 times a power of ten so the value axis
// ends on a readable tick.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	mag := 1.0
	for mag*10 <= v {
		mag *= 10
	}
	for mag > v {
		mag /= 10
	}
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= v {
			return m * mag
		}
	}
	return 10 * mag
}
