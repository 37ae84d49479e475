// Package dashboard derives the three dashboard views from the bridge table.
//
// Each derivation and each rendered chart is memoized by its arguments for
// the life of the Dashboard, which is the life of the process.
package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"bridgedash/internal/memo"
	"bridgedash/internal/models"
	"bridgedash/internal/pipeline"
	"bridgedash/internal/render"
)

// ErrPointsOutOfRange is returned for a map point count outside the
// configured bounds.
var ErrPointsOutOfRange = errors.New("map point count out of range")

// LatLng is a position in decimal degrees.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Options configures the map view and chart sizes.
type Options struct {
	MinPoints     int
	MaxPoints     int
	DefaultPoints int
	Zoom          int
	RadiusMeters  float64
	// FallbackCenter is used when the map has no points to average.
	FallbackCenter LatLng
	TileURL        string
	Attribution    string

	BarWidth, BarHeight int
	PieSize             int
	MapWidth, MapHeight int
}

// DefaultOptions returns the settings the dashboard ships with.
func DefaultOptions() Options {
	return Options{
		MinPoints:      1,
		MaxPoints:      1000,
		DefaultPoints:  20,
		Zoom:           4,
		RadiusMeters:   1000,
		FallbackCenter: LatLng{Latitude: 32.6781, Longitude: -83.2230},
		TileURL:        "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution:    "&copy; OpenStreetMap contributors",
		BarWidth:       1024,
		BarHeight:      640,
		PieSize:        640,
		MapWidth:       900,
		MapHeight:      700,
	}
}

// Dashboard holds the loaded table and the memoized views over it.
type Dashboard struct {
	table *models.BridgeTable
	opts  Options
	cache *memo.Cache
}

// New creates a dashboard over table.
func New(table *models.BridgeTable, opts Options) *Dashboard {
	return &Dashboard{
		table: table,
		opts:  opts,
		cache: memo.New(),
	}
}

// Table returns the table the views derive from.
func (d *Dashboard) Table() *models.BridgeTable {
	return d.table
}

// Options returns the dashboard settings.
func (d *Dashboard) Options() Options {
	return d.opts
}

// CheckPoints validates a map point count against the configured bounds.
func (d *Dashboard) CheckPoints(n int) error {
	if n < d.opts.MinPoints || n > d.opts.MaxPoints {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrPointsOutOfRange, n, d.opts.MinPoints, d.opts.MaxPoints)
	}
	return nil
}

// TopBridges is the bar view subset: the 20 most-trafficked bridges.
func (d *Dashboard) TopBridges() pipeline.RankedSubset {
	v, _ := memo.Do(d.cache, memo.Key("top-bridges"), func() (pipeline.RankedSubset, error) {
		return pipeline.TopByTraffic(d.table, pipeline.BarLimit), nil
	})
	return slices.Clone(v)
}

// Materials is the pie view: the six most common materials with their
// share of the six.
func (d *Dashboard) Materials() []pipeline.MaterialShare {
	v, _ := memo.Do(d.cache, memo.Key("materials"), func() ([]pipeline.MaterialShare, error) {
		return pipeline.TopMaterials(d.table, pipeline.DefaultMaterials).Shares(), nil
	})
	return slices.Clone(v)
}

// MapView is the map subset for n points.
func (d *Dashboard) MapView(n int) (MapModel, error) {
	if err := d.CheckPoints(n); err != nil {
		return MapModel{}, err
	}
	m, err := memo.Do(d.cache, memo.Key("map", n), func() (MapModel, error) {
		return newMapModel(pipeline.TopByTrafficWithCoordinates(d.table, n), d.opts), nil
	})
	if err != nil {
		return MapModel{}, err
	}
	m.Points = slices.Clone(m.Points)
	return m, nil
}

// BarChart renders the bar view. The returned bytes are shared between
// callers and must not be modified.
func (d *Dashboard) BarChart(f render.Format) ([]byte, error) {
	return memo.Do(d.cache, memo.Key("chart", "bar", f), func() ([]byte, error) {
		top := d.TopBridges()
		bars := make([]render.Bar, len(top))
		for i, r := range top {
			bars[i] = render.Bar{Label: r.StructureNumber, Value: r.AverageDailyTraffic.Value}
		}
		opts := render.DefaultBarChartOptions()
		opts.Width, opts.Height = d.opts.BarWidth, d.opts.BarHeight

		var buf bytes.Buffer
		if err := render.BarChart(&buf, f, bars, opts); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// PieChart renders the materials view.
func (d *Dashboard) PieChart(f render.Format) ([]byte, error) {
	return memo.Do(d.cache, memo.Key("chart", "pie", f), func() ([]byte, error) {
		shares := d.Materials()
		slices := make([]render.Slice, len(shares))
		for i, s := range shares {
			slices[i] = render.Slice{Label: s.Material, Value: float64(s.Count), Percent: s.Percent}
		}

		var buf bytes.Buffer
		if err := render.PieChart(&buf, f, slices, "Most Popular Materials", d.opts.PieSize); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// MapChart renders a static scatter of the map view for n points.
func (d *Dashboard) MapChart(n int, f render.Format) ([]byte, error) {
	m, err := d.MapView(n)
	if err != nil {
		return nil, err
	}
	return memo.Do(d.cache, memo.Key("chart", "map", n, f), func() ([]byte, error) {
		points := make([]render.Point, len(m.Points))
		for i, p := range m.Points {
			points[i] = render.Point{Longitude: p.Longitude, Latitude: p.Latitude}
		}

		var buf bytes.Buffer
		if err := render.ScatterMap(&buf, f, points, "Map of Top Bridges", d.opts.MapWidth, d.opts.MapHeight); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}
