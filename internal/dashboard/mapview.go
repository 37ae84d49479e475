package dashboard

import (
	"fmt"
	"strconv"

	"bridgedash/internal/pipeline"
)

// PointColor is the RGBA color of every map point.
var PointColor = [4]int{255, 0, 0, 160}

// MapPoint is one bridge on the map.
type MapPoint struct {
	StructureNumber string  `json:"structure_number"`
	Traffic         float64 `json:"traffic"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Tooltip         string  `json:"tooltip"`
}

// MapModel is everything the map page needs to draw the view.
type MapModel struct {
	Points       []MapPoint `json:"points"`
	Center       LatLng     `json:"center"`
	Zoom         int        `json:"zoom"`
	RadiusMeters float64    `json:"radius_meters"`
	Color        [4]int     `json:"color"`
	TileURL      string     `json:"tile_url"`
	Attribution  string     `json:"attribution"`
}

// Tooltip is the hover text of a map point.
func Tooltip(structureNumber string, traffic float64) string {
	return fmt.Sprintf("Bridge ID: %s\nTraffic: %s", structureNumber, strconv.FormatFloat(traffic, 'f', -1, 64))
}

func newMapModel(subset pipeline.RankedSubset, opts Options) MapModel {
	m := MapModel{
		Points:       make([]MapPoint, 0, len(subset)),
		Center:       opts.FallbackCenter,
		Zoom:         opts.Zoom,
		RadiusMeters: opts.RadiusMeters,
		Color:        PointColor,
		TileURL:      opts.TileURL,
		Attribution:  opts.Attribution,
	}
	var sumLat, sumLon float64
	for _, r := range subset {
		p := MapPoint{
			StructureNumber: r.StructureNumber,
			Traffic:         r.AverageDailyTraffic.Value,
			Latitude:        r.Latitude.Value,
			Longitude:       r.Longitude.Value,
		}
		p.Tooltip = Tooltip(p.StructureNumber, p.Traffic)
		m.Points = append(m.Points, p)
		sumLat += p.Latitude
		sumLon += p.Longitude
	}
	if n := len(m.Points); n > 0 {
		m.Center = LatLng{
			Latitude:  sumLat / float64(n),
			Longitude: sumLon / float64(n),
		}
	}
	return m
}
