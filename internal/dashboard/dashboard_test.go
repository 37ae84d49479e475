package dashboard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgedash/internal/models"
	"bridgedash/internal/render"
)

func record(id string, traffic float64, lat, lon models.Number, material string) models.BridgeRecord {
	return models.BridgeRecord{
		StateName:           "Georgia",
		StructureNumber:     id,
		AverageDailyTraffic: models.NumberOf(traffic),
		Latitude:            lat,
		Longitude:           lon,
		MainSpanMaterial:    material,
	}
}

func scenario() *Dashboard {
	table := models.NewBridgeTable(models.RequiredFields, []models.BridgeRecord{
		record("A", 100, models.NumberOf(1), models.NumberOf(1), "Steel"),
		record("B", 0, models.NumberOf(2), models.NumberOf(2), "Steel"),
		record("C", 50, models.Number{}, models.Number{}, "Concrete"),
	})
	return New(table, DefaultOptions())
}

func TestTopBridges(t *testing.T) {
	top := scenario().TopBridges()
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].StructureNumber)
	assert.Equal(t, "C", top[1].StructureNumber)
}

func TestMaterials(t *testing.T) {
	shares := scenario().Materials()
	require.Len(t, shares, 2)
	assert.Equal(t, "Steel", shares[0].Material)
	assert.InDelta(t, 200.0/3, shares[0].Percent, 1e-9)
	assert.Equal(t, "Concrete", shares[1].Material)
}

func TestMapView(t *testing.T) {
	m, err := scenario().MapView(2)
	require.NoError(t, err)

	require.Len(t, m.Points, 1)
	p := m.Points[0]
	assert.Equal(t, "A", p.StructureNumber)
	assert.Equal(t, 100.0, p.Traffic)
	assert.Equal(t, "Bridge ID: A\nTraffic: 100", p.Tooltip)
	assert.Equal(t, LatLng{Latitude: 1, Longitude: 1}, m.Center)
	assert.Equal(t, 4, m.Zoom)
	assert.Equal(t, 1000.0, m.RadiusMeters)
	assert.Equal(t, [4]int{255, 0, 0, 160}, m.Color)
}

func TestMapViewCenterIsMean(t *testing.T) {
	table := models.NewBridgeTable(models.RequiredFields, []models.BridgeRecord{
		record("A", 10, models.NumberOf(30), models.NumberOf(-84), ""),
		record("B", 20, models.NumberOf(34), models.NumberOf(-82), ""),
	})
	m, err := New(table, DefaultOptions()).MapView(20)
	require.NoError(t, err)
	assert.InDelta(t, 32.0, m.Center.Latitude, 1e-9)
	assert.InDelta(t, -83.0, m.Center.Longitude, 1e-9)
}

func TestMapViewEmptyFallsBack(t *testing.T) {
	d := New(models.NewBridgeTable(models.RequiredFields, nil), DefaultOptions())
	m, err := d.MapView(20)
	require.NoError(t, err)
	assert.Empty(t, m.Points)
	assert.NotNil(t, m.Points)
	assert.Equal(t, DefaultOptions().FallbackCenter, m.Center)
}

func TestMapViewBounds(t *testing.T) {
	d := scenario()
	for _, n := range []int{0, -5, 1001} {
		_, err := d.MapView(n)
		assert.ErrorIs(t, err, ErrPointsOutOfRange, "n=%d", n)
	}
	_, err := d.MapView(1000)
	assert.NoError(t, err)
	_, err = d.MapChart(0, render.FormatSVG)
	assert.ErrorIs(t, err, ErrPointsOutOfRange)
}

func TestMapViewIsMemoized(t *testing.T) {
	d := scenario()
	first, err := d.MapView(5)
	require.NoError(t, err)
	second, err := d.MapView(5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, d.cache.Len())
}

func TestCharts(t *testing.T) {
	d := scenario()

	bar, err := d.BarChart(render.FormatSVG)
	require.NoError(t, err)
	assert.Contains(t, string(bar), "<svg")
	again, err := d.BarChart(render.FormatSVG)
	require.NoError(t, err)
	assert.Same(t, &bar[0], &again[0], "chart bytes are memoized")

	pie, err := d.PieChart(render.FormatSVG)
	require.NoError(t, err)
	assert.Contains(t, string(pie), "Steel 66.7%")

	scatter, err := d.MapChart(20, render.FormatPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(scatter, []byte("\x89PNG")))
}

func TestTooltip(t *testing.T) {
	assert.Equal(t, "Bridge ID: 000000000012345\nTraffic: 1500.5", Tooltip("000000000012345", 1500.5))
}

func TestResultsAreCopies(t *testing.T) {
	d := scenario()

	top := d.TopBridges()
	top[0].StructureNumber = "mutated"
	assert.Equal(t, "A", d.TopBridges()[0].StructureNumber)

	shares := d.Materials()
	shares[0].Material = "mutated"
	assert.Equal(t, "Steel", d.Materials()[0].Material)

	m, err := d.MapView(2)
	require.NoError(t, err)
	m.Points[0].Tooltip = "mutated"
	again, err := d.MapView(2)
	require.NoError(t, err)
	assert.Equal(t, "Bridge ID: A\nTraffic: 100", again.Points[0].Tooltip)
}
