package parser

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgedash/internal/models"
)

const header = `1 - State Name,8 - Structure Number,29 - Average Daily Traffic,16 - latitude (decimal),17 - longitude (decimal),43A - Main Span Material,91 - Inspection Frequency`

func readString(t *testing.T, data string) (*models.BridgeTable, error) {
	t.Helper()
	return ReadTable(context.Background(), strings.NewReader(data), "test.csv")
}

func TestReadTable(t *testing.T) {
	data := header + "\n" +
		"Georgia,0001,100,33.75,-84.39,Steel,24\n" +
		"Georgia,0002,0,32.08,-81.09,Steel,24\n" +
		"Georgia,0003,50,,,Concrete,12\n" +
		"Georgia,0004,unknown,NA,-83.1,,24\n"

	table, err := readString(t, data)
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())
	assert.Len(t, table.Fields(), 7)

	a := table.Record(0)
	assert.Equal(t, "Georgia", a.StateName)
	assert.Equal(t, "0001", a.StructureNumber, "identifiers stay text")
	assert.Equal(t, models.NumberOf(100), a.AverageDailyTraffic)
	assert.Equal(t, models.NumberOf(33.75), a.Latitude)
	assert.Equal(t, models.NumberOf(-84.39), a.Longitude)
	assert.Equal(t, "Steel", a.MainSpanMaterial)

	b := table.Record(1)
	assert.True(t, b.AverageDailyTraffic.Valid)
	assert.Equal(t, 0.0, b.AverageDailyTraffic.Value)

	c := table.Record(2)
	assert.False(t, c.Latitude.Valid)
	assert.False(t, c.Longitude.Valid)

	d := table.Record(3)
	assert.False(t, d.AverageDailyTraffic.Valid, "non-numeric traffic is missing")
	assert.False(t, d.Latitude.Valid)
	assert.True(t, d.Longitude.Valid)
	assert.Equal(t, "", d.MainSpanMaterial)

	for i := 0; i < table.Len(); i++ {
		assert.Equal(t, i, table.Record(i).Row)
	}
}

func TestReadTableRaggedRows(t *testing.T) {
	data := header + "\n" +
		"Georgia,0001,100\n" +
		"Georgia,0002,200,31,-82,Timber,24,extra,cells\n"

	table, err := readString(t, data)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.False(t, table.Record(0).Latitude.Valid)
	assert.Equal(t, "", table.Record(0).MainSpanMaterial)
	assert.Equal(t, "Timber", table.Record(1).MainSpanMaterial)
}

func TestReadTableTrimsNumericCells(t *testing.T) {
	data := header + "\n" + "Georgia,0001, 1500 , 33.1 ,-84.2,Steel,24\n"
	table, err := readString(t, data)
	require.NoError(t, err)
	assert.Equal(t, models.NumberOf(1500), table.Record(0).AverageDailyTraffic)
	assert.Equal(t, models.NumberOf(33.1), table.Record(0).Latitude)
}

func TestReadTableByteOrderMark(t *testing.T) {
	data := "\ufeff" + header + "\n" + "Georgia,0001,1,1,1,Steel,24\n"
	table, err := readString(t, data)
	require.NoError(t, err)
	assert.Equal(t, models.FieldStateName, table.Fields()[0])
}

func TestReadTableHeaderOnly(t *testing.T) {
	table, err := readString(t, header+"\n")
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Len(t, table.Fields(), 7)
}

func TestReadTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		stage string
	}{
		{"empty", "", models.StageHeader},
		{"blank lines", "\n\n", models.StageHeader},
		{"missing field", "1 - State Name,8 - Structure Number\nGeorgia,1\n", models.StageSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readString(t, tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrDataLoad)

			var le *models.LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.stage, le.Stage)
			assert.Equal(t, "test.csv", le.Source)
		})
	}
}

func TestReadTableNamesMissingFields(t *testing.T) {
	_, err := readString(t, "1 - State Name,8 - Structure Number\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.FieldAverageDailyTraffic)
	assert.Contains(t, err.Error(), models.FieldMainSpanMaterial)
	assert.NotContains(t, err.Error(), models.FieldStateName+",")
}

func TestReadTableCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadTable(ctx, strings.NewReader(header+"\nGeorgia,1,1,1,1,Steel,1\n"), "test.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, models.ErrDataLoad)
}

func TestCSVSourceMissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), nil)
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var le *models.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, models.StageOpen, le.Stage)
}

func TestCSVSourceDefaults(t *testing.T) {
	src := NewCSVSource("", nil)
	assert.Equal(t, DefaultCSVPath, src.Path())
	assert.Equal(t, models.SourceMethodCSV, src.Method())
	assert.NoError(t, src.Cleanup())
}

func writeCSV(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridges.csv")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestCSVSourceLoad(t *testing.T) {
	path := writeCSV(t, header+"\nGeorgia,0001,100,33.75,-84.39,Steel,24\n")
	table, err := NewCSVSource(path, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestReadTableDuplicateHeader(t *testing.T) {
	data := header + ",43A - Main Span Material\n" +
		"Georgia,0001,100,33.75,-84.39,Steel,24,Timber\n"

	table, err := readString(t, data)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Steel", table.Record(0).MainSpanMaterial, "first occurrence wins")
	assert.Equal(t, models.FieldMainSpanMaterial+".1", table.Fields()[7])
}

func TestDedupeHeader(t *testing.T) {
	tests := []struct {
		in, want []string
	}{
		{[]string{"a", "b"}, []string{"a", "b"}},
		{[]string{"a", "a", "a"}, []string{"a", "a.1", "a.2"}},
		{[]string{"a", "a", "a.1"}, []string{"a", "a.2", "a.1"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dedupeHeader(tt.in))
	}
}
