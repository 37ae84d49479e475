package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"bridgedash/internal/models"
)

// DefaultCSVPath is where the bridge CSV is read from when no path is set.
const DefaultCSVPath = "GeorgiaBridges.csv"

var numericFields = map[string]bool{
	models.FieldAverageDailyTraffic: true,
	models.FieldLatitude:            true,
	models.FieldLongitude:           true,
}

// CSVSource implements Source for a CSV file with a header row
type CSVSource struct {
	path string
	log  *zap.Logger
}

// NewCSVSource creates a CSV source reading path
func NewCSVSource(path string, log *zap.Logger) *CSVSource {
	if path == "" {
		path = DefaultCSVPath
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CSVSource{path: path, log: log}
}

// Method returns the source type
func (s *CSVSource) Method() models.SourceMethod {
	return models.SourceMethodCSV
}

// Path returns the file the source reads.
func (s *CSVSource) Path() string {
	return s.path
}

// Load implements the Source interface
func (s *CSVSource) Load(ctx context.Context) (*models.BridgeTable, error) {
	s.log.Debug("opening bridge CSV", zap.String("path", s.path))
	f, err := os.Open(s.path)
	if err != nil {
		return nil, models.NewLoadError(models.StageOpen, s.path, err)
	}
	defer f.Close()

	return ReadTable(ctx, f, s.path)
}

// Cleanup is a no-op; the file is closed after every Load
func (s *CSVSource) Cleanup() error {
	return nil
}

// ReadTable parses CSV data with a header row into a bridge table. name
// identifies the data in errors.
func ReadTable(ctx context.Context, r io.Reader, name string) (*models.BridgeTable, error) {
	records, err := readRecords(ctx, r, name)
	if err != nil {
		return nil, err
	}

	header := records[0]
	if missing := missingFields(header); len(missing) > 0 {
		return nil, models.NewLoadError(models.StageSchema, name,
			fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	// A header with no rows is a valid, empty table.
	if len(records) == 1 {
		return models.NewBridgeTable(header, nil), nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{
			models.FieldAverageDailyTraffic: series.Float,
			models.FieldLatitude:            series.Float,
			models.FieldLongitude:           series.Float,
		}),
		dataframe.NaNValues(models.MissingTokens),
	)
	if df.Err != nil {
		return nil, models.NewLoadError(models.StageParse, name, df.Err)
	}

	rows, err := recordsFromFrame(df)
	if err != nil {
		return nil, models.NewLoadError(models.StageParse, name, err)
	}
	return models.NewBridgeTable(header, rows), nil
}

// readRecords reads every CSV row, normalizing rows to the header width.
// The returned slice always holds at least the header.
func readRecords(ctx context.Context, r io.Reader, name string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.NewLoadError(models.StageHeader, name, errors.New("file is empty"))
	}
	if err != nil {
		return nil, models.NewLoadError(models.StageHeader, name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	header = dedupeHeader(header)

	records := [][]string{header}
	for {
		if err := ctx.Err(); err != nil {
			return nil, models.NewLoadError(models.StageRead, name, err)
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, models.NewLoadError(models.StageRead, name, err)
		}
		records = append(records, normalizeRow(header, row))
	}
}

// normalizeRow pads short rows with blank cells, truncates long ones and
// trims numeric cells.
func normalizeRow(header, row []string) []string {
	out := make([]string, len(header))
	copy(out, row)
	for i, h := range header {
		if numericFields[h] {
			out[i] = strings.TrimSpace(out[i])
		}
	}
	return out
}

// dedupeHeader renames repeated column names to "name.1", "name.2", ... so
// the first occurrence keeps its name and every column stays addressable.
func dedupeHeader(header []string) []string {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = false
	}
	out := make([]string, len(header))
	for i, h := range header {
		if !seen[h] {
			seen[h] = true
			out[i] = h
			continue
		}
		name := h
		for k := 1; ; k++ {
			name = fmt.Sprintf("%s.%d", h, k)
			if _, taken := seen[name]; !taken {
				break
			}
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

func missingFields(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, f := range models.RequiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// recordsFromFrame resolves the typed columns of df into records.
func recordsFromFrame(df dataframe.DataFrame) ([]models.BridgeRecord, error) {
	text := func(name string) ([]string, error) {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("failed to read column %q: %w", name, col.Err)
		}
		values := col.Records()
		for i, nan := range col.IsNaN() {
			if nan {
				values[i] = ""
			}
		}
		return values, nil
	}
	number := func(name string) ([]models.Number, error) {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("failed to read column %q: %w", name, col.Err)
		}
		values := col.Float()
		out := make([]models.Number, len(values))
		for i, v := range values {
			out[i] = models.NumberOf(v)
		}
		return out, nil
	}

	states, err := text(models.FieldStateName)
	if err != nil {
		return nil, err
	}
	ids, err := text(models.FieldStructureNumber)
	if err != nil {
		return nil, err
	}
	materials, err := text(models.FieldMainSpanMaterial)
	if err != nil {
		return nil, err
	}
	traffic, err := number(models.FieldAverageDailyTraffic)
	if err != nil {
		return nil, err
	}
	lats, err := number(models.FieldLatitude)
	if err != nil {
		return nil, err
	}
	lons, err := number(models.FieldLongitude)
	if err != nil {
		return nil, err
	}

	records := make([]models.BridgeRecord, df.Nrow())
	for i := range records {
		records[i] = models.BridgeRecord{
			Row:                 i,
			StateName:           states[i],
			StructureNumber:     ids[i],
			AverageDailyTraffic: traffic[i],
			Latitude:            lats[i],
			Longitude:           lons[i],
			MainSpanMaterial:    materials[i],
		}
	}
	return records, nil
}
