package models

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Source field names, matched exactly against the CSV header.
const (
	FieldStateName           = "1 - State Name"
	FieldStructureNumber     = "8 - Structure Number"
	FieldAverageDailyTraffic = "29 - Average Daily Traffic"
	FieldLatitude            = "16 - latitude (decimal)"
	FieldLongitude           = "17 - longitude (decimal)"
	FieldMainSpanMaterial    = "43A - Main Span Material"
)

// RequiredFields lists every header field the dashboard reads.
var RequiredFields = []string{
	FieldStateName,
	FieldStructureNumber,
	FieldAverageDailyTraffic,
	FieldLatitude,
	FieldLongitude,
	FieldMainSpanMaterial,
}

// MissingTokens are the cell values treated as absent, in addition to blank
// cells. The list follows the usual spreadsheet and dataframe NA spellings.
var MissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "<nil>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// IsMissingToken reports whether a raw cell should be read as missing.
func IsMissingToken(raw string) bool {
	return slices.Contains(MissingTokens, strings.TrimSpace(raw))
}

// Number is a numeric cell: either a finite value or missing.
type Number struct {
	Value float64
	Valid bool
}

// NumberOf wraps v. Non-finite values are missing.
func NumberOf(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// ParseNumber classifies a raw cell. Anything that does not parse as a
// finite float is missing, never zero.
func ParseNumber(raw string) Number {
	raw = strings.TrimSpace(raw)
	if IsMissingToken(raw) {
		return Number{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Number{}
	}
	return NumberOf(v)
}

// String formats the number the way it is stored, "" when missing.
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// BridgeRecord is one row of the bridge table.
type BridgeRecord struct {
	Row                 int    `json:"row"`
	StateName           string `json:"state_name"`
	StructureNumber     string `json:"structure_number"`
	AverageDailyTraffic Number `json:"-"`
	Latitude            Number `json:"-"`
	Longitude           Number `json:"-"`
	MainSpanMaterial    string `json:"main_span_material"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (r BridgeRecord) HasCoordinates() bool {
	return r.Latitude.Valid && r.Longitude.Valid
}

// BridgeTable is the immutable, ordered table of records loaded at startup.
type BridgeTable struct {
	fields  []string
	records []BridgeRecord
}

// NewBridgeTable builds a table. Record Row values are reassigned to their
// position so that Row always reflects the original order.
func NewBridgeTable(fields []string, records []BridgeRecord) *BridgeTable {
	rs := slices.Clone(records)
	for i := range rs {
		rs[i].Row = i
	}
	return &BridgeTable{
		fields:  slices.Clone(fields),
		records: rs,
	}
}

// Len returns the number of records. A nil table is empty.
func (t *BridgeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Fields returns a copy of the header field names.
func (t *BridgeTable) Fields() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.fields)
}

// Records returns a copy of the records in original order.
func (t *BridgeTable) Records() []BridgeRecord {
	if t == nil {
		return nil
	}
	return slices.Clone(t.records)
}

// Record returns the i'th record.
func (t *BridgeTable) Record(i int) BridgeRecord {
	return t.records[i]
}
