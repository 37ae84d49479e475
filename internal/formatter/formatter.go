// Package formatter converts between bridge records and their PocketBase
// representation.
package formatter

import (
	pbModels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/models/schema"

	"bridgedash/internal/models"
)

// BridgesCollection is the name of the collection holding bridge rows.
const BridgesCollection = "bridges"

// Record field names.
const (
	FieldRow                 = "row_index"
	FieldStateName           = "state_name"
	FieldStructureNumber     = "structure_number"
	FieldAverageDailyTraffic = "average_daily_traffic"
	FieldLatitude            = "latitude"
	FieldLongitude           = "longitude"
	FieldMainSpanMaterial    = "main_span_material"
)

// NewBridgesCollection describes the bridges collection. Numeric cells are
// text fields so that a missing value stays distinct from zero.
func NewBridgesCollection() *pbModels.Collection {
	text := func(name string) *schema.SchemaField {
		return &schema.SchemaField{Name: name, Type: schema.FieldTypeText}
	}
	return &pbModels.Collection{
		Name: BridgesCollection,
		Type: pbModels.CollectionTypeBase,
		Schema: schema.NewSchema(
			&schema.SchemaField{Name: FieldRow, Type: schema.FieldTypeNumber},
			text(FieldStateName),
			text(FieldStructureNumber),
			text(FieldAverageDailyTraffic),
			text(FieldLatitude),
			text(FieldLongitude),
			text(FieldMainSpanMaterial),
		),
		Indexes: []string{
			"CREATE INDEX idx_bridges_row_index ON bridges (row_index)",
		},
	}
}

// ToRecord formats a bridge as a new record of collection.
func ToRecord(collection *pbModels.Collection, b models.BridgeRecord) *pbModels.Record {
	record := pbModels.NewRecord(collection)
	record.Set(FieldRow, b.Row)
	record.Set(FieldStateName, b.StateName)
	record.Set(FieldStructureNumber, b.StructureNumber)
	record.Set(FieldAverageDailyTraffic, b.AverageDailyTraffic.String())
	record.Set(FieldLatitude, b.Latitude.String())
	record.Set(FieldLongitude, b.Longitude.String())
	record.Set(FieldMainSpanMaterial, b.MainSpanMaterial)
	return record
}

// FromRecord reads a bridge back from a stored record. Row positions are
// reassigned when the table is built.
func FromRecord(record *pbModels.Record) models.BridgeRecord {
	return models.BridgeRecord{
		Row:                 record.GetInt(FieldRow),
		StateName:           record.GetString(FieldStateName),
		StructureNumber:     record.GetString(FieldStructureNumber),
		AverageDailyTraffic: models.ParseNumber(record.GetString(FieldAverageDailyTraffic)),
		Latitude:            models.ParseNumber(record.GetString(FieldLatitude)),
		Longitude:           models.ParseNumber(record.GetString(FieldLongitude)),
		MainSpanMaterial:    record.GetString(FieldMainSpanMaterial),
	}
}
