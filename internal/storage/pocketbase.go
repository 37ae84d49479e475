package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/daos"
	"github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/migrations/logs"
	pbModels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/models/schema"
	"github.com/pocketbase/pocketbase/tools/migrate"
	"go.uber.org/zap"

	"bridgedash/internal/formatter"
	"bridgedash/internal/models"
)

const importsCollection = "bridge_imports"

// BridgeStore keeps a snapshot of the bridge table in a PocketBase data
// directory. It implements parser.Source.
type BridgeStore struct {
	app *pocketbase.PocketBase
	dir string
	log *zap.Logger
}

// NewBridgeStore opens (or creates) the PocketBase data directory at dir and
// makes sure the bridge collections exist.
func NewBridgeStore(dir string, log *zap.Logger) (*BridgeStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir:  dir,
		HideStartBanner: true,
	})
	if err := app.Bootstrap(); err != nil {
		return nil, fmt.Errorf("failed to bootstrap PocketBase: %w", err)
	}

	s := &BridgeStore{app: app, dir: dir, log: log}
	if err := s.migrate(); err != nil {
		_ = app.ResetBootstrapState()
		return nil, err
	}
	if err := ensureCollections(app.Dao()); err != nil {
		_ = app.ResetBootstrapState()
		return nil, fmt.Errorf("failed to ensure collections exist: %w", err)
	}

	log.Info("bridge store ready", zap.String("dir", dir))
	return s, nil
}

// migrate applies PocketBase's own system migrations. The serve command
// normally does this; the store never starts that command.
func (s *BridgeStore) migrate() error {
	runners := []struct {
		name string
		db   *dbx.DB
		list migrate.MigrationsList
	}{
		{"data", s.app.DB(), migrations.AppMigrations},
		{"logs", s.app.LogsDB(), logs.LogsMigrations},
	}
	for _, r := range runners {
		runner, err := migrate.NewRunner(r.db, r.list)
		if err != nil {
			return fmt.Errorf("failed to create %s migration runner: %w", r.name, err)
		}
		applied, err := runner.Up()
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", r.name, err)
		}
		if len(applied) > 0 {
			s.log.Debug("applied migrations", zap.String("db", r.name), zap.Int("count", len(applied)))
		}
	}
	return nil
}

func ensureCollections(dao *daos.Dao) error {
	if _, err := dao.FindCollectionByNameOrId(importsCollection); err != nil {
		collection := &pbModels.Collection{
			Name: importsCollection,
			Type: pbModels.CollectionTypeBase,
			Schema: schema.NewSchema(
				&schema.SchemaField{
					Name:     "source",
					Type:     schema.FieldTypeText,
					Required: true,
				},
				&schema.SchemaField{
					Name:     "fields",
					Type:     schema.FieldTypeJson,
					Required: true,
					Options:  &schema.JsonOptions{MaxSize: 1 << 20},
				},
				&schema.SchemaField{
					Name: "rows",
					Type: schema.FieldTypeNumber,
				},
			),
		}
		if err := dao.SaveCollection(collection); err != nil {
			return fmt.Errorf("failed to save collection %s: %w", importsCollection, err)
		}
	}

	if _, err := dao.FindCollectionByNameOrId(formatter.BridgesCollection); err != nil {
		if err := dao.SaveCollection(formatter.NewBridgesCollection()); err != nil {
			return fmt.Errorf("failed to save collection %s: %w", formatter.BridgesCollection, err)
		}
	}
	return nil
}

// Method returns the source type
func (s *BridgeStore) Method() models.SourceMethod {
	return models.SourceMethodPocketBase
}

// Dir returns the PocketBase data directory.
func (s *BridgeStore) Dir() string {
	return s.dir
}

// SaveTable replaces the stored snapshot with table. source names where the
// table came from.
func (s *BridgeStore) SaveTable(ctx context.Context, table *models.BridgeTable, source string) error {
	bridges, err := s.app.Dao().FindCollectionByNameOrId(formatter.BridgesCollection)
	if err != nil {
		return fmt.Errorf("failed to find collection: %w", err)
	}
	imports, err := s.app.Dao().FindCollectionByNameOrId(importsCollection)
	if err != nil {
		return fmt.Errorf("failed to find collection: %w", err)
	}

	err = s.app.Dao().RunInTransaction(func(txDao *daos.Dao) error {
		for _, name := range []string{formatter.BridgesCollection, importsCollection} {
			if _, err := txDao.DB().Delete(name, dbx.NewExp("1=1")).Execute(); err != nil {
				return fmt.Errorf("failed to clear %s: %w", name, err)
			}
		}

		meta := pbModels.NewRecord(imports)
		meta.Set("source", source)
		meta.Set("fields", table.Fields())
		meta.Set("rows", table.Len())
		if err := txDao.SaveRecord(meta); err != nil {
			return fmt.Errorf("failed to save import record: %w", err)
		}

		for _, r := range table.Records() {
			if err := ctx.Err(); err != nil {
				return err
			}
			record := formatter.ToRecord(bridges, r)
			if err := txDao.SaveRecord(record); err != nil {
				return fmt.Errorf("failed to save record %d: %w", r.Row, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("saved bridge snapshot",
		zap.String("dir", s.dir),
		zap.String("source", source),
		zap.Int("rows", table.Len()))
	return nil
}

// Load implements the Source interface
func (s *BridgeStore) Load(ctx context.Context) (*models.BridgeTable, error) {
	metas, err := s.app.Dao().FindRecordsByExpr(importsCollection)
	if err != nil {
		return nil, models.NewLoadError(models.StageRead, s.dir, err)
	}
	if len(metas) == 0 {
		return nil, models.NewLoadError(models.StageOpen, s.dir,
			errors.New("no bridge table imported; run bridgedash import first"))
	}

	var fields []string
	if err := metas[0].UnmarshalJSONField("fields", &fields); err != nil {
		return nil, models.NewLoadError(models.StageHeader, s.dir, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewLoadError(models.StageRead, s.dir, err)
	}
	var rows []*pbModels.Record
	err = s.app.Dao().RecordQuery(formatter.BridgesCollection).
		OrderBy(formatter.FieldRow + " ASC").
		All(&rows)
	if err != nil {
		return nil, models.NewLoadError(models.StageRead, s.dir, err)
	}

	records := make([]models.BridgeRecord, len(rows))
	for i, row := range rows {
		records[i] = formatter.FromRecord(row)
	}

	s.log.Debug("loaded bridge snapshot", zap.String("dir", s.dir), zap.Int("rows", len(records)))
	return models.NewBridgeTable(fields, records), nil
}

// Cleanup closes the PocketBase databases.
func (s *BridgeStore) Cleanup() error {
	return s.app.ResetBootstrapState()
}
