package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bridgedash/internal/models"
)

type countingSource struct {
	method  models.SourceMethod
	loads   int
	err     error
	cleaned bool
}

func (s *countingSource) Method() models.SourceMethod { return s.method }

func (s *countingSource) Load(ctx context.Context) (*models.BridgeTable, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return models.NewBridgeTable(models.RequiredFields, []models.BridgeRecord{{StructureNumber: "A"}}), nil
}

func (s *countingSource) Cleanup() error {
	s.cleaned = true
	return errors.New("cleanup failures are only logged")
}

func TestManagerTableIsMemoized(t *testing.T) {
	src := &countingSource{method: models.SourceMethodCSV}
	m := NewManager(zap.NewNop())
	m.RegisterSource(src)

	first, err := m.Table(context.Background(), models.SourceMethodCSV)
	require.NoError(t, err)
	second, err := m.Table(context.Background(), models.SourceMethodCSV)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.loads)
}

func TestManagerDoesNotCacheFailures(t *testing.T) {
	loadErr := models.NewLoadError(models.StageOpen, "x.csv", errors.New("gone"))
	src := &countingSource{method: models.SourceMethodCSV, err: loadErr}
	m := NewManager(nil)
	m.RegisterSource(src)

	_, err := m.Table(context.Background(), models.SourceMethodCSV)
	require.ErrorIs(t, err, models.ErrDataLoad)

	src.err = nil
	table, err := m.Table(context.Background(), models.SourceMethodCSV)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 2, src.loads)
}

func TestManagerUnknownSource(t *testing.T) {
	m := NewManager(nil)
	_, err := m.GetSource(models.SourceMethodPocketBase)
	assert.Error(t, err)
	_, err = m.Table(context.Background(), models.SourceMethodPocketBase)
	assert.Error(t, err)
}

func TestManagerCleanup(t *testing.T) {
	a := &countingSource{method: models.SourceMethodCSV}
	b := &countingSource{method: models.SourceMethodPocketBase}
	m := NewManager(nil)
	m.RegisterSource(a)
	m.RegisterSource(b)

	m.Cleanup()
	assert.True(t, a.cleaned)
	assert.True(t, b.cleaned)
}
