// internal/parser/parser.go
package parser

import (
	"context"

	"bridgedash/internal/models"
)

// Source defines how the bridge table is obtained
type Source interface {
	// Method returns the source type (e.g., "csv", "pocketbase")
	Method() models.SourceMethod

	// Load reads the whole table. Failures are *models.LoadError.
	Load(ctx context.Context) (*models.BridgeTable, error)

	// Cleanup releases anything the source holds open
	Cleanup() error
}
