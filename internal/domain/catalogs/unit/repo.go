package unit

import (
	"context"

	"stockpro/internal/core/id"
	"stockpro/internal/domain"
)

// Repository defines the interface for Unit persistence.
type Repository interface {
	domain.CatalogRepository[*Unit]

	// FindBySymbol retrieves unit by symbol.
	FindBySymbol(ctx context.Context, symbol string) (*Unit, error)

	// GetForUpdate retrieves unit with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Unit, error)
}
