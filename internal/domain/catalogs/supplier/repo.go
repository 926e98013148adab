package supplier

import (
	"context"

	"stockpro/internal/core/id"
	"stockpro/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// FindByCNPJ retrieves a supplier by normalized CNPJ (digits only).
	FindByCNPJ(ctx context.Context, cnpj string) (*Supplier, error)

	// GetForUpdate retrieves supplier with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Supplier, error)
}
