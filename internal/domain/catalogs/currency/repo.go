package currency

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/id"
	"stockpro/internal/domain"
)

// Repository defines the interface for Currency persistence.
type Repository interface {
	domain.CatalogRepository[*Currency]

	// FindByISOCode retrieves currency by ISO code.
	FindByISOCode(ctx context.Context, isoCode string) (*Currency, error)

	// GetForUpdate retrieves currency with row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Currency, error)

	// ClearBase clears the base flag on all currencies (before setting new base).
	ClearBase(ctx context.Context) error

	// UpdateRate stores a fresh PTAX quotation for the currency.
	UpdateRate(ctx context.Context, id id.ID, rate decimal.Decimal, rateDate time.Time) error
}
