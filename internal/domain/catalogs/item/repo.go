package item

import (
	"context"

	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain"
)

// Repository defines the interface for Item persistence.
type Repository interface {
	domain.CatalogRepository[*Item]

	// FindByCodeAndSupplier retrieves an item by its (code, supplier)
	// uniqueness key.
	FindByCodeAndSupplier(ctx context.Context, code string, supplierID id.ID) (*Item, error)

	// FindByNCM retrieves items whose NCM matches (separators stripped).
	FindByNCM(ctx context.Context, ncm string) ([]*Item, error)

	// FindBySupplier retrieves all items of one supplier.
	FindBySupplier(ctx context.Context, supplierID id.ID, filter domain.ListFilter) (domain.ListResult[*Item], error)

	// GetForUpdate retrieves an item with a row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Item, error)

	// AdjustQuantity atomically changes stock on hand by delta
	// (negative to decrement).
	AdjustQuantity(ctx context.Context, id id.ID, delta types.Quantity) error

	// UpdateCostPrice overwrites the cost price (XML attachment path).
	UpdateCostPrice(ctx context.Context, id id.ID, costPrice types.Money) error

	// FindLowStock retrieves items with stock below minimum.
	FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error)
}
