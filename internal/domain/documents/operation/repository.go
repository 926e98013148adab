package operation

import (
	"context"
	"time"

	"stockpro/internal/core/id"
	"stockpro/internal/domain"
)

// Repository defines persistence for operations.
type Repository interface {
	Create(ctx context.Context, doc *Operation) error
	GetByID(ctx context.Context, docID id.ID) (*Operation, error)
	GetByNumber(ctx context.Context, number string) (*Operation, error)
	Update(ctx context.Context, doc *Operation) error
	Delete(ctx context.Context, docID id.ID) error

	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Operation], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*Operation, error)

	// InvoiceNumberTaken reports whether another operation (different
	// id) already carries this invoice number.
	InvoiceNumberTaken(ctx context.Context, number string, exclude id.ID) (bool, error)
}

// ListFilter for filtering operations.
type ListFilter struct {
	domain.ListFilter

	Type       *string
	Status     *Status
	SupplierID *id.ID
	Posted     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}
