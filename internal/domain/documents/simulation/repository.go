package simulation

import (
	"context"
	"time"

	"stockpro/internal/core/id"
	"stockpro/internal/domain"
)

// Repository defines persistence for simulation drafts.
type Repository interface {
	Create(ctx context.Context, doc *Simulation) error
	GetByID(ctx context.Context, docID id.ID) (*Simulation, error)
	Update(ctx context.Context, doc *Simulation) error
	Delete(ctx context.Context, docID id.ID) error

	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, docID id.ID, items []Item) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Simulation], error)
}

// ListFilter for filtering simulations.
type ListFilter struct {
	domain.ListFilter

	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}
