// Package stock provides the append-only stock movement ledger.
package stock

import (
	"context"
	"time"

	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

// Repository defines operations for the stock ledger.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// DeleteMovementsByRecorder removes all movements for an operation version.
	// Used when an operation is reversed or re-finalized.
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for an operation
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error)

	// ListMovements returns ledger entries matching the filter, newest first
	ListMovements(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error)

	// Balance operations

	// GetBalance returns the current balance for an item
	GetBalance(ctx context.Context, itemID id.ID) (entity.StockBalance, error)

	// GetBalanceForUpdate returns the balance with a row lock for stock control
	GetBalanceForUpdate(ctx context.Context, itemID id.ID) (entity.StockBalance, error)

	// GetBalances returns balances matching the filter
	GetBalances(ctx context.Context, filter BalanceFilter) ([]entity.StockBalance, error)

	// GetBalanceAtDate calculates an item balance as of a specific date (for reports)
	GetBalanceAtDate(ctx context.Context, itemID id.ID, date time.Time) (types.Quantity, error)

	// Reporting

	// GetTurnover calculates in/out totals for a period
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)

	// Maintenance

	// RecalculateBalances rebuilds the balance table from movements
	RecalculateBalances(ctx context.Context, itemID *id.ID) error
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	ItemIDs     []id.ID
	ExcludeZero bool
	MinQuantity *types.Quantity
	MaxQuantity *types.Quantity
}

// MovementFilter for filtering the movement ledger.
type MovementFilter struct {
	ItemID     *id.ID
	RecorderID *id.ID
	Type       *entity.MovementType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// TurnoverFilter for turnover reports.
type TurnoverFilter struct {
	ItemID   *id.ID
	FromDate time.Time
	ToDate   time.Time
}

// Turnover represents in/out totals.
type Turnover struct {
	ItemID         id.ID          `json:"itemId,omitempty"`
	OpeningBalance types.Quantity `json:"openingBalance"`
	In             types.Quantity `json:"in"`
	Out            types.Quantity `json:"out"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}
