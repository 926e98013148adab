// Package stock provides the append-only stock movement ledger.
package stock

import (
	"context"
	"fmt"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/pkg/logger"
)

// Service provides business operations for the stock ledger.
// Transactions are managed by the caller (posting engine).
type Service struct {
	repo Repository
}

// NewService creates a new stock ledger service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordMovements records stock movements from an operation posting.
// This is called during posting within a transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
	}

	// Create movements (triggers will update balances)
	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// ReverseMovements removes movements for an operation (used when an
// operation is reversed before re-finalizing, or deleted). Reversal is
// a compensating delete by recorder, not a mutation of history rows.
func (s *Service) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed stock movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// CheckAndReserveStock validates stock availability with pessimistic locking.
// Should be called within a transaction before creating "out" movements.
func (s *Service) CheckAndReserveStock(ctx context.Context, items []StockReservation) error {
	for _, item := range items {
		balance, err := s.repo.GetBalanceForUpdate(ctx, item.ItemID)
		if err != nil {
			return fmt.Errorf("get balance for %s: %w", item.ItemID, err)
		}

		if balance.Quantity < item.RequiredQty {
			return apperror.NewInsufficientStock(
				item.ItemID.String(),
				item.RequiredQty.Float64(),
				balance.Quantity.Float64(),
			)
		}
	}

	return nil
}

// StockReservation represents a stock check request.
type StockReservation struct {
	ItemID      id.ID
	RequiredQty types.Quantity
}

// GetAvailability returns the quantity on hand for an item.
func (s *Service) GetAvailability(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	balance, err := s.repo.GetBalance(ctx, itemID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance.Quantity, nil
}

// ListMovements returns ledger entries for display, newest first.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.ListMovements(ctx, filter)
}

// GetBalances returns current stock balances matching the filter.
func (s *Service) GetBalances(ctx context.Context, filter BalanceFilter) ([]entity.StockBalance, error) {
	return s.repo.GetBalances(ctx, filter)
}

// GetStockReport generates a turnover report for the period.
func (s *Service) GetStockReport(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}
