package reports

import (
	"context"
	"fmt"
	"time"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetStock generates the stock on hand report.
func (s *Service) GetStock(ctx context.Context, filter StockReportFilter) (*StockReport, error) {
	// Default to current time if not specified
	if filter.AsOfDate == nil {
		now := time.Now()
		filter.AsOfDate = &now
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetStockReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock report: %w", err)
	}

	return report, nil
}

// GetLowStock generates the replenishment report of items below their
// minimum quantity.
func (s *Service) GetLowStock(ctx context.Context, filter LowStockReportFilter) (*LowStockReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetLowStockReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get low stock report: %w", err)
	}

	return report, nil
}

// GetMovements generates the stock movement report for a period.
func (s *Service) GetMovements(ctx context.Context, filter MovementReportFilter) (*MovementReport, error) {
	// Validate required dates
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}

	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	// Default sort
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	report, err := s.repo.GetMovementReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get movement report: %w", err)
	}

	return report, nil
}
