package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// Stock reports
	GetStockReport(ctx context.Context, filter StockReportFilter) (*StockReport, error)
	GetLowStockReport(ctx context.Context, filter LowStockReportFilter) (*LowStockReport, error)

	// Movement ledger
	GetMovementReport(ctx context.Context, filter MovementReportFilter) (*MovementReport, error)
}
