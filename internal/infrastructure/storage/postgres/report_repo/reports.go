// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpro/internal/core/entity"
	"stockpro/internal/domain/reports"
	"stockpro/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
//
// Reports are derived from the movement ledger, not from the cached
// balances: the ledger is the source of truth and supports as-of dates.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetStockReport generates the stock on hand report with item and supplier
// details. Balances are summed from the ledger as of the report date, so
// items without movements appear with zero quantity unless excluded.
func (r *ReportRepo) GetStockReport(ctx context.Context, filter reports.StockReportFilter) (*reports.StockReport, error) {
	asOfDate := time.Now()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	query := `
		WITH balance_data AS (
			SELECT m.item_id,
				SUM(CASE WHEN m.movement_type = 'in' THEN m.quantity ELSE -m.quantity END) as quantity_scaled
			FROM reg_stock_movements m
			WHERE m.period <= $1
			GROUP BY m.item_id
		)
		SELECT
			i.id as item_id,
			i.code,
			i.name,
			COALESCE(i.ncm, '') as ncm,
			i.supplier_id,
			COALESCE(s.name, '') as supplier_name,
			COALESCE(bd.quantity_scaled, 0) as quantity,
			COALESCE(i.package_type, '') as package_type,
			COALESCE(i.units_per_package, 0) as units_per_package,
			CASE WHEN COALESCE(i.units_per_package, 0) > 0
				THEN FLOOR(COALESCE(bd.quantity_scaled, 0)::numeric / 10000.0 / i.units_per_package)::bigint
				ELSE 0
			END as packages,
			i.cost_price,
			i.sale_price,
			(i.cost_price * (COALESCE(bd.quantity_scaled, 0)::numeric / 10000.0)) as total_cost,
			i.min_quantity
		FROM cat_items i
		LEFT JOIN cat_suppliers s ON s.id = i.supplier_id
		LEFT JOIN balance_data bd ON bd.item_id = i.id
		WHERE i.deletion_mark = false
	`
	args := []any{asOfDate}
	argIndex := 2

	if len(filter.SupplierIDs) > 0 {
		query += fmt.Sprintf(" AND i.supplier_id = ANY($%d)", argIndex)
		args = append(args, filter.SupplierIDs)
		argIndex++
	}
	if len(filter.ItemIDs) > 0 {
		query += fmt.Sprintf(" AND i.id = ANY($%d)", argIndex)
		args = append(args, filter.ItemIDs)
		argIndex++
	}
	if filter.ExcludeZero {
		query += " AND COALESCE(bd.quantity_scaled, 0) <> 0"
	}

	query += " ORDER BY i.name, i.code"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var rows []reports.StockReportRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("stock report: %w", err)
	}

	report := &reports.StockReport{
		AsOfDate:   asOfDate,
		Items:      rows,
		TotalItems: len(rows),
	}
	for _, row := range rows {
		report.TotalQuantity += row.Quantity
		report.TotalCost = report.TotalCost.Add(row.TotalCost)
	}

	return report, nil
}

// GetLowStockReport lists items whose quantity fell below their minimum.
func (r *ReportRepo) GetLowStockReport(ctx context.Context, filter reports.LowStockReportFilter) (*reports.LowStockReport, error) {
	query := `
		SELECT
			i.id as item_id,
			i.code,
			i.name,
			i.supplier_id,
			COALESCE(s.name, '') as supplier_name,
			i.quantity,
			i.min_quantity,
			(i.min_quantity - i.quantity) as shortage
		FROM cat_items i
		LEFT JOIN cat_suppliers s ON s.id = i.supplier_id
		WHERE i.deletion_mark = false
		  AND i.min_quantity > 0
		  AND i.quantity < i.min_quantity
	`
	var args []any
	argIndex := 1

	if len(filter.SupplierIDs) > 0 {
		query += fmt.Sprintf(" AND i.supplier_id = ANY($%d)", argIndex)
		args = append(args, filter.SupplierIDs)
		argIndex++
	}

	query += " ORDER BY (i.min_quantity - i.quantity) DESC, i.name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var rows []reports.LowStockReportRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("low stock report: %w", err)
	}

	return &reports.LowStockReport{
		Items:      rows,
		TotalItems: len(rows),
	}, nil
}

// GetMovementReport returns ledger entries for a period with item and
// recorder details.
func (r *ReportRepo) GetMovementReport(ctx context.Context, filter reports.MovementReportFilter) (*reports.MovementReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("from_date and to_date are required")
	}

	query := `
		SELECT
			m.period,
			m.movement_type as type,
			m.item_id,
			COALESCE(i.code, '') as item_code,
			COALESCE(i.name, '') as item_name,
			m.quantity,
			m.price,
			m.reason,
			m.recorder_type,
			m.recorder_id,
			COALESCE(op.number, po.number, '') as recorder_number
		FROM reg_stock_movements m
		LEFT JOIN cat_items i ON i.id = m.item_id
		LEFT JOIN doc_operations op ON m.recorder_type = 'Operation' AND op.id = m.recorder_id
		LEFT JOIN doc_purchase_orders po ON m.recorder_type = 'PurchaseOrder' AND po.id = m.recorder_id
		WHERE m.period >= $1 AND m.period <= $2
	`
	args := []any{filter.FromDate, filter.ToDate}
	argIndex := 3

	if len(filter.ItemIDs) > 0 {
		query += fmt.Sprintf(" AND m.item_id = ANY($%d)", argIndex)
		args = append(args, filter.ItemIDs)
		argIndex++
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		query += fmt.Sprintf(" AND m.movement_type = ANY($%d)", argIndex)
		args = append(args, types)
		argIndex++
	}

	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY m.period %s, m.created_at %s", order, order)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var rows []reports.MovementReportRow
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("movement report: %w", err)
	}

	report := &reports.MovementReport{
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
		Items:      rows,
		TotalItems: len(rows),
	}
	for _, row := range rows {
		if row.Type == entity.MovementIn {
			report.TotalIn += row.Quantity
		} else {
			report.TotalOut += row.Quantity
		}
	}

	return report, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
