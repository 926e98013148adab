package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpro/internal/core/id"
	"stockpro/internal/domain"
	"stockpro/internal/domain/documents/purchaseorder"
	"stockpro/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "doc_purchase_orders"
	purchaseOrderLinesTable = "doc_purchase_order_lines"
)

// PurchaseOrderRepo implements purchaseorder.Repository.
type PurchaseOrderRepo struct {
	*BaseDocumentRepo[*purchaseorder.PurchaseOrder]
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*purchaseorder.PurchaseOrder](
			txm,
			purchaseOrdersTable,
			postgres.ExtractDBColumns[purchaseorder.PurchaseOrder](),
			func() *purchaseorder.PurchaseOrder { return &purchaseorder.PurchaseOrder{} },
		),
	}
}

func (r *PurchaseOrderRepo) GetLines(ctx context.Context, docID id.ID) ([]purchaseorder.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "item_id", "supplier_id",
			"code", "name", "name_en", "ncm",
			"quantity", "price",
			"package_type", "units_per_package", "unit_measure_value", "unit_measure_type",
			"qty_unit", "xml_matched",
		).
		From(purchaseOrderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchaseorder.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *PurchaseOrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchaseorder.Line) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + purchaseOrderLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseOrderLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id", "supplier_id",
			"code", "name", "name_en", "ncm",
			"quantity", "price",
			"package_type", "units_per_package", "unit_measure_value", "unit_measure_type",
			"qty_unit", "xml_matched",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ItemID, line.SupplierID,
			line.Code, line.Name, line.NameEn, line.NCM,
			line.Quantity, line.Price,
			line.PackageType, line.UnitsPerPackage, line.UnitMeasureValue, line.UnitMeasureType,
			line.QtyUnit, line.XMLMatched,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchaseorder.ListFilter) (domain.ListResult[*purchaseorder.PurchaseOrder], error) {
	result := domain.ListResult[*purchaseorder.PurchaseOrder]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT document_id FROM "+purchaseOrderLinesTable+" WHERE supplier_id = ?)",
			*filter.SupplierID))
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
