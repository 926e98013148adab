package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockpro/internal/core/id"
	"stockpro/internal/domain"
	"stockpro/internal/domain/documents/operation"
	"stockpro/internal/infrastructure/storage/postgres"
)

const (
	operationsTable     = "doc_operations"
	operationItemsTable = "doc_operation_items"
)

// OperationRepo implements operation.Repository.
type OperationRepo struct {
	*BaseDocumentRepo[*operation.Operation]
}

// NewOperationRepo creates a new operation repository.
func NewOperationRepo(txm *postgres.TxManager) *OperationRepo {
	return &OperationRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*operation.Operation](
			txm,
			operationsTable,
			postgres.ExtractDBColumns[operation.Operation](),
			func() *operation.Operation { return &operation.Operation{} },
		),
	}
}

func (r *OperationRepo) GetItems(ctx context.Context, docID id.ID) ([]operation.Item, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "item_id", "supplier_id",
			"code", "name", "name_en", "ncm", "description",
			"quantity", "price",
			"package_type", "units_per_package", "unit_measure_value", "unit_measure_type",
			"qty_unit",
		).
		From(operationItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []operation.Item
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

func (r *OperationRepo) SaveItems(ctx context.Context, docID id.ID, items []operation.Item) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + operationItemsTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(operationItemsTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id", "supplier_id",
			"code", "name", "name_en", "ncm", "description",
			"quantity", "price",
			"package_type", "units_per_package", "unit_measure_value", "unit_measure_type",
			"qty_unit",
		)

	for _, it := range items {
		q = q.Values(
			it.LineID, docID, it.LineNo, it.ItemID, it.SupplierID,
			it.Code, it.Name, it.NameEn, it.NCM, it.Description,
			it.Quantity, it.Price,
			it.PackageType, it.UnitsPerPackage, it.UnitMeasureValue, it.UnitMeasureType,
			it.QtyUnit,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}

// InvoiceNumberTaken reports whether another operation already carries
// this invoice number in its trade document.
func (r *OperationRepo) InvoiceNumberTaken(ctx context.Context, number string, exclude id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From(operationsTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Expr("trade ->> 'invoiceNumber' = ?", number)).
		Where(squirrel.NotEq{"id": exclude}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.getTxManager(ctx).GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return true, nil
}

func (r *OperationRepo) List(ctx context.Context, filter operation.ListFilter) (domain.ListResult[*operation.Operation], error) {
	result := domain.ListResult[*operation.Operation]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT document_id FROM "+operationItemsTable+" WHERE supplier_id = ?)",
			*filter.SupplierID))
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
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
