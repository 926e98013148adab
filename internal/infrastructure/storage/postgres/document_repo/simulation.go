package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpro/internal/core/id"
	"stockpro/internal/domain"
	"stockpro/internal/domain/documents/simulation"
	"stockpro/internal/infrastructure/storage/postgres"
)

const (
	simulationsTable     = "doc_simulations"
	simulationItemsTable = "doc_simulation_items"
)

// SimulationRepo implements simulation.Repository.
type SimulationRepo struct {
	*BaseDocumentRepo[*simulation.Simulation]
}

// NewSimulationRepo creates a new simulation repository.
func NewSimulationRepo(txm *postgres.TxManager) *SimulationRepo {
	return &SimulationRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*simulation.Simulation](
			txm,
			simulationsTable,
			postgres.ExtractDBColumns[simulation.Simulation](),
			func() *simulation.Simulation { return &simulation.Simulation{} },
		),
	}
}

func (r *SimulationRepo) GetItems(ctx context.Context, docID id.ID) ([]simulation.Item, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "item_id", "supplier_id",
			"code", "name", "name_en", "ncm",
			"quantity", "price",
			"package_type", "units_per_package", "unit_measure_value", "unit_measure_type",
			"qty_unit",
		).
		From(simulationItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []simulation.Item
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

func (r *SimulationRepo) SaveItems(ctx context.Context, docID id.ID, items []simulation.Item) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + simulationItemsTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(simulationItemsTable).
		Columns(
			"line_id", "document_id", "line_no", "item_id", "supplier_id",
			"code", "name", "name_en", "ncm",
			"quantity", "price",
			"package_type", "units_per_package", "unit_measure_value", "unit_measure_type",
			"qty_unit",
		)

	for _, it := range items {
		q = q.Values(
			it.LineID, docID, it.LineNo, it.ItemID, it.SupplierID,
			it.Code, it.Name, it.NameEn, it.NCM,
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

func (r *SimulationRepo) List(ctx context.Context, filter simulation.ListFilter) (domain.ListResult[*simulation.Simulation], error) {
	result := domain.ListResult[*simulation.Simulation]{
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

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"comment": searchPattern},
		})
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

	orderBy := "updated_at DESC"
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
