package catalog_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain"
	"stockpro/internal/domain/catalogs/item"
	"stockpro/internal/domain/filter"
	"stockpro/internal/infrastructure/storage/postgres"
)

const itemTable = "cat_items"

// ItemRepo implements item.Repository.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

// NewItemRepo creates a new item repository.
func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*item.Item](
			txm,
			itemTable,
			postgres.ExtractDBColumns[item.Item](),
			func() *item.Item { return &item.Item{} },
		),
	}
}

// FindByCodeAndSupplier retrieves an item by its (code, supplier) key.
func (r *ItemRepo) FindByCodeAndSupplier(ctx context.Context, code string, supplierID id.ID) (*item.Item, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"supplier_id": supplierID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	it, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("item", code)
		}
		return nil, err
	}
	return it, nil
}

// FindByNCM retrieves items whose NCM matches, separators stripped.
func (r *ItemRepo) FindByNCM(ctx context.Context, ncm string) ([]*item.Item, error) {
	normalized := strings.NewReplacer(".", "", "-", "", " ", "").Replace(ncm)

	q := r.baseSelect(ctx).
		Where(squirrel.Expr("replace(replace(ncm, '.', ''), '-', '') = ?", normalized)).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*item.Item
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find by ncm: %w", err)
	}
	return items, nil
}

// FindBySupplier retrieves all items of one supplier.
func (r *ItemRepo) FindBySupplier(ctx context.Context, supplierID id.ID, lf domain.ListFilter) (domain.ListResult[*item.Item], error) {
	lf.AdvancedFilters = append(lf.AdvancedFilters, filter.Item{
		Field:    "supplier_id",
		Operator: filter.Equal,
		Value:    supplierID,
	})
	return r.List(ctx, lf)
}

// AdjustQuantity atomically changes stock on hand by delta.
func (r *ItemRepo) AdjustQuantity(ctx context.Context, itemID id.ID, delta types.Quantity) error {
	q := r.Builder().
		Update(itemTable).
		Set("quantity", squirrel.Expr("quantity + ?", delta)).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.getTxManager(ctx).GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}
	return nil
}

// UpdateCostPrice overwrites the cost price.
func (r *ItemRepo) UpdateCostPrice(ctx context.Context, itemID id.ID, costPrice types.Money) error {
	q := r.Builder().
		Update(itemTable).
		Set("cost_price", costPrice).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.getTxManager(ctx).GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update cost price: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}
	return nil
}

// FindLowStock retrieves items with stock below minimum.
func (r *ItemRepo) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	result := domain.ListResult[*item.Item]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Expr("quantity < min_quantity"))

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
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

	q = q.OrderBy("name ASC")
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
		return result, fmt.Errorf("find low stock: %w", err)
	}

	return result, nil
}
