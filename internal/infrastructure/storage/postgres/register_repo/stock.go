// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/registers/stock"
	"stockpro/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "reg_stock_movements"
	stockBalancesTable  = "reg_stock_balances"
)

var movementColumns = []string{
	"line_id", "recorder_id", "recorder_type", "recorder_version",
	"period", "movement_type",
	"item_id", "quantity", "price", "reason", "created_at",
}

// StockRepo implements stock.Repository.
//
// Besides the ledger itself it keeps two denormalized copies of the balance
// in sync within the same transaction: reg_stock_balances (fast balance
// lookups) and cat_items.quantity (the value shown on item listings).
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements batch inserts movements and applies their deltas to the
// balance table and to cat_items.quantity. Must be called within a
// transaction: posting writes movements and document state atomically.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.Type,
				m.ItemID, m.Quantity, m.Price, m.Reason, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
	} else {
		q := r.builder.Insert(stockMovementsTable).Columns(movementColumns...)
		for _, m := range movements {
			q = q.Values(
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.Type,
				m.ItemID, m.Quantity, m.Price, m.Reason, m.CreatedAt,
			)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert movements: %w", err)
		}
	}

	deltas := make(map[id.ID]int64, len(movements))
	movedAt := make(map[id.ID]time.Time, len(movements))
	for _, m := range movements {
		deltas[m.ItemID] += m.SignedQuantity().Int64Scaled()
		if m.Period.After(movedAt[m.ItemID]) {
			movedAt[m.ItemID] = m.Period
		}
	}

	return r.applyBalanceDeltas(ctx, deltas, movedAt)
}

// DeleteMovementsByRecorder removes movements for a document version and
// reverses their effect on balances. Reversal derives the deltas from the
// deleted rows themselves, so it stays correct even when the document lines
// changed since the movements were written.
func (r *StockRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	sql := `
		DELETE FROM reg_stock_movements
		WHERE recorder_id = $1 AND recorder_version < $2
		RETURNING item_id,
			CASE WHEN movement_type = 'in' THEN quantity ELSE -quantity END
	`

	querier := r.txm.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, recorderID, beforeVersion)
	if err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	defer rows.Close()

	deltas := make(map[id.ID]int64)
	for rows.Next() {
		var itemID id.ID
		var signed int64
		if err := rows.Scan(&itemID, &signed); err != nil {
			return fmt.Errorf("scan deleted movement: %w", err)
		}
		deltas[itemID] -= signed
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	return r.applyBalanceDeltas(ctx, deltas, nil)
}

// applyBalanceDeltas updates reg_stock_balances and cat_items.quantity by the
// given scaled deltas. movedAt may be nil (reversal does not move the
// last-movement timestamp backwards anyway).
func (r *StockRepo) applyBalanceDeltas(ctx context.Context, deltas map[id.ID]int64, movedAt map[id.ID]time.Time) error {
	querier := r.txm.GetQuerier(ctx)

	const upsertSQL = `
		INSERT INTO reg_stock_balances (item_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (item_id) DO UPDATE SET
			quantity = reg_stock_balances.quantity + EXCLUDED.quantity,
			last_movement_at = GREATEST(reg_stock_balances.last_movement_at, EXCLUDED.last_movement_at),
			updated_at = now()
	`

	const itemSQL = `
		UPDATE cat_items SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
	`

	for itemID, delta := range deltas {
		if delta == 0 {
			continue
		}

		ts := time.Now().UTC()
		if movedAt != nil {
			if t, ok := movedAt[itemID]; ok {
				ts = t
			}
		}

		if _, err := querier.Exec(ctx, upsertSQL, itemID, delta, ts); err != nil {
			return fmt.Errorf("upsert balance for %s: %w", itemID, err)
		}

		qty := types.NewQuantityFromInt64Scaled(delta)
		if _, err := querier.Exec(ctx, itemSQL, itemID, qty); err != nil {
			return fmt.Errorf("sync item quantity for %s: %w", itemID, err)
		}
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// ListMovements returns ledger entries matching the filter, newest first.
func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(stockMovementsTable)

	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.RecorderID != nil {
		q = q.Where(squirrel.Eq{"recorder_id": *filter.RecorderID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Type})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns the current balance for an item. An item with no
// movements yet has a zero balance, not an error.
func (r *StockRepo) GetBalance(ctx context.Context, itemID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	q := r.builder.Select(
		"item_id", "quantity", "last_movement_at", "updated_at",
	).From(stockBalancesTable).
		Where(squirrel.Eq{"item_id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{ItemID: itemID}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns the balance with a pessimistic row lock.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, itemID id.ID) (entity.StockBalance, error) {
	var balance entity.StockBalance

	sql := `
		SELECT item_id, quantity, last_movement_at, updated_at
		FROM reg_stock_balances
		WHERE item_id = $1
		FOR UPDATE
	`

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &balance, sql, itemID); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{ItemID: itemID}, nil
		}
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// GetBalances returns balances matching the filter.
func (r *StockRepo) GetBalances(ctx context.Context, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	q := r.builder.Select(
		"item_id", "quantity", "last_movement_at", "updated_at",
	).From(stockBalancesTable)

	if len(filter.ItemIDs) > 0 {
		q = q.Where(squirrel.Eq{"item_id": filter.ItemIDs})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}
	if filter.MinQuantity != nil {
		q = q.Where(squirrel.GtOrEq{"quantity": filter.MinQuantity.Int64Scaled()})
	}
	if filter.MaxQuantity != nil {
		q = q.Where(squirrel.LtOrEq{"quantity": filter.MaxQuantity.Int64Scaled()})
	}

	q = q.OrderBy("item_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalanceAtDate calculates an item balance as of a specific date.
func (r *StockRepo) GetBalanceAtDate(ctx context.Context, itemID id.ID, date time.Time) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN movement_type = 'in' THEN quantity ELSE -quantity END),
			0
		)
		FROM reg_stock_movements
		WHERE item_id = $1 AND period <= $2
	`

	var balanceScaled int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID, date).Scan(&balanceScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("calculate balance at date: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(balanceScaled), nil
}

// GetTurnover calculates in/out totals for a period.
func (r *StockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	var result stock.Turnover

	args := []any{filter.FromDate, filter.ToDate}
	conditions := "period >= $1 AND period < $2"
	if filter.ItemID != nil {
		conditions += " AND item_id = $3"
		args = append(args, *filter.ItemID)
		result.ItemID = *filter.ItemID
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN movement_type = 'in' THEN quantity ELSE 0 END), 0) as qty_in,
			COALESCE(SUM(CASE WHEN movement_type = 'out' THEN quantity ELSE 0 END), 0) as qty_out
		FROM reg_stock_movements
		WHERE %s
	`, conditions)

	querier := r.txm.GetQuerier(ctx)
	var inScaled, outScaled int64
	err := querier.QueryRow(ctx, sql, args...).Scan(&inScaled, &outScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}
	result.In = types.NewQuantityFromInt64Scaled(inScaled)
	result.Out = types.NewQuantityFromInt64Scaled(outScaled)

	openingArgs := []any{filter.FromDate}
	openingConditions := "period < $1"
	if filter.ItemID != nil {
		openingConditions += " AND item_id = $2"
		openingArgs = append(openingArgs, *filter.ItemID)
	}

	openingSQL := fmt.Sprintf(`
		SELECT COALESCE(
			SUM(CASE WHEN movement_type = 'in' THEN quantity ELSE -quantity END),
			0
		)
		FROM reg_stock_movements
		WHERE %s
	`, openingConditions)

	var openingScaled int64
	err = querier.QueryRow(ctx, openingSQL, openingArgs...).Scan(&openingScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate opening balance: %w", err)
	}
	result.OpeningBalance = types.NewQuantityFromInt64Scaled(openingScaled)

	result.ClosingBalance = result.OpeningBalance + result.In - result.Out

	return result, nil
}

// RecalculateBalances rebuilds the balance table (and cat_items.quantity)
// from the movement ledger. Pass nil to rebuild everything.
func (r *StockRepo) RecalculateBalances(ctx context.Context, itemID *id.ID) error {
	querier := r.txm.GetQuerier(ctx)

	itemCondition := ""
	var args []any
	if itemID != nil {
		itemCondition = "WHERE item_id = $1"
		args = append(args, *itemID)
	}

	rebuildSQL := fmt.Sprintf(`
		INSERT INTO reg_stock_balances (item_id, quantity, last_movement_at, updated_at)
		SELECT item_id,
			COALESCE(SUM(CASE WHEN movement_type = 'in' THEN quantity ELSE -quantity END), 0),
			MAX(period),
			now()
		FROM reg_stock_movements
		%s
		GROUP BY item_id
		ON CONFLICT (item_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = now()
	`, itemCondition)

	if _, err := querier.Exec(ctx, rebuildSQL, args...); err != nil {
		return fmt.Errorf("rebuild balances: %w", err)
	}

	// Balances whose movements were all deleted are not touched by the
	// insert above; zero them explicitly.
	zeroCondition := ""
	if itemID != nil {
		zeroCondition = "AND b.item_id = $1"
	}
	zeroSQL := fmt.Sprintf(`
		UPDATE reg_stock_balances b SET quantity = 0, updated_at = now()
		WHERE b.quantity <> 0 %s
		  AND NOT EXISTS (
			SELECT 1 FROM reg_stock_movements m WHERE m.item_id = b.item_id
		  )
	`, zeroCondition)

	if _, err := querier.Exec(ctx, zeroSQL, args...); err != nil {
		return fmt.Errorf("zero stale balances: %w", err)
	}

	syncCondition := ""
	if itemID != nil {
		syncCondition = "WHERE i.id = $1"
	}
	itemSyncSQL := fmt.Sprintf(`
		UPDATE cat_items i SET
			quantity = COALESCE(
				(SELECT b.quantity FROM reg_stock_balances b WHERE b.item_id = i.id), 0),
			updated_at = now()
		%s
	`, syncCondition)

	if _, err := querier.Exec(ctx, itemSyncSQL, args...); err != nil {
		return fmt.Errorf("sync item quantities: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ stock.Repository = (*StockRepo)(nil)
