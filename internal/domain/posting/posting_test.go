package posting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/registers/stock"
)

// fakeTxManager runs the function directly; posting logic under test is
// pure orchestration.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memStockRepo is an in-memory stock ledger keeping balances in sync
// with movements.
type memStockRepo struct {
	movements []entity.StockMovement
	balances  map[id.ID]types.Quantity
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{balances: make(map[id.ID]types.Quantity)}
}

func (r *memStockRepo) CreateMovements(_ context.Context, movements []entity.StockMovement) error {
	for _, m := range movements {
		r.movements = append(r.movements, m)
		r.balances[m.ItemID] += m.SignedQuantity()
	}
	return nil
}

func (r *memStockRepo) DeleteMovementsByRecorder(_ context.Context, recorderID id.ID, beforeVersion int) error {
	kept := r.movements[:0]
	for _, m := range r.movements {
		if m.RecorderID == recorderID && m.RecorderVersion < beforeVersion {
			r.balances[m.ItemID] -= m.SignedQuantity()
			continue
		}
		kept = append(kept, m)
	}
	r.movements = kept
	return nil
}

func (r *memStockRepo) GetMovementsByRecorder(_ context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memStockRepo) ListMovements(_ context.Context, _ stock.MovementFilter) ([]entity.StockMovement, error) {
	return r.movements, nil
}

func (r *memStockRepo) GetBalance(_ context.Context, itemID id.ID) (entity.StockBalance, error) {
	qty, ok := r.balances[itemID]
	if !ok {
		return entity.StockBalance{}, apperror.NewNotFound("stock balance", itemID.String())
	}
	return entity.StockBalance{ItemID: itemID, Quantity: qty}, nil
}

func (r *memStockRepo) GetBalanceForUpdate(ctx context.Context, itemID id.ID) (entity.StockBalance, error) {
	return r.GetBalance(ctx, itemID)
}

func (r *memStockRepo) GetBalances(_ context.Context, _ stock.BalanceFilter) ([]entity.StockBalance, error) {
	out := make([]entity.StockBalance, 0, len(r.balances))
	for itemID, qty := range r.balances {
		out = append(out, entity.StockBalance{ItemID: itemID, Quantity: qty})
	}
	return out, nil
}

func (r *memStockRepo) GetBalanceAtDate(_ context.Context, itemID id.ID, _ time.Time) (types.Quantity, error) {
	return r.balances[itemID], nil
}

func (r *memStockRepo) GetTurnover(_ context.Context, _ stock.TurnoverFilter) (stock.Turnover, error) {
	return stock.Turnover{}, nil
}

func (r *memStockRepo) RecalculateBalances(_ context.Context, _ *id.ID) error { return nil }

// testDoc is a minimal postable document issuing stock.
type testDoc struct {
	entity.Document
	movements []entity.StockMovement
}

func (d *testDoc) GetDocumentType() string { return "TestDoc" }

func (d *testDoc) GenerateMovements(_ context.Context) (*MovementSet, error) {
	set := NewMovementSet()
	for _, m := range d.movements {
		m.RecorderID = d.ID
		m.RecorderType = d.GetDocumentType()
		m.RecorderVersion = d.PostedVersion + 1
		set.AddStock(m)
	}
	return set, nil
}

func newTestDoc() *testDoc {
	doc := &testDoc{Document: entity.NewDocument("org-1")}
	return doc
}

func outMovement(itemID id.ID, units int64, price string) entity.StockMovement {
	return entity.NewStockMovement(
		id.Nil(), "TestDoc", 0, time.Now().UTC(),
		entity.MovementOut, itemID,
		types.NewQuantityFromUnits(units),
		types.MustMoney(price),
		"saída de teste",
	)
}

func seed(repo *memStockRepo, itemID id.ID, units int64) {
	_ = repo.CreateMovements(context.Background(), []entity.StockMovement{
		entity.NewStockMovement(
			id.New(), "Seed", 1, time.Now().UTC(),
			entity.MovementIn, itemID,
			types.NewQuantityFromUnits(units),
			types.MustMoney("1.00"),
			"estoque inicial",
		),
	})
}

func TestPostFinalizesAndDecrementsStock(t *testing.T) {
	ctx := context.Background()
	repo := newMemStockRepo()
	engine := NewEngine(stock.NewService(repo), fakeTxManager{}, true)

	itemA, itemB := id.New(), id.New()
	seed(repo, itemA, 50)
	seed(repo, itemB, 20)

	doc := newTestDoc()
	doc.movements = []entity.StockMovement{
		outMovement(itemA, 10, "5.00"),
		outMovement(itemB, 3, "2.00"),
	}

	require.NoError(t, engine.Post(ctx, doc, func(context.Context) error { return nil }))

	assert.True(t, doc.Posted)
	assert.Equal(t, 1, doc.PostedVersion)
	assert.Equal(t, int64(40), repo.balances[itemA].Units())
	assert.Equal(t, int64(17), repo.balances[itemB].Units())

	recorded, err := repo.GetMovementsByRecorder(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, recorded, 2)
	for _, m := range recorded {
		assert.Equal(t, entity.MovementOut, m.Type)
	}
}

func TestRepostReversesPriorVersion(t *testing.T) {
	ctx := context.Background()
	repo := newMemStockRepo()
	engine := NewEngine(stock.NewService(repo), fakeTxManager{}, true)

	itemA := id.New()
	seed(repo, itemA, 50)

	doc := newTestDoc()
	doc.movements = []entity.StockMovement{outMovement(itemA, 10, "5.00")}
	require.NoError(t, engine.Post(ctx, doc, func(context.Context) error { return nil }))
	assert.Equal(t, int64(40), repo.balances[itemA].Units())

	// Edit the document and re-finalize: prior deltas come back first.
	doc.movements = []entity.StockMovement{outMovement(itemA, 4, "5.00")}
	require.NoError(t, engine.Post(ctx, doc, func(context.Context) error { return nil }))

	assert.Equal(t, 2, doc.PostedVersion)
	assert.Equal(t, int64(46), repo.balances[itemA].Units())

	recorded, err := repo.GetMovementsByRecorder(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, 2, recorded[0].RecorderVersion)
}

func TestPostRejectsInsufficientStock(t *testing.T) {
	ctx := context.Background()
	repo := newMemStockRepo()
	engine := NewEngine(stock.NewService(repo), fakeTxManager{}, true)

	itemA := id.New()
	seed(repo, itemA, 5)

	doc := newTestDoc()
	doc.movements = []entity.StockMovement{outMovement(itemA, 10, "5.00")}

	err := engine.Post(ctx, doc, func(context.Context) error { return nil })
	require.Error(t, err)
	assert.False(t, doc.Posted)
	assert.Equal(t, int64(5), repo.balances[itemA].Units())
}

func TestUnpostRestoresStock(t *testing.T) {
	ctx := context.Background()
	repo := newMemStockRepo()
	engine := NewEngine(stock.NewService(repo), fakeTxManager{}, true)

	itemA := id.New()
	seed(repo, itemA, 50)

	doc := newTestDoc()
	doc.movements = []entity.StockMovement{outMovement(itemA, 10, "5.00")}
	require.NoError(t, engine.Post(ctx, doc, func(context.Context) error { return nil }))

	require.NoError(t, engine.Unpost(ctx, doc, func(context.Context) error { return nil }))

	assert.False(t, doc.Posted)
	assert.Equal(t, int64(50), repo.balances[itemA].Units())

	recorded, err := repo.GetMovementsByRecorder(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, recorded)
}
