package operation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/trade"
)

func line(qtyUnits int64, price string) Item {
	return Item{
		ItemID:     id.New(),
		SupplierID: id.New(),
		Code:       "P-100",
		Name:       "Farinha de Mandioca 20X500G",
		Quantity:   types.NewQuantityFromUnits(qtyUnits),
		Price:      types.MustMoney(price),
	}
}

func TestGenerateMovementsManualIsOutbound(t *testing.T) {
	op := NewOperation("org-1", trade.TypeManual)
	op.AddItem(line(10, "5.00"))
	op.AddItem(line(3, "2.00"))

	set, err := op.GenerateMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Stock, 2)

	for _, m := range set.Stock {
		assert.Equal(t, entity.MovementOut, m.Type)
		assert.Equal(t, op.ID, m.RecorderID)
		assert.Equal(t, 1, m.RecorderVersion)
	}
	assert.Equal(t, int64(10), set.Stock[0].Quantity.Units())
	assert.Equal(t, int64(3), set.Stock[1].Quantity.Units())
}

func TestGenerateMovementsImportIsInbound(t *testing.T) {
	op := NewOperation("org-1", trade.TypeImport)
	op.AddItem(line(60, "4.50"))

	set, err := op.GenerateMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Stock, 1)
	assert.Equal(t, entity.MovementIn, set.Stock[0].Type)
}

func TestBaseUnitQuantityPackageConvention(t *testing.T) {
	it := line(2, "10.00")
	it.UnitsPerPackage = 24

	// Purchase-order lineage: quantities already count packages.
	po := NewOperation("org-1", trade.TypePurchaseOrder)
	assert.Equal(t, int64(48), po.BaseUnitQuantity(it).Units())

	// Manual operations count base units directly.
	manual := NewOperation("org-1", trade.TypeManual)
	assert.Equal(t, int64(2), manual.BaseUnitQuantity(it).Units())
}

func TestValidateRejectsEmptyAndBadLines(t *testing.T) {
	ctx := context.Background()

	op := NewOperation("org-1", trade.TypeManual)
	assert.Error(t, op.Validate(ctx), "no items")

	op.AddItem(line(0, "5.00"))
	assert.Error(t, op.Validate(ctx), "zero quantity")

	op.Items[0].Quantity = types.NewQuantityFromUnits(5)
	op.Items[0].ItemID = id.Nil()
	assert.Error(t, op.Validate(ctx), "missing item reference")

	op.Items[0].ItemID = id.New()
	assert.NoError(t, op.Validate(ctx))
}

func TestTradeSourceCarriesSavedState(t *testing.T) {
	op := NewOperation("org-1", trade.TypeManual)
	op.AddItem(line(10, "5.00"))
	op.Trade.Suppliers = []trade.SupplierGroup{{Info: "FDA#N/A ACME, RUA X"}}
	op.Trade.InvoiceNumber = "12345"

	src := op.TradeSource()
	assert.Equal(t, op.ID, src.OperationID)
	assert.Len(t, src.Saved, 1)
	assert.Equal(t, "12345", src.InvoiceNumber)
	require.Len(t, src.Items, 1)
	assert.True(t, src.Items[0].HasOperationQuantity)
	assert.Equal(t, int64(10), src.Items[0].OperationQuantity)
}
