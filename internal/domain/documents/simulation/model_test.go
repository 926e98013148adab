package simulation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

func draftWithItem(qty int64) *Simulation {
	sim := NewSimulation("org-1")
	sim.AddItem(Item{
		ItemID:     id.New(),
		SupplierID: id.New(),
		Code:       "P-200",
		Name:       "Goiabada Cascão 12X600G",
		Quantity:   types.NewQuantityFromUnits(qty),
		Price:      types.MustMoney("45.00"),
	})
	return sim
}

func TestDraftValidationIsLoose(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewSimulation("org-1").Validate(ctx), "empty drafts are legal")
	assert.NoError(t, draftWithItem(0).Validate(ctx), "zero quantity is legal while drafting")

	sim := draftWithItem(1)
	sim.Items[0].ItemID = id.Nil()
	assert.Error(t, sim.Validate(ctx))
}

func TestCanPromote(t *testing.T) {
	t.Run("valid draft promotes", func(t *testing.T) {
		assert.NoError(t, draftWithItem(3).CanPromote())
	})

	t.Run("empty draft does not", func(t *testing.T) {
		assert.Error(t, NewSimulation("org-1").CanPromote())
	})

	t.Run("zero quantity does not", func(t *testing.T) {
		assert.Error(t, draftWithItem(0).CanPromote())
	})

	t.Run("already promoted does not", func(t *testing.T) {
		sim := draftWithItem(3)
		sim.Status = StatusPromoted
		assert.Error(t, sim.CanPromote())
	})
}

func TestTotal(t *testing.T) {
	sim := draftWithItem(3)
	sim.AddItem(Item{
		ItemID:   id.New(),
		Quantity: types.NewQuantityFromUnits(2),
		Price:    types.MustMoney("10.50"),
	})

	require.Len(t, sim.Items, 2)
	// 3*45 + 2*10.50
	assert.True(t, sim.Total().Equal(decimal.RequireFromString("156")), sim.Total().String())
}
