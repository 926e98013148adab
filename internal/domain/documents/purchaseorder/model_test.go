package purchaseorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

func orderWithLine() *PurchaseOrder {
	po := NewPurchaseOrder("org-1")
	po.AddLine(Line{
		ItemID:     id.New(),
		SupplierID: id.New(),
		Code:       "P-100",
		Name:       "Polvilho Azedo 20X500G",
		Quantity:   types.NewQuantityFromUnits(2),
		Price:      types.MustMoney("80.00"),
	})
	return po
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		from        Status
		to          Status
		xmlAttached bool
		wantCode    string
	}{
		{"pending_xml to stock entry with xml", StatusPendingXML, StatusPendingStockEntry, true, ""},
		{"pending_xml to stock entry without xml", StatusPendingXML, StatusPendingStockEntry, false, CodeXMLRequired},
		{"stock entry to completed", StatusPendingStockEntry, StatusCompleted, false, ""},
		{"skip straight to completed", StatusPendingXML, StatusCompleted, true, CodeIllegalTransition},
		{"backwards", StatusPendingStockEntry, StatusPendingXML, true, CodeIllegalTransition},
		{"out of terminal state", StatusCompleted, StatusPendingXML, true, CodeIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := orderWithLine()
			po.Status = tt.from
			po.XMLAttached = tt.xmlAttached

			err := po.Advance(tt.to)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.to, po.Status)
				return
			}

			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.from, po.Status, "status must not change on rejected transition")
		})
	}
}

func TestCheckLineIntegrity(t *testing.T) {
	t.Run("complete lines pass", func(t *testing.T) {
		assert.NoError(t, orderWithLine().CheckLineIntegrity())
	})

	t.Run("missing code aborts", func(t *testing.T) {
		po := orderWithLine()
		po.Lines[0].Code = ""
		err := po.CheckLineIntegrity()
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, CodeLineIntegrity, appErr.Code)
	})

	t.Run("missing supplier aborts", func(t *testing.T) {
		po := orderWithLine()
		po.Lines[0].SupplierID = id.Nil()
		err := po.CheckLineIntegrity()
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, CodeLineIntegrity, appErr.Code)
	})
}
