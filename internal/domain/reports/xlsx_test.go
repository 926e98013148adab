package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

func TestWriteStockXLSX(t *testing.T) {
	report := &StockReport{
		AsOfDate: time.Now(),
		Items: []StockReportRow{
			{
				ItemID:          id.New(),
				Code:            "PC-20",
				Name:            "Loia-Potato Chips 20X300Gr",
				NCM:             "19053100",
				SupplierName:    "LOIA FOODS",
				Quantity:        types.NewQuantityFromUnits(48),
				PackageType:     "caixa",
				UnitsPerPackage: 24,
				Packages:        2,
				CostPrice:       types.MustMoney("5.00"),
				SalePrice:       types.MustMoney("6.25"),
				TotalCost:       types.MustMoney("240.00"),
				MinQuantity:     types.NewQuantityFromUnits(10),
			},
		},
		TotalItems:    1,
		TotalQuantity: types.NewQuantityFromUnits(48),
		TotalCost:     types.MustMoney("240.00"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStockXLSX(&buf, report))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Código", header)

	code, err := f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "PC-20", code)

	qty, err := f.GetCellValue(sheetName, "E2")
	require.NoError(t, err)
	assert.Equal(t, "48", qty)

	total, err := f.GetCellValue(sheetName, "J4")
	require.NoError(t, err)
	assert.Equal(t, "240", total)
}

func TestWriteMovementsXLSX(t *testing.T) {
	report := &MovementReport{
		FromDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ToDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Items: []MovementReportRow{
			{
				Period:         time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
				Type:           entity.MovementOut,
				ItemID:         id.New(),
				ItemCode:       "PC-20",
				ItemName:       "Loia-Potato Chips 20X300Gr",
				Quantity:       types.NewQuantityFromUnits(10),
				Price:          types.MustMoney("5.00"),
				Reason:         "Saída por operação manual",
				RecorderNumber: "OP-000042",
			},
		},
		TotalItems: 1,
		TotalOut:   types.NewQuantityFromUnits(10),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMovementsXLSX(&buf, report))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Data", header)

	movementType, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Saída", movementType)

	number, err := f.GetCellValue(sheetName, "H2")
	require.NoError(t, err)
	assert.Equal(t, "OP-000042", number)
}

func TestWriteLowStockXLSX(t *testing.T) {
	report := &LowStockReport{
		Items: []LowStockReportRow{
			{
				ItemID:      id.New(),
				Code:        "SR-06",
				Name:        "Soy Sauce 6X500ML",
				Quantity:    types.NewQuantityFromUnits(4),
				MinQuantity: types.NewQuantityFromUnits(10),
				Shortage:    types.NewQuantityFromUnits(6),
			},
		},
		TotalItems: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLowStockXLSX(&buf, report))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(sheetName, "F1")
	require.NoError(t, err)
	assert.Equal(t, "Falta", header)

	shortage, err := f.GetCellValue(sheetName, "F2")
	require.NoError(t, err)
	assert.Equal(t, "6", shortage)
}
