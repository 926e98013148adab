package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"stockpro/internal/core/entity"
	"stockpro/internal/core/types"
)

// XLSXContentType is the MIME type of the generated workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Sheet1"

// WriteStockXLSX renders the stock report as an XLSX workbook.
func WriteStockXLSX(w io.Writer, report *StockReport) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []any{
		"Código", "Nome", "NCM", "Fornecedor",
		"Quantidade", "Embalagem", "Volumes",
		"Preço de Custo", "Preço de Venda", "Valor Total", "Estoque Mínimo",
	}
	if err := setRow(f, 1, headers); err != nil {
		return err
	}

	for i, row := range report.Items {
		values := []any{
			row.Code,
			row.Name,
			row.NCM,
			row.SupplierName,
			row.Quantity.Float64(),
			row.PackageType,
			row.Packages,
			moneyCell(row.CostPrice),
			moneyCell(row.SalePrice),
			moneyCell(row.TotalCost),
			row.MinQuantity.Float64(),
		}
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
	}

	totalRow := len(report.Items) + 3
	if err := setRow(f, totalRow, []any{
		"Total", "", "", "",
		report.TotalQuantity.Float64(), "", "",
		"", "", moneyCell(report.TotalCost), "",
	}); err != nil {
		return err
	}

	return f.Write(w)
}

// WriteLowStockXLSX renders the replenishment report as an XLSX workbook.
func WriteLowStockXLSX(w io.Writer, report *LowStockReport) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []any{"Código", "Nome", "Fornecedor", "Quantidade", "Estoque Mínimo", "Falta"}
	if err := setRow(f, 1, headers); err != nil {
		return err
	}

	for i, row := range report.Items {
		values := []any{
			row.Code,
			row.Name,
			row.SupplierName,
			row.Quantity.Float64(),
			row.MinQuantity.Float64(),
			row.Shortage.Float64(),
		}
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteMovementsXLSX renders the movement report as an XLSX workbook.
func WriteMovementsXLSX(w io.Writer, report *MovementReport) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []any{"Data", "Tipo", "Código", "Item", "Quantidade", "Preço", "Motivo", "Documento"}
	if err := setRow(f, 1, headers); err != nil {
		return err
	}

	for i, row := range report.Items {
		movementType := "Entrada"
		if row.Type == entity.MovementOut {
			movementType = "Saída"
		}
		values := []any{
			row.Period.Format("02/01/2006 15:04"),
			movementType,
			row.ItemCode,
			row.ItemName,
			row.Quantity.Float64(),
			moneyCell(row.Price),
			row.Reason,
			row.RecorderNumber,
		}
		if err := setRow(f, i+2, values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func moneyCell(m types.Money) float64 {
	return m.InexactFloat64()
}
