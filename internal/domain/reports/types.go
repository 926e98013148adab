// Package reports provides report generation services.
package reports

import (
	"time"

	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

// --- Stock Report ---

// StockReportFilter defines filter for the stock on hand report.
type StockReportFilter struct {
	// AsOfDate - report date (defaults to now)
	AsOfDate *time.Time

	// Filters
	SupplierIDs []id.ID
	ItemIDs     []id.ID

	// Exclude zero balances
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// StockReportRow represents a single row in the stock report.
type StockReportRow struct {
	ItemID       id.ID          `json:"itemId"`
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	NCM          string         `json:"ncm,omitempty"`
	SupplierID   *id.ID         `json:"supplierId,omitempty"`
	SupplierName string         `json:"supplierName,omitempty"`
	Quantity     types.Quantity `json:"quantity"`
	// Packages is floor(quantity / unitsPerPackage) in the item's
	// package type ("caixa", "fardo", "unidade").
	PackageType     string         `json:"packageType,omitempty"`
	UnitsPerPackage int            `json:"unitsPerPackage,omitempty"`
	Packages        int64          `json:"packages"`
	CostPrice       types.Money    `json:"costPrice"`
	SalePrice       types.Money    `json:"salePrice"`
	TotalCost       types.Money    `json:"totalCost"`
	MinQuantity     types.Quantity `json:"minQuantity"`
}

// StockReport represents the full stock on hand report.
type StockReport struct {
	AsOfDate   time.Time        `json:"asOfDate"`
	Items      []StockReportRow `json:"items"`
	TotalItems int              `json:"totalItems"`

	// Summary
	TotalQuantity types.Quantity `json:"totalQuantity"`
	TotalCost     types.Money    `json:"totalCost"`
}

// --- Low Stock Report ---

// LowStockReportFilter defines filter for the replenishment report.
type LowStockReportFilter struct {
	SupplierIDs []id.ID

	// Pagination
	Limit  int
	Offset int
}

// LowStockReportRow is an item whose quantity fell below its minimum.
type LowStockReportRow struct {
	ItemID       id.ID          `json:"itemId"`
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	SupplierID   *id.ID         `json:"supplierId,omitempty"`
	SupplierName string         `json:"supplierName,omitempty"`
	Quantity     types.Quantity `json:"quantity"`
	MinQuantity  types.Quantity `json:"minQuantity"`
	// Shortage = minQuantity - quantity, always positive.
	Shortage types.Quantity `json:"shortage"`
}

// LowStockReport lists every item below its minimum quantity.
type LowStockReport struct {
	Items      []LowStockReportRow `json:"items"`
	TotalItems int                 `json:"totalItems"`
}

// --- Movement Report ---

// MovementReportFilter defines filter for the stock movement report.
type MovementReportFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	ItemIDs []id.ID
	Types   []entity.MovementType

	// Sorting
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// MovementReportRow represents a ledger entry in the movement report.
type MovementReportRow struct {
	Period       time.Time           `json:"period"`
	Type         entity.MovementType `json:"type"`
	ItemID       id.ID               `json:"itemId"`
	ItemCode     string              `json:"itemCode"`
	ItemName     string              `json:"itemName"`
	Quantity     types.Quantity      `json:"quantity"`
	Price        types.Money         `json:"price"`
	Reason       string              `json:"reason,omitempty"`
	RecorderType string              `json:"recorderType"`
	RecorderID   id.ID               `json:"recorderId"`
	// Number of the operation that recorded the movement.
	RecorderNumber string `json:"recorderNumber,omitempty"`
}

// MovementReport represents the full movement report for a period.
type MovementReport struct {
	FromDate   time.Time           `json:"fromDate"`
	ToDate     time.Time           `json:"toDate"`
	Items      []MovementReportRow `json:"items"`
	TotalItems int                 `json:"totalItems"`

	// Summary totals
	TotalIn  types.Quantity `json:"totalIn"`
	TotalOut types.Quantity `json:"totalOut"`
}
