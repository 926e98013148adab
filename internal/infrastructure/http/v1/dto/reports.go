package dto

import (
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/reports"
)

// Report rows carry their own JSON tags, so the report endpoints return
// the domain structs directly. Only the query-side request DTOs live here.

// --- Stock Report ---

// StockReportRequest represents query parameters for the stock on hand report.
type StockReportRequest struct {
	AsOfDate    *time.Time `form:"asOfDate" time_format:"2006-01-02"`
	SupplierIDs []string   `form:"supplierId"`
	ItemIDs     []string   `form:"itemId"`
	ExcludeZero bool       `form:"excludeZero"`
	Limit       int        `form:"limit"`
	Offset      int        `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *StockReportRequest) ToFilter() (reports.StockReportFilter, error) {
	supplierIDs, err := parseIDList(r.SupplierIDs)
	if err != nil {
		return reports.StockReportFilter{}, err
	}
	itemIDs, err := parseIDList(r.ItemIDs)
	if err != nil {
		return reports.StockReportFilter{}, err
	}
	return reports.StockReportFilter{
		AsOfDate:    r.AsOfDate,
		SupplierIDs: supplierIDs,
		ItemIDs:     itemIDs,
		ExcludeZero: r.ExcludeZero,
		Limit:       r.Limit,
		Offset:      r.Offset,
	}, nil
}

// --- Low Stock Report ---

// LowStockReportRequest represents query parameters for the replenishment report.
type LowStockReportRequest struct {
	SupplierIDs []string `form:"supplierId"`
	Limit       int      `form:"limit"`
	Offset      int      `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *LowStockReportRequest) ToFilter() (reports.LowStockReportFilter, error) {
	supplierIDs, err := parseIDList(r.SupplierIDs)
	if err != nil {
		return reports.LowStockReportFilter{}, err
	}
	return reports.LowStockReportFilter{
		SupplierIDs: supplierIDs,
		Limit:       r.Limit,
		Offset:      r.Offset,
	}, nil
}

// --- Movement Report ---

// MovementReportRequest represents query parameters for the movement report.
type MovementReportRequest struct {
	FromDate  time.Time `form:"fromDate" binding:"required" time_format:"2006-01-02"`
	ToDate    time.Time `form:"toDate" binding:"required" time_format:"2006-01-02"`
	ItemIDs   []string  `form:"itemId"`
	Types     []string  `form:"type"`
	SortOrder string    `form:"sortOrder"`
	Limit     int       `form:"limit"`
	Offset    int       `form:"offset"`
}

// ToFilter converts the request to a domain filter.
func (r *MovementReportRequest) ToFilter() (reports.MovementReportFilter, error) {
	itemIDs, err := parseIDList(r.ItemIDs)
	if err != nil {
		return reports.MovementReportFilter{}, err
	}
	types := make([]entity.MovementType, 0, len(r.Types))
	for _, t := range r.Types {
		types = append(types, entity.MovementType(t))
	}
	return reports.MovementReportFilter{
		FromDate:  r.FromDate,
		ToDate:    r.ToDate,
		ItemIDs:   itemIDs,
		Types:     types,
		SortOrder: r.SortOrder,
		Limit:     r.Limit,
		Offset:    r.Offset,
	}, nil
}

func parseIDList(raw []string) ([]id.ID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]id.ID, 0, len(raw))
	for _, s := range raw {
		parsed, err := id.Parse(s)
		if err != nil {
			return nil, apperror.NewValidation("invalid id in filter").WithDetail("value", s)
		}
		ids = append(ids, parsed)
	}
	return ids, nil
}
