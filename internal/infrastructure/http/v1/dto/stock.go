package dto

import (
	"time"

	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/registers/stock"
)

// --- Response DTOs for Stock Register ---

// StockBalanceResponse represents a stock balance in API responses.
type StockBalanceResponse struct {
	ItemID         string     `json:"itemId"`
	Quantity       float64    `json:"quantity"`
	LastMovementAt *time.Time `json:"lastMovementAt,omitempty"`
}

// FromStockBalance converts entity to response DTO.
func FromStockBalance(b entity.StockBalance) StockBalanceResponse {
	// Zero-value time becomes a missing field instead of "0001-01-01".
	var lastMovement *time.Time
	if !b.LastMovementAt.IsZero() {
		val := b.LastMovementAt
		lastMovement = &val
	}

	return StockBalanceResponse{
		ItemID:         b.ItemID.String(),
		Quantity:       b.Quantity.Float64(),
		LastMovementAt: lastMovement,
	}
}

// StockMovementResponse represents a ledger entry in API responses.
type StockMovementResponse struct {
	LineID          string    `json:"lineId"`
	RecorderID      string    `json:"recorderId"`
	RecorderType    string    `json:"recorderType"`
	RecorderVersion int       `json:"recorderVersion"`
	Period          time.Time `json:"period"`
	Type            string    `json:"type"`
	ItemID          string    `json:"itemId"`
	Quantity        float64   `json:"quantity"`
	Price           string    `json:"price"`
	Reason          string    `json:"reason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FromStockMovement converts entity to response DTO.
func FromStockMovement(m entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		LineID:          m.LineID.String(),
		RecorderID:      m.RecorderID.String(),
		RecorderType:    m.RecorderType,
		RecorderVersion: m.RecorderVersion,
		Period:          m.Period,
		Type:            string(m.Type),
		ItemID:          m.ItemID.String(),
		Quantity:        m.Quantity.Float64(),
		Price:           m.Price.String(),
		Reason:          m.Reason,
		CreatedAt:       m.CreatedAt,
	}
}

// StockTurnoverResponse represents a turnover report for a period.
type StockTurnoverResponse struct {
	ItemID         string  `json:"itemId,omitempty"`
	OpeningBalance float64 `json:"openingBalance"`
	In             float64 `json:"in"`
	Out            float64 `json:"out"`
	ClosingBalance float64 `json:"closingBalance"`
}

// FromStockTurnover converts domain turnover to response DTO.
func FromStockTurnover(t stock.Turnover) StockTurnoverResponse {
	resp := StockTurnoverResponse{
		OpeningBalance: t.OpeningBalance.Float64(),
		In:             t.In.Float64(),
		Out:            t.Out.Float64(),
		ClosingBalance: t.ClosingBalance.Float64(),
	}
	if !id.IsNil(t.ItemID) {
		resp.ItemID = t.ItemID.String()
	}
	return resp
}

// AvailabilityResponse reports the quantity on hand for one item.
type AvailabilityResponse struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

// StockBalanceListResponse represents a list of stock balances.
type StockBalanceListResponse struct {
	Items []StockBalanceResponse `json:"items"`
}

// StockMovementListResponse represents a list of ledger entries.
type StockMovementListResponse struct {
	Items      []StockMovementResponse `json:"items"`
	TotalCount int                     `json:"totalCount,omitempty"`
}
