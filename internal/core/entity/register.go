// Package entity provides core domain entities.
package entity

import (
	"time"

	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

// MovementType defines the direction of a stock ledger entry.
type MovementType string

const (
	// MovementIn increases stock on hand.
	MovementIn MovementType = "in"
	// MovementOut decreases stock on hand.
	MovementOut MovementType = "out"
)

// MovementBase contains common fields for all ledger movements.
// Movements are immutable - they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the operation/document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "Operation", "PurchaseOrder")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which posting iteration created this movement
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// Type: in or out
	Type MovementType `db:"movement_type" json:"type"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time, movementType MovementType) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		Type:            movementType,
		CreatedAt:       time.Now().UTC(),
	}
}

// StockMovement is one entry of the append-only stock ledger.
// The sum of "in" minus "out" entries for an item is its balance.
type StockMovement struct {
	MovementBase

	// Dimensions
	ItemID id.ID `db:"item_id" json:"itemId"`

	// Resources
	Quantity types.Quantity `db:"quantity" json:"quantity"`
	Price    types.Money    `db:"price" json:"price"`

	// Reason is the human-readable cause ("Saída por operação manual",
	// "Entrada via Ordem de Compra ...").
	Reason string `db:"reason" json:"reason"`
}

// NewStockMovement creates a new stock movement.
func NewStockMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	movementType MovementType,
	itemID id.ID,
	quantity types.Quantity,
	price types.Money,
	reason string,
) StockMovement {
	return StockMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, movementType),
		ItemID:       itemID,
		Quantity:     quantity,
		Price:        price,
		Reason:       reason,
	}
}

// SignedQuantity returns quantity with sign based on direction.
// In = positive, out = negative.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// StockBalance represents the current on-hand balance of one item.
// This is a materialized/cached view for fast balance queries.
type StockBalance struct {
	// Dimensions
	ItemID id.ID `db:"item_id" json:"itemId"`

	// Balances
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
