// Package operation provides the Operation document: a batch of
// stock-affecting line items that is simultaneously a ledger
// transaction and the data source for generated trade documents.
package operation

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/posting"
	"stockpro/internal/domain/trade"
)

// Status of an operation. Draft operations are editable; completed ones
// are posted to the stock ledger and show up in history.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
)

// Operation is the central document aggregate.
type Operation struct {
	entity.Document

	// Type: trade.TypeImport, trade.TypeManual or trade.TypePurchaseOrder
	// (for operations produced by a purchase order stock entry).
	Type string `db:"type" json:"type"`

	Status Status `db:"status" json:"status"`

	// Items is the flat line-item table: catalog snapshots plus the
	// quantity and price chosen for this operation.
	Items []Item `db:"-" json:"items"`

	// NfeData is the raw import lineage, one entry per attached fiscal
	// note. Persisted as JSONB; empty for non-import operations.
	NfeData []trade.NfeExtract `db:"nfe_data" json:"nfeData,omitempty"`

	// Trade is the editable trade-document state. Once its Suppliers
	// are populated and saved it supersedes recomputation from NfeData
	// or Items.
	Trade trade.Document `db:"trade" json:"trade"`
}

// Item is one line of an operation: a snapshot of a catalog item taken
// when the line was added, so later catalog edits don't rewrite history.
type Item struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID     id.ID `db:"item_id" json:"itemId"`
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	NameEn      string `db:"name_en" json:"nameEn,omitempty"`
	NCM         string `db:"ncm" json:"ncm,omitempty"`
	Description string `db:"description" json:"description,omitempty"`

	// Quantity is the operation quantity. For purchase-order and
	// simulation lineage it counts packages; otherwise base units.
	Quantity types.Quantity `db:"quantity" json:"quantity"`
	Price    types.Money    `db:"price" json:"price"`

	PackageType      string          `db:"package_type" json:"packageType,omitempty"`
	UnitsPerPackage  int             `db:"units_per_package" json:"unitsPerPackage,omitempty"`
	UnitMeasureValue decimal.Decimal `db:"unit_measure_value" json:"unitMeasureValue,omitempty"`
	UnitMeasureType  string          `db:"unit_measure_type" json:"unitMeasureType,omitempty"`

	QtyUnit string `db:"qty_unit" json:"qtyUnit,omitempty"`
}

// NewOperation creates a draft operation.
func NewOperation(organizationID string, opType string) *Operation {
	op := &Operation{
		Document: entity.NewDocument(organizationID),
		Type:     opType,
		Status:   StatusDraft,
		Items:    make([]Item, 0),
	}
	op.Trade.OperationID = op.ID
	op.Trade.OperationType = opType
	return op
}

// AddItem appends a line built from a catalog snapshot.
func (o *Operation) AddItem(it Item) {
	it.LineID = id.New()
	it.LineNo = len(o.Items) + 1
	o.Items = append(o.Items, it)
}

// BaseUnitQuantity returns the line quantity in base units, resolving
// the package-count convention of the operation type.
func (o *Operation) BaseUnitQuantity(it Item) types.Quantity {
	if trade.UsesPackageQuantities(o.Type) && it.UnitsPerPackage > 1 {
		return types.NewQuantityFromUnits(it.Quantity.Units() * int64(it.UnitsPerPackage))
	}
	return it.Quantity
}

// Validate implements entity.Validatable.
func (o *Operation) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if !isValidType(o.Type) {
		return apperror.NewValidation("invalid operation type").
			WithDetail("field", "type").
			WithDetail("value", o.Type)
	}

	if len(o.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	for i, it := range o.Items {
		if id.IsNil(it.ItemID) {
			return apperror.NewValidation("item reference is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if !it.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable interface implementation ---
// GetID, GetPostedVersion, IsPosted, CanPost, MarkPosted, MarkUnposted
// are inherited from entity.Document.

func (o *Operation) GetDocumentType() string { return "Operation" }

// GenerateMovements creates stock ledger movements for this operation.
// Imports and purchase-order stock entries record incoming stock;
// everything else is an outgoing movement against stock on hand.
func (o *Operation) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := o.PostedVersion + 1

	direction := entity.MovementOut
	reason := "Saída por operação manual"
	if o.IsInbound() {
		direction = entity.MovementIn
		reason = "Entrada via NF-e"
		if o.Type == trade.TypePurchaseOrder {
			reason = "Entrada via ordem de compra " + o.Number
		}
	}

	for _, it := range o.Items {
		movements.AddStock(entity.NewStockMovement(
			o.ID,
			o.GetDocumentType(),
			newVersion,
			o.Date,
			direction,
			it.ItemID,
			o.BaseUnitQuantity(it),
			it.Price,
			reason,
		))
	}

	return movements, nil
}

// IsInbound reports whether finalizing this operation adds stock.
func (o *Operation) IsInbound() bool {
	switch strings.ToLower(o.Type) {
	case trade.TypeImport, trade.TypePurchaseOrder:
		return true
	}
	return false
}

// TradeSource maps the operation onto the trade assembly input.
func (o *Operation) TradeSource() trade.Source {
	src := trade.Source{
		OperationID:   o.ID,
		OperationType: o.Type,
		Saved:         o.Trade.Suppliers,
		NfeData:       o.NfeData,
		Costs:         o.Trade.Costs,
		PtaxRate:      o.Trade.PtaxRate,
		Distribution:  o.Trade.Distribution,

		ManualNetWeight:   o.Trade.ManualNetWeight,
		ManualGrossWeight: o.Trade.ManualGrossWeight,

		InvoiceNumber: o.Trade.InvoiceNumber,
		InvoiceDate:   o.Trade.InvoiceDate,
		Header:        o.Trade.Header,
	}

	for _, it := range o.Items {
		src.Items = append(src.Items, trade.SourceItem{
			ItemRef: trade.ItemRef{
				ID:               it.ItemID,
				SupplierID:       it.SupplierID,
				Code:             it.Code,
				Name:             it.Name,
				NameEn:           it.NameEn,
				NCM:              it.NCM,
				UnitsPerPackage:  it.UnitsPerPackage,
				UnitMeasureValue: it.UnitMeasureValue,
				UnitMeasureType:  it.UnitMeasureType,
				PackageType:      it.PackageType,
			},
			OperationQuantity:    it.Quantity.Units(),
			OperationPrice:       it.Price,
			HasOperationQuantity: true,
			QtyUnit:              it.QtyUnit,
		})
	}
	return src
}

func isValidType(t string) bool {
	switch strings.ToLower(t) {
	case trade.TypeImport, trade.TypeManual, trade.TypeSimulation, trade.TypePurchaseOrder:
		return true
	}
	return false
}

var _ posting.Postable = (*Operation)(nil)
