// Package purchaseorder provides the PurchaseOrder document: a planned
// incoming shipment that moves through an explicit status machine,
// gated on fiscal-note XML attachment before stock entry.
package purchaseorder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/trade"
)

// Status of a purchase order. Transitions are linear and enforced by
// Advance; an order cannot reach stock entry without an attached XML.
type Status string

const (
	StatusPendingXML        Status = "pending_xml"
	StatusPendingStockEntry Status = "pending_stock_entry"
	StatusCompleted         Status = "completed"
)

// next returns the only legal successor status, or "" for terminal.
func (s Status) next() Status {
	switch s {
	case StatusPendingXML:
		return StatusPendingStockEntry
	case StatusPendingStockEntry:
		return StatusCompleted
	}
	return ""
}

// PurchaseOrder is a planned purchase from suppliers.
type PurchaseOrder struct {
	entity.Document

	Status Status `db:"status" json:"status"`

	// XMLAttached gates the pending_xml -> pending_stock_entry
	// transition.
	XMLAttached bool `db:"xml_attached" json:"xmlAttached"`

	// Lines are the ordered products. Quantities count packages.
	Lines []Line `db:"-" json:"lines"`

	// NfeData collects the extraction result of every attached XML,
	// carried over to the stock-entry operation as import lineage.
	NfeData []trade.NfeExtract `db:"nfe_data" json:"nfeData,omitempty"`

	// Attachments records the stored XML files.
	Attachments []Attachment `db:"attachments" json:"attachments,omitempty"`
}

// Line is one ordered product.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID     id.ID `db:"item_id" json:"itemId"`
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	Code   string `db:"code" json:"code"`
	Name   string `db:"name" json:"name"`
	NameEn string `db:"name_en" json:"nameEn,omitempty"`
	NCM    string `db:"ncm" json:"ncm,omitempty"`

	// Quantity counts packages.
	Quantity types.Quantity `db:"quantity" json:"quantity"`
	Price    types.Money    `db:"price" json:"price"`

	PackageType      string          `db:"package_type" json:"packageType,omitempty"`
	UnitsPerPackage  int             `db:"units_per_package" json:"unitsPerPackage,omitempty"`
	UnitMeasureValue decimal.Decimal `db:"unit_measure_value" json:"unitMeasureValue,omitempty"`
	UnitMeasureType  string          `db:"unit_measure_type" json:"unitMeasureType,omitempty"`

	QtyUnit string `db:"qty_unit" json:"qtyUnit,omitempty"`

	// XMLMatched marks lines whose cost was confirmed by an attached
	// fiscal note.
	XMLMatched bool `db:"xml_matched" json:"xmlMatched"`
}

// Attachment is the stored metadata of one attached XML file.
type Attachment struct {
	Key           string    `json:"key"` // object storage key
	FileName      string    `json:"fileName"`
	InvoiceNumber string    `json:"invoiceNumber,omitempty"`
	AttachedAt    time.Time `json:"attachedAt"`
}

// NewPurchaseOrder creates a purchase order awaiting its first XML.
func NewPurchaseOrder(organizationID string) *PurchaseOrder {
	return &PurchaseOrder{
		Document: entity.NewDocument(organizationID),
		Status:   StatusPendingXML,
		Lines:    make([]Line, 0),
	}
}

// AddLine appends an ordered product.
func (p *PurchaseOrder) AddLine(l Line) {
	l.LineID = id.New()
	l.LineNo = len(p.Lines) + 1
	p.Lines = append(p.Lines, l)
}

// Validate implements entity.Validatable.
func (p *PurchaseOrder) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, l := range p.Lines {
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// CheckLineIntegrity verifies every line carries the (code, supplier)
// pair XML matching keys on. It runs before any attach side effect so a
// broken order aborts with nothing mutated.
func (p *PurchaseOrder) CheckLineIntegrity() error {
	for i, l := range p.Lines {
		if l.Code == "" {
			return apperror.NewIntegrity(CodeLineIntegrity,
				"purchase order line is missing its product code").
				WithDetail("lineNo", i+1).
				WithDetail("name", l.Name)
		}
		if id.IsNil(l.SupplierID) {
			return apperror.NewIntegrity(CodeLineIntegrity,
				"purchase order line is missing its supplier").
				WithDetail("lineNo", i+1).
				WithDetail("code", l.Code)
		}
	}
	return nil
}

// Advance moves the order to the given status, enforcing the linear
// transition order and the XML gate.
func (p *PurchaseOrder) Advance(to Status) error {
	if p.Status.next() != to {
		return apperror.NewBusinessRule(CodeIllegalTransition,
			"illegal purchase order status transition").
			WithDetail("from", string(p.Status)).
			WithDetail("to", string(to))
	}
	if to == StatusPendingStockEntry && !p.XMLAttached {
		return apperror.NewBusinessRule(CodeXMLRequired,
			"attach at least one fiscal note XML before stock entry")
	}
	p.Status = to
	p.Touch()
	return nil
}

// Business rule codes for purchase order transitions.
const (
	CodeLineIntegrity     = "PO_LINE_INTEGRITY"
	CodeIllegalTransition = "PO_ILLEGAL_TRANSITION"
	CodeXMLRequired       = "PO_XML_REQUIRED"
)
