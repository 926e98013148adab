// Package trade builds and maintains the data model behind generated
// trade documents (commercial invoice, packing list).
//
// One document model serves both renderers: a supplier-grouped list of
// line items plus costs, exchange rate, cost distribution settings and
// weight totals. The model is assembled from an operation (see
// assembly.go), optionally re-priced by the cost distribution engine
// (distribution.go) and mutated field-by-field through validated dotted
// paths (editor.go).
package trade

import (
	"strings"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/id"
)

// Operation types with a package-count convention of their own: their
// line quantities are already expressed in packages, not base units.
const (
	TypeImport            = "import"
	TypeManual            = "manual"
	TypeSimulation        = "simulation"
	TypeSimulationPreview = "simulation_preview"
	TypePurchaseOrder     = "purchase_order"
)

// Distribution configures spreading an extra cost (freight, handling)
// across line items proportionally to their value share.
type Distribution struct {
	Active bool            `json:"active"`
	Value  decimal.Decimal `json:"value"`
	Type   string          `json:"type"` // "percentage" or flat amount
}

// LineItem is one product row of a supplier group.
type LineItem struct {
	ItemID id.ID  `json:"item_id"`
	Code   string `json:"code"`
	// Qty is the package count shown on the document.
	Qty    int64           `json:"qty"`
	NCM    string          `json:"ncm"`
	Desc   string          `json:"desc"`
	NameEn string          `json:"nameEn"`
	Price  decimal.Decimal `json:"price"` // unit price in BRL
	// Value and TotalPackages are packing-list columns, editable on
	// their own and therefore stored, not derived.
	Value         decimal.Decimal `json:"value"`
	TotalPackages int64           `json:"totalPackages"`
	QtyUnit       string          `json:"qty_unit"` // "12X400G"
	QtyKg         decimal.Decimal `json:"qty_kg"`
	UM            string          `json:"um"`
	// ManualWeight marks qty_kg as user-overridden; recomputation from
	// qty_unit must not touch it anymore.
	ManualWeight bool `json:"manualWeight,omitempty"`
}

// SupplierGroup is the per-supplier section of a document.
type SupplierGroup struct {
	SupplierID *id.ID     `json:"supplierId,omitempty"`
	Info       string     `json:"info"` // rendered header line
	Items      []LineItem `json:"items"`
}

// CostLine is an extra document-level cost (freight, insurance, ...).
type CostLine struct {
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"` // BRL
}

// Document is the full editable trade-document model. It is persisted
// on the operation as JSONB: once saved, it is the authoritative source
// for rendering and is never recomputed over.
type Document struct {
	OperationID   id.ID           `json:"operationId"`
	OperationType string          `json:"operationType"`
	Suppliers     []SupplierGroup `json:"suppliers"`
	Costs         []CostLine      `json:"costs"`
	PtaxRate      decimal.Decimal `json:"ptaxRate"`
	Distribution  Distribution    `json:"distribution"`

	ManualNetWeight   *decimal.Decimal `json:"manualNetWeight,omitempty"`
	ManualGrossWeight *decimal.Decimal `json:"manualGrossWeight,omitempty"`

	// Aggregated from import lineage when present.
	NfeNetWeight   decimal.Decimal `json:"nfeNetWeight"`
	NfeGrossWeight decimal.Decimal `json:"nfeGrossWeight"`

	InvoiceNumber string `json:"invoiceNumber"`
	// ISO YYYY-MM-DD; rendered in long-month English (see DisplayDate).
	InvoiceDate string `json:"invoiceDate"`

	// Free-form header fields: exporterInfo, importerInfo, booking,
	// incoterm and whatever else the document template shows.
	Header map[string]string `json:"header,omitempty"`
}

// Clone returns a deep copy. Distribution and editing always work on a
// copy so the saved document stays pristine and toggles are lossless.
func (d *Document) Clone() *Document {
	out := *d
	out.Suppliers = make([]SupplierGroup, len(d.Suppliers))
	for i, g := range d.Suppliers {
		cg := g
		if g.SupplierID != nil {
			sid := *g.SupplierID
			cg.SupplierID = &sid
		}
		cg.Items = make([]LineItem, len(g.Items))
		copy(cg.Items, g.Items)
		out.Suppliers[i] = cg
	}
	out.Costs = make([]CostLine, len(d.Costs))
	copy(out.Costs, d.Costs)
	if d.ManualNetWeight != nil {
		v := *d.ManualNetWeight
		out.ManualNetWeight = &v
	}
	if d.ManualGrossWeight != nil {
		v := *d.ManualGrossWeight
		out.ManualGrossWeight = &v
	}
	if d.Header != nil {
		out.Header = make(map[string]string, len(d.Header))
		for k, v := range d.Header {
			out.Header[k] = v
		}
	}
	return &out
}

// Totals are the derived document aggregates, recomputed in full after
// every accepted edit so they can never go stale.
type Totals struct {
	ProductSubtotalUSD decimal.Decimal `json:"productSubtotalUSD"`
	CostsSubtotalUSD   decimal.Decimal `json:"costsSubtotalUSD"`
	GrandTotalUSD      decimal.Decimal `json:"grandTotalUSD"`
	NetWeightKg        decimal.Decimal `json:"netWeightKg"`
	GrossWeightKg      decimal.Decimal `json:"grossWeightKg"`
	TotalPackages      int64           `json:"totalPackages"`
}

// grossWeightFactor is the packaging-weight heuristic applied when no
// measured gross weight is available: net plus 3.5%.
var grossWeightFactor = decimal.RequireFromString("1.035")

// Totals computes the document aggregates. Line amounts are weight
// priced: qty_kg times the USD unit price. Cost lines are converted
// independently; totals are plain sums of converted components.
func (d *Document) Totals() Totals {
	var t Totals
	for _, g := range d.Suppliers {
		for _, it := range g.Items {
			priceUSD := Convert(it.Price, d.PtaxRate)
			t.ProductSubtotalUSD = t.ProductSubtotalUSD.Add(it.QtyKg.Mul(priceUSD))
			t.NetWeightKg = t.NetWeightKg.Add(it.QtyKg)
			t.TotalPackages += it.Qty
		}
	}
	for _, c := range d.Costs {
		t.CostsSubtotalUSD = t.CostsSubtotalUSD.Add(Convert(c.Value, d.PtaxRate))
	}
	t.GrandTotalUSD = t.ProductSubtotalUSD.Add(t.CostsSubtotalUSD)

	// Net weight: manual override wins outright, then measured XML
	// weights, then the sum of line weights.
	switch {
	case d.ManualNetWeight != nil && d.ManualNetWeight.GreaterThan(decimal.Zero):
		t.NetWeightKg = *d.ManualNetWeight
	case d.NfeNetWeight.GreaterThan(decimal.Zero):
		t.NetWeightKg = d.NfeNetWeight
	}

	switch {
	case d.ManualGrossWeight != nil && d.ManualGrossWeight.GreaterThan(decimal.Zero):
		t.GrossWeightKg = *d.ManualGrossWeight
	case d.NfeGrossWeight.GreaterThan(decimal.Zero):
		t.GrossWeightKg = d.NfeGrossWeight
	default:
		t.GrossWeightKg = t.NetWeightKg.Mul(grossWeightFactor)
	}
	return t
}

// Convert converts a BRL amount to USD with the PTAX rate. Without a
// valid rate the amount passes through unchanged and the document is
// rendered in BRL, labeled accordingly.
func Convert(amountBRL, ptaxRate decimal.Decimal) decimal.Decimal {
	if ptaxRate.GreaterThan(decimal.Zero) {
		return amountBRL.Div(ptaxRate)
	}
	return amountBRL
}

// UsesPackageQuantities reports whether the operation type expresses
// line quantities directly in packages.
func UsesPackageQuantities(opType string) bool {
	switch strings.ToLower(opType) {
	case TypeSimulationPreview, TypeSimulation, TypePurchaseOrder:
		return true
	}
	return false
}
