// Package simulation provides purchase simulations: auto-saved drafts
// of a planned purchase, promotable to a purchase order or discarded.
package simulation

import (
	"context"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

// Status of a simulation draft.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusPromoted Status = "promoted"
)

// Simulation is a draft shopping list. Every mutation is persisted
// immediately; there is no explicit save action.
type Simulation struct {
	entity.Document

	Status Status `db:"status" json:"status"`

	// Items are the simulated purchase lines. Quantities count
	// packages.
	Items []Item `db:"-" json:"items"`
}

// Item is one simulated purchase line.
type Item struct {
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
}

// NewSimulation creates an empty draft.
func NewSimulation(organizationID string) *Simulation {
	return &Simulation{
		Document: entity.NewDocument(organizationID),
		Status:   StatusDraft,
		Items:    make([]Item, 0),
	}
}

// AddItem appends a line.
func (s *Simulation) AddItem(it Item) {
	it.LineID = id.New()
	it.LineNo = len(s.Items) + 1
	s.Items = append(s.Items, it)
}

// Total is the simulated purchase total.
func (s *Simulation) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(it.Quantity.Units())))
	}
	return total
}

// Validate implements entity.Validatable. Drafts are deliberately
// loose: empty simulations are legal, only present lines are checked.
func (s *Simulation) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	for i, it := range s.Items {
		if id.IsNil(it.ItemID) {
			return apperror.NewValidation("item reference is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if it.Quantity.IsNegative() {
			return apperror.NewValidation("quantity must not be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// CanPromote checks the draft is promotable to a purchase order.
func (s *Simulation) CanPromote() error {
	if s.Status != StatusDraft {
		return apperror.NewBusinessRule(CodeAlreadyPromoted,
			"simulation was already promoted")
	}
	if len(s.Items) == 0 {
		return apperror.NewValidation("cannot promote an empty simulation")
	}
	for i, it := range s.Items {
		if !it.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive to promote").
				WithDetail("lineNo", i + 1)
		}
	}
	return nil
}

// CodeAlreadyPromoted marks double-promotion attempts.
const CodeAlreadyPromoted = "SIM_ALREADY_PROMOTED"
