// Package item provides the Item catalog: the stock keeping units of
// the trading business.
package item

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/inference"
)

// PackageType defines how an item is packed for sale.
type PackageType string

const (
	PackageBox    PackageType = "caixa"
	PackageBale   PackageType = "fardo"
	PackageSingle PackageType = "unidade"
)

var ncmPattern = regexp.MustCompile(`^\d{8}$`)

// Item represents a stock keeping unit.
type Item struct {
	entity.Catalog

	// NameEn is the English product name used on export documents.
	NameEn string `db:"name_en" json:"nameEn"`

	// NCM is the 8-digit Brazilian tariff classification code, the
	// matching key for imported products.
	NCM string `db:"ncm" json:"ncm"`

	Description string `db:"description" json:"description"`

	// Quantity is stock on hand, always in base units. Package counts
	// are derived: floor(quantity / unitsPerPackage).
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	MinQuantity types.Quantity `db:"min_quantity" json:"minQuantity"`

	CostPrice types.Money `db:"cost_price" json:"costPrice"`
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	PackageType      PackageType     `db:"package_type" json:"packageType"`
	UnitsPerPackage  int             `db:"units_per_package" json:"unitsPerPackage"`
	UnitMeasureValue decimal.Decimal `db:"unit_measure_value" json:"unitMeasureValue"`
	UnitMeasureType  string          `db:"unit_measure_type" json:"unitMeasureType"`

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	Image *string `db:"image" json:"image,omitempty"`
}

// New creates a new Item with required fields.
func New(code, name string, supplierID id.ID) *Item {
	return &Item{
		Catalog:         entity.NewCatalog(code, name),
		SupplierID:      supplierID,
		PackageType:     PackageSingle,
		UnitsPerPackage: 1,
		UnitMeasureType: inference.UnitPiece,
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(i.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if i.NCM != "" && !ncmPattern.MatchString(i.NCM) {
		return apperror.NewValidation("NCM must contain exactly 8 digits").
			WithDetail("field", "ncm").
			WithDetail("value", i.NCM)
	}

	if !isValidPackageType(i.PackageType) {
		return apperror.NewValidation("invalid package type").
			WithDetail("field", "packageType").
			WithDetail("value", string(i.PackageType))
	}

	if i.UnitsPerPackage < 1 {
		return apperror.NewValidation("units per package must be at least 1").
			WithDetail("field", "unitsPerPackage")
	}

	if i.UnitMeasureValue.IsNegative() {
		return apperror.NewValidation("unit measure value cannot be negative").
			WithDetail("field", "unitMeasureValue")
	}

	if !isValidMeasureType(i.UnitMeasureType) {
		return apperror.NewValidation("invalid unit measure type").
			WithDetail("field", "unitMeasureType").
			WithDetail("value", i.UnitMeasureType)
	}

	if i.CostPrice.IsNegative() || i.SalePrice.IsNegative() {
		return apperror.NewValidation("prices cannot be negative").
			WithDetail("field", "costPrice")
	}

	return nil
}

// PackageCount returns whole packages on hand.
func (i *Item) PackageCount() int64 {
	if i.UnitsPerPackage < 1 {
		return i.Quantity.Units()
	}
	return i.Quantity.Units() / int64(i.UnitsPerPackage)
}

// IsLowStock reports whether stock fell below the configured minimum.
func (i *Item) IsLowStock() bool {
	return i.Quantity < i.MinQuantity
}

// Packaging resolves the item's canonical packaging triple: stored
// fields first, then name-based inference.
func (i *Item) Packaging() inference.Packaging {
	return inference.InferPackaging(i.Name, &inference.Packaging{
		UnitsPerPackage:  i.UnitsPerPackage,
		UnitMeasureValue: i.UnitMeasureValue,
		UnitMeasureType:  i.UnitMeasureType,
	})
}

// QtyUnitString renders the packaging for trade documents ("12X400G").
func (i *Item) QtyUnitString() string {
	return i.Packaging().QtyUnitString()
}

func isValidPackageType(t PackageType) bool {
	switch t {
	case PackageBox, PackageBale, PackageSingle:
		return true
	}
	return false
}

func isValidMeasureType(t string) bool {
	switch t {
	case inference.UnitKilogram, inference.UnitGram, inference.UnitGramAlt,
		inference.UnitLiter, inference.UnitMillilite, inference.UnitPiece, "":
		return true
	}
	return false
}
