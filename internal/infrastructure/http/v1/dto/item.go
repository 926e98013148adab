package dto

import (
	"github.com/shopspring/decimal"

	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/catalogs/item"
)

// --- Request DTOs ---

// CreateItemRequest is the request body for creating an item.
type CreateItemRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	NameEn           string            `json:"nameEn"`
	NCM              string            `json:"ncm"`
	Description      string            `json:"description"`
	SupplierID       id.ID             `json:"supplierId" binding:"required"`
	MinQuantity      types.Quantity    `json:"minQuantity"`
	CostPrice        types.Money       `json:"costPrice"`
	SalePrice        types.Money       `json:"salePrice"`
	PackageType      item.PackageType  `json:"packageType"`
	UnitsPerPackage  int               `json:"unitsPerPackage"`
	UnitMeasureValue decimal.Decimal   `json:"unitMeasureValue"`
	UnitMeasureType  string            `json:"unitMeasureType"`
	Image            *string           `json:"image"`
	Attributes       entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity. When packaging fields are
// omitted they are inferred from the description by the service hooks.
func (r *CreateItemRequest) ToEntity() *item.Item {
	it := item.New(r.Code, r.Name, r.SupplierID)
	it.NameEn = r.NameEn
	it.NCM = r.NCM
	it.Description = r.Description
	it.MinQuantity = r.MinQuantity
	it.CostPrice = r.CostPrice
	it.SalePrice = r.SalePrice
	if r.PackageType != "" {
		it.PackageType = r.PackageType
	}
	if r.UnitsPerPackage > 0 {
		it.UnitsPerPackage = r.UnitsPerPackage
	}
	it.UnitMeasureValue = r.UnitMeasureValue
	if r.UnitMeasureType != "" {
		it.UnitMeasureType = r.UnitMeasureType
	}
	it.Image = r.Image
	it.Attributes = r.Attributes
	return it
}

// UpdateItemRequest is the request body for updating an item. Stock on
// hand is not settable here; it only moves through the ledger.
type UpdateItemRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	NameEn           string            `json:"nameEn"`
	NCM              string            `json:"ncm"`
	Description      string            `json:"description"`
	SupplierID       id.ID             `json:"supplierId" binding:"required"`
	MinQuantity      types.Quantity    `json:"minQuantity"`
	CostPrice        types.Money       `json:"costPrice"`
	SalePrice        types.Money       `json:"salePrice"`
	PackageType      item.PackageType  `json:"packageType"`
	UnitsPerPackage  int               `json:"unitsPerPackage"`
	UnitMeasureValue decimal.Decimal   `json:"unitMeasureValue"`
	UnitMeasureType  string            `json:"unitMeasureType"`
	Image            *string           `json:"image"`
	Attributes       entity.Attributes `json:"attributes"`
	Version          int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) {
	it.Code = r.Code
	it.Name = r.Name
	it.NameEn = r.NameEn
	it.NCM = r.NCM
	it.Description = r.Description
	it.SupplierID = r.SupplierID
	it.MinQuantity = r.MinQuantity
	it.CostPrice = r.CostPrice
	it.SalePrice = r.SalePrice
	if r.PackageType != "" {
		it.PackageType = r.PackageType
	}
	if r.UnitsPerPackage > 0 {
		it.UnitsPerPackage = r.UnitsPerPackage
	}
	it.UnitMeasureValue = r.UnitMeasureValue
	if r.UnitMeasureType != "" {
		it.UnitMeasureType = r.UnitMeasureType
	}
	it.Image = r.Image
	it.Attributes = r.Attributes
	it.Version = r.Version
}

// --- Response DTOs ---

// ItemResponse is the response body for an item.
type ItemResponse struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	NameEn           string            `json:"nameEn,omitempty"`
	NCM              string            `json:"ncm,omitempty"`
	Description      string            `json:"description,omitempty"`
	SupplierID       string            `json:"supplierId"`
	Quantity         types.Quantity    `json:"quantity"`
	MinQuantity      types.Quantity    `json:"minQuantity"`
	Packages         int64             `json:"packages"`
	CostPrice        types.Money       `json:"costPrice"`
	SalePrice        types.Money       `json:"salePrice"`
	PackageType      item.PackageType  `json:"packageType"`
	UnitsPerPackage  int               `json:"unitsPerPackage"`
	UnitMeasureValue decimal.Decimal   `json:"unitMeasureValue"`
	UnitMeasureType  string            `json:"unitMeasureType"`
	Image            *string           `json:"image,omitempty"`
	DeletionMark     bool              `json:"deletionMark"`
	Version          int               `json:"version"`
	Attributes       entity.Attributes `json:"attributes,omitempty"`
}

// FromItem creates response DTO from domain entity.
func FromItem(it *item.Item) *ItemResponse {
	return &ItemResponse{
		ID:               it.ID.String(),
		Code:             it.Code,
		Name:             it.Name,
		NameEn:           it.NameEn,
		NCM:              it.NCM,
		Description:      it.Description,
		SupplierID:       it.SupplierID.String(),
		Quantity:         it.Quantity,
		MinQuantity:      it.MinQuantity,
		Packages:         it.PackageCount(),
		CostPrice:        it.CostPrice,
		SalePrice:        it.SalePrice,
		PackageType:      it.PackageType,
		UnitsPerPackage:  it.UnitsPerPackage,
		UnitMeasureValue: it.UnitMeasureValue,
		UnitMeasureType:  it.UnitMeasureType,
		Image:            it.Image,
		DeletionMark:     it.DeletionMark,
		Version:          it.Version,
		Attributes:       it.Attributes,
	}
}
