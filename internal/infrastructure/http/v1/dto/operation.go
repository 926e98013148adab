package dto

import (
	"time"

	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/documents/operation"
)

// --- Request DTOs ---

// DocumentLineRequest is one line of a document request. Only the item
// reference, quantity and price come from the client; catalog snapshot
// fields are filled server-side.
type DocumentLineRequest struct {
	ItemID   id.ID          `json:"itemId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
	Price    *types.Money   `json:"price"`
	QtyUnit  string         `json:"qtyUnit"`
}

// CreateOperationRequest is the request body for creating an operation.
type CreateOperationRequest struct {
	Type           string                `json:"type" binding:"required"`
	Date           time.Time             `json:"date"`
	OrganizationID string                `json:"organizationId"`
	Comment        string                `json:"comment"`
	Items          []DocumentLineRequest `json:"items" binding:"required"`
}

// UpdateOperationRequest is the request body for updating a draft operation.
type UpdateOperationRequest struct {
	Date    time.Time             `json:"date"`
	Comment string                `json:"comment"`
	Items   []DocumentLineRequest `json:"items" binding:"required"`
	Version int                   `json:"version" binding:"required"`
}

// ApplyEditRequest is the request body for a trade document field edit.
type ApplyEditRequest struct {
	Path  string `json:"path" binding:"required"`
	Value string `json:"value"`
}

// --- Response DTOs ---

// OperationItemResponse is one snapshot line of an operation.
type OperationItemResponse struct {
	LineID          string         `json:"lineId"`
	LineNo          int            `json:"lineNo"`
	ItemID          string         `json:"itemId"`
	SupplierID      string         `json:"supplierId"`
	Code            string         `json:"code"`
	Name            string         `json:"name"`
	NameEn          string         `json:"nameEn,omitempty"`
	NCM             string         `json:"ncm,omitempty"`
	Quantity        types.Quantity `json:"quantity"`
	Price           types.Money    `json:"price"`
	PackageType     string         `json:"packageType,omitempty"`
	UnitsPerPackage int            `json:"unitsPerPackage,omitempty"`
	QtyUnit         string         `json:"qtyUnit,omitempty"`
}

// OperationResponse is the response body for an operation.
type OperationResponse struct {
	DocumentResponse
	Type   string                  `json:"type"`
	Status operation.Status        `json:"status"`
	Items  []OperationItemResponse `json:"items"`
}

// FromOperation creates response DTO from domain entity.
func FromOperation(doc *operation.Operation) *OperationResponse {
	items := make([]OperationItemResponse, len(doc.Items))
	for i, it := range doc.Items {
		items[i] = OperationItemResponse{
			LineID:          it.LineID.String(),
			LineNo:          it.LineNo,
			ItemID:          it.ItemID.String(),
			SupplierID:      it.SupplierID.String(),
			Code:            it.Code,
			Name:            it.Name,
			NameEn:          it.NameEn,
			NCM:             it.NCM,
			Quantity:        it.Quantity,
			Price:           it.Price,
			PackageType:     it.PackageType,
			UnitsPerPackage: it.UnitsPerPackage,
			QtyUnit:         it.QtyUnit,
		}
	}

	return &OperationResponse{
		DocumentResponse: FromDocument(doc.Document),
		Type:             doc.Type,
		Status:           doc.Status,
		Items:            items,
	}
}
