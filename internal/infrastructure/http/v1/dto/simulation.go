package dto

import (
	"github.com/shopspring/decimal"

	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/documents/simulation"
)

// --- Request DTOs ---

// SaveSimulationRequest is the request body for saving a simulation
// draft. An empty id creates a new draft; a non-empty id updates it.
type SaveSimulationRequest struct {
	ID             *id.ID                `json:"id"`
	OrganizationID string                `json:"organizationId"`
	Comment        string                `json:"comment"`
	Items          []DocumentLineRequest `json:"items" binding:"required"`
	Version        int                   `json:"version"`
}

// --- Response DTOs ---

// SimulationItemResponse is one snapshot line of a simulation.
type SimulationItemResponse struct {
	LineID          string         `json:"lineId"`
	LineNo          int            `json:"lineNo"`
	ItemID          string         `json:"itemId"`
	SupplierID      string         `json:"supplierId"`
	Code            string         `json:"code"`
	Name            string         `json:"name"`
	Quantity        types.Quantity `json:"quantity"`
	Price           types.Money    `json:"price"`
	PackageType     string         `json:"packageType,omitempty"`
	UnitsPerPackage int            `json:"unitsPerPackage,omitempty"`
	QtyUnit         string         `json:"qtyUnit,omitempty"`
}

// SimulationResponse is the response body for a simulation draft.
type SimulationResponse struct {
	DocumentResponse
	Status simulation.Status        `json:"status"`
	Items  []SimulationItemResponse `json:"items"`
	Total  decimal.Decimal          `json:"total"`
}

// FromSimulation creates response DTO from domain entity.
func FromSimulation(doc *simulation.Simulation) *SimulationResponse {
	items := make([]SimulationItemResponse, len(doc.Items))
	for i, it := range doc.Items {
		items[i] = SimulationItemResponse{
			LineID:          it.LineID.String(),
			LineNo:          it.LineNo,
			ItemID:          it.ItemID.String(),
			SupplierID:      it.SupplierID.String(),
			Code:            it.Code,
			Name:            it.Name,
			Quantity:        it.Quantity,
			Price:           it.Price,
			PackageType:     it.PackageType,
			UnitsPerPackage: it.UnitsPerPackage,
			QtyUnit:         it.QtyUnit,
		}
	}

	return &SimulationResponse{
		DocumentResponse: FromDocument(doc.Document),
		Status:           doc.Status,
		Items:            items,
		Total:            doc.Total(),
	}
}
