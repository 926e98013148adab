package dto

import (
	"time"

	"stockpro/internal/core/types"
	"stockpro/internal/domain/documents/purchaseorder"
)

// --- Request DTOs ---

// CreatePurchaseOrderRequest is the request body for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	Date           time.Time             `json:"date"`
	OrganizationID string                `json:"organizationId"`
	Comment        string                `json:"comment"`
	Lines          []DocumentLineRequest `json:"lines" binding:"required"`
}

// UpdatePurchaseOrderRequest is the request body for updating a purchase order.
type UpdatePurchaseOrderRequest struct {
	Date    time.Time             `json:"date"`
	Comment string                `json:"comment"`
	Lines   []DocumentLineRequest `json:"lines" binding:"required"`
	Version int                   `json:"version" binding:"required"`
}

// --- Response DTOs ---

// PurchaseOrderLineResponse is one snapshot line of a purchase order.
type PurchaseOrderLineResponse struct {
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
	XMLMatched      bool           `json:"xmlMatched"`
}

// AttachmentResponse describes one stored fiscal note file.
type AttachmentResponse struct {
	Key           string    `json:"key"`
	FileName      string    `json:"fileName"`
	InvoiceNumber string    `json:"invoiceNumber,omitempty"`
	AttachedAt    time.Time `json:"attachedAt"`
}

// PurchaseOrderResponse is the response body for a purchase order.
type PurchaseOrderResponse struct {
	DocumentResponse
	Status      purchaseorder.Status        `json:"status"`
	XMLAttached bool                        `json:"xmlAttached"`
	Lines       []PurchaseOrderLineResponse `json:"lines"`
	Attachments []AttachmentResponse        `json:"attachments,omitempty"`
}

// FromPurchaseOrder creates response DTO from domain entity.
func FromPurchaseOrder(doc *purchaseorder.PurchaseOrder) *PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(doc.Lines))
	for i, l := range doc.Lines {
		lines[i] = PurchaseOrderLineResponse{
			LineID:          l.LineID.String(),
			LineNo:          l.LineNo,
			ItemID:          l.ItemID.String(),
			SupplierID:      l.SupplierID.String(),
			Code:            l.Code,
			Name:            l.Name,
			NameEn:          l.NameEn,
			NCM:             l.NCM,
			Quantity:        l.Quantity,
			Price:           l.Price,
			PackageType:     l.PackageType,
			UnitsPerPackage: l.UnitsPerPackage,
			QtyUnit:         l.QtyUnit,
			XMLMatched:      l.XMLMatched,
		}
	}

	attachments := make([]AttachmentResponse, len(doc.Attachments))
	for i, a := range doc.Attachments {
		attachments[i] = AttachmentResponse{
			Key:           a.Key,
			FileName:      a.FileName,
			InvoiceNumber: a.InvoiceNumber,
			AttachedAt:    a.AttachedAt,
		}
	}

	return &PurchaseOrderResponse{
		DocumentResponse: FromDocument(doc.Document),
		Status:           doc.Status,
		XMLAttached:      doc.XMLAttached,
		Lines:            lines,
		Attachments:      attachments,
	}
}

// AttachXMLResponse reports the outcome of one fiscal note attachment.
type AttachXMLResponse struct {
	MatchedLines int      `json:"matchedLines"`
	Warnings     []string `json:"warnings,omitempty"`
	Order        any      `json:"order"`
}
