package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/catalogs/organization"
	"stockpro/internal/domain/documents/purchaseorder"
	"stockpro/internal/infrastructure/extraction"
	"stockpro/internal/infrastructure/http/v1/dto"
	"stockpro/internal/infrastructure/objstore"
)

// PurchaseOrderHandler handles the purchase order endpoints.
type PurchaseOrderHandler struct {
	*BaseHandler
	service   *purchaseorder.Service
	orgs      *organization.Service
	extractor *extraction.Client
	files     *objstore.Store
	snapshots *SnapshotResolver
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(
	base *BaseHandler,
	service *purchaseorder.Service,
	orgs *organization.Service,
	extractor *extraction.Client,
	files *objstore.Store,
	snapshots *SnapshotResolver,
) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		BaseHandler: base,
		service:     service,
		orgs:        orgs,
		extractor:   extractor,
		files:       files,
		snapshots:   snapshots,
	}
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	q, err := h.parseDocListQuery(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	filter := purchaseorder.ListFilter{
		ListFilter: q.Base,
		SupplierID: q.SupplierID,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	if q.Status != nil {
		status := purchaseorder.Status(*q.Status)
		filter.Status = &status
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.PurchaseOrderResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromPurchaseOrder(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromPurchaseOrder(doc))
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	orgID := req.OrganizationID
	if orgID == "" {
		org, err := h.orgs.GetDefault(ctx)
		if err != nil {
			h.Error(c, err)
			return
		}
		orgID = org.ID.String()
	}

	doc := purchaseorder.NewPurchaseOrder(orgID)
	if !req.Date.IsZero() {
		doc.Date = req.Date
	}
	doc.Comment = req.Comment

	if err := h.appendLines(c, doc, req.Lines); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPurchaseOrder(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Update handles PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	var req dto.UpdatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if !req.Date.IsZero() {
		doc.Date = req.Date
	}
	doc.Comment = req.Comment
	doc.Version = req.Version

	doc.Lines = doc.Lines[:0]
	if err := h.appendLines(c, doc, req.Lines); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPurchaseOrder(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AttachXML handles POST /purchase-orders/:id/attach-xml. The fiscal
// note file arrives as a multipart form file; matched lines take the
// confirmed cost price from the note.
func (h *PurchaseOrderHandler) AttachXML(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	if h.extractor == nil {
		h.Error(c, apperror.NewInternal(errors.New("extraction client is not configured")))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("multipart file field \"file\" is required"))
		return
	}
	if fh.Size > maxUploadBytes {
		h.Error(c, apperror.NewValidation("file too large").WithDetail("file", fh.Filename))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	extracts, err := h.extractor.Extract(ctx, fh.Filename, bytes.NewReader(content))
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(extracts) != 1 {
		h.Error(c, apperror.NewValidation("expected exactly one fiscal note per file").
			WithDetail("extracted", len(extracts)))
		return
	}

	result, err := h.service.AttachXML(ctx, docID, fh.Filename, content, extracts[0])
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.AttachXMLResponse{
		MatchedLines: result.MatchedLines,
		Warnings:     result.Warnings,
		Order:        dto.FromPurchaseOrder(doc),
	}
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// FinalizeAttachments handles POST /purchase-orders/:id/finalize-attachments
func (h *PurchaseOrderHandler) FinalizeAttachments(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	if err := h.service.FinalizeAttachments(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPurchaseOrder(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// StockEntry handles POST /purchase-orders/:id/stock-entry. It returns
// the finalized operation generated from the order.
func (h *PurchaseOrderHandler) StockEntry(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	op, err := h.service.StockEntry(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromOperation(op)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// DownloadAttachment handles GET /purchase-orders/:id/attachments/:fileName
func (h *PurchaseOrderHandler) DownloadAttachment(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	fileName := c.Param("fileName")

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	var key string
	for _, att := range doc.Attachments {
		if att.FileName == fileName {
			key = att.Key
			break
		}
	}
	if key == "" {
		h.Error(c, apperror.NewNotFound("attachment", fileName))
		return
	}

	data, contentType, err := h.files.Load(ctx, key)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, data)
}


func (h *PurchaseOrderHandler) appendLines(c *gin.Context, doc *purchaseorder.PurchaseOrder, lines []dto.DocumentLineRequest) error {
	snaps, err := h.snapshots.resolve(c.Request.Context(), lines)
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		doc.AddLine(purchaseorder.Line{
			ItemID:           snap.ItemID,
			SupplierID:       snap.SupplierID,
			Code:             snap.Code,
			Name:             snap.Name,
			NameEn:           snap.NameEn,
			NCM:              snap.NCM,
			Quantity:         snap.Quantity,
			Price:            snap.Price,
			PackageType:      snap.PackageType,
			UnitsPerPackage:  snap.UnitsPerPackage,
			UnitMeasureValue: snap.UnitMeasureValue,
			UnitMeasureType:  snap.UnitMeasureType,
			QtyUnit:          snap.QtyUnit,
		})
	}
	return nil
}
