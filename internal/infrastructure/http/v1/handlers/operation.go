package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/catalogs/organization"
	"stockpro/internal/domain/documents/operation"
	"stockpro/internal/domain/trade"
	"stockpro/internal/infrastructure/extraction"
	"stockpro/internal/infrastructure/http/v1/dto"
	"stockpro/pkg/logger"
)

// maxUploadBytes caps multipart uploads (danfe XML files are small).
const maxUploadBytes = 10 << 20

// OperationHandler handles the operation document endpoints.
type OperationHandler struct {
	*BaseHandler
	service   *operation.Service
	orgs      *organization.Service
	extractor *extraction.Client
	snapshots *SnapshotResolver
}

// NewOperationHandler creates a new operation handler.
func NewOperationHandler(
	base *BaseHandler,
	service *operation.Service,
	orgs *organization.Service,
	extractor *extraction.Client,
	snapshots *SnapshotResolver,
) *OperationHandler {
	return &OperationHandler{
		BaseHandler: base,
		service:     service,
		orgs:        orgs,
		extractor:   extractor,
		snapshots:   snapshots,
	}
}

// List handles GET /operations
func (h *OperationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	q, err := h.parseDocListQuery(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	filter := operation.ListFilter{
		ListFilter: q.Base,
		Type:       q.Type,
		SupplierID: q.SupplierID,
		Posted:     q.Posted,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	if q.Status != nil {
		status := operation.Status(*q.Status)
		filter.Status = &status
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.OperationResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromOperation(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /operations/:id
func (h *OperationHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromOperation(doc))
}

// Create handles POST /operations
func (h *OperationHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOperationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	orgID, err := h.resolveOrganization(c, req.OrganizationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc := operation.NewOperation(orgID, req.Type)
	if !req.Date.IsZero() {
		doc.Date = req.Date
	}
	doc.Comment = req.Comment

	if err := h.appendLines(c, doc, req.Items); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromOperation(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Update handles PUT /operations/:id
func (h *OperationHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	var req dto.UpdateOperationRequest
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

	doc.Items = doc.Items[:0]
	if err := h.appendLines(c, doc, req.Items); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromOperation(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /operations/:id
func (h *OperationHandler) Delete(c *gin.Context) {
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

// Finalize handles POST /operations/:id/finalize
func (h *OperationHandler) Finalize(c *gin.Context) {
	h.transition(c, h.service.Finalize)
}

// Reopen handles POST /operations/:id/reopen
func (h *OperationHandler) Reopen(c *gin.Context) {
	h.transition(c, h.service.Reopen)
}

// Preview handles GET /operations/:id/preview
func (h *OperationHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	tradeDoc, err := h.service.Preview(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, tradeDoc)
}

// ApplyEdit handles POST /operations/:id/edits
func (h *OperationHandler) ApplyEdit(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	var req dto.ApplyEditRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tradeDoc, err := h.service.ApplyEdit(ctx, docID, req.Path, req.Value)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, tradeDoc)
}

// Import handles POST /operations/import. It accepts one or more danfe
// XML files as multipart form files and creates a draft import
// operation, registering suppliers and items on the fly.
func (h *OperationHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	if h.extractor == nil {
		h.Error(c, apperror.NewInternal(errors.New("extraction client is not configured")))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.Error(c, apperror.NewValidation("multipart form expected"))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		h.Error(c, apperror.NewValidation("at least one XML file is required"))
		return
	}

	orgID, err := h.resolveOrganization(c, c.PostForm("organizationId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	var extracts []trade.NfeExtract
	for _, fh := range files {
		if fh.Size > maxUploadBytes {
			h.Error(c, apperror.NewValidation("file too large").WithDetail("file", fh.Filename))
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.Error(c, apperror.NewInternal(err))
			return
		}
		fileExtracts, err := h.extractor.Extract(ctx, fh.Filename, f)
		f.Close()
		if err != nil {
			h.Error(c, err)
			return
		}
		extracts = append(extracts, fileExtracts...)
	}

	doc, err := h.service.CreateFromImport(ctx, orgID, extracts)
	if err != nil {
		h.Error(c, err)
		return
	}

	logger.Info(ctx, "imported operation from xml",
		"operation_id", doc.ID,
		"files", len(files),
		"extracts", len(extracts),
	)

	resp := dto.FromOperation(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}


func (h *OperationHandler) transition(c *gin.Context, fn func(ctx context.Context, docID id.ID) error) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	if err := fn(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromOperation(doc)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

func (h *OperationHandler) appendLines(c *gin.Context, doc *operation.Operation, lines []dto.DocumentLineRequest) error {
	snaps, err := h.snapshots.resolve(c.Request.Context(), lines)
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		doc.AddItem(operation.Item{
			ItemID:           snap.ItemID,
			SupplierID:       snap.SupplierID,
			Code:             snap.Code,
			Name:             snap.Name,
			NameEn:           snap.NameEn,
			NCM:              snap.NCM,
			Description:      snap.Description,
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

func (h *OperationHandler) resolveOrganization(c *gin.Context, orgID string) (string, error) {
	if orgID != "" {
		return orgID, nil
	}
	org, err := h.orgs.GetDefault(c.Request.Context())
	if err != nil {
		return "", err
	}
	return org.ID.String(), nil
}
