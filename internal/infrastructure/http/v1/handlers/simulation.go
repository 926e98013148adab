package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpro/internal/domain/catalogs/organization"
	"stockpro/internal/domain/documents/simulation"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// SimulationHandler handles the simulation draft endpoints.
type SimulationHandler struct {
	*BaseHandler
	service   *simulation.Service
	orgs      *organization.Service
	snapshots *SnapshotResolver
}

// NewSimulationHandler creates a new simulation handler.
func NewSimulationHandler(
	base *BaseHandler,
	service *simulation.Service,
	orgs *organization.Service,
	snapshots *SnapshotResolver,
) *SimulationHandler {
	return &SimulationHandler{
		BaseHandler: base,
		service:     service,
		orgs:        orgs,
		snapshots:   snapshots,
	}
}

// List handles GET /simulations
func (h *SimulationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	q, err := h.parseDocListQuery(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	filter := simulation.ListFilter{
		ListFilter: q.Base,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	if q.Status != nil {
		status := simulation.Status(*q.Status)
		filter.Status = &status
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.SimulationResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromSimulation(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /simulations/:id
func (h *SimulationHandler) Get(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.FromSimulation(doc))
}

// Save handles POST /simulations. An empty id creates a new draft; a
// non-empty id replaces the draft's lines and comment.
func (h *SimulationHandler) Save(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SaveSimulationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var doc *simulation.Simulation
	created := false

	if req.ID != nil {
		existing, err := h.service.GetByID(ctx, *req.ID)
		if err != nil {
			h.Error(c, err)
			return
		}
		doc = existing
		doc.Version = req.Version
	} else {
		orgID := req.OrganizationID
		if orgID == "" {
			org, err := h.orgs.GetDefault(ctx)
			if err != nil {
				h.Error(c, err)
				return
			}
			orgID = org.ID.String()
		}
		doc = simulation.NewSimulation(orgID)
		created = true
	}

	doc.Comment = req.Comment
	doc.Items = doc.Items[:0]

	snaps, err := h.snapshots.resolve(ctx, req.Items)
	if err != nil {
		h.Error(c, err)
		return
	}
	for _, snap := range snaps {
		doc.AddItem(simulation.Item{
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

	if err := h.service.Save(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	resp := dto.FromSimulation(doc)
	h.CompleteIdempotency(c, status, "application/json", resp)
	c.JSON(status, resp)
}

// Delete handles DELETE /simulations/:id
func (h *SimulationHandler) Delete(c *gin.Context) {
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

// Promote handles POST /simulations/:id/promote. The draft becomes a
// purchase order awaiting its fiscal notes.
func (h *SimulationHandler) Promote(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseDocID(c)
	if !ok {
		return
	}

	order, err := h.service.Promote(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromPurchaseOrder(order)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

