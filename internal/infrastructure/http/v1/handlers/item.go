package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/domain"
	"stockpro/internal/domain/catalogs/item"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// ItemHTTPHandler is a type alias to shorten signatures.
type ItemHTTPHandler = CatalogHandler[
	*item.Item,
	dto.CreateItemRequest,
	dto.UpdateItemRequest,
]

// NewItemHandler builds the configured generic catalog handler.
func NewItemHandler(
	base *BaseHandler,
	service *item.Service,
) *ItemHTTPHandler {

	config := CatalogHandlerConfig[
		*item.Item,
		dto.CreateItemRequest,
		dto.UpdateItemRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "item",

		MapCreateDTO: func(req dto.CreateItemRequest) *item.Item {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateItemRequest, existing *item.Item) *item.Item {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *item.Item) any {
			return dto.FromItem(entity)
		},
	}

	return NewCatalogHandler(base, config)
}

// ItemLookupHandler serves item lookups that fall outside the generic
// catalog CRUD: by supplier-scoped code, by NCM, and by supplier.
type ItemLookupHandler struct {
	*BaseHandler
	service *item.Service
}

// NewItemLookupHandler creates the lookup handler.
func NewItemLookupHandler(base *BaseHandler, service *item.Service) *ItemLookupHandler {
	return &ItemLookupHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Lookup handles GET /items/lookup.
// Exactly one of code+supplierId, ncm, or supplierId must be given.
func (h *ItemLookupHandler) Lookup(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Query("code")
	ncm := c.Query("ncm")
	supplierStr := c.Query("supplierId")

	var supplierID id.ID
	if supplierStr != "" {
		parsed, err := id.Parse(supplierStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		supplierID = parsed
	}

	switch {
	case code != "":
		if supplierStr == "" {
			h.Error(c, apperror.NewValidation("code lookup requires supplierId"))
			return
		}
		it, err := h.service.FindByCodeAndSupplier(ctx, code, supplierID)
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.FromItem(it))

	case ncm != "":
		items, err := h.service.FindByNCM(ctx, ncm)
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": itemDTOs(items)})

	case supplierStr != "":
		filter := domain.DefaultListFilter()
		filter.Limit = h.ParseIntQuery(c, "limit", 50)
		filter.Offset = h.ParseIntQuery(c, "offset", 0)

		result, err := h.service.FindBySupplier(ctx, supplierID, filter)
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ListResponse{
			Items:      itemDTOs(result.Items),
			TotalCount: result.TotalCount,
			Limit:      result.Limit,
			Offset:     result.Offset,
		})

	default:
		h.Error(c, apperror.NewValidation("one of code+supplierId, ncm or supplierId is required"))
	}
}

// LowStock handles GET /items/low-stock.
func (h *ItemLookupHandler) LowStock(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.FindLowStock(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      itemDTOs(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

func itemDTOs(items []*item.Item) []*dto.ItemResponse {
	out := make([]*dto.ItemResponse, len(items))
	for i, it := range items {
		out[i] = dto.FromItem(it)
	}
	return out
}
