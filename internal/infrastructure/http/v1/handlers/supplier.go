package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/catalogs/supplier"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// SupplierHTTPHandler is a type alias to shorten signatures.
type SupplierHTTPHandler = CatalogHandler[
	*supplier.Supplier,
	dto.CreateSupplierRequest,
	dto.UpdateSupplierRequest,
]

// NewSupplierHandler builds the configured generic catalog handler.
func NewSupplierHandler(
	base *BaseHandler,
	service *supplier.Service,
) *SupplierHTTPHandler {

	config := CatalogHandlerConfig[
		*supplier.Supplier,
		dto.CreateSupplierRequest,
		dto.UpdateSupplierRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "supplier",

		MapCreateDTO: func(req dto.CreateSupplierRequest) *supplier.Supplier {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) *supplier.Supplier {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *supplier.Supplier) any {
			return dto.FromSupplier(entity)
		},
	}

	return NewCatalogHandler(base, config)
}

// SupplierLookupHandler serves supplier lookups outside the generic CRUD.
type SupplierLookupHandler struct {
	*BaseHandler
	service *supplier.Service
}

// NewSupplierLookupHandler creates the lookup handler.
func NewSupplierLookupHandler(base *BaseHandler, service *supplier.Service) *SupplierLookupHandler {
	return &SupplierLookupHandler{
		BaseHandler: base,
		service:     service,
	}
}

// FindByCNPJ handles GET /suppliers/by-cnpj/:cnpj.
// The CNPJ may be formatted or bare digits.
func (h *SupplierLookupHandler) FindByCNPJ(c *gin.Context) {
	ctx := c.Request.Context()

	cnpj := c.Param("cnpj")
	if cnpj == "" {
		h.Error(c, apperror.NewValidation("cnpj is required"))
		return
	}

	sp, err := h.service.FindByCNPJ(ctx, cnpj)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSupplier(sp))
}
