package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/catalogs/unit"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// UnitHTTPHandler is a type alias to shorten signatures.
type UnitHTTPHandler = CatalogHandler[
	*unit.Unit,
	dto.CreateUnitRequest,
	dto.UpdateUnitRequest,
]

// NewUnitHandler builds the configured generic catalog handler.
func NewUnitHandler(
	base *BaseHandler,
	service *unit.Service,
) *UnitHTTPHandler {

	config := CatalogHandlerConfig[
		*unit.Unit,
		dto.CreateUnitRequest,
		dto.UpdateUnitRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "unit",

		MapCreateDTO: func(req dto.CreateUnitRequest) *unit.Unit {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateUnitRequest, existing *unit.Unit) *unit.Unit {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *unit.Unit) any {
			return dto.FromUnit(entity)
		},
	}

	return NewCatalogHandler(base, config)
}

// UnitLookupHandler serves unit lookups outside the generic CRUD.
type UnitLookupHandler struct {
	*BaseHandler
	service *unit.Service
}

// NewUnitLookupHandler creates the lookup handler.
func NewUnitLookupHandler(base *BaseHandler, service *unit.Service) *UnitLookupHandler {
	return &UnitLookupHandler{
		BaseHandler: base,
		service:     service,
	}
}

// FindBySymbol handles GET /units/by-symbol/:symbol.
func (h *UnitLookupHandler) FindBySymbol(c *gin.Context) {
	ctx := c.Request.Context()

	symbol := c.Param("symbol")
	if symbol == "" {
		h.Error(c, apperror.NewValidation("symbol is required"))
		return
	}

	u, err := h.service.FindBySymbol(ctx, symbol)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUnit(u))
}
