package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/registers/stock"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock register.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock register handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetBalances handles GET /registers/stock/balances
func (h *StockHandler) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	filter := stock.BalanceFilter{
		ExcludeZero: c.Query("excludeZero") == "true",
	}

	for _, raw := range c.QueryArray("itemId") {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemIDs = append(filter.ItemIDs, parsed)
	}

	balances, err := h.service.GetBalances(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockBalanceResponse, len(balances))
	for i, b := range balances {
		items[i] = dto.FromStockBalance(b)
	}

	c.JSON(http.StatusOK, dto.StockBalanceListResponse{Items: items})
}

// GetAvailability handles GET /registers/stock/availability/:itemId
func (h *StockHandler) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	qty, err := h.service.GetAvailability(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		ItemID:   itemID.String(),
		Quantity: qty.Float64(),
	})
}

// GetMovements handles GET /registers/stock/movements
func (h *StockHandler) GetMovements(c *gin.Context) {
	ctx := c.Request.Context()

	filter := stock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("itemId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemID = &parsed
	}
	if raw := c.Query("recorderId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid recorderId format"))
			return
		}
		filter.RecorderID = &parsed
	}
	if raw := c.Query("type"); raw != "" {
		movType := entity.MovementType(raw)
		filter.Type = &movType
	}
	if raw := c.Query("fromDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate, expected YYYY-MM-DD"))
			return
		}
		filter.FromDate = &t
	}
	if raw := c.Query("toDate"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate, expected YYYY-MM-DD"))
			return
		}
		filter.ToDate = &t
	}

	movements, err := h.service.ListMovements(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockMovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromStockMovement(m)
	}

	c.JSON(http.StatusOK, dto.StockMovementListResponse{Items: items})
}

// GetTurnover handles GET /registers/stock/turnover
func (h *StockHandler) GetTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	fromStr := c.Query("fromDate")
	toStr := c.Query("toDate")
	if fromStr == "" || toStr == "" {
		h.Error(c, apperror.NewValidation("fromDate and toDate are required"))
		return
	}

	fromDate, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate, expected YYYY-MM-DD"))
		return
	}
	toDate, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate, expected YYYY-MM-DD"))
		return
	}
	if toDate.Before(fromDate) {
		h.Error(c, apperror.NewValidation("toDate must not precede fromDate"))
		return
	}

	filter := stock.TurnoverFilter{
		FromDate: fromDate,
		ToDate:   toDate,
	}
	if raw := c.Query("itemId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemID = &parsed
	}

	turnover, err := h.service.GetStockReport(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockTurnover(turnover))
}

