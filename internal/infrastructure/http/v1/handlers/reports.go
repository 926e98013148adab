package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockpro/internal/domain/reports"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports. Every report has a
// JSON variant and an xlsx export.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetStock handles GET /reports/stock
func (h *ReportsHandler) GetStock(c *gin.Context) {
	report, ok := h.stockReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetStockXLSX handles GET /reports/stock/xlsx
func (h *ReportsHandler) GetStockXLSX(c *gin.Context) {
	report, ok := h.stockReport(c)
	if !ok {
		return
	}

	writeXLSXHeaders(c, "estoque")
	if err := reports.WriteStockXLSX(c.Writer, report); err != nil {
		h.Error(c, err)
	}
}

// GetLowStock handles GET /reports/low-stock
func (h *ReportsHandler) GetLowStock(c *gin.Context) {
	report, ok := h.lowStockReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetLowStockXLSX handles GET /reports/low-stock/xlsx
func (h *ReportsHandler) GetLowStockXLSX(c *gin.Context) {
	report, ok := h.lowStockReport(c)
	if !ok {
		return
	}

	writeXLSXHeaders(c, "reposicao")
	if err := reports.WriteLowStockXLSX(c.Writer, report); err != nil {
		h.Error(c, err)
	}
}

// GetMovements handles GET /reports/movements
func (h *ReportsHandler) GetMovements(c *gin.Context) {
	report, ok := h.movementReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetMovementsXLSX handles GET /reports/movements/xlsx
func (h *ReportsHandler) GetMovementsXLSX(c *gin.Context) {
	report, ok := h.movementReport(c)
	if !ok {
		return
	}

	writeXLSXHeaders(c, "movimentacoes")
	if err := reports.WriteMovementsXLSX(c.Writer, report); err != nil {
		h.Error(c, err)
	}
}


func (h *ReportsHandler) stockReport(c *gin.Context) (*reports.StockReport, bool) {
	var req dto.StockReportRequest
	if !h.BindQuery(c, &req) {
		return nil, false
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	report, err := h.service.GetStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return report, true
}

func (h *ReportsHandler) lowStockReport(c *gin.Context) (*reports.LowStockReport, bool) {
	var req dto.LowStockReportRequest
	if !h.BindQuery(c, &req) {
		return nil, false
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	report, err := h.service.GetLowStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return report, true
}

func (h *ReportsHandler) movementReport(c *gin.Context) (*reports.MovementReport, bool) {
	var req dto.MovementReportRequest
	if !h.BindQuery(c, &req) {
		return nil, false
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	report, err := h.service.GetMovements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return report, true
}

func writeXLSXHeaders(c *gin.Context, name string) {
	fileName := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Header("Content-Type", reports.XLSXContentType)
	c.Status(http.StatusOK)
}
