// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockpro/internal/infrastructure/http/v1/handlers"
	"stockpro/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
	GetTree(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// This eliminates the need to manually wire up routes for each catalog.
//
// Usage:
//
//	repo := catalog_repo.NewCurrencyRepo(pool)
//	service := currency.NewService(repo, txManager, numerator)
//	handler := handlers.NewCurrencyHandler(baseHandler, service)
//	RegisterCatalogRoutes(catalogs.Group("/currencies"), handler, "catalog:currency")
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), handler.List)
	group.POST("", middleware.RequirePermission(permission+":create"), handler.Create)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(permission+":update"), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(permission+":delete"), handler.Delete)
	group.POST("/:id/deletion-mark", middleware.RequirePermission(permission+":delete"), handler.SetDeletionMark)
	group.GET("/tree", middleware.RequirePermission(permission+":read"), handler.GetTree)
}

// RegisterOperationRoutes registers the operation document routes.
func RegisterOperationRoutes(group *gin.RouterGroup, h *handlers.OperationHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), h.List)
	group.POST("", middleware.RequirePermission(permission+":create"), h.Create)
	group.POST("/import", middleware.RequirePermission(permission+":create"), h.Import)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), h.Get)
	group.PUT("/:id", middleware.RequirePermission(permission+":update"), h.Update)
	group.DELETE("/:id", middleware.RequirePermission(permission+":delete"), h.Delete)
	group.POST("/:id/finalize", middleware.RequirePermission(permission+":post"), h.Finalize)
	group.POST("/:id/reopen", middleware.RequirePermission(permission+":unpost"), h.Reopen)
	group.GET("/:id/preview", middleware.RequirePermission(permission+":read"), h.Preview)
	group.POST("/:id/edits", middleware.RequirePermission(permission+":update"), h.ApplyEdit)
}

// RegisterPurchaseOrderRoutes registers the purchase order routes.
func RegisterPurchaseOrderRoutes(group *gin.RouterGroup, h *handlers.PurchaseOrderHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), h.List)
	group.POST("", middleware.RequirePermission(permission+":create"), h.Create)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), h.Get)
	group.PUT("/:id", middleware.RequirePermission(permission+":update"), h.Update)
	group.DELETE("/:id", middleware.RequirePermission(permission+":delete"), h.Delete)
	group.POST("/:id/attach-xml", middleware.RequirePermission(permission+":update"), h.AttachXML)
	group.POST("/:id/finalize-attachments", middleware.RequirePermission(permission+":update"), h.FinalizeAttachments)
	group.POST("/:id/stock-entry", middleware.RequirePermission(permission+":post"), h.StockEntry)
	group.GET("/:id/attachments/:fileName", middleware.RequirePermission(permission+":read"), h.DownloadAttachment)
}

// RegisterSimulationRoutes registers the simulation routes.
func RegisterSimulationRoutes(group *gin.RouterGroup, h *handlers.SimulationHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), h.List)
	group.POST("", middleware.RequirePermission(permission+":create"), h.Save)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), h.Get)
	group.DELETE("/:id", middleware.RequirePermission(permission+":delete"), h.Delete)
	group.POST("/:id/promote", middleware.RequirePermission(permission+":post"), h.Promote)
}

// RegisterStockRoutes registers the stock register routes.
func RegisterStockRoutes(group *gin.RouterGroup, h *handlers.StockHandler, permission string) {
	read := middleware.RequirePermission(permission + ":read")
	group.GET("/balances", read, h.GetBalances)
	group.GET("/availability/:itemId", read, h.GetAvailability)
	group.GET("/movements", read, h.GetMovements)
	group.GET("/turnover", read, h.GetTurnover)
}

// RegisterReportRoutes registers the report routes.
func RegisterReportRoutes(group *gin.RouterGroup, h *handlers.ReportsHandler, permission string) {
	read := middleware.RequirePermission(permission + ":read")
	group.GET("/stock", read, h.GetStock)
	group.GET("/stock/xlsx", read, h.GetStockXLSX)
	group.GET("/low-stock", read, h.GetLowStock)
	group.GET("/low-stock/xlsx", read, h.GetLowStockXLSX)
	group.GET("/movements", read, h.GetMovements)
	group.GET("/movements/xlsx", read, h.GetMovementsXLSX)
}
