// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/rule"
	"stockpro/internal/domain"
	"stockpro/internal/domain/auth"
	"stockpro/internal/domain/backup"
	"stockpro/internal/domain/catalogs/currency"
	"stockpro/internal/domain/catalogs/item"
	"stockpro/internal/domain/catalogs/organization"
	"stockpro/internal/domain/catalogs/supplier"
	"stockpro/internal/domain/catalogs/unit"
	"stockpro/internal/domain/documents/operation"
	"stockpro/internal/domain/documents/purchaseorder"
	"stockpro/internal/domain/documents/simulation"
	"stockpro/internal/domain/posting"
	"stockpro/internal/domain/registers/stock"
	"stockpro/internal/domain/reports"
	"stockpro/internal/infrastructure/cache"
	"stockpro/internal/infrastructure/extraction"
	"stockpro/internal/infrastructure/http/v1/handlers"
	"stockpro/internal/infrastructure/http/v1/middleware"
	"stockpro/internal/infrastructure/objstore"
	"stockpro/internal/infrastructure/storage/postgres"
	"stockpro/internal/infrastructure/storage/postgres/backup_repo"
	"stockpro/internal/infrastructure/storage/postgres/catalog_repo"
	"stockpro/internal/infrastructure/storage/postgres/document_repo"
	"stockpro/internal/infrastructure/storage/postgres/register_repo"
	"stockpro/internal/infrastructure/storage/postgres/report_repo"
	"stockpro/pkg/logger"
	"stockpro/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Logger    *logger.Logger

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	Numerator *numerator.Service

	// Optional integrations. A nil field disables the endpoints that
	// depend on it; the rest of the API is unaffected.
	RateCache *cache.RateCache
	Extractor *extraction.Client
	Files     *objstore.Store

	// User-defined validation rules, attached as before-write hooks on
	// the corresponding catalog services.
	ItemRules     *rule.Engine
	SupplierRules *rule.Engine

	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration
}

// routerServices is the service graph shared by the route groups.
type routerServices struct {
	items         *item.Service
	suppliers     *supplier.Service
	currencies    *currency.Service
	organizations *organization.Service
	units         *unit.Service

	stock          *stock.Service
	operations     *operation.Service
	purchaseOrders *purchaseorder.Service
	simulations    *simulation.Service

	reports *reports.Service
	backup  *backup.Service
}

// NewRouter creates and configures the main HTTP router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health checks are not authenticated and not versioned.
	health := router.Group("/health")
	{
		healthHandler := handlers.NewHealthHandler(cfg.Pool)
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")

	registerAuthRoutes(v1, cfg)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.Use(middleware.UserContext())

	if cfg.IdempotencyEnabled {
		ttl := cfg.IdempotencyTTL
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, ttl)
		protected.Use(middleware.Idempotency(store))
	}

	svc := buildServices(cfg)

	registerCatalogRoutes(protected, cfg, svc)
	registerDocumentRoutes(protected, cfg, svc)
	registerRegisterRoutes(protected, svc)
	registerReportRoutes(protected, svc)
	registerBackupRoutes(protected, svc)

	return router
}

// buildServices wires repositories and domain services over the shared
// pool. Handlers receive services, never repositories.
func buildServices(cfg RouterConfig) *routerServices {
	txm := cfg.TxManager

	items := item.NewService(catalog_repo.NewItemRepo(txm), txm, cfg.Numerator)
	suppliers := supplier.NewService(catalog_repo.NewSupplierRepo(txm), txm, cfg.Numerator)
	currencies := currency.NewService(catalog_repo.NewCurrencyRepo(txm), txm, cfg.Numerator)
	organizations := organization.NewService(catalog_repo.NewOrganizationRepo(txm), txm, cfg.Numerator)
	units := unit.NewService(catalog_repo.NewUnitRepo(txm), txm, cfg.Numerator)

	attachRules(items.Hooks(), cfg.ItemRules)
	attachRules(suppliers.Hooks(), cfg.SupplierRules)

	stockService := stock.NewService(register_repo.NewStockRepo(txm))
	postingEngine := posting.NewEngine(stockService, txm, true)

	operations := operation.NewService(
		document_repo.NewOperationRepo(txm),
		items,
		suppliers,
		postingEngine,
		cfg.Numerator,
		txm,
	)

	var attachments purchaseorder.AttachmentStore
	if cfg.Files != nil {
		attachments = cfg.Files
	}
	purchaseOrders := purchaseorder.NewService(
		document_repo.NewPurchaseOrderRepo(txm),
		suppliers,
		operations,
		cfg.Numerator,
		txm,
		attachments,
	)

	simulations := simulation.NewService(
		document_repo.NewSimulationRepo(txm),
		purchaseOrders,
		cfg.Numerator,
		txm,
	)

	return &routerServices{
		items:          items,
		suppliers:      suppliers,
		currencies:     currencies,
		organizations:  organizations,
		units:          units,
		stock:          stockService,
		operations:     operations,
		purchaseOrders: purchaseOrders,
		simulations:    simulations,
		reports:        reports.NewService(report_repo.NewReportRepo(txm)),
		backup:         backup.NewService(backup_repo.NewBackupRepo(txm), txm),
	}
}

// attachRules registers a rule engine on a catalog service's create and
// update hooks. A nil engine means no rules were configured.
func attachRules[T any](hooks *domain.HookRegistry[T], engine *rule.Engine) {
	if engine == nil {
		return
	}
	validate := func(ctx context.Context, e T) error {
		return engine.Validate(ctx, e)
	}
	hooks.OnBeforeCreate(validate)
	hooks.OnBeforeUpdate(validate)
}

// registerAuthRoutes sets up authentication endpoints.
func registerAuthRoutes(v1 *gin.RouterGroup, cfg RouterConfig) {
	base := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)

	public := v1.Group("/auth")

	protected := v1.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.Use(middleware.UserContext())

	authHandler.RegisterRoutes(public, protected)
}

// registerCatalogRoutes sets up CRUD and lookup endpoints for catalogs.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, svc *routerServices) {
	base := handlers.NewBaseHandler()
	catalogs := rg.Group("/catalog")

	// Items
	{
		handler := handlers.NewItemHandler(base, svc.items)
		g := catalogs.Group("/items")
		RegisterCatalogRoutes(g, handler, "catalog:item")

		lookup := handlers.NewItemLookupHandler(base, svc.items)
		read := middleware.RequirePermission("catalog:item:read")
		g.GET("/lookup", read, lookup.Lookup)
		g.GET("/low-stock", read, lookup.LowStock)
	}

	// Suppliers
	{
		handler := handlers.NewSupplierHandler(base, svc.suppliers)
		g := catalogs.Group("/suppliers")
		RegisterCatalogRoutes(g, handler, "catalog:supplier")

		lookup := handlers.NewSupplierLookupHandler(base, svc.suppliers)
		g.GET("/by-cnpj/:cnpj", middleware.RequirePermission("catalog:supplier:read"), lookup.FindByCNPJ)
	}

	// Currencies and exchange rates
	{
		handler := handlers.NewCurrencyHandler(base, svc.currencies)
		g := catalogs.Group("/currencies")
		RegisterCatalogRoutes(g, handler, "catalog:currency")

		rates := handlers.NewCurrencyRateHandler(base, svc.currencies, cfg.RateCache)
		g.GET("/rates/:isoCode", middleware.RequirePermission("catalog:currency:read"), rates.GetRate)
		g.PUT("/rates/:isoCode", middleware.RequirePermission("catalog:currency:update"), rates.UpdateRate)
	}

	// Organizations
	{
		handler := handlers.NewOrganizationHandler(base, svc.organizations)
		RegisterCatalogRoutes(catalogs.Group("/organizations"), handler, "catalog:organization")
	}

	// Units of measure
	{
		handler := handlers.NewUnitHandler(base, svc.units)
		g := catalogs.Group("/units")
		RegisterCatalogRoutes(g, handler, "catalog:unit")

		lookup := handlers.NewUnitLookupHandler(base, svc.units)
		g.GET("/by-symbol/:symbol", middleware.RequirePermission("catalog:unit:read"), lookup.FindBySymbol)
	}
}

// registerDocumentRoutes sets up endpoints for operations, purchase
// orders and simulations.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig, svc *routerServices) {
	base := handlers.NewBaseHandler()
	documents := rg.Group("/document")

	snapshots := handlers.NewSnapshotResolver(svc.items)

	// Operations
	{
		h := handlers.NewOperationHandler(base, svc.operations, svc.organizations, cfg.Extractor, snapshots)
		RegisterOperationRoutes(documents.Group("/operations"), h, "document:operation")
	}

	// Purchase orders
	{
		h := handlers.NewPurchaseOrderHandler(base, svc.purchaseOrders, svc.organizations, cfg.Extractor, cfg.Files, snapshots)
		RegisterPurchaseOrderRoutes(documents.Group("/purchase-orders"), h, "document:purchase_order")
	}

	// Simulations
	{
		h := handlers.NewSimulationHandler(base, svc.simulations, svc.organizations, snapshots)
		RegisterSimulationRoutes(documents.Group("/simulations"), h, "document:simulation")
	}
}

// registerRegisterRoutes sets up read endpoints over the stock ledger.
func registerRegisterRoutes(rg *gin.RouterGroup, svc *routerServices) {
	base := handlers.NewBaseHandler()
	registers := rg.Group("/registers")

	h := handlers.NewStockHandler(base, svc.stock)
	RegisterStockRoutes(registers.Group("/stock"), h, "register:stock")
}

// registerReportRoutes sets up reporting endpoints.
func registerReportRoutes(rg *gin.RouterGroup, svc *routerServices) {
	base := handlers.NewBaseHandler()

	h := handlers.NewReportsHandler(base, svc.reports)
	RegisterReportRoutes(rg.Group("/reports"), h, "report")
}

// registerBackupRoutes sets up the backup export and restore endpoints.
func registerBackupRoutes(rg *gin.RouterGroup, svc *routerServices) {
	base := handlers.NewBaseHandler()

	h := handlers.NewBackupHandler(base, svc.backup)
	h.RegisterRoutes(rg.Group("/backup"))
}
