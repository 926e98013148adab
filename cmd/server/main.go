// Package main is the entry point for the StockPro API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stockpro/internal/config"
	"stockpro/internal/core/rule"
	"stockpro/internal/domain/auth"
	"stockpro/internal/infrastructure/cache"
	"stockpro/internal/infrastructure/extraction"
	v1 "stockpro/internal/infrastructure/http/v1"
	"stockpro/internal/infrastructure/objstore"
	"stockpro/internal/infrastructure/storage/postgres"
	"stockpro/internal/infrastructure/storage/postgres/auth_repo"
	"stockpro/pkg/logger"
	"stockpro/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockpro server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.URL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.Auth.JWTSecret))
	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewRoleRepo(txManager),
		auth_repo.NewPermissionRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Document numbering ---
	numeratorService := numerator.New(pool)

	// --- User-defined validation rules ---
	var itemRules, supplierRules *rule.Engine
	if len(cfg.Rules.Items) > 0 {
		itemRules, err = rule.NewEngine(cfg.Rules.Items)
		if err != nil {
			log.Fatalw("failed to compile item rules", "error", err)
		}
		log.Infow("item validation rules loaded", "count", len(cfg.Rules.Items))
	}
	if len(cfg.Rules.Suppliers) > 0 {
		supplierRules, err = rule.NewEngine(cfg.Rules.Suppliers)
		if err != nil {
			log.Fatalw("failed to compile supplier rules", "error", err)
		}
		log.Infow("supplier validation rules loaded", "count", len(cfg.Rules.Suppliers))
	}

	// --- Exchange rate cache ---
	// The cache is an optimization. When Redis is unreachable rates are
	// served straight from the database.
	var rateCache *cache.RateCache
	if rc, err := cache.NewRateCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PTAXTTL); err != nil {
		log.Warnw("exchange rate cache unavailable, rates will be read from the database", "error", err)
	} else {
		rateCache = rc
		defer rateCache.Close()
	}

	// --- Object storage for attachments ---
	var files *objstore.Store
	if cfg.Minio.AccessKey != "" {
		files, err = objstore.New(ctx, objstore.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			log.Fatalw("failed to initialize object storage", "error", err)
		}
	} else {
		log.Warn("object storage not configured, attached files will not be persisted")
	}

	// --- Extraction backend ---
	var extractor *extraction.Client
	if cfg.Extraction.URL != "" {
		extractor = extraction.NewClient(extraction.Config{
			URL:          cfg.Extraction.URL,
			SharedSecret: cfg.Extraction.SharedSecret,
			Timeout:      cfg.Extraction.Timeout,
		})
	} else {
		log.Warn("extraction backend not configured, fiscal note import is disabled")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:      pool,
		TxManager: txManager,
		Logger:    log,

		JWTValidator: jwtService,
		AuthService:  authService,

		Numerator: numeratorService,

		RateCache: rateCache,
		Extractor: extractor,
		Files:     files,

		ItemRules:     itemRules,
		SupplierRules: supplierRules,

		IdempotencyEnabled: cfg.Server.IdempotencyEnabled,
		IdempotencyTTL:     cfg.Server.IdempotencyTTL,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
