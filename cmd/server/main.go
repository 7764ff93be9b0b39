package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/dilution-calc/internal/catalog"
	"github.com/Lixing-Zhang/dilution-calc/internal/config"
	"github.com/Lixing-Zhang/dilution-calc/internal/handlers"
	"github.com/Lixing-Zhang/dilution-calc/internal/metrics"
	"github.com/Lixing-Zhang/dilution-calc/internal/repository"
	"github.com/Lixing-Zhang/dilution-calc/internal/service"
	"github.com/Lixing-Zhang/dilution-calc/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration from defaults, files and environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting dilution calculator api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.LogLevel,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx := context.Background()

	// Initialize repositories
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open product storage", "error", err)
		os.Exit(1)
	}
	defer store.close()
	productRepo := store.repo

	// Initialize services
	productService := service.NewProductService(productRepo, m)
	calcService := service.NewCalculationService(productRepo, m)

	// Import seed catalogs
	loader := catalog.NewLoader()
	if err := seedCatalog(ctx, cfg.Catalog, loader, productService, log); err != nil {
		log.Error("failed to load seed catalog", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	router := newRouter(routes{
		cfg:         cfg,
		log:         log,
		metrics:     m,
		gatherer:    reg,
		health:      handlers.NewHealthHandler(log, store.db),
		products:    handlers.NewProductHandler(productService, log),
		calculation: handlers.NewCalculationHandler(calcService, log),
		catalog:     handlers.NewCatalogHandler(productService, loader, log),
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped gracefully")
}

// storage is the product repository for the configured driver
type storage struct {
	repo  repository.ProductRepository
	db    handlers.Pinger // nil for in-memory storage
	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := repository.OpenPostgres(ctx, cfg.Storage.DatabaseURL, cfg.Storage.ConnectRetries, log)
		if err != nil {
			return nil, err
		}
		return &storage{
			repo:  repository.NewPostgresProductRepository(pool),
			db:    pool,
			close: pool.Close,
		}, nil
	default:
		return &storage{
			repo:  repository.NewInMemoryProductRepository(),
			close: func() {},
		}, nil
	}
}

// seedCatalog imports the configured seed files, then the seed URLs.
// Later sources win when names collide.
func seedCatalog(ctx context.Context, cfg config.CatalogConfig, loader *catalog.Loader, svc *service.ProductService, log *slog.Logger) error {
	if len(cfg.SeedFiles) == 0 && len(cfg.SeedURLs) == 0 {
		return nil
	}

	log.Info("loading seed catalogs...", "files", len(cfg.SeedFiles), "urls", len(cfg.SeedURLs))

	merged := make(catalog.Catalog)
	if len(cfg.SeedFiles) > 0 {
		c, err := loader.LoadFromFiles(ctx, cfg.SeedFiles)
		if err != nil {
			return err
		}
		merged.Merge(c)
	}
	if len(cfg.SeedURLs) > 0 {
		c, err := loader.LoadFromURLs(ctx, cfg.SeedURLs)
		if err != nil {
			return err
		}
		merged.Merge(c)
	}

	result, err := svc.ImportCatalog(ctx, merged, cfg.SeedOverwrite)
	if err != nil {
		return err
	}

	for name, reason := range result.Skipped {
		log.Warn("seed product skipped", "product", name, "reason", reason)
	}

	stats := loader.Stats()
	log.Info("seed catalogs loaded",
		"total_sources", stats["total_sources"],
		"total_records", stats["total_records"],
		"added", result.Added,
		"updated", result.Updated,
		"skipped", len(result.Skipped),
	)
	return nil
}
