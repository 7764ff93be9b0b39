package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/dilution-calc/internal/config"
	"github.com/Lixing-Zhang/dilution-calc/internal/handlers"
	"github.com/Lixing-Zhang/dilution-calc/internal/metrics"
	"github.com/Lixing-Zhang/dilution-calc/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes groups what the router needs
type routes struct {
	cfg      *config.Config
	log      *slog.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	health      *handlers.HealthHandler
	products    *handlers.ProductHandler
	calculation *handlers.CalculationHandler
	catalog     *handlers.CatalogHandler
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(rt.log))
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.health.ServeHTTP)

	if rt.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, rt.cfg.Metrics.Path, promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))
	}

	auth := middleware.APIKeyAuth(rt.cfg.Auth, rt.log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/units", rt.catalog.Units)

		// Product endpoints
		r.Get("/product", rt.products.ListProducts)
		r.Get("/product/{name}", rt.products.GetProduct)
		r.Get("/product/{name}/calculate", rt.calculation.CalculateForProduct)

		// Calculation endpoints
		r.Post("/calculate", rt.calculation.Calculate)

		// Catalog endpoints
		r.Get("/catalog", rt.catalog.ExportJSON)
		r.Get("/catalog/xlsx", rt.catalog.ExportXLSX)
		r.Get("/catalog/sources", rt.catalog.Sources)

		// Catalog changes require an API key
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/product", rt.products.CreateProduct)
			r.Put("/product/{name}", rt.products.UpdateProduct)
			r.Delete("/product/{name}", rt.products.DeleteProduct)
			r.Post("/catalog", rt.catalog.ImportJSON)
			r.Post("/catalog/xlsx", rt.catalog.ImportXLSX)
		})
	})

	return r
}
