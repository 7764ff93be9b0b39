package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Lixing-Zhang/dilution-calc/internal/catalog"
	"github.com/Lixing-Zhang/dilution-calc/internal/metrics"
	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/Lixing-Zhang/dilution-calc/internal/repository"
)

var (
	ErrEmptyName             = errors.New("product name is required")
	ErrInvalidQuantity       = errors.New("quantity to add must be positive")
	ErrInvalidReferenceWater = errors.New("reference water must be positive")
	ErrInvalidUnit           = errors.New("unit is not supported")
)

// ProductService handles business logic for products
type ProductService struct {
	repo    repository.ProductRepository
	metrics *metrics.Metrics
}

// NewProductService creates a new product service.
// A nil m disables metrics.
func NewProductService(repo repository.ProductRepository, m *metrics.Metrics) *ProductService {
	if m == nil {
		m = metrics.Nop()
	}
	return &ProductService{
		repo:    repo,
		metrics: m,
	}
}

// ProductUpdate holds the editable fields of a product; nil fields are left unchanged.
// Units cannot be changed once a product exists.
type ProductUpdate struct {
	QuantityToAdd  *float64 `json:"quantity_to_add"`
	ReferenceWater *float64 `json:"reference_water"`
	Notes          *string  `json:"notes"`
}

// ImportResult summarizes a catalog import
type ImportResult struct {
	Added   int               `json:"added"`
	Updated int               `json:"updated"`
	Skipped map[string]string `json:"skipped,omitempty"`
}

// ListProducts returns all products sorted by name
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProduct returns a product by name
func (s *ProductService) GetProduct(ctx context.Context, name string) (*models.Product, error) {
	return s.repo.GetByName(ctx, strings.TrimSpace(name))
}

// AddProduct validates and stores a new product
func (s *ProductService) AddProduct(ctx context.Context, name string, record models.RatioRecord) (*models.Product, error) {
	name = strings.TrimSpace(name)
	record = normalize(record)
	if err := validate(name, record); err != nil {
		return nil, err
	}

	p := &models.Product{Name: name, RatioRecord: record}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.refreshCount(ctx)
	return p, nil
}

// UpdateProduct applies the non-nil fields of u to an existing product
func (s *ProductService) UpdateProduct(ctx context.Context, name string, u ProductUpdate) (*models.Product, error) {
	p, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	if u.QuantityToAdd != nil {
		p.QuantityToAdd = *u.QuantityToAdd
	}
	if u.ReferenceWater != nil {
		p.ReferenceWater = *u.ReferenceWater
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}

	if err := validate(p.Name, p.RatioRecord); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes a product by name
func (s *ProductService) DeleteProduct(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(name)); err != nil {
		return err
	}
	s.refreshCount(ctx)
	return nil
}

// ImportCatalog stores every valid record of c. Existing products are replaced
// only when overwrite is set; invalid records are skipped with the reason.
func (s *ProductService) ImportCatalog(ctx context.Context, c catalog.Catalog, overwrite bool) (*ImportResult, error) {
	result := &ImportResult{Skipped: make(map[string]string)}

	// Records stored before a failure stay stored, so they are counted either way
	defer func() {
		s.metrics.CatalogImports.WithLabelValues("added").Add(float64(result.Added))
		s.metrics.CatalogImports.WithLabelValues("updated").Add(float64(result.Updated))
		s.metrics.CatalogImports.WithLabelValues("skipped").Add(float64(len(result.Skipped)))
		s.refreshCount(ctx)
	}()

	for _, rawName := range c.Names() {
		record := normalize(c[rawName])
		name := strings.TrimSpace(rawName)

		if err := validate(name, record); err != nil {
			result.Skipped[rawName] = err.Error()
			continue
		}

		p := &models.Product{Name: name, RatioRecord: record}
		if overwrite {
			_, err := s.repo.GetByName(ctx, name)
			exists := err == nil
			if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
				return nil, fmt.Errorf("failed to import %s: %w", name, err)
			}
			if err := s.repo.Upsert(ctx, p); err != nil {
				return nil, fmt.Errorf("failed to import %s: %w", name, err)
			}
			if exists {
				result.Updated++
			} else {
				result.Added++
			}
			continue
		}

		err := s.repo.Create(ctx, p)
		switch {
		case err == nil:
			result.Added++
		case errors.Is(err, repository.ErrProductExists):
			result.Skipped[rawName] = err.Error()
		default:
			return nil, fmt.Errorf("failed to import %s: %w", name, err)
		}
	}

	if len(result.Skipped) == 0 {
		result.Skipped = nil
	}
	return result, nil
}

// ExportCatalog returns the whole catalog keyed by product name
func (s *ProductService) ExportCatalog(ctx context.Context) (catalog.Catalog, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FromProducts(products), nil
}

// refreshCount updates the catalog size gauge; failures only leave the gauge stale
func (s *ProductService) refreshCount(ctx context.Context) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return
	}
	s.metrics.CatalogProducts.Set(float64(len(products)))
}

// normalize lowercases unit symbols so "L" and "l" are the same unit
func normalize(r models.RatioRecord) models.RatioRecord {
	r.QuantityToAddUnit = models.Unit(strings.ToLower(strings.TrimSpace(string(r.QuantityToAddUnit))))
	r.ReferenceWaterUnit = models.Unit(strings.ToLower(strings.TrimSpace(string(r.ReferenceWaterUnit))))
	return r
}

func validate(name string, r models.RatioRecord) error {
	if name == "" {
		return ErrEmptyName
	}
	if !positive(r.QuantityToAdd) {
		return ErrInvalidQuantity
	}
	if !r.QuantityToAddUnit.IsProductUnit() {
		return fmt.Errorf("%w: quantity_to_add_unit %q", ErrInvalidUnit, r.QuantityToAddUnit)
	}
	if !positive(r.ReferenceWater) {
		return ErrInvalidReferenceWater
	}
	if !r.ReferenceWaterUnit.IsWaterUnit() {
		return fmt.Errorf("%w: reference_water_unit %q", ErrInvalidUnit, r.ReferenceWaterUnit)
	}
	return nil
}

// positive reports whether v is a finite number above zero
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
