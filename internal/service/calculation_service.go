package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/Lixing-Zhang/dilution-calc/internal/metrics"
	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/Lixing-Zhang/dilution-calc/internal/ratio"
	"github.com/Lixing-Zhang/dilution-calc/internal/repository"
)

var (
	ErrUnknownProduct   = errors.New("product is not in the catalog")
	ErrInvalidWaterUnit = errors.New("water unit must be l or ml")
	ErrInvalidWater     = errors.New("water amount must be a finite number")
)

// ProductLookup finds a product by name
type ProductLookup interface {
	GetByName(ctx context.Context, name string) (*models.Product, error)
}

// CalculationService computes dilutions for catalog products
type CalculationService struct {
	products ProductLookup
	metrics  *metrics.Metrics
}

// NewCalculationService creates a new calculation service.
// A nil m disables metrics.
func NewCalculationService(products ProductLookup, m *metrics.Metrics) *CalculationService {
	if m == nil {
		m = metrics.Nop()
	}
	return &CalculationService{
		products: products,
		metrics:  m,
	}
}

// Calculate returns how much of the requested product to add to the water amount.
// A water amount that is not positive yields the "0" result rather than an error;
// NaN and infinities are rejected.
func (s *CalculationService) Calculate(ctx context.Context, req models.CalculationRequest) (*models.Calculation, error) {
	if math.IsNaN(req.WaterAmount) || math.IsInf(req.WaterAmount, 0) {
		return nil, ErrInvalidWater
	}

	unit := models.Unit(strings.ToLower(strings.TrimSpace(string(req.WaterUnit))))
	if unit == "" {
		unit = models.UnitLiter
	}
	if !unit.IsWaterUnit() {
		return nil, ErrInvalidWaterUnit
	}

	product, err := s.products.GetByName(ctx, strings.TrimSpace(req.Product))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrUnknownProduct
		}
		return nil, err
	}

	result := ratio.Compute(&product.RatioRecord, req.WaterAmount, unit)

	label := "none"
	if _, u, ok := ratio.Quantity(&product.RatioRecord, req.WaterAmount, unit); ok {
		label = string(u)
	}
	s.metrics.Calculations.WithLabelValues(label).Inc()

	return &models.Calculation{
		Product:     product.Name,
		WaterAmount: req.WaterAmount,
		WaterUnit:   unit,
		Result:      result,
		Notes:       product.Notes,
	}, nil
}
