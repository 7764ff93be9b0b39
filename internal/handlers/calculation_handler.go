package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/Lixing-Zhang/dilution-calc/internal/service"
)

// CalculationHandler handles dilution calculation requests
type CalculationHandler struct {
	calcService *service.CalculationService
	log         *slog.Logger
}

// NewCalculationHandler creates a new calculation handler
func NewCalculationHandler(calcService *service.CalculationService, log *slog.Logger) *CalculationHandler {
	return &CalculationHandler{
		calcService: calcService,
		log:         log,
	}
}

// Calculate handles POST /api/calculate
func (h *CalculationHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req models.CalculationRequest

	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Warn("failed to decode calculation request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	h.calculate(w, r, req)
}

// CalculateForProduct handles GET /api/product/{name}/calculate?water=&unit=
func (h *CalculationHandler) CalculateForProduct(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil || name == "" {
		WriteError(w, http.StatusBadRequest, "Invalid product name", h.log)
		return
	}

	water, err := floatQuery(r, "water")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	h.calculate(w, r, models.CalculationRequest{
		Product:     name,
		WaterAmount: water,
		WaterUnit:   models.Unit(r.URL.Query().Get("unit")),
	})
}

func (h *CalculationHandler) calculate(w http.ResponseWriter, r *http.Request, req models.CalculationRequest) {
	calc, err := h.calcService.Calculate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownProduct):
			h.log.Info("calculation for unknown product", "product", req.Product)
			WriteError(w, http.StatusNotFound, "Product not found", h.log)
		case errors.Is(err, service.ErrInvalidWaterUnit):
			WriteError(w, http.StatusBadRequest, "Water unit must be l or ml", h.log)
		case errors.Is(err, service.ErrInvalidWater):
			WriteError(w, http.StatusBadRequest, "Water amount must be a finite number", h.log)
		default:
			h.log.Error("failed to calculate", "product", req.Product, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	h.log.Debug("calculation", "product", calc.Product, "water", calc.WaterAmount, "unit", calc.WaterUnit, "result", calc.Result)
	WriteJSON(w, http.StatusOK, calc, h.log)
}
