package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/Lixing-Zhang/dilution-calc/internal/repository"
	"github.com/Lixing-Zhang/dilution-calc/internal/service"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// createProductRequest is the body of POST /api/product
type createProductRequest struct {
	Name string `json:"name"`
	models.RatioRecord
}

// ListProducts handles GET /api/product
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /api/product/{name}
// - 200: successful operation
// - 400: invalid name
// - 404: product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil || name == "" {
		WriteError(w, http.StatusBadRequest, "Invalid product name", h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), name)
	if err != nil {
		h.writeServiceError(w, "failed to get product", name, err)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// CreateProduct handles POST /api/product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode product request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.AddProduct(r.Context(), req.Name, req.RatioRecord)
	if err != nil {
		h.writeServiceError(w, "failed to create product", req.Name, err)
		return
	}

	h.logger.Info("product created", "product", product.Name, "id", product.ID)
	WriteJSON(w, http.StatusCreated, product, h.logger)
}

// UpdateProduct handles PUT /api/product/{name}.
// Only quantity_to_add, reference_water and notes can be changed.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil || name == "" {
		WriteError(w, http.StatusBadRequest, "Invalid product name", h.logger)
		return
	}

	var update service.ProductUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		h.logger.Warn("failed to decode product update", "product", name, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), name, update)
	if err != nil {
		h.writeServiceError(w, "failed to update product", name, err)
		return
	}

	h.logger.Info("product updated", "product", product.Name)
	WriteJSON(w, http.StatusOK, product, h.logger)
}

// DeleteProduct handles DELETE /api/product/{name}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil || name == "" {
		WriteError(w, http.StatusBadRequest, "Invalid product name", h.logger)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), name); err != nil {
		h.writeServiceError(w, "failed to delete product", name, err)
		return
	}

	h.logger.Info("product deleted", "product", name)
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps product service errors to HTTP responses
func (h *ProductHandler) writeServiceError(w http.ResponseWriter, msg, name string, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		h.logger.Info("product not found", "product", name)
		WriteError(w, http.StatusNotFound, "Product not found", h.logger)
	case errors.Is(err, repository.ErrProductExists):
		WriteError(w, http.StatusConflict, "Product already exists", h.logger)
	case errors.Is(err, service.ErrEmptyName),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidReferenceWater),
		errors.Is(err, service.ErrInvalidUnit):
		h.logger.Warn(msg, "product", name, "error", err)
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error(msg, "product", name, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}
