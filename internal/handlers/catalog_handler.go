package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/dilution-calc/internal/catalog"
	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/Lixing-Zhang/dilution-calc/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sourceStats reports what the seed loader imported at startup
type sourceStats interface {
	Stats() map[string]interface{}
}

// CatalogHandler handles whole-catalog export and import
type CatalogHandler struct {
	service *service.ProductService
	sources sourceStats
	log     *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler. sources may be nil.
func NewCatalogHandler(service *service.ProductService, sources sourceStats, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		sources: sources,
		log:     log,
	}
}

// Units handles GET /api/units
func (h *CatalogHandler) Units(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"product": models.UnitOptions(models.ProductUnits),
		"water":   models.UnitOptions(models.WaterUnits),
	}, h.log)
}

// ExportJSON handles GET /api/catalog
func (h *CatalogHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.ExportCatalog(r.Context())
	if err != nil {
		h.log.Error("failed to export catalog", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, c, h.log)
}

// ImportJSON handles POST /api/catalog?overwrite=
func (h *CatalogHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	overwrite, err := boolQuery(r, "overwrite")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	c, err := catalog.Decode(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.log.Warn("failed to decode catalog", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid catalog", h.log)
		return
	}

	h.importCatalog(w, r, c, overwrite)
}

// ExportXLSX handles GET /api/catalog/xlsx
func (h *CatalogHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.log.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	var buf bytes.Buffer
	if err := catalog.WriteXLSX(&buf, products); err != nil {
		h.log.Error("failed to write spreadsheet", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Error("failed to send spreadsheet", "error", err)
	}
}

// ImportXLSX handles POST /api/catalog/xlsx?overwrite=.
// The spreadsheet is the raw body or the "file" field of a multipart form.
func (h *CatalogHandler) ImportXLSX(w http.ResponseWriter, r *http.Request) {
	overwrite, err := boolQuery(r, "overwrite")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	body, err := uploadBody(w, r)
	if err != nil {
		h.log.Warn("failed to read upload", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid upload", h.log)
		return
	}
	defer body.Close()

	c, err := catalog.ReadXLSX(body)
	if err != nil {
		h.log.Warn("failed to read spreadsheet", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid spreadsheet", h.log)
		return
	}

	h.importCatalog(w, r, c, overwrite)
}

// Sources handles GET /api/catalog/sources (for debugging/monitoring)
func (h *CatalogHandler) Sources(w http.ResponseWriter, r *http.Request) {
	if h.sources == nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"total_sources": 0}, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, h.sources.Stats(), h.log)
}

func (h *CatalogHandler) importCatalog(w http.ResponseWriter, r *http.Request, c catalog.Catalog, overwrite bool) {
	result, err := h.service.ImportCatalog(r.Context(), c, overwrite)
	if err != nil {
		h.log.Error("failed to import catalog", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	h.log.Info("catalog imported",
		"added", result.Added,
		"updated", result.Updated,
		"skipped", len(result.Skipped),
		"overwrite", overwrite,
	)
	WriteJSON(w, http.StatusOK, result, h.log)
}
