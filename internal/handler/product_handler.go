package handler

import (
	"net/http"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/model"
	"calcio-stop/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	mirror  StoreMirror
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, mirror StoreMirror, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		mirror:  mirrorOrNop(mirror),
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products?archived=.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	archived, err := queryBool(r, "archived")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	products, err := h.service.GetAll(r.Context(), archived)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// AdjustStock handles POST /api/products/{id}/stock.
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	h.changeStock(w, r, h.service.AdjustStock)
}

// Restock handles POST /api/products/{id}/restock.
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	h.changeStock(w, r, h.service.Restock)
}

func (h *ProductHandler) changeStock(w http.ResponseWriter, r *http.Request, apply stockFunc) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.StockAdjustmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	log, err := apply(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, log)
}

// Archive handles POST /api/products/{id}/archive.
func (h *ProductHandler) Archive(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Archive, func(id uuid.UUID) { h.mirror.Archived(catalog.Products, id) }, h.logger)
}

// Restore handles POST /api/products/{id}/restore.
func (h *ProductHandler) Restore(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Restore, func(id uuid.UUID) { h.mirror.Restored(catalog.Products, id) }, h.logger)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Delete, func(id uuid.UUID) { h.mirror.Removed(catalog.Products, id) }, h.logger)
}
