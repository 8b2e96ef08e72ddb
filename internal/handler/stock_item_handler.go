package handler

import (
	"net/http"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/model"
	"calcio-stop/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StockItemHandler serves namesets or badges, depending on its service.
type StockItemHandler struct {
	service service.StockItemService
	store   string
	mirror  StoreMirror
	logger  zerolog.Logger
}

func NewStockItemHandler(service service.StockItemService, mirror StoreMirror, logger zerolog.Logger) *StockItemHandler {
	return &StockItemHandler{
		service: service,
		store:   catalog.StoreFor(string(service.Kind())),
		mirror:  mirrorOrNop(mirror),
		logger:  logger.With().Str("handler", string(service.Kind())).Logger(),
	}
}

func (h *StockItemHandler) List(w http.ResponseWriter, r *http.Request) {
	archived, err := queryBool(r, "archived")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	items, err := h.service.List(r.Context(), archived)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *StockItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *StockItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.StockItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *StockItemHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	h.changeStock(w, r, h.service.AdjustStock)
}

func (h *StockItemHandler) Restock(w http.ResponseWriter, r *http.Request) {
	h.changeStock(w, r, h.service.Restock)
}

func (h *StockItemHandler) changeStock(w http.ResponseWriter, r *http.Request, apply stockFunc) {
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

func (h *StockItemHandler) Archive(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Archive, func(id uuid.UUID) { h.mirror.Archived(h.store, id) }, h.logger)
}

func (h *StockItemHandler) Restore(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Restore, func(id uuid.UUID) { h.mirror.Restored(h.store, id) }, h.logger)
}

func (h *StockItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Delete, func(id uuid.UUID) { h.mirror.Removed(h.store, id) }, h.logger)
}

// CatalogHandler serves teams, kit types, leagues or sellers.
type CatalogHandler struct {
	service service.CatalogService
	store   string
	mirror  StoreMirror
	logger  zerolog.Logger
}

func NewCatalogHandler(service service.CatalogService, mirror StoreMirror, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		store:   catalog.StoreFor(string(service.Kind())),
		mirror:  mirrorOrNop(mirror),
		logger:  logger.With().Str("handler", string(service.Kind())).Logger(),
	}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	archived, err := queryBool(r, "archived")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	entities, err := h.service.List(r.Context(), archived)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entities)
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	entity, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, entity)
}

func (h *CatalogHandler) Archive(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Archive, func(id uuid.UUID) { h.mirror.Archived(h.store, id) }, h.logger)
}

func (h *CatalogHandler) Restore(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Restore, func(id uuid.UUID) { h.mirror.Restored(h.store, id) }, h.logger)
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Delete, func(id uuid.UUID) { h.mirror.Removed(h.store, id) }, h.logger)
}
