package handler

import (
	"context"
	"net/http"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/model"
	"calcio-stop/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	mirror  StoreMirror
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, mirror StoreMirror, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		mirror:  mirrorOrNop(mirror),
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders?archived=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	archived, err := queryBool(r, "archived")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	orders, err := h.service.List(r.Context(), archived)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Update handles PUT /api/orders/{id}.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.OrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Status handles POST /api/orders/{id}/status. Finishing an order without
// customer details answers 428 so the dashboard can ask for them and retry.
func (h *OrderHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, model.NewValidationError("status", "status is required"), h.logger)
		return
	}

	order, err := h.service.TransitionStatus(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Archive handles POST /api/orders/{id}/archive.
func (h *OrderHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, h.service.Archive, h.mirror.Archived)
}

// Unarchive handles POST /api/orders/{id}/unarchive.
func (h *OrderHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, h.service.Unarchive, h.mirror.Restored)
}

func (h *OrderHandler) setArchived(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, uuid.UUID) (*model.Order, error),
	mirror func(string, uuid.UUID),
) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := op(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	mirror(catalog.Orders, id)
	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.service.Delete, func(id uuid.UUID) { h.mirror.Removed(catalog.Orders, id) }, h.logger)
}
