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

// SaleHandler handles sales, returns and reservations.
type SaleHandler struct {
	sales        service.SaleService
	returns      service.ReturnService
	reservations service.ReservationService
	mirror       StoreMirror
	logger       zerolog.Logger
}

func NewSaleHandler(
	sales service.SaleService,
	returns service.ReturnService,
	reservations service.ReservationService,
	mirror StoreMirror,
	logger zerolog.Logger,
) *SaleHandler {
	return &SaleHandler{
		sales:        sales,
		returns:      returns,
		reservations: reservations,
		mirror:       mirrorOrNop(mirror),
		logger:       logger.With().Str("handler", "sale").Logger(),
	}
}

// List handles GET /api/sales?archived=.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	archived, err := queryBool(r, "archived")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	sales, err := h.sales.List(r.Context(), archived)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sales)
}

// GetByID handles GET /api/sales/{id}.
func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	sale, err := h.sales.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sale)
}

// Create handles POST /api/sales.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	sale, err := h.sales.CreateSale(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, sale)
}

// Update handles PUT /api/sales/{id}.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	sale, err := h.sales.UpdateSale(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sale)
}

// Delete handles DELETE /api/sales/{id}.
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.sales.DeleteSale, func(id uuid.UUID) { h.mirror.Removed(catalog.Sales, id) }, h.logger)
}

// ListReturns handles GET /api/returns.
func (h *SaleHandler) ListReturns(w http.ResponseWriter, r *http.Request) {
	returns, err := h.returns.List(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, returns)
}

// CreateReturn handles POST /api/returns.
func (h *SaleHandler) CreateReturn(w http.ResponseWriter, r *http.Request) {
	var req model.ReturnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	ret, err := h.returns.CreateReturn(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, ret)
}

// DeleteReturn handles DELETE /api/returns/{id}.
func (h *SaleHandler) DeleteReturn(w http.ResponseWriter, r *http.Request) {
	lifecycle(w, r, h.returns.DeleteReturn, func(uuid.UUID) {}, h.logger)
}

// ListReservations handles GET /api/reservations?status=.
func (h *SaleHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	status := model.ReservationStatus(r.URL.Query().Get("status"))
	switch status {
	case "", model.ReservationActive, model.ReservationFulfilled, model.ReservationCancelled:
	default:
		writeError(w, model.NewValidationError("status", "unknown reservation status"), h.logger)
		return
	}

	reservations, err := h.reservations.List(r.Context(), status)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, reservations)
}

// CreateReservation handles POST /api/reservations.
func (h *SaleHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req model.ReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	res, err := h.reservations.CreateReservation(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// CancelReservation handles POST /api/reservations/{id}/cancel.
func (h *SaleHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.closeReservation(w, r, h.reservations.CancelReservation)
}

// FulfillReservation handles POST /api/reservations/{id}/fulfill.
func (h *SaleHandler) FulfillReservation(w http.ResponseWriter, r *http.Request) {
	h.closeReservation(w, r, h.reservations.FulfillReservation)
}

func (h *SaleHandler) closeReservation(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) (*model.Reservation, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	res, err := op(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
