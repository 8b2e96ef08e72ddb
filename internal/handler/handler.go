package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StoreMirror applies a committed archive, restore or delete to the cached
// entity stores.
type StoreMirror interface {
	Archived(store string, id uuid.UUID)
	Restored(store string, id uuid.UUID)
	Removed(store string, id uuid.UUID)
}

type nopMirror struct{}

func (nopMirror) Archived(string, uuid.UUID) {}
func (nopMirror) Restored(string, uuid.UUID) {}
func (nopMirror) Removed(string, uuid.UUID)  {}

func mirrorOrNop(m StoreMirror) StoreMirror {
	if m == nil {
		return nopMirror{}
	}
	return m
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client.
		return
	}
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeInvalidJSON:
		return http.StatusBadRequest
	case model.ErrCodeCustomerInfoRequired:
		return http.StatusPreconditionRequired
	case model.ErrCodeInvalidTransition, model.ErrCodeNegativeStock, model.ErrCodeForeignKey,
		model.ErrCodeCannotDelete, model.ErrCodeOrderLocked:
		return http.StatusConflict
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError writes err as a standard error response. Domain errors keep
// their code and message; anything else is logged and reported as internal.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		status := statusFor(de.Code)
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
		writeJSON(w, status, model.ErrorResponse{
			Error:   de.Code,
			Message: de.Message,
			Field:   de.Field,
		})
		return
	}

	logger.Error().Err(err).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "An unexpected error occurred",
	})
}

// decodeJSON reads the request body into v. Enum values rejected while
// decoding are reported as validation errors.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var de *model.DomainError
		if errors.As(err, &de) {
			return de
		}
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Invalid request body")
	}
	return nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, model.NewValidationError("id", "invalid ID format")
	}
	return id, nil
}

// queryBool reads a boolean query parameter, defaulting to false.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, model.NewValidationError(name, "must be true or false")
	}
	return v, nil
}

type stockFunc func(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error)

// lifecycle runs an archive, restore or delete on {id}, mirrors it into the
// cached stores and answers 204.
func lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) error, mirror func(uuid.UUID), logger zerolog.Logger) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	if err := op(r.Context(), id); err != nil {
		writeError(w, err, logger)
		return
	}

	mirror(id)
	w.WriteHeader(http.StatusNoContent)
}
