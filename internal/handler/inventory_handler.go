package handler

import (
	"context"
	"net/http"
	"strconv"

	"calcio-stop/internal/model"
	"calcio-stop/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PageLoader loads and exposes the stores a dashboard page needs.
type PageLoader interface {
	Load(ctx context.Context, path string) (bool, error)
	Snapshots(path, search string) (map[string]any, error)
}

// PageData is the response of GET /api/page-data.
type PageData struct {
	Path   string         `json:"path"`
	Loaded bool           `json:"loaded"`
	Error  string         `json:"error,omitempty"`
	Stores map[string]any `json:"stores"`
}

// InventoryHandler serves the inventory log and page data.
type InventoryHandler struct {
	service service.InventoryService
	pages   PageLoader
	logger  zerolog.Logger
}

func NewInventoryHandler(service service.InventoryService, pages PageLoader, logger zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		pages:   pages,
		logger:  logger.With().Str("handler", "inventory").Logger(),
	}
}

// History handles GET /api/inventory-logs?entityType=&entityId=&limit=.
func (h *InventoryHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	entityType, err := model.ParseEntityType(q.Get("entityType"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	entityID, err := uuid.Parse(q.Get("entityId"))
	if err != nil {
		writeError(w, model.NewValidationError("entityId", "invalid ID format"), h.logger)
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, model.NewValidationError("limit", "limit must be a positive number"), h.logger)
			return
		}
	}

	logs, err := h.service.History(r.Context(), entityType, entityID, limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

// PageData handles GET /api/page-data?path=&search=. A failed store load is
// reported next to the snapshots, which carry each store's own error. search
// narrows the active lists, ignoring case and diacritics.
func (h *InventoryHandler) PageData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		writeError(w, model.NewValidationError("path", "path is required"), h.logger)
		return
	}

	loaded, loadErr := h.pages.Load(r.Context(), path)

	stores, err := h.pages.Snapshots(path, q.Get("search"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	resp := PageData{Path: path, Loaded: loaded, Stores: stores}
	if loadErr != nil {
		h.logger.Warn().Err(loadErr).Str("path", path).Msg("Page data incomplete")
		resp.Error = loadErr.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}
