package handler

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"calcio-stop/internal/model"
	"calcio-stop/internal/service"
	"calcio-stop/internal/storage"

	"github.com/rs/zerolog"
)

// maxImageBytes bounds a single uploaded variant.
const maxImageBytes = 5 << 20

// ImageHandler lists and uploads the image variants of one entity type.
type ImageHandler struct {
	service    service.ImageService
	entityType model.EntityType
	logger     zerolog.Logger
}

func NewImageHandler(service service.ImageService, entityType model.EntityType, logger zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		service:    service,
		entityType: entityType,
		logger:     logger.With().Str("handler", "image").Str("entity_type", string(entityType)).Logger(),
	}
}

// List handles GET /api/{entities}/{id}/images.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	images, err := h.service.URLs(r.Context(), h.entityType, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, images)
}

// Upload handles PUT /api/{entities}/{id}/images/{variant}. The body is the
// already resized WebP file.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	variant, err := model.ParseImageVariant(r.PathValue("variant"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct != storage.ImageContentType {
		writeError(w, model.NewValidationError("contentType", "images must be uploaded as "+storage.ImageContentType), h.logger)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, model.NewValidationError("body", "image is larger than 5 MiB"), h.logger)
			return
		}
		writeError(w, err, h.logger)
		return
	}
	if len(data) == 0 {
		writeError(w, model.NewValidationError("body", "image is empty"), h.logger)
		return
	}

	img, err := h.service.Upload(r.Context(), h.entityType, id, variant, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, img)
}
