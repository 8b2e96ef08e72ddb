package service

import (
	"context"
	"fmt"
	"io"

	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"
	"calcio-stop/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ObjectStore uploads objects and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// ImageResolver reads cached image lists and drops them.
type ImageResolver interface {
	ImageInvalidator
	Images(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error)
}

// imageService implements ImageService.
type imageService struct {
	store    ObjectStore
	repo     repository.ImageRepository
	resolver ImageResolver
	logger   zerolog.Logger
}

// NewImageService creates an image service. store may be nil when no bucket
// is configured, in which case uploads are refused.
func NewImageService(store ObjectStore, repo repository.ImageRepository, resolver ImageResolver, logger zerolog.Logger) ImageService {
	return &imageService{
		store:    store,
		repo:     repo,
		resolver: resolver,
		logger:   logger.With().Str("service", "image").Logger(),
	}
}

func (s *imageService) URLs(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error) {
	if _, err := model.ParseEntityType(string(entityType)); err != nil {
		return nil, err
	}
	images, err := s.resolver.Images(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get images: %w", err)
	}
	return images, nil
}

// Upload stores one variant and records its URL. The variants are resized
// by the client; the body is stored as received.
func (s *imageService) Upload(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, variant model.ImageVariant, body io.Reader, size int64) (*model.Image, error) {
	if s.store == nil {
		return nil, model.NewValidationError("storage", "image storage is not configured")
	}
	if _, err := model.ParseEntityType(string(entityType)); err != nil {
		return nil, err
	}
	if _, err := model.ParseImageVariant(string(variant)); err != nil {
		return nil, err
	}

	key := storage.ImageKey(entityType, entityID, variant)
	url, err := s.store.Put(ctx, key, storage.ImageContentType, body, size)
	if err != nil {
		return nil, err
	}

	image := model.Image{EntityID: entityID, Variant: variant, URL: url}
	if err := s.repo.Upsert(ctx, entityType, image); err != nil {
		return nil, err
	}

	if err := s.resolver.Invalidate(ctx, entityType, entityID); err != nil {
		s.logger.Warn().Err(err).Str("entity_id", entityID.String()).Msg("failed to invalidate cached images")
	}

	s.logger.Info().
		Str("entity_type", string(entityType)).
		Str("entity_id", entityID.String()).
		Str("variant", string(variant)).
		Msg("image stored")

	return &image, nil
}
