package imagecache

import (
	"context"
	"fmt"

	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Key is the cache key of an entity's images.
func Key(entityType model.EntityType, entityID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", entityType, entityID)
}

// Resolver reads image URLs through the cache.
type Resolver struct {
	repo   repository.ImageRepository
	cache  Cache
	logger zerolog.Logger
}

// NewResolver creates a read-through resolver over repo.
func NewResolver(repo repository.ImageRepository, cache Cache, logger zerolog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		cache:  cache,
		logger: logger.With().Str("component", "image_resolver").Logger(),
	}
}

// Images returns the stored variants of an entity. A failing cache is
// bypassed rather than failing the request.
func (r *Resolver) Images(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error) {
	key := Key(entityType, entityID)

	images, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("image cache read failed")
	} else if ok {
		return images, nil
	}

	images, err = r.repo.List(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, images); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("image cache write failed")
	}
	return images, nil
}

// Invalidate drops the cached images of an entity.
func (r *Resolver) Invalidate(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) error {
	return r.cache.Invalidate(ctx, Key(entityType, entityID))
}
