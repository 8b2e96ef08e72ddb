package repository

import (
	"context"
	"fmt"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var imageTables = map[model.EntityType]string{
	model.EntityProduct: "product_images",
	model.EntityNameset: "nameset_images",
	model.EntityBadge:   "badge_images",
}

// imageRepository implements ImageRepository using PostgreSQL.
type imageRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewImageRepository creates a new PostgreSQL-backed image repository.
func NewImageRepository(pool *pgxpool.Pool, logger zerolog.Logger) ImageRepository {
	return &imageRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "image").Logger(),
	}
}

func imageTable(entityType model.EntityType) (string, error) {
	table, ok := imageTables[entityType]
	if !ok {
		return "", model.NewValidationError("entityType", fmt.Sprintf("unknown entity type %q", entityType))
	}
	return table, nil
}

// List returns the stored variants for an entity ordered thumbnail, medium, large.
func (r *imageRepository) List(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error) {
	table, err := imageTable(entityType)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT entity_id, variant, url
		FROM %s
		WHERE entity_id = $1
		ORDER BY CASE variant WHEN 'thumbnail' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END
	`, table), entityID)
	if err != nil {
		r.logger.Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to query images")
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	images := []model.Image{}
	for rows.Next() {
		var img model.Image
		if err := rows.Scan(&img.EntityID, &img.Variant, &img.URL); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

// Upsert records the URL of a variant, replacing any previous upload.
func (r *imageRepository) Upsert(ctx context.Context, entityType model.EntityType, img model.Image) error {
	table, err := imageTable(entityType)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (entity_id, variant, url, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (entity_id, variant) DO UPDATE SET url = EXCLUDED.url, updated_at = NOW()
	`, table), img.EntityID, img.Variant, img.URL)
	if err != nil {
		r.logger.Error().Err(err).Str("entity_id", img.EntityID.String()).Msg("failed to store image")
		return fmt.Errorf("failed to store image: %w", translate(err))
	}
	return nil
}
