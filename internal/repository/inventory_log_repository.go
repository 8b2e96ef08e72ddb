package repository

import (
	"context"
	"fmt"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// inventoryLogRepository implements InventoryLogRepository using PostgreSQL.
type inventoryLogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewInventoryLogRepository creates a new PostgreSQL-backed inventory log repository.
func NewInventoryLogRepository(pool *pgxpool.Pool, logger zerolog.Logger) InventoryLogRepository {
	return &inventoryLogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "inventory_log").Logger(),
	}
}

// Insert appends a log entry within the provided transaction.
func (r *inventoryLogRepository) Insert(ctx context.Context, tx pgx.Tx, log *model.InventoryLog) error {
	query := `
		INSERT INTO inventory_logs (
			id, entity_type, entity_id, size, change_type,
			quantity_before, quantity_change, quantity_after,
			reason, reference_id, reference_type, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		log.ID, log.EntityType, log.EntityID, log.Size, log.ChangeType,
		log.QuantityBefore, log.QuantityChange, log.QuantityAfter,
		log.Reason, log.ReferenceID, log.ReferenceType, log.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("entity_type", string(log.EntityType)).
			Str("entity_id", log.EntityID.String()).
			Str("change_type", string(log.ChangeType)).
			Msg("failed to insert inventory log")
		return fmt.Errorf("failed to insert inventory log: %w", translate(err))
	}

	return nil
}

// ListByEntity returns the newest entries for an entity first.
func (r *inventoryLogRepository) ListByEntity(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, limit int) ([]model.InventoryLog, error) {
	query := `
		SELECT id, entity_type, entity_id, size, change_type,
		       quantity_before, quantity_change, quantity_after,
		       reason, reference_id, reference_type, created_at
		FROM inventory_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, entityType, entityID, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("entity_id", entityID.String()).Msg("failed to query inventory logs")
		return nil, fmt.Errorf("failed to query inventory logs: %w", err)
	}
	defer rows.Close()

	logs := []model.InventoryLog{}
	for rows.Next() {
		var l model.InventoryLog
		err := rows.Scan(
			&l.ID, &l.EntityType, &l.EntityID, &l.Size, &l.ChangeType,
			&l.QuantityBefore, &l.QuantityChange, &l.QuantityAfter,
			&l.Reason, &l.ReferenceID, &l.ReferenceType, &l.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan inventory log row")
			return nil, fmt.Errorf("failed to scan inventory log: %w", err)
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating inventory log rows")
		return nil, fmt.Errorf("error iterating inventory logs: %w", err)
	}

	return logs, nil
}
