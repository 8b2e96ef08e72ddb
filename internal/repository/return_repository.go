package repository

import (
	"context"
	"errors"
	"fmt"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// returnRepository implements the ReturnRepository interface using PostgreSQL.
type returnRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReturnRepository creates a new PostgreSQL-backed return repository.
func NewReturnRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReturnRepository {
	return &returnRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "return").Logger(),
	}
}

func (r *returnRepository) Create(ctx context.Context, tx pgx.Tx, ret *model.Return) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO returns (id, sale_id, reason, created_at)
		VALUES ($1, $2, $3, $4)
	`, ret.ID, ret.SaleID, ret.Reason, ret.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("return_id", ret.ID.String()).Msg("failed to create return")
		return fmt.Errorf("failed to create return: %w", translate(err))
	}

	batch := &pgx.Batch{}
	for _, item := range ret.Items {
		batch.Queue(`
			INSERT INTO return_items (id, return_id, product_id, size, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, ret.ID, item.ProductID, item.Size, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range ret.Items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("return_id", ret.ID.String()).Msg("failed to create return item")
			return fmt.Errorf("failed to create return item: %w", translate(err))
		}
	}

	return nil
}

func (r *returnRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Return, error) {
	var ret model.Return
	err := tx.QueryRow(ctx, `
		SELECT id, sale_id, reason, created_at
		FROM returns
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&ret.ID, &ret.SaleID, &ret.Reason, &ret.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query return: %w", err)
	}

	items, err := r.loadItems(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	ret.Items = items[id]

	return &ret, nil
}

// List retrieves every return, newest first.
func (r *returnRepository) List(ctx context.Context) ([]model.Return, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sale_id, reason, created_at FROM returns ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query returns")
		return nil, fmt.Errorf("failed to query returns: %w", err)
	}
	defer rows.Close()

	returns := []model.Return{}
	var ids []uuid.UUID
	for rows.Next() {
		var ret model.Return
		if err := rows.Scan(&ret.ID, &ret.SaleID, &ret.Reason, &ret.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan return: %w", err)
		}
		returns = append(returns, ret)
		ids = append(ids, ret.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating returns: %w", err)
	}

	if len(ids) == 0 {
		return returns, nil
	}

	items, err := r.loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range returns {
		returns[i].Items = items[returns[i].ID]
	}

	return returns, nil
}

func (r *returnRepository) loadItems(ctx context.Context, q querier, returnIDs []uuid.UUID) (map[uuid.UUID][]model.ReturnItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, return_id, product_id, size, quantity
		FROM return_items
		WHERE return_id = ANY($1)
		ORDER BY return_id, product_id, size
	`, returnIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query return items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.ReturnItem, len(returnIDs))
	for rows.Next() {
		var item model.ReturnItem
		if err := rows.Scan(&item.ID, &item.ReturnID, &item.ProductID, &item.Size, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan return item: %w", err)
		}
		items[item.ReturnID] = append(items[item.ReturnID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return items: %w", err)
	}

	return items, nil
}

func (r *returnRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM returns WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("return_id", id.String()).Msg("failed to delete return")
		return fmt.Errorf("failed to delete return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
