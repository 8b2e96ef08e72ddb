package repository

import (
	"context"
	"errors"
	"fmt"

	"calcio-stop/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// stockTables maps scalar-stock entity types to their tables.
var stockTables = map[model.EntityType]string{
	model.EntityNameset: "namesets",
	model.EntityBadge:   "badges",
}

// stockRepository implements StockRepository using PostgreSQL row locks.
type stockRepository struct {
	logger zerolog.Logger
}

// NewStockRepository creates a new PostgreSQL-backed stock repository.
// All of its work happens inside the caller's transaction.
func NewStockRepository(logger zerolog.Logger) StockRepository {
	return &stockRepository{
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

// LockQuantity locks the stock row for ref and returns its current quantity.
func (r *stockRepository) LockQuantity(ctx context.Context, tx pgx.Tx, ref model.StockRef) (int, bool, error) {
	if ref.EntityType == model.EntityProduct {
		return r.lockProductSize(ctx, tx, ref)
	}

	table, ok := stockTables[ref.EntityType]
	if !ok {
		return 0, false, model.NewValidationError("entityType", fmt.Sprintf("unknown entity type %q", ref.EntityType))
	}

	var quantity int
	var archived bool
	err := tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT quantity, archived_at IS NOT NULL FROM %s WHERE id = $1 FOR UPDATE`, table),
		ref.EntityID,
	).Scan(&quantity, &archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("%s: %w", ref, model.ErrNotFound)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("stock_ref", ref.String()).Msg("failed to lock stock row")
		return 0, false, fmt.Errorf("failed to lock stock row: %w", err)
	}

	return quantity, archived, nil
}

func (r *stockRepository) lockProductSize(ctx context.Context, tx pgx.Tx, ref model.StockRef) (int, bool, error) {
	var archived bool
	err := tx.QueryRow(ctx,
		`SELECT archived_at IS NOT NULL FROM products WHERE id = $1 FOR SHARE`,
		ref.EntityID,
	).Scan(&archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("%s: %w", ref, model.ErrNotFound)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("stock_ref", ref.String()).Msg("failed to query product")
		return 0, false, fmt.Errorf("failed to query product: %w", err)
	}

	// A size first seen through a restock or return starts at zero.
	_, err = tx.Exec(ctx, `
		INSERT INTO product_sizes (product_id, size, quantity)
		VALUES ($1, $2, 0)
		ON CONFLICT (product_id, size) DO NOTHING
	`, ref.EntityID, ref.Size)
	if err != nil {
		r.logger.Error().Err(err).Str("stock_ref", ref.String()).Msg("failed to ensure product size")
		return 0, false, fmt.Errorf("failed to ensure product size: %w", translate(err))
	}

	var quantity int
	err = tx.QueryRow(ctx, `
		SELECT quantity
		FROM product_sizes
		WHERE product_id = $1 AND size = $2
		FOR UPDATE
	`, ref.EntityID, ref.Size).Scan(&quantity)
	if err != nil {
		r.logger.Error().Err(err).Str("stock_ref", ref.String()).Msg("failed to lock product size")
		return 0, false, fmt.Errorf("failed to lock product size: %w", err)
	}

	return quantity, archived, nil
}

// SetQuantity stores the new quantity for ref.
func (r *stockRepository) SetQuantity(ctx context.Context, tx pgx.Tx, ref model.StockRef, quantity int) error {
	var (
		query string
		args  []any
	)
	if ref.EntityType == model.EntityProduct {
		query = `UPDATE product_sizes SET quantity = $3 WHERE product_id = $1 AND size = $2`
		args = []any{ref.EntityID, ref.Size, quantity}
	} else {
		table, ok := stockTables[ref.EntityType]
		if !ok {
			return model.NewValidationError("entityType", fmt.Sprintf("unknown entity type %q", ref.EntityType))
		}
		query = fmt.Sprintf(`UPDATE %s SET quantity = $2 WHERE id = $1`, table)
		args = []any{ref.EntityID, quantity}
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("stock_ref", ref.String()).Int("quantity", quantity).Msg("failed to set quantity")
		return fmt.Errorf("failed to set quantity: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", ref, model.ErrNotFound)
	}

	r.logger.Debug().Str("stock_ref", ref.String()).Int("quantity", quantity).Msg("quantity updated")

	return nil
}
