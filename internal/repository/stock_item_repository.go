package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const stockItemColumns = `id, name, number, season, kit_type_id, quantity, created_at, archived_at`

// stockItemRepository implements StockItemRepository for namesets or badges.
type stockItemRepository struct {
	pool   *pgxpool.Pool
	kind   model.EntityType
	table  string
	logger zerolog.Logger
}

// NewStockItemRepository creates a repository over the table holding kind.
// kind must be model.EntityNameset or model.EntityBadge.
func NewStockItemRepository(pool *pgxpool.Pool, kind model.EntityType, logger zerolog.Logger) (StockItemRepository, error) {
	table, ok := stockTables[kind]
	if !ok {
		return nil, fmt.Errorf("no stock item table for %q", kind)
	}
	return &stockItemRepository{
		pool:   pool,
		kind:   kind,
		table:  table,
		logger: logger.With().Str("repository", table).Logger(),
	}, nil
}

func (r *stockItemRepository) Kind() model.EntityType {
	return r.kind
}

func (r *stockItemRepository) scan(row pgx.Row, item *model.StockItem) error {
	item.Kind = r.kind
	return row.Scan(&item.ID, &item.Name, &item.Number, &item.Season, &item.KitTypeID,
		&item.Quantity, &item.CreatedAt, &item.ArchivedAt)
}

func (r *stockItemRepository) List(ctx context.Context, archived bool) ([]model.StockItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY name, number`,
		stockItemColumns, r.table, archivedFilter(archived))

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Bool("archived", archived).Msg("failed to query stock items")
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	items := []model.StockItem{}
	for rows.Next() {
		var item model.StockItem
		if err := r.scan(rows, &item); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock item row")
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.table, err)
	}

	return items, nil
}

func (r *stockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, stockItemColumns, r.table)

	var item model.StockItem
	if err := r.scan(r.pool.QueryRow(ctx, query, id), &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("id", id.String()).Msg("failed to query stock item")
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	return &item, nil
}

// Create inserts the row with zero stock; the initial quantity is applied
// through the inventory recorder.
func (r *stockItemRepository) Create(ctx context.Context, tx pgx.Tx, item *model.StockItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, number, season, kit_type_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
	`, r.table)

	_, err := tx.Exec(ctx, query, item.ID, item.Name, item.Number, item.Season, item.KitTypeID, item.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("id", item.ID.String()).Msg("failed to create stock item")
		return fmt.Errorf("failed to create %s row: %w", r.table, translate(err))
	}
	return nil
}

func (r *stockItemRepository) SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error {
	return setArchived(ctx, r.pool, r.table, id, at)
}

func (r *stockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := deleteArchived(ctx, r.pool, r.table, id); err != nil {
		r.logger.Warn().Err(err).Str("id", id.String()).Msg("stock item not deleted")
		return err
	}
	return nil
}
