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

const saleColumns = `id, sale_type, customer_name, phone_number, order_id, created_at, archived_at`

// saleRepository implements the SaleRepository interface using PostgreSQL.
type saleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSaleRepository creates a new PostgreSQL-backed sale repository.
func NewSaleRepository(pool *pgxpool.Pool, logger zerolog.Logger) SaleRepository {
	return &saleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "sale").Logger(),
	}
}

func scanSale(row pgx.Row, s *model.Sale) error {
	return row.Scan(&s.ID, &s.SaleType, &s.CustomerName, &s.PhoneNumber, &s.OrderID, &s.CreatedAt, &s.ArchivedAt)
}

// Create inserts a sale and its items.
func (r *saleRepository) Create(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sales (id, sale_type, customer_name, phone_number, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sale.ID, sale.SaleType, sale.CustomerName, sale.PhoneNumber, sale.OrderID, sale.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("failed to create sale")
		return fmt.Errorf("failed to create sale: %w", translate(err))
	}

	if err := r.insertItems(ctx, tx, sale); err != nil {
		return err
	}

	r.logger.Debug().Str("sale_id", sale.ID.String()).Int("items", len(sale.Items)).Msg("sale created successfully")

	return nil
}

func (r *saleRepository) insertItems(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	if len(sale.Items) == 0 {
		return nil
	}

	query := `
		INSERT INTO sale_items (id, sale_id, position, product_id, size, quantity, price, nameset_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, item := range sale.Items {
		batch.Queue(query, item.ID, sale.ID, item.Position, item.ProductID, item.Size,
			item.Quantity, item.Price, item.NamesetID)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, item := range sale.Items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("sale_id", sale.ID.String()).
				Str("product_id", item.ProductID.String()).
				Msg("failed to create sale item")
			return fmt.Errorf("failed to create sale item: %w", translate(err))
		}
	}

	return nil
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	return r.get(ctx, r.pool, id, "")
}

func (r *saleRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Sale, error) {
	return r.get(ctx, tx, id, "FOR UPDATE")
}

func (r *saleRepository) get(ctx context.Context, q querier, id uuid.UUID, lock string) (*model.Sale, error) {
	var sale model.Sale
	err := scanSale(q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM sales WHERE id = $1 %s`, saleColumns, lock), id), &sale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("sale_id", id.String()).Msg("failed to query sale")
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}

	items, err := r.loadItems(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	sale.Items = items[id]
	if sale.Items == nil {
		sale.Items = []model.SaleItem{}
	}

	return &sale, nil
}

// List retrieves the active or the archived sales, newest first.
func (r *saleRepository) List(ctx context.Context, archived bool) ([]model.Sale, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM sales WHERE %s ORDER BY created_at DESC`,
		saleColumns, archivedFilter(archived)))
	if err != nil {
		r.logger.Error().Err(err).Bool("archived", archived).Msg("failed to query sales")
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []model.Sale{}
	var ids []uuid.UUID
	for rows.Next() {
		var s model.Sale
		if err := scanSale(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
		ids = append(ids, s.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	if len(ids) == 0 {
		return sales, nil
	}

	items, err := r.loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = items[sales[i].ID]
		if sales[i].Items == nil {
			sales[i].Items = []model.SaleItem{}
		}
	}

	return sales, nil
}

func (r *saleRepository) loadItems(ctx context.Context, q querier, saleIDs []uuid.UUID) (map[uuid.UUID][]model.SaleItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, sale_id, position, product_id, size, quantity, price, nameset_id
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, position
	`, saleIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query sale items")
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.SaleItem, len(saleIDs))
	for rows.Next() {
		var item model.SaleItem
		err := rows.Scan(&item.ID, &item.SaleID, &item.Position, &item.ProductID,
			&item.Size, &item.Quantity, &item.Price, &item.NamesetID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items[item.SaleID] = append(items[item.SaleID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return items, nil
}

// Update rewrites the sale header and replaces its items.
func (r *saleRepository) Update(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	tag, err := tx.Exec(ctx, `
		UPDATE sales
		SET sale_type = $2, customer_name = $3, phone_number = $4, order_id = $5, archived_at = $6
		WHERE id = $1
	`, sale.ID, sale.SaleType, sale.CustomerName, sale.PhoneNumber, sale.OrderID, sale.ArchivedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("sale_id", sale.ID.String()).Msg("failed to update sale")
		return fmt.Errorf("failed to update sale: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, sale.ID); err != nil {
		return fmt.Errorf("failed to clear sale items: %w", err)
	}
	return r.insertItems(ctx, tx, sale)
}

// Delete removes a sale; its items go with it.
func (r *saleRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("sale_id", id.String()).Msg("failed to delete sale")
		return fmt.Errorf("failed to delete sale: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
