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

const orderColumns = `id, status, sale_type, customer_name, phone_number, sale_id, created_at, updated_at, archived_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.Status, &o.SaleType, &o.CustomerName, &o.PhoneNumber,
		&o.SaleID, &o.CreatedAt, &o.UpdatedAt, &o.ArchivedAt)
}

// Create inserts a new order and its items within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, status, sale_type, customer_name, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query, order.ID, order.Status, order.SaleType,
		order.CustomerName, order.PhoneNumber, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", translate(err))
	}

	if err := r.insertItems(ctx, tx, order); err != nil {
		return err
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("items", len(order.Items)).
		Msg("order created successfully")

	return nil
}

func (r *orderRepository) insertItems(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if len(order.Items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, position, product_id, size, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range order.Items {
		batch.Queue(query, item.ID, order.ID, item.Position, item.ProductID, item.Size, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, item := range order.Items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", translate(err))
		}
	}

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.get(ctx, r.pool, id, "")
}

// GetForUpdate retrieves and locks an order within tx.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.get(ctx, tx, id, "FOR UPDATE")
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) get(ctx context.Context, q querier, id uuid.UUID, lock string) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 %s`, orderColumns, lock)

	var order model.Order
	if err := scanOrder(q.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.loadItems(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []model.OrderItem{}
	}

	return &order, nil
}

// List retrieves the active or the archived orders, newest first.
func (r *orderRepository) List(ctx context.Context, archived bool) ([]model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC`,
		orderColumns, archivedFilter(archived))

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Bool("archived", archived).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	var ids []uuid.UUID
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []model.OrderItem{}
		}
	}

	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	query := `
		SELECT id, order_id, position, product_id, size, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(orderIDs)).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.Position, &item.ProductID,
			&item.Size, &item.Quantity, &item.Price)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// Update writes the order header.
func (r *orderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2, sale_type = $3, customer_name = $4, phone_number = $5,
		    sale_id = $6, updated_at = $7, archived_at = $8
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, order.ID, order.Status, order.SaleType, order.CustomerName,
		order.PhoneNumber, order.SaleID, order.UpdatedAt, order.ArchivedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// ReplaceItems swaps the stored items for order.Items.
func (r *orderRepository) ReplaceItems(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to clear order items")
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	return r.insertItems(ctx, tx, order)
}

// Delete permanently removes an order and its items.
func (r *orderRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
