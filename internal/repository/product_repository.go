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

const productColumns = `id, name, team_id, kit_type_id, season, price, created_at, archived_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(&p.ID, &p.Name, &p.TeamID, &p.KitTypeID, &p.Season, &p.Price, &p.CreatedAt, &p.ArchivedAt)
}

// List retrieves the active or the archived products with their sizes.
func (r *productRepository) List(ctx context.Context, archived bool) ([]model.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY name
	`, productColumns, archivedFilter(archived))

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Bool("archived", archived).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Sizes = []model.ProductSize{}
		index[p.ID] = len(products)
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if len(products) == 0 {
		return products, nil
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	sizeRows, err := r.pool.Query(ctx, `
		SELECT product_id, size, quantity
		FROM product_sizes
		WHERE product_id = ANY($1)
		ORDER BY product_id, size
	`, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query product sizes")
		return nil, fmt.Errorf("failed to query product sizes: %w", err)
	}
	defer sizeRows.Close()

	for sizeRows.Next() {
		var productID uuid.UUID
		var s model.ProductSize
		if err := sizeRows.Scan(&productID, &s.Size, &s.Quantity); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product size row")
			return nil, fmt.Errorf("failed to scan product size: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Sizes = append(products[i].Sizes, s)
		}
	}

	if err := sizeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sizes: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product with its sizes.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT size, quantity
		FROM product_sizes
		WHERE product_id = $1
		ORDER BY size
	`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product sizes")
		return nil, fmt.Errorf("failed to query product sizes: %w", err)
	}
	defer rows.Close()

	p.Sizes = []model.ProductSize{}
	for rows.Next() {
		var s model.ProductSize
		if err := rows.Scan(&s.Size, &s.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product size: %w", err)
		}
		p.Sizes = append(p.Sizes, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sizes: %w", err)
	}

	return &p, nil
}

// Create inserts the product and its sizes with zero stock. Initial
// quantities are applied afterwards through the inventory recorder so each
// one is logged.
func (r *productRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO products (id, name, team_id, kit_type_id, season, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Name, p.TeamID, p.KitTypeID, p.Season, p.Price, p.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", translate(err))
	}

	if len(p.Sizes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range p.Sizes {
		batch.Queue(`INSERT INTO product_sizes (product_id, size, quantity) VALUES ($1, $2, 0)`, p.ID, s.Size)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, s := range p.Sizes {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("product_id", p.ID.String()).
				Str("size", s.Size).
				Msg("failed to create product size")
			return fmt.Errorf("failed to create product size: %w", translate(err))
		}
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Int("sizes", len(p.Sizes)).Msg("product created successfully")

	return nil
}

// SetArchived archives or restores a product.
func (r *productRepository) SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error {
	if err := setArchived(ctx, r.pool, "products", id, at); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to change product archive state")
		}
		return err
	}
	return nil
}

// Delete permanently removes an archived product.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := deleteArchived(ctx, r.pool, "products", id); err != nil {
		r.logger.Warn().Err(err).Str("product_id", id.String()).Msg("product not deleted")
		return err
	}
	return nil
}
