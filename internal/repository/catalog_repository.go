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

// catalogTables is the allowlist of reference tables.
var catalogTables = map[model.CatalogKind]string{
	model.CatalogTeams:    "teams",
	model.CatalogKitTypes: "kit_types",
	model.CatalogLeagues:  "leagues",
	model.CatalogSellers:  "sellers",
}

// catalogRepository implements CatalogRepository for one reference table.
type catalogRepository struct {
	pool   *pgxpool.Pool
	kind   model.CatalogKind
	table  string
	logger zerolog.Logger
}

// NewCatalogRepository creates a repository over the table for kind.
func NewCatalogRepository(pool *pgxpool.Pool, kind model.CatalogKind, logger zerolog.Logger) (CatalogRepository, error) {
	table, ok := catalogTables[kind]
	if !ok {
		return nil, fmt.Errorf("no catalogue table for %q", kind)
	}
	return &catalogRepository{
		pool:   pool,
		kind:   kind,
		table:  table,
		logger: logger.With().Str("repository", table).Logger(),
	}, nil
}

func (r *catalogRepository) Kind() model.CatalogKind {
	return r.kind
}

func (r *catalogRepository) List(ctx context.Context, archived bool) ([]model.CatalogEntity, error) {
	query := fmt.Sprintf(`SELECT id, name, url, created_at, archived_at FROM %s WHERE %s ORDER BY name`,
		r.table, archivedFilter(archived))

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Bool("archived", archived).Msg("failed to query catalogue")
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	defer rows.Close()

	entities := []model.CatalogEntity{}
	for rows.Next() {
		e := model.CatalogEntity{Kind: r.kind}
		if err := rows.Scan(&e.ID, &e.Name, &e.URL, &e.CreatedAt, &e.ArchivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", r.table, err)
		}
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.table, err)
	}

	return entities, nil
}

func (r *catalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CatalogEntity, error) {
	e := model.CatalogEntity{Kind: r.kind}
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, name, url, created_at, archived_at FROM %s WHERE id = $1`, r.table), id,
	).Scan(&e.ID, &e.Name, &e.URL, &e.CreatedAt, &e.ArchivedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s: %w", r.table, err)
	}
	return &e, nil
}

func (r *catalogRepository) Create(ctx context.Context, e *model.CatalogEntity) error {
	_, err := r.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, name, url, created_at) VALUES ($1, $2, $3, $4)`, r.table),
		e.ID, e.Name, e.URL, e.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("id", e.ID.String()).Msg("failed to create catalogue entity")
		return fmt.Errorf("failed to create %s row: %w", r.table, translate(err))
	}
	return nil
}

func (r *catalogRepository) SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error {
	return setArchived(ctx, r.pool, r.table, id, at)
}

func (r *catalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := deleteArchived(ctx, r.pool, r.table, id); err != nil {
		r.logger.Warn().Err(err).Str("id", id.String()).Msg("catalogue entity not deleted")
		return err
	}
	return nil
}
