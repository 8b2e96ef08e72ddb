package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Postgres error codes mapped to domain errors.
const (
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// transactor implements Transactor on top of a pgx pool.
type transactor struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTransactor creates a Transactor backed by pool.
func NewTransactor(pool *pgxpool.Pool, logger zerolog.Logger) Transactor {
	return &transactor{
		pool:   pool,
		logger: logger.With().Str("repository", "tx").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (t *transactor) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// translate maps constraint violations onto domain errors and leaves
// everything else untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, model.ErrForeignKey)
	case pgCheckViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, model.ErrValidation)
	}
	return err
}

// setArchived stamps or clears archived_at on a row of table. Table names
// are package constants, never request input.
func setArchived(ctx context.Context, pool *pgxpool.Pool, table string, id uuid.UUID, at *time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET archived_at = $2 WHERE id = $1`, table)

	tag, err := pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to update %s archive state: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// deleteArchived removes a row of table. Only archived rows may be deleted;
// rows still referenced elsewhere yield model.ErrForeignKey. The archived
// check is part of the DELETE so a concurrent unarchive cannot slip between
// them.
func deleteArchived(ctx context.Context, pool *pgxpool.Pool, table string, id uuid.UUID) error {
	tag, err := pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND archived_at IS NOT NULL`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, translate(err))
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table), id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	if !exists {
		return model.ErrNotFound
	}
	return model.NewCannotDeleteError("archive it first")
}

// archivedFilter returns the WHERE fragment selecting active or archived rows.
func archivedFilter(archived bool) string {
	if archived {
		return "archived_at IS NOT NULL"
	}
	return "archived_at IS NULL"
}
