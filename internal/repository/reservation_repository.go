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

const reservationColumns = `id, product_id, size, quantity, customer_name, phone_number, status, created_at`

// reservationRepository implements the ReservationRepository interface using PostgreSQL.
type reservationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReservationRepository creates a new PostgreSQL-backed reservation repository.
func NewReservationRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReservationRepository {
	return &reservationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "reservation").Logger(),
	}
}

func scanReservation(row pgx.Row, res *model.Reservation) error {
	return row.Scan(&res.ID, &res.ProductID, &res.Size, &res.Quantity,
		&res.CustomerName, &res.PhoneNumber, &res.Status, &res.CreatedAt)
}

func (r *reservationRepository) Create(ctx context.Context, tx pgx.Tx, res *model.Reservation) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO reservations (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, reservationColumns), res.ID, res.ProductID, res.Size, res.Quantity,
		res.CustomerName, res.PhoneNumber, res.Status, res.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("reservation_id", res.ID.String()).Msg("failed to create reservation")
		return fmt.Errorf("failed to create reservation: %w", translate(err))
	}
	return nil
}

func (r *reservationRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	var res model.Reservation
	err := scanReservation(tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM reservations WHERE id = $1 FOR UPDATE`, reservationColumns), id), &res)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}
	return &res, nil
}

// List retrieves reservations in the given status, or all when status is empty.
func (r *reservationRepository) List(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC
	`, reservationColumns), string(status))
	if err != nil {
		r.logger.Error().Err(err).Str("status", string(status)).Msg("failed to query reservations")
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := []model.Reservation{}
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.ReservationStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE reservations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("reservation_id", id.String()).Msg("failed to update reservation status")
		return fmt.Errorf("failed to update reservation status: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
