package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/inventory"
	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// reservationService implements ReservationService.
type reservationService struct {
	txr             repository.Transactor
	reservationRepo repository.ReservationRepository
	recorder        StockRecorder
	stores          StoreInvalidator
	now             func() time.Time
	logger          zerolog.Logger
}

// NewReservationService creates a new reservation service. stores may be nil.
func NewReservationService(
	txr repository.Transactor,
	reservationRepo repository.ReservationRepository,
	recorder StockRecorder,
	stores StoreInvalidator,
	logger zerolog.Logger,
) ReservationService {
	return &reservationService{
		txr:             txr,
		reservationRepo: reservationRepo,
		recorder:        recorder,
		stores:          storesOrNop(stores),
		now:             time.Now,
		logger:          logger.With().Str("service", "reservation").Logger(),
	}
}

// CreateReservation holds stock for a customer.
func (s *reservationService) CreateReservation(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "reservation request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res := &model.Reservation{
		ID:           uuid.New(),
		ProductID:    req.ProductID,
		Size:         strings.TrimSpace(req.Size),
		Quantity:     req.Quantity,
		CustomerName: strings.TrimSpace(req.CustomerName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Status:       model.ReservationActive,
		CreatedAt:    s.now().UTC(),
	}

	var log *model.InventoryLog
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		if err := s.reservationRepo.Create(ctx, tx, res); err != nil {
			return err
		}
		var err error
		log, err = s.recorder.Apply(ctx, tx, inventory.Adjustment{
			Ref:        productRef(res.ProductID, res.Size),
			ChangeType: model.ChangeReservation,
			Change:     -res.Quantity,
			Reason:     "reserved for " + res.CustomerName,
			Reference:  &model.Reference{ID: res.ID, Type: model.ReferenceReservation},
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Published(ctx, []*model.InventoryLog{log})
	s.stores.Invalidate(catalog.Products)

	s.logger.Info().Str("reservation_id", res.ID.String()).Int("quantity", res.Quantity).Msg("reservation created")
	return res, nil
}

// CancelReservation releases the held stock of an active reservation.
func (s *reservationService) CancelReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	var (
		res *model.Reservation
		log *model.InventoryLog
	)
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		if res, err = s.lockActive(ctx, tx, id); err != nil {
			return err
		}

		log, err = s.recorder.Apply(ctx, tx, inventory.Adjustment{
			Ref:        productRef(res.ProductID, res.Size),
			ChangeType: model.ChangeReservation,
			Change:     res.Quantity,
			Reason:     "reservation cancelled",
			Reference:  &model.Reference{ID: res.ID, Type: model.ReferenceReservation},
		})
		if err != nil {
			return err
		}

		res.Status = model.ReservationCancelled
		return s.reservationRepo.UpdateStatus(ctx, tx, id, res.Status)
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Published(ctx, []*model.InventoryLog{log})
	s.stores.Invalidate(catalog.Products)
	return res, nil
}

// FulfillReservation marks an active reservation as handed over. The stock
// already left when the reservation was created.
func (s *reservationService) FulfillReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	var res *model.Reservation
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		if res, err = s.lockActive(ctx, tx, id); err != nil {
			return err
		}
		res.Status = model.ReservationFulfilled
		return s.reservationRepo.UpdateStatus(ctx, tx, id, res.Status)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *reservationService) lockActive(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.reservationRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, model.ErrNotFound
	}
	if res.Status != model.ReservationActive {
		return nil, model.NewValidationError("status", fmt.Sprintf("reservation is %s", res.Status))
	}
	return res, nil
}

func (s *reservationService) List(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	reservations, err := s.reservationRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}
