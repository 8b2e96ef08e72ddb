package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// returnService implements ReturnService.
type returnService struct {
	txr        repository.Transactor
	returnRepo repository.ReturnRepository
	recorder   StockRecorder
	stores     StoreInvalidator
	now        func() time.Time
	logger     zerolog.Logger
}

// NewReturnService creates a new return service. stores may be nil.
func NewReturnService(
	txr repository.Transactor,
	returnRepo repository.ReturnRepository,
	recorder StockRecorder,
	stores StoreInvalidator,
	logger zerolog.Logger,
) ReturnService {
	return &returnService{
		txr:        txr,
		returnRepo: returnRepo,
		recorder:   recorder,
		stores:     storesOrNop(stores),
		now:        time.Now,
		logger:     logger.With().Str("service", "return").Logger(),
	}
}

func returnDeltas(items []model.ReturnItem, sign int) *stockDeltas {
	deltas := newStockDeltas()
	for _, item := range items {
		deltas.add(productRef(item.ProductID, item.Size), sign*item.Quantity)
	}
	return deltas
}

// CreateReturn records returned items and puts them back into stock.
func (s *returnService) CreateReturn(ctx context.Context, req *model.ReturnRequest) (*model.Return, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "return request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ret := &model.Return{
		ID:        uuid.New(),
		SaleID:    req.SaleID,
		Reason:    strings.TrimSpace(req.Reason),
		CreatedAt: s.now().UTC(),
	}
	ret.Items = make([]model.ReturnItem, len(req.Items))
	for i, item := range req.Items {
		ret.Items[i] = model.ReturnItem{
			ID:        uuid.New(),
			ReturnID:  ret.ID,
			ProductID: item.ProductID,
			Size:      strings.TrimSpace(item.Size),
			Quantity:  item.Quantity,
		}
	}

	var logs []*model.InventoryLog
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		if err := s.returnRepo.Create(ctx, tx, ret); err != nil {
			return err
		}
		var err error
		logs, err = returnDeltas(ret.Items, 1).apply(ctx, tx, s.recorder, model.ChangeReturn, ret.Reason,
			&model.Reference{ID: ret.ID, Type: model.ReferenceReturn})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Published(ctx, logs)
	s.stores.Invalidate(catalog.Products)

	s.logger.Info().Str("return_id", ret.ID.String()).Int("item_count", len(ret.Items)).Msg("return recorded")
	return ret, nil
}

// DeleteReturn takes the returned items out of stock again and removes the return.
func (s *returnService) DeleteReturn(ctx context.Context, id uuid.UUID) error {
	var logs []*model.InventoryLog
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		ret, err := s.returnRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to get return: %w", err)
		}
		if ret == nil {
			return model.ErrNotFound
		}

		logs, err = returnDeltas(ret.Items, -1).apply(ctx, tx, s.recorder, model.ChangeReturnReversal, "return deleted",
			&model.Reference{ID: ret.ID, Type: model.ReferenceReturn})
		if err != nil {
			return err
		}
		return s.returnRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.recorder.Published(ctx, logs)
	s.stores.Invalidate(catalog.Products)

	s.logger.Info().Str("return_id", id.String()).Msg("return deleted")
	return nil
}

func (s *returnService) List(ctx context.Context) ([]model.Return, error) {
	returns, err := s.returnRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}
	return returns, nil
}
