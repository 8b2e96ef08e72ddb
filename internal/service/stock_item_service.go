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

// stockItemService implements StockItemService for one kind of scalar-stock entity.
type stockItemService struct {
	txr      repository.Transactor
	repo     repository.StockItemRepository
	recorder StockRecorder
	stores   StoreInvalidator
	images   ImageInvalidator
	store    string
	now      func() time.Time
	logger   zerolog.Logger
}

// NewStockItemService creates a service for the kind served by repo.
// stores and images may be nil.
func NewStockItemService(
	txr repository.Transactor,
	repo repository.StockItemRepository,
	recorder StockRecorder,
	stores StoreInvalidator,
	images ImageInvalidator,
	logger zerolog.Logger,
) StockItemService {
	return &stockItemService{
		txr:      txr,
		repo:     repo,
		recorder: recorder,
		stores:   storesOrNop(stores),
		images:   imagesOrNop(images),
		store:    catalog.StoreFor(string(repo.Kind())),
		now:      time.Now,
		logger:   logger.With().Str("service", string(repo.Kind())).Logger(),
	}
}

func (s *stockItemService) Kind() model.EntityType {
	return s.repo.Kind()
}

func (s *stockItemService) ref(id uuid.UUID) model.StockRef {
	return model.StockRef{EntityType: s.repo.Kind(), EntityID: id}
}

func (s *stockItemService) List(ctx context.Context, archived bool) ([]model.StockItem, error) {
	items, err := s.repo.List(ctx, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", s.repo.Kind(), err)
	}
	return items, nil
}

func (s *stockItemService) GetByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", s.repo.Kind(), err)
	}
	if item == nil {
		return nil, model.ErrNotFound
	}
	return item, nil
}

// Create stores the item and logs its starting quantity as initial_stock.
func (s *stockItemService) Create(ctx context.Context, req *model.StockItemRequest) (*model.StockItem, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item := &model.StockItem{
		ID:        uuid.New(),
		Kind:      s.repo.Kind(),
		Name:      strings.TrimSpace(req.Name),
		Number:    req.Number,
		Season:    strings.TrimSpace(req.Season),
		KitTypeID: req.KitTypeID,
		Quantity:  req.Quantity,
		CreatedAt: s.now().UTC(),
	}

	var logs []*model.InventoryLog
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		if err := s.repo.Create(ctx, tx, item); err != nil {
			return err
		}
		if item.Quantity == 0 {
			return nil
		}
		log, err := s.recorder.Apply(ctx, tx, inventory.Adjustment{
			Ref:        s.ref(item.ID),
			ChangeType: model.ChangeInitialStock,
			Change:     item.Quantity,
		})
		if err != nil {
			return err
		}
		logs = append(logs, log)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Published(ctx, logs)
	s.stores.Invalidate(s.store)

	s.logger.Info().Str("id", item.ID.String()).Int("quantity", item.Quantity).Msg("stock item created")
	return item, nil
}

func (s *stockItemService) AdjustStock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "stock adjustment is required")
	}
	return s.adjust(ctx, id, model.ChangeManualAdjustment, req)
}

func (s *stockItemService) Restock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "stock adjustment is required")
	}
	if req.QuantityChange <= 0 {
		return nil, model.NewValidationError("quantityChange", "restock quantity must be greater than zero")
	}
	return s.adjust(ctx, id, model.ChangeRestock, req)
}

func (s *stockItemService) adjust(ctx context.Context, id uuid.UUID, changeType model.ChangeType, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	if strings.TrimSpace(req.Size) != "" {
		return nil, model.NewValidationError("size", fmt.Sprintf("%ss have no sizes", s.repo.Kind()))
	}

	log, err := applyOne(ctx, s.txr, s.recorder, s.logger, inventory.Adjustment{
		Ref:        s.ref(id),
		ChangeType: changeType,
		Change:     req.QuantityChange,
		Reason:     req.Reason,
	})
	if err != nil {
		return nil, err
	}

	s.stores.Invalidate(s.store)
	return log, nil
}

func (s *stockItemService) Archive(ctx context.Context, id uuid.UUID) error {
	now := s.now().UTC()
	if err := s.repo.SetArchived(ctx, id, &now); err != nil {
		return err
	}
	s.stores.Invalidate(s.store)
	return nil
}

func (s *stockItemService) Restore(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetArchived(ctx, id, nil); err != nil {
		return err
	}
	s.stores.Invalidate(s.store)
	return nil
}

func (s *stockItemService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.images.Invalidate(ctx, s.repo.Kind(), id); err != nil {
		s.logger.Warn().Err(err).Str("id", id.String()).Msg("failed to invalidate cached images")
	}
	s.stores.Invalidate(s.store)

	s.logger.Info().Str("id", id.String()).Msg("stock item deleted")
	return nil
}
