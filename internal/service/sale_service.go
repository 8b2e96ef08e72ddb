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

// saleService implements SaleService.
type saleService struct {
	txr       repository.Transactor
	saleRepo  repository.SaleRepository
	orderRepo repository.OrderRepository
	recorder  StockRecorder
	stores    StoreInvalidator
	now       func() time.Time
	logger    zerolog.Logger
}

// NewSaleService creates a new sale service. stores may be nil.
func NewSaleService(
	txr repository.Transactor,
	saleRepo repository.SaleRepository,
	orderRepo repository.OrderRepository,
	recorder StockRecorder,
	stores StoreInvalidator,
	logger zerolog.Logger,
) SaleService {
	return &saleService{
		txr:       txr,
		saleRepo:  saleRepo,
		orderRepo: orderRepo,
		recorder:  recorder,
		stores:    storesOrNop(stores),
		now:       time.Now,
		logger:    logger.With().Str("service", "sale").Logger(),
	}
}

func saleItems(saleID uuid.UUID, reqs []model.SaleItemRequest) []model.SaleItem {
	items := make([]model.SaleItem, len(reqs))
	for i, item := range reqs {
		items[i] = model.SaleItem{
			ID:        uuid.New(),
			SaleID:    saleID,
			Position:  i,
			ProductID: item.ProductID,
			Size:      strings.TrimSpace(item.Size),
			Quantity:  item.Quantity,
			Price:     item.Price,
			NamesetID: item.NamesetID,
		}
	}
	return items
}

// addSold adds the stock taken by items, scaled by sign: -1 when they
// leave stock and +1 when they come back. A nameset printed on a shirt
// is consumed together with it.
func addSold(deltas *stockDeltas, items []model.SaleItem, sign int) {
	for _, item := range items {
		deltas.add(productRef(item.ProductID, item.Size), sign*item.Quantity)
		if item.NamesetID != nil {
			deltas.add(model.StockRef{EntityType: model.EntityNameset, EntityID: *item.NamesetID}, sign*item.Quantity)
		}
	}
}

func saleReference(id uuid.UUID) *model.Reference {
	return &model.Reference{ID: id, Type: model.ReferenceSale}
}

// CreateSale stores a sale and takes its items out of stock.
func (s *saleService) CreateSale(ctx context.Context, req *model.SaleRequest) (*model.Sale, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "sale request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sale := &model.Sale{
		ID:           uuid.New(),
		SaleType:     req.SaleType,
		CustomerName: strings.TrimSpace(req.CustomerName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		CreatedAt:    s.now().UTC(),
	}
	sale.Items = saleItems(sale.ID, req.Items)

	var logs []*model.InventoryLog
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		if err := s.saleRepo.Create(ctx, tx, sale); err != nil {
			return err
		}

		deltas := newStockDeltas()
		addSold(deltas, sale.Items, -1)

		var err error
		logs, err = deltas.apply(ctx, tx, s.recorder, model.ChangeSale, "", saleReference(sale.ID))
		return err
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("failed to create sale")
		return nil, err
	}

	s.recorder.Published(ctx, logs)
	s.stores.Invalidate(catalog.Sales, catalog.Products, catalog.Namesets)

	s.logger.Info().
		Str("sale_id", sale.ID.String()).
		Int("item_count", len(sale.Items)).
		Str("total", sale.Total().StringFixed(2)).
		Msg("sale created successfully")

	return sale, nil
}

// UpdateSale replaces the items of a sale. Stock moves by the net
// difference per product size, logged as sale_edit.
func (s *saleService) UpdateSale(ctx context.Context, id uuid.UUID, req *model.SaleRequest) (*model.Sale, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "sale request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		sale *model.Sale
		logs []*model.InventoryLog
	)
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		if sale, err = s.lockSale(ctx, tx, id); err != nil {
			return err
		}

		deltas := newStockDeltas()
		addSold(deltas, sale.Items, 1)

		sale.SaleType = req.SaleType
		sale.CustomerName = strings.TrimSpace(req.CustomerName)
		sale.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
		sale.Items = saleItems(sale.ID, req.Items)
		addSold(deltas, sale.Items, -1)

		if logs, err = deltas.apply(ctx, tx, s.recorder, model.ChangeSaleEdit, "", saleReference(sale.ID)); err != nil {
			return err
		}
		return s.saleRepo.Update(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Published(ctx, logs)
	s.stores.Invalidate(catalog.Sales, catalog.Products, catalog.Namesets)

	s.logger.Info().
		Str("sale_id", sale.ID.String()).
		Int("stock_changes", len(logs)).
		Msg("sale updated")

	return sale, nil
}

// DeleteSale puts the sold items back into stock and removes the sale.
// An order that produced the sale loses its link and returns to CONFIRMED.
func (s *saleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	var (
		logs     []*model.InventoryLog
		unlinked bool
	)
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		sale, err := s.lockSale(ctx, tx, id)
		if err != nil {
			return err
		}

		deltas := newStockDeltas()
		addSold(deltas, sale.Items, 1)
		if logs, err = deltas.apply(ctx, tx, s.recorder, model.ChangeSaleReversal, "sale deleted", saleReference(sale.ID)); err != nil {
			return err
		}

		if sale.OrderID != nil {
			if unlinked, err = s.unlinkOrder(ctx, tx, *sale.OrderID, sale.ID); err != nil {
				return err
			}
		}

		return s.saleRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.recorder.Published(ctx, logs)
	s.stores.Invalidate(catalog.Sales, catalog.Products, catalog.Namesets)
	if unlinked {
		s.stores.Invalidate(catalog.Orders)
	}

	s.logger.Info().Str("sale_id", id.String()).Bool("order_unlinked", unlinked).Msg("sale deleted")
	return nil
}

// unlinkOrder clears the sale link of the order that produced saleID.
func (s *saleService) unlinkOrder(ctx context.Context, tx pgx.Tx, orderID, saleID uuid.UUID) (bool, error) {
	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to get linked order: %w", err)
	}
	if order == nil || order.SaleID == nil || *order.SaleID != saleID {
		return false, nil
	}

	order.SaleID = nil
	order.Status = model.OrderStatusConfirmed
	order.UpdatedAt = s.now().UTC()
	if err := s.orderRepo.Update(ctx, tx, order); err != nil {
		return false, err
	}
	return true, nil
}

func (s *saleService) lockSale(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, model.ErrNotFound
	}
	return sale, nil
}

func (s *saleService) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("sale_id", id.String()).Msg("failed to get sale")
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, model.ErrNotFound
	}
	return sale, nil
}

func (s *saleService) List(ctx context.Context, archived bool) ([]model.Sale, error) {
	sales, err := s.saleRepo.List(ctx, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}
