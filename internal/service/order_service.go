package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/model"
	"calcio-stop/internal/orderstatus"
	"calcio-stop/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// orderService implements OrderService.
type orderService struct {
	txr         repository.Transactor
	orderRepo   repository.OrderRepository
	saleRepo    repository.SaleRepository
	recorder    StockRecorder
	stores      StoreInvalidator
	now         func() time.Time
	transitions metric.Int64Counter
	logger      zerolog.Logger
}

// NewOrderService creates a new order service. stores may be nil.
func NewOrderService(
	txr repository.Transactor,
	orderRepo repository.OrderRepository,
	saleRepo repository.SaleRepository,
	recorder StockRecorder,
	stores StoreInvalidator,
	logger zerolog.Logger,
) OrderService {
	transitions, _ := otel.Meter("calcio-stop/service").Int64Counter("order_transitions",
		metric.WithDescription("Order status transitions"))

	return &orderService{
		txr:         txr,
		orderRepo:   orderRepo,
		saleRepo:    saleRepo,
		recorder:    recorder,
		stores:      storesOrNop(stores),
		now:         time.Now,
		transitions: transitions,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

func orderItems(orderID uuid.UUID, reqs []model.OrderItemRequest) []model.OrderItem {
	items := make([]model.OrderItem, len(reqs))
	for i, item := range reqs {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			Position:  i,
			ProductID: item.ProductID,
			Size:      strings.TrimSpace(item.Size),
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return items
}

// CreateOrder creates a PENDING order.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "order request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:           uuid.New(),
		Status:       model.OrderStatusPending,
		SaleType:     req.SaleType,
		CustomerName: strings.TrimSpace(req.CustomerName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	order.Items = orderItems(order.ID, req.Items)

	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		return s.orderRepo.Create(ctx, tx, order)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.stores.Invalidate(catalog.Orders)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Msg("order created successfully")

	return order, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrNotFound
	}

	return order, nil
}

func (s *orderService) List(ctx context.Context, archived bool) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx, archived)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// lockOrder loads an order for update, mapping a missing row to ErrNotFound.
func (s *orderService) lockOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrNotFound
	}
	return order, nil
}

// UpdateOrder replaces items, sale type and customer details.
func (s *orderService) UpdateOrder(ctx context.Context, id uuid.UUID, req *model.OrderRequest) (*model.Order, error) {
	if req == nil {
		return nil, model.NewValidationError("body", "order request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var order *model.Order
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		if order, err = s.lockOrder(ctx, tx, id); err != nil {
			return err
		}
		if !orderstatus.CanEdit(order.Status) {
			return model.ErrOrderLocked
		}

		order.SaleType = req.SaleType
		order.CustomerName = strings.TrimSpace(req.CustomerName)
		order.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
		order.Items = orderItems(order.ID, req.Items)
		order.UpdatedAt = s.now().UTC()

		if err := s.orderRepo.Update(ctx, tx, order); err != nil {
			return err
		}
		return s.orderRepo.ReplaceItems(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.stores.Invalidate(catalog.Orders)
	return order, nil
}

// TransitionStatus moves an order to req.Status. Moving to the current
// status is a no-op, which makes repeated completion idempotent.
func (s *orderService) TransitionStatus(ctx context.Context, id uuid.UUID, req *model.StatusRequest) (*model.Order, error) {
	if req == nil || req.Status == "" {
		return nil, model.NewValidationError("status", "status is required")
	}

	var (
		order *model.Order
		from  model.OrderStatus
		logs  []*model.InventoryLog
	)
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		if order, err = s.lockOrder(ctx, tx, id); err != nil {
			return err
		}
		from = order.Status

		if err := orderstatus.Transition(from, req.Status); err != nil {
			return err
		}
		if from == req.Status {
			return nil
		}
		if err := orderstatus.CanChangeStatus(order); err != nil {
			return err
		}

		if name := strings.TrimSpace(req.CustomerName); name != "" {
			order.CustomerName = name
		}
		if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
			order.PhoneNumber = phone
		}

		if req.Status == model.OrderStatusFinished {
			if logs, err = s.complete(ctx, tx, order); err != nil {
				return err
			}
		}

		order.Status = req.Status
		order.UpdatedAt = s.now().UTC()
		return s.orderRepo.Update(ctx, tx, order)
	})
	if err != nil {
		if errors.Is(err, model.ErrCustomerInfoRequired) {
			s.logger.Info().Str("order_id", id.String()).Msg("order completion waiting for customer details")
		}
		return nil, err
	}

	if from == req.Status {
		return order, nil
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(from)),
		attribute.String("to", string(req.Status)),
	))
	s.recorder.Published(ctx, logs)
	if len(logs) > 0 {
		s.stores.Invalidate(catalog.Orders, catalog.Sales, catalog.Products)
	} else {
		s.stores.Invalidate(catalog.Orders)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("from", string(from)).
		Str("to", string(req.Status)).
		Msg("order status changed")

	return order, nil
}

// complete creates the sale for a finishing order and takes its items out
// of stock. Customer details must be present.
func (s *orderService) complete(ctx context.Context, tx pgx.Tx, order *model.Order) ([]*model.InventoryLog, error) {
	if !order.HasCustomerInfo() {
		return nil, model.ErrCustomerInfoRequired
	}

	orderID := order.ID
	sale := &model.Sale{
		ID:           uuid.New(),
		SaleType:     order.SaleType,
		CustomerName: order.CustomerName,
		PhoneNumber:  order.PhoneNumber,
		OrderID:      &orderID,
		CreatedAt:    s.now().UTC(),
	}
	sale.Items = make([]model.SaleItem, len(order.Items))
	for i, item := range order.Items {
		sale.Items[i] = model.SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			Position:  i,
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := s.saleRepo.Create(ctx, tx, sale); err != nil {
		return nil, err
	}

	deltas := newStockDeltas()
	for _, item := range order.Items {
		deltas.add(productRef(item.ProductID, item.Size), -item.Quantity)
	}
	logs, err := deltas.apply(ctx, tx, s.recorder, model.ChangeSale,
		"order "+order.ID.String(), &model.Reference{ID: sale.ID, Type: model.ReferenceSale})
	if err != nil {
		return nil, err
	}

	order.SaleID = &sale.ID
	return logs, nil
}

func (s *orderService) Archive(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.setArchived(ctx, id, true)
}

func (s *orderService) Unarchive(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.setArchived(ctx, id, false)
}

func (s *orderService) setArchived(ctx context.Context, id uuid.UUID, archive bool) (*model.Order, error) {
	var order *model.Order
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		var err error
		if order, err = s.lockOrder(ctx, tx, id); err != nil {
			return err
		}

		if archive {
			if err := orderstatus.CanArchive(order); err != nil {
				return err
			}
			now := s.now().UTC()
			order.ArchivedAt = &now
		} else {
			if err := orderstatus.CanUnarchive(order); err != nil {
				return err
			}
			order.ArchivedAt = nil
		}

		order.UpdatedAt = s.now().UTC()
		return s.orderRepo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.stores.Invalidate(catalog.Orders)
	return order, nil
}

// Delete permanently removes an archived order without a linked sale.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	err := inTx(ctx, s.txr, s.logger, func(tx pgx.Tx) error {
		order, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := orderstatus.CanDelete(order); err != nil {
			return err
		}
		return s.orderRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.stores.Invalidate(catalog.Orders)
	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}
