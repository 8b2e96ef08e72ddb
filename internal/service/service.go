package service

import (
	"context"
	"fmt"
	"io"

	"calcio-stop/internal/inventory"
	"calcio-stop/internal/model"
	"calcio-stop/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder creates a PENDING order. Orders do not touch stock until they are finished.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves active or archived orders.
	List(ctx context.Context, archived bool) ([]model.Order, error)

	// UpdateOrder replaces the editable fields of an order that is not finished.
	UpdateOrder(ctx context.Context, id uuid.UUID, req *model.OrderRequest) (*model.Order, error)

	// TransitionStatus moves an order along the status machine. Finishing an
	// order creates its sale and decrements stock.
	TransitionStatus(ctx context.Context, id uuid.UUID, req *model.StatusRequest) (*model.Order, error)

	Archive(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Unarchive(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SaleService defines operations for sales. Every stock movement is logged.
type SaleService interface {
	CreateSale(ctx context.Context, req *model.SaleRequest) (*model.Sale, error)
	UpdateSale(ctx context.Context, id uuid.UUID, req *model.SaleRequest) (*model.Sale, error)

	// DeleteSale reverses the stock of a sale and unlinks the order it came from.
	DeleteSale(ctx context.Context, id uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, archived bool) ([]model.Sale, error)
}

// ReturnService defines operations for returns.
type ReturnService interface {
	CreateReturn(ctx context.Context, req *model.ReturnRequest) (*model.Return, error)
	DeleteReturn(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Return, error)
}

// ReservationService defines operations for reservations.
type ReservationService interface {
	CreateReservation(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	CancelReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	FulfillReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	List(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error)
}

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves active or archived products with their sizes.
	GetAll(ctx context.Context, archived bool) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create stores a product and logs its initial stock per size.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	AdjustStock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error)
	Restock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error)

	Archive(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockItemService defines operations for namesets and badges.
type StockItemService interface {
	Kind() model.EntityType
	List(ctx context.Context, archived bool) ([]model.StockItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error)
	Create(ctx context.Context, req *model.StockItemRequest) (*model.StockItem, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error)
	Restock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error)
	Archive(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CatalogService defines operations for teams, kit types, leagues and sellers.
type CatalogService interface {
	Kind() model.CatalogKind
	List(ctx context.Context, archived bool) ([]model.CatalogEntity, error)
	Create(ctx context.Context, req *model.CatalogRequest) (*model.CatalogEntity, error)
	Archive(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InventoryService exposes the inventory log.
type InventoryService interface {
	// History returns the most recent log entries for an entity, newest first.
	History(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, limit int) ([]model.InventoryLog, error)
}

// ImageService stores image variants and resolves their URLs.
type ImageService interface {
	URLs(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error)
	Upload(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, variant model.ImageVariant, body io.Reader, size int64) (*model.Image, error)
}

// StockRecorder applies stock changes inside a transaction and reports
// them once the transaction has committed.
type StockRecorder interface {
	Apply(ctx context.Context, tx pgx.Tx, adj inventory.Adjustment) (*model.InventoryLog, error)
	Published(ctx context.Context, logs []*model.InventoryLog)
}

// StoreInvalidator drops cached entity lists after a committed mutation.
type StoreInvalidator interface {
	Invalidate(names ...string)
}

// ImageInvalidator drops cached image URLs of an entity.
type ImageInvalidator interface {
	Invalidate(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) error
}

type nopStores struct{}

func (nopStores) Invalidate(...string) {}

type nopImages struct{}

func (nopImages) Invalidate(context.Context, model.EntityType, uuid.UUID) error { return nil }

func storesOrNop(s StoreInvalidator) StoreInvalidator {
	if s == nil {
		return nopStores{}
	}
	return s
}

func imagesOrNop(i ImageInvalidator) ImageInvalidator {
	if i == nil {
		return nopImages{}
	}
	return i
}

// inTx runs fn in a transaction, committing when fn succeeds and rolling
// back otherwise.
func inTx(ctx context.Context, txr repository.Transactor, logger zerolog.Logger, fn func(tx pgx.Tx) error) (err error) {
	tx, err := txr.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// stockDeltas accumulates signed quantity changes per stock row, keeping
// first-seen order so log entries come out in item order.
type stockDeltas struct {
	order []model.StockRef
	delta map[model.StockRef]int
}

func newStockDeltas() *stockDeltas {
	return &stockDeltas{delta: make(map[model.StockRef]int)}
}

func (d *stockDeltas) add(ref model.StockRef, change int) {
	if _, seen := d.delta[ref]; !seen {
		d.order = append(d.order, ref)
	}
	d.delta[ref] += change
}

// apply records one adjustment per row with a non-zero net change.
func (d *stockDeltas) apply(ctx context.Context, tx pgx.Tx, recorder StockRecorder, changeType model.ChangeType, reason string, ref *model.Reference) ([]*model.InventoryLog, error) {
	var logs []*model.InventoryLog
	for _, stockRef := range d.order {
		change := d.delta[stockRef]
		if change == 0 {
			continue
		}
		log, err := recorder.Apply(ctx, tx, inventory.Adjustment{
			Ref:        stockRef,
			ChangeType: changeType,
			Change:     change,
			Reason:     reason,
			Reference:  ref,
		})
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

func productRef(productID uuid.UUID, size string) model.StockRef {
	return model.StockRef{EntityType: model.EntityProduct, EntityID: productID, Size: size}
}
