package repository

import (
	"context"
	"time"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor starts database transactions. Every stock mutation runs in one.
type Transactor interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// StockRepository reads and writes the stock counters behind products, namesets and badges.
type StockRepository interface {
	// LockQuantity locks the stock row for ref within tx and returns its quantity
	// and whether the owning entity is archived. A product size without a row
	// is created with zero stock.
	LockQuantity(ctx context.Context, tx pgx.Tx, ref model.StockRef) (quantity int, archived bool, err error)

	// SetQuantity stores the new quantity for ref within tx.
	SetQuantity(ctx context.Context, tx pgx.Tx, ref model.StockRef, quantity int) error
}

// InventoryLogRepository appends to and reads the inventory audit trail.
// Entries are never updated or deleted.
type InventoryLogRepository interface {
	// Insert appends a log entry within the provided transaction.
	Insert(ctx context.Context, tx pgx.Tx, log *model.InventoryLog) error

	// ListByEntity returns the newest entries for an entity first.
	ListByEntity(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, limit int) ([]model.InventoryLog, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves the active or the archived products with their sizes.
	List(ctx context.Context, archived bool) ([]model.Product, error)

	// GetByID retrieves a single product with its sizes. Returns nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create inserts the product and its sizes with zero stock.
	Create(ctx context.Context, tx pgx.Tx, product *model.Product) error

	// SetArchived archives (at != nil) or restores (at == nil) a product.
	SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error

	// Delete permanently removes an archived product.
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockItemRepository defines data access for one scalar-stock table (namesets or badges).
type StockItemRepository interface {
	Kind() model.EntityType
	List(ctx context.Context, archived bool) ([]model.StockItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error)
	Create(ctx context.Context, tx pgx.Tx, item *model.StockItem) error
	SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CatalogRepository defines data access for one reference table without stock.
type CatalogRepository interface {
	Kind() model.CatalogKind
	List(ctx context.Context, archived bool) ([]model.CatalogEntity, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.CatalogEntity, error)
	Create(ctx context.Context, entity *model.CatalogEntity) error
	SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts a new order and its items within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order by its ID along with its items. Returns nil when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate retrieves and locks an order within tx. Returns nil when missing.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// List retrieves the active or the archived orders, newest first.
	List(ctx context.Context, archived bool) ([]model.Order, error)

	// Update writes the order header: status, customer details, sale link and archive time.
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// ReplaceItems swaps the stored items for order.Items.
	ReplaceItems(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// Delete permanently removes an order and its items.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// SaleRepository defines the interface for sale data access operations.
type SaleRepository interface {
	Create(ctx context.Context, tx pgx.Tx, sale *model.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, archived bool) ([]model.Sale, error)

	// Update rewrites the sale header and replaces its items.
	Update(ctx context.Context, tx pgx.Tx, sale *model.Sale) error

	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// ReturnRepository defines the interface for return data access operations.
type ReturnRepository interface {
	Create(ctx context.Context, tx pgx.Tx, ret *model.Return) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Return, error)
	List(ctx context.Context) ([]model.Return, error)
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// ReservationRepository defines the interface for reservation data access operations.
type ReservationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error)
	List(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.ReservationStatus) error
}

// ImageRepository stores the public URLs of uploaded image variants.
type ImageRepository interface {
	List(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error)
	Upsert(ctx context.Context, entityType model.EntityType, image model.Image) error
}
