// Package repotest provides testify mocks for the repository interfaces and
// a minimal pgx.Tx so services can be tested without a database.
package repotest

import (
	"context"
	"time"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockTx is a minimal mock implementation of pgx.Tx. Only Commit and
// Rollback are recorded.
type MockTx struct {
	mock.Mock
	Committed  bool
	RolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.Committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.RolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx; repositories are mocked so these are never reached.
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// MockTransactor is a mock implementation of repository.Transactor.
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStockRepository is a mock implementation of repository.StockRepository.
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) LockQuantity(ctx context.Context, tx pgx.Tx, ref model.StockRef) (int, bool, error) {
	args := m.Called(ctx, tx, ref)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockStockRepository) SetQuantity(ctx context.Context, tx pgx.Tx, ref model.StockRef, quantity int) error {
	args := m.Called(ctx, tx, ref, quantity)
	return args.Error(0)
}

// MockInventoryLogRepository is a mock implementation of repository.InventoryLogRepository.
type MockInventoryLogRepository struct {
	mock.Mock
}

func (m *MockInventoryLogRepository) Insert(ctx context.Context, tx pgx.Tx, log *model.InventoryLog) error {
	args := m.Called(ctx, tx, log)
	return args.Error(0)
}

func (m *MockInventoryLogRepository) ListByEntity(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, limit int) ([]model.InventoryLog, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InventoryLog), args.Error(1)
}

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, archived bool) ([]model.Product, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	args := m.Called(ctx, tx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStockItemRepository is a mock implementation of repository.StockItemRepository.
type MockStockItemRepository struct {
	mock.Mock
	EntityKind model.EntityType
}

func (m *MockStockItemRepository) Kind() model.EntityType {
	return m.EntityKind
}

func (m *MockStockItemRepository) List(ctx context.Context, archived bool) ([]model.StockItem, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) Create(ctx context.Context, tx pgx.Tx, item *model.StockItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockStockItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCatalogRepository is a mock implementation of repository.CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
	CatalogKind model.CatalogKind
}

func (m *MockCatalogRepository) Kind() model.CatalogKind {
	return m.CatalogKind
}

func (m *MockCatalogRepository) List(ctx context.Context, archived bool) ([]model.CatalogEntity, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CatalogEntity), args.Error(1)
}

func (m *MockCatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CatalogEntity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CatalogEntity), args.Error(1)
}

func (m *MockCatalogRepository) Create(ctx context.Context, entity *model.CatalogEntity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockCatalogRepository) SetArchived(ctx context.Context, id uuid.UUID, at *time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, archived bool) ([]model.Order, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ReplaceItems(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockSaleRepository is a mock implementation of repository.SaleRepository.
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Create(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	args := m.Called(ctx, tx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sale), args.Error(1)
}

func (m *MockSaleRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Sale, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sale), args.Error(1)
}

func (m *MockSaleRepository) List(ctx context.Context, archived bool) ([]model.Sale, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sale), args.Error(1)
}

func (m *MockSaleRepository) Update(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	args := m.Called(ctx, tx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockReturnRepository is a mock implementation of repository.ReturnRepository.
type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) Create(ctx context.Context, tx pgx.Tx, ret *model.Return) error {
	args := m.Called(ctx, tx, ret)
	return args.Error(0)
}

func (m *MockReturnRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Return, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Return), args.Error(1)
}

func (m *MockReturnRepository) List(ctx context.Context) ([]model.Return, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Return), args.Error(1)
}

func (m *MockReturnRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockReservationRepository is a mock implementation of repository.ReservationRepository.
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) error {
	args := m.Called(ctx, tx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Reservation, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) List(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.ReservationStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

// MockImageRepository is a mock implementation of repository.ImageRepository.
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) List(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Image), args.Error(1)
}

func (m *MockImageRepository) Upsert(ctx context.Context, entityType model.EntityType, image model.Image) error {
	args := m.Called(ctx, entityType, image)
	return args.Error(0)
}
