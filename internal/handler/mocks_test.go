package handler

import (
	"context"
	"io"
	"sync"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, req))
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) List(ctx context.Context, archived bool) ([]model.Order, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req *model.OrderRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, id, req))
}

func (m *MockOrderService) TransitionStatus(ctx context.Context, id uuid.UUID, req *model.StatusRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, id, req))
}

func (m *MockOrderService) Archive(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) Unarchive(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, archived bool) ([]model.Product, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) log(args mock.Arguments) (*model.InventoryLog, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryLog), args.Error(1)
}

func (m *MockProductService) AdjustStock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	return m.log(m.Called(ctx, id, req))
}

func (m *MockProductService) Restock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	return m.log(m.Called(ctx, id, req))
}

func (m *MockProductService) Archive(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) Restore(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockImageService is a mock implementation of ImageService.
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) URLs(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Image), args.Error(1)
}

func (m *MockImageService) Upload(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, variant model.ImageVariant, body io.Reader, size int64) (*model.Image, error) {
	args := m.Called(ctx, entityType, entityID, variant, body, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

// MockInventoryService is a mock implementation of InventoryService.
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) History(ctx context.Context, entityType model.EntityType, entityID uuid.UUID, limit int) ([]model.InventoryLog, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InventoryLog), args.Error(1)
}

// MockPageLoader is a mock implementation of PageLoader.
type MockPageLoader struct {
	mock.Mock
}

func (m *MockPageLoader) Load(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockPageLoader) Snapshots(path, search string) (map[string]any, error) {
	args := m.Called(path, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

// MockSaleService is a mock implementation of SaleService.
type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) sale(args mock.Arguments) (*model.Sale, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sale), args.Error(1)
}

func (m *MockSaleService) CreateSale(ctx context.Context, req *model.SaleRequest) (*model.Sale, error) {
	return m.sale(m.Called(ctx, req))
}

func (m *MockSaleService) UpdateSale(ctx context.Context, id uuid.UUID, req *model.SaleRequest) (*model.Sale, error) {
	return m.sale(m.Called(ctx, id, req))
}

func (m *MockSaleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSaleService) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	return m.sale(m.Called(ctx, id))
}

func (m *MockSaleService) List(ctx context.Context, archived bool) ([]model.Sale, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sale), args.Error(1)
}

// MockReturnService is a mock implementation of ReturnService.
type MockReturnService struct {
	mock.Mock
}

func (m *MockReturnService) CreateReturn(ctx context.Context, req *model.ReturnRequest) (*model.Return, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Return), args.Error(1)
}

func (m *MockReturnService) DeleteReturn(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReturnService) List(ctx context.Context) ([]model.Return, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Return), args.Error(1)
}

// MockReservationService is a mock implementation of ReservationService.
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) reservation(args mock.Arguments) (*model.Reservation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationService) CreateReservation(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, req))
}

func (m *MockReservationService) CancelReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockReservationService) FulfillReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockReservationService) List(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Reservation), args.Error(1)
}

// MockStockItemService is a mock implementation of StockItemService for
// the entity type in kind.
type MockStockItemService struct {
	mock.Mock
	kind model.EntityType
}

func (m *MockStockItemService) Kind() model.EntityType {
	return m.kind
}

func (m *MockStockItemService) item(args mock.Arguments) (*model.StockItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StockItem), args.Error(1)
}

func (m *MockStockItemService) List(ctx context.Context, archived bool) ([]model.StockItem, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StockItem), args.Error(1)
}

func (m *MockStockItemService) GetByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	return m.item(m.Called(ctx, id))
}

func (m *MockStockItemService) Create(ctx context.Context, req *model.StockItemRequest) (*model.StockItem, error) {
	return m.item(m.Called(ctx, req))
}

func (m *MockStockItemService) log(args mock.Arguments) (*model.InventoryLog, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryLog), args.Error(1)
}

func (m *MockStockItemService) AdjustStock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	return m.log(m.Called(ctx, id, req))
}

func (m *MockStockItemService) Restock(ctx context.Context, id uuid.UUID, req *model.StockAdjustmentRequest) (*model.InventoryLog, error) {
	return m.log(m.Called(ctx, id, req))
}

func (m *MockStockItemService) Archive(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStockItemService) Restore(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStockItemService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCatalogService is a mock implementation of CatalogService for the
// table in kind.
type MockCatalogService struct {
	mock.Mock
	kind model.CatalogKind
}

func (m *MockCatalogService) Kind() model.CatalogKind {
	return m.kind
}

func (m *MockCatalogService) List(ctx context.Context, archived bool) ([]model.CatalogEntity, error) {
	args := m.Called(ctx, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CatalogEntity), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, req *model.CatalogRequest) (*model.CatalogEntity, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CatalogEntity), args.Error(1)
}

func (m *MockCatalogService) Archive(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) Restore(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// spyMirror records local store moves as "op:store:id".
type spyMirror struct {
	mu    sync.Mutex
	moves []string
}

func (s *spyMirror) record(op, store string, id uuid.UUID) {
	s.mu.Lock()
	s.moves = append(s.moves, op+":"+store+":"+id.String())
	s.mu.Unlock()
}

func (s *spyMirror) Archived(store string, id uuid.UUID) { s.record("archived", store, id) }
func (s *spyMirror) Restored(store string, id uuid.UUID) { s.record("restored", store, id) }
func (s *spyMirror) Removed(store string, id uuid.UUID)  { s.record("removed", store, id) }
