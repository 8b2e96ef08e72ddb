package service

import (
	"context"
	"sync"

	"calcio-stop/internal/inventory"
	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

// MockRecorder is a mock implementation of StockRecorder.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Apply(ctx context.Context, tx pgx.Tx, adj inventory.Adjustment) (*model.InventoryLog, error) {
	args := m.Called(ctx, tx, adj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InventoryLog), args.Error(1)
}

func (m *MockRecorder) Published(ctx context.Context, logs []*model.InventoryLog) {
	m.Called(ctx, logs)
}

// logFor builds the log entry a recorder would return for adj starting at before.
func logFor(adj inventory.Adjustment, before int) *model.InventoryLog {
	log, err := model.NewInventoryLog(model.StockChange{
		Ref:            adj.Ref,
		ChangeType:     adj.ChangeType,
		QuantityBefore: before,
		QuantityChange: adj.Change,
		Reason:         adj.Reason,
		Reference:      adj.Reference,
	}, fixedNow())
	if err != nil {
		panic(err)
	}
	return log
}

// spyStores records invalidated store names.
type spyStores struct {
	mu    sync.Mutex
	names []string
}

func (s *spyStores) Invalidate(names ...string) {
	s.mu.Lock()
	s.names = append(s.names, names...)
	s.mu.Unlock()
}

func (s *spyStores) invalidated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// MockImageResolver is a mock implementation of ImageResolver.
type MockImageResolver struct {
	mock.Mock
}

func (m *MockImageResolver) Images(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) ([]model.Image, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Image), args.Error(1)
}

func (m *MockImageResolver) Invalidate(ctx context.Context, entityType model.EntityType, entityID uuid.UUID) error {
	args := m.Called(ctx, entityType, entityID)
	return args.Error(0)
}
