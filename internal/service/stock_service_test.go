package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/inventory"
	"calcio-stop/internal/model"
	"calcio-stop/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductService_Create_LogsInitialStock(t *testing.T) {
	ctx := context.Background()
	txr := new(repotest.MockTransactor)
	products := new(repotest.MockProductRepository)
	recorder := new(MockRecorder)
	stores := &spyStores{}
	tx := new(repotest.MockTx)

	svc := NewProductService(txr, products, recorder, stores, nil, zerolog.Nop())

	txr.On("BeginTx", ctx).Return(tx, nil)
	products.On("Create", ctx, tx, mock.AnythingOfType("*model.Product")).Return(nil)
	recorder.On("Apply", ctx, tx, mock.MatchedBy(func(adj inventory.Adjustment) bool {
		return adj.ChangeType == model.ChangeInitialStock && adj.Ref.Size == "M" && adj.Change == 4
	})).Return(&model.InventoryLog{QuantityChange: 4}, nil).Once()
	recorder.On("Apply", ctx, tx, mock.MatchedBy(func(adj inventory.Adjustment) bool {
		return adj.Ref.Size == "L" && adj.Change == 1
	})).Return(&model.InventoryLog{QuantityChange: 1}, nil).Once()
	recorder.On("Published", ctx, mock.MatchedBy(func(logs []*model.InventoryLog) bool { return len(logs) == 2 })).Return()
	tx.On("Commit", ctx).Return(nil)

	product, err := svc.Create(ctx, &model.ProductRequest{
		Name:  "Inter 2010 home",
		Price: decimal.RequireFromString("79.90"),
		Sizes: []model.ProductSize{{Size: "S", Quantity: 0}, {Size: "M", Quantity: 4}, {Size: "L", Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, 4, product.Quantity("M"))
	assert.Equal(t, 0, product.Quantity("S"))
	recorder.AssertNumberOfCalls(t, "Apply", 2)
	assert.Equal(t, []string{catalog.Products}, stores.invalidated())
}

func TestProductService_Create_Validation(t *testing.T) {
	svc := NewProductService(new(repotest.MockTransactor), new(repotest.MockProductRepository), new(MockRecorder), nil, nil, zerolog.Nop())

	_, err := svc.Create(context.Background(), &model.ProductRequest{
		Name:  "Duplicate sizes",
		Sizes: []model.ProductSize{{Size: "M"}, {Size: "M"}},
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestProductService_StockChanges(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name        string
		restock     bool
		req         model.StockAdjustmentRequest
		applyErr    error
		expectError error
		expectType  model.ChangeType
	}{
		{name: "manual decrease", req: model.StockAdjustmentRequest{Size: "M", QuantityChange: -1, Reason: "damaged"}, expectType: model.ChangeManualAdjustment},
		{name: "restock", restock: true, req: model.StockAdjustmentRequest{Size: "M", QuantityChange: 6}, expectType: model.ChangeRestock},
		{name: "restock must be positive", restock: true, req: model.StockAdjustmentRequest{Size: "M", QuantityChange: -6}, expectError: model.ErrValidation},
		{name: "archived product is frozen", req: model.StockAdjustmentRequest{Size: "M", QuantityChange: 1}, applyErr: model.NewValidationError("archivedAt", "archived"), expectError: model.ErrValidation},
		{name: "below zero", req: model.StockAdjustmentRequest{Size: "M", QuantityChange: -10}, applyErr: model.ErrNegativeStock, expectError: model.ErrNegativeStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txr := new(repotest.MockTransactor)
			recorder := new(MockRecorder)
			tx := new(repotest.MockTx)
			svc := NewProductService(txr, new(repotest.MockProductRepository), recorder, nil, nil, zerolog.Nop())

			txr.On("BeginTx", ctx).Return(tx, nil)
			if tt.applyErr != nil {
				recorder.On("Apply", ctx, tx, mock.Anything).Return(nil, tt.applyErr)
				tx.On("Rollback", ctx).Return(nil)
			} else {
				recorder.On("Apply", ctx, tx, mock.MatchedBy(func(adj inventory.Adjustment) bool {
					return adj.ChangeType == tt.expectType && adj.Change == tt.req.QuantityChange &&
						adj.Ref == productRef(id, "M")
				})).Return(&model.InventoryLog{ChangeType: tt.expectType, QuantityChange: tt.req.QuantityChange}, nil)
				recorder.On("Published", ctx, mock.Anything).Return()
				tx.On("Commit", ctx).Return(nil)
			}

			var (
				log *model.InventoryLog
				err error
			)
			if tt.restock {
				log, err = svc.Restock(ctx, id, &tt.req)
			} else {
				log, err = svc.AdjustStock(ctx, id, &tt.req)
			}

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, log)
				recorder.AssertNotCalled(t, "Published", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectType, log.ChangeType)
				recorder.AssertExpectations(t)
			}
		})
	}
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("invalidates cached images", func(t *testing.T) {
		products := new(repotest.MockProductRepository)
		images := new(MockImageResolver)
		svc := NewProductService(new(repotest.MockTransactor), products, new(MockRecorder), nil, images, zerolog.Nop())

		products.On("Delete", ctx, id).Return(nil)
		images.On("Invalidate", ctx, model.EntityProduct, id).Return(errors.New("redis down"))

		require.NoError(t, svc.Delete(ctx, id))
		images.AssertExpectations(t)
	})

	t.Run("referenced product suggests archiving", func(t *testing.T) {
		products := new(repotest.MockProductRepository)
		images := new(MockImageResolver)
		svc := NewProductService(new(repotest.MockTransactor), products, new(MockRecorder), nil, images, zerolog.Nop())

		products.On("Delete", ctx, id).Return(model.ErrForeignKey)

		assert.ErrorIs(t, svc.Delete(ctx, id), model.ErrForeignKey)
		images.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()
	products := new(repotest.MockProductRepository)
	svc := NewProductService(new(repotest.MockTransactor), products, new(MockRecorder), nil, nil, zerolog.Nop())

	missing := uuid.New()
	products.On("GetByID", ctx, missing).Return(nil, nil)

	_, err := svc.GetByID(ctx, missing)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.GetByID(ctx, uuid.Nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStockItemService(t *testing.T) {
	ctx := context.Background()

	newService := func() (StockItemService, *repotest.MockTransactor, *repotest.MockStockItemRepository, *MockRecorder, *spyStores) {
		txr := new(repotest.MockTransactor)
		repo := &repotest.MockStockItemRepository{EntityKind: model.EntityBadge}
		recorder := new(MockRecorder)
		stores := &spyStores{}
		return NewStockItemService(txr, repo, recorder, stores, nil, zerolog.Nop()), txr, repo, recorder, stores
	}

	t.Run("create logs initial stock", func(t *testing.T) {
		svc, txr, repo, recorder, stores := newService()
		tx := new(repotest.MockTx)

		txr.On("BeginTx", ctx).Return(tx, nil)
		repo.On("Create", ctx, tx, mock.AnythingOfType("*model.StockItem")).Return(nil)
		recorder.On("Apply", ctx, tx, mock.MatchedBy(func(adj inventory.Adjustment) bool {
			return adj.Ref.EntityType == model.EntityBadge && adj.Ref.Size == "" &&
				adj.ChangeType == model.ChangeInitialStock && adj.Change == 12
		})).Return(&model.InventoryLog{QuantityChange: 12}, nil)
		recorder.On("Published", ctx, mock.Anything).Return()
		tx.On("Commit", ctx).Return(nil)

		item, err := svc.Create(ctx, &model.StockItemRequest{Name: "Serie A 2019", Season: "2019/20", Quantity: 12})

		require.NoError(t, err)
		assert.Equal(t, model.EntityBadge, item.Kind)
		assert.Equal(t, []string{catalog.Badges}, stores.invalidated())
	})

	t.Run("create with zero quantity writes no log", func(t *testing.T) {
		svc, txr, repo, recorder, _ := newService()
		tx := new(repotest.MockTx)

		txr.On("BeginTx", ctx).Return(tx, nil)
		repo.On("Create", ctx, tx, mock.Anything).Return(nil)
		recorder.On("Published", ctx, mock.Anything).Return()
		tx.On("Commit", ctx).Return(nil)

		_, err := svc.Create(ctx, &model.StockItemRequest{Name: "Champions League"})

		require.NoError(t, err)
		recorder.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("sizes are rejected", func(t *testing.T) {
		svc, txr, _, _, _ := newService()

		_, err := svc.AdjustStock(ctx, uuid.New(), &model.StockAdjustmentRequest{Size: "M", QuantityChange: 1})

		assert.ErrorIs(t, err, model.ErrValidation)
		txr.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("archive and restore", func(t *testing.T) {
		svc, _, repo, _, stores := newService()
		id := uuid.New()

		repo.On("SetArchived", ctx, id, mock.AnythingOfType("*time.Time")).Return(nil).Once()
		repo.On("SetArchived", ctx, id, (*time.Time)(nil)).Return(nil).Once()

		require.NoError(t, svc.Archive(ctx, id))
		require.NoError(t, svc.Restore(ctx, id))
		repo.AssertExpectations(t)
		assert.Equal(t, []string{catalog.Badges, catalog.Badges}, stores.invalidated())
	})
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	repo := &repotest.MockCatalogRepository{CatalogKind: model.CatalogKitTypes}
	stores := &spyStores{}
	svc := NewCatalogService(repo, stores, zerolog.Nop())

	t.Run("create", func(t *testing.T) {
		repo.On("Create", ctx, mock.MatchedBy(func(e *model.CatalogEntity) bool {
			return e.Name == "Home" && e.Kind == model.CatalogKitTypes
		})).Return(nil).Once()

		entity, err := svc.Create(ctx, &model.CatalogRequest{Name: "  Home "})

		require.NoError(t, err)
		assert.Equal(t, "Home", entity.Name)
		assert.Contains(t, stores.invalidated(), catalog.KitTypes)
	})

	t.Run("create validates", func(t *testing.T) {
		_, err := svc.Create(ctx, &model.CatalogRequest{Name: "Away", URL: "ftp://kits"})
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("delete of referenced entry", func(t *testing.T) {
		id := uuid.New()
		repo.On("Delete", ctx, id).Return(model.ErrForeignKey).Once()
		assert.ErrorIs(t, svc.Delete(ctx, id), model.ErrForeignKey)
	})
}
