package service

import (
	"context"
	"testing"

	"calcio-stop/internal/catalog"
	"calcio-stop/internal/inventory"
	"calcio-stop/internal/model"
	"calcio-stop/internal/orderstatus"
	"calcio-stop/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	txr      *repotest.MockTransactor
	sales    *repotest.MockSaleRepository
	orders   *repotest.MockOrderRepository
	recorder *MockRecorder
	stores   *spyStores
	service  *saleService
}

func newSaleFixture() *saleFixture {
	f := &saleFixture{
		txr:      new(repotest.MockTransactor),
		sales:    new(repotest.MockSaleRepository),
		orders:   new(repotest.MockOrderRepository),
		recorder: new(MockRecorder),
		stores:   &spyStores{},
	}
	f.service = NewSaleService(f.txr, f.sales, f.orders, f.recorder, f.stores, zerolog.Nop()).(*saleService)
	f.service.now = fixedNow
	return f
}

// expectApply makes the recorder accept an adjustment on ref with the
// given change, returning a matching log.
func (f *saleFixture) expectApply(ctx context.Context, tx *repotest.MockTx, ref model.StockRef, changeType model.ChangeType, change, before int) {
	f.recorder.On("Apply", ctx, tx, mock.MatchedBy(func(adj inventory.Adjustment) bool {
		return adj.Ref == ref && adj.ChangeType == changeType && adj.Change == change
	})).Return(logFor(inventory.Adjustment{Ref: ref, ChangeType: changeType, Change: change}, before), nil).Once()
}

func saleLine(productID uuid.UUID, size string, qty int) model.SaleItemRequest {
	return model.SaleItemRequest{OrderItemRequest: model.OrderItemRequest{
		ProductID: productID, Size: size, Quantity: qty, Price: decimal.NewFromInt(40),
	}}
}

func TestSaleService_CreateSale(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture()
	tx := new(repotest.MockTx)

	productID := uuid.New()
	namesetID := uuid.New()
	withNameset := saleLine(productID, "M", 1)
	withNameset.NamesetID = &namesetID

	req := &model.SaleRequest{
		SaleType: model.SaleTypeInPerson,
		Items:    []model.SaleItemRequest{saleLine(productID, "M", 2), withNameset},
	}

	f.txr.On("BeginTx", ctx).Return(tx, nil)
	f.sales.On("Create", ctx, tx, mock.AnythingOfType("*model.Sale")).Return(nil)
	f.expectApply(ctx, tx, productRef(productID, "M"), model.ChangeSale, -3, 5)
	f.expectApply(ctx, tx, model.StockRef{EntityType: model.EntityNameset, EntityID: namesetID}, model.ChangeSale, -1, 4)
	f.recorder.On("Published", ctx, mock.MatchedBy(func(logs []*model.InventoryLog) bool {
		return len(logs) == 2
	})).Return()
	tx.On("Commit", ctx).Return(nil)

	sale, err := f.service.CreateSale(ctx, req)

	require.NoError(t, err)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, &namesetID, sale.Items[1].NamesetID)
	assert.True(t, decimal.NewFromInt(120).Equal(sale.Total()))
	assert.ElementsMatch(t, []string{catalog.Sales, catalog.Products, catalog.Namesets}, f.stores.invalidated())
	f.recorder.AssertExpectations(t)
	tx.AssertExpectations(t)
}

func TestSaleService_CreateSale_NegativeStock(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture()
	tx := new(repotest.MockTx)

	f.txr.On("BeginTx", ctx).Return(tx, nil)
	f.sales.On("Create", ctx, tx, mock.Anything).Return(nil)
	f.recorder.On("Apply", ctx, tx, mock.Anything).Return(nil, model.ErrNegativeStock)
	tx.On("Rollback", ctx).Return(nil)

	_, err := f.service.CreateSale(ctx, &model.SaleRequest{
		SaleType: model.SaleTypeOLX,
		Items:    []model.SaleItemRequest{saleLine(uuid.New(), "S", 9)},
	})

	assert.ErrorIs(t, err, model.ErrNegativeStock)
	assert.True(t, tx.RolledBack)
	f.recorder.AssertNotCalled(t, "Published", mock.Anything, mock.Anything)
	assert.Empty(t, f.stores.invalidated())
}

func TestSaleService_UpdateSale_LogsNetDifference(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture()
	tx := new(repotest.MockTx)

	shirt := uuid.New()
	scarf := uuid.New()
	existing := &model.Sale{
		ID:       uuid.New(),
		SaleType: model.SaleTypeOLX,
		Items: []model.SaleItem{
			{ProductID: shirt, Size: "M", Quantity: 2, Price: decimal.NewFromInt(40)},
			{ProductID: scarf, Size: "U", Quantity: 1, Price: decimal.NewFromInt(15)},
		},
	}

	f.txr.On("BeginTx", ctx).Return(tx, nil)
	f.sales.On("GetForUpdate", ctx, tx, existing.ID).Return(existing, nil)
	f.expectApply(ctx, tx, productRef(shirt, "M"), model.ChangeSaleEdit, 1, 3)
	f.expectApply(ctx, tx, productRef(shirt, "L"), model.ChangeSaleEdit, -1, 2)
	f.sales.On("Update", ctx, tx, existing).Return(nil)
	f.recorder.On("Published", ctx, mock.Anything).Return()
	tx.On("Commit", ctx).Return(nil)

	sale, err := f.service.UpdateSale(ctx, existing.ID, &model.SaleRequest{
		SaleType: model.SaleTypeOLX,
		Items: []model.SaleItemRequest{
			saleLine(shirt, "M", 1),
			saleLine(shirt, "L", 1),
			saleLine(scarf, "U", 1),
		},
	})

	require.NoError(t, err)
	assert.Len(t, sale.Items, 3)
	f.recorder.AssertNumberOfCalls(t, "Apply", 2)
	f.recorder.AssertExpectations(t)
}

func TestSaleService_DeleteSale_UnlinksOrder(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture()
	tx := new(repotest.MockTx)

	productID := uuid.New()
	order := confirmedOrder(productID)
	order.Status = model.OrderStatusFinished
	sale := &model.Sale{
		ID:      uuid.New(),
		OrderID: &order.ID,
		Items:   []model.SaleItem{{ProductID: productID, Size: "M", Quantity: 2}},
	}
	order.SaleID = &sale.ID

	f.txr.On("BeginTx", ctx).Return(tx, nil)
	f.sales.On("GetForUpdate", ctx, tx, sale.ID).Return(sale, nil)
	f.expectApply(ctx, tx, productRef(productID, "M"), model.ChangeSaleReversal, 2, 3)
	f.orders.On("GetForUpdate", ctx, tx, order.ID).Return(order, nil)
	f.orders.On("Update", ctx, tx, mock.MatchedBy(func(o *model.Order) bool {
		return o.SaleID == nil && o.Status == model.OrderStatusConfirmed
	})).Return(nil)
	f.sales.On("Delete", ctx, tx, sale.ID).Return(nil)
	f.recorder.On("Published", ctx, mock.Anything).Return()
	tx.On("Commit", ctx).Return(nil)

	// Before the sale is removed the order cannot be deleted.
	assert.ErrorIs(t, orderstatus.CanDelete(order), model.ErrCannotDelete)

	require.NoError(t, f.service.DeleteSale(ctx, sale.ID))

	// Once unlinked and archived it can.
	at := fixedNow()
	order.ArchivedAt = &at
	assert.NoError(t, orderstatus.CanDelete(order))

	assert.Contains(t, f.stores.invalidated(), catalog.Orders)
	f.orders.AssertExpectations(t)
	f.sales.AssertExpectations(t)
}

func TestSaleService_DeleteSale_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture()
	tx := new(repotest.MockTx)
	id := uuid.New()

	f.txr.On("BeginTx", ctx).Return(tx, nil)
	f.sales.On("GetForUpdate", ctx, tx, id).Return(nil, nil)
	tx.On("Rollback", ctx).Return(nil)

	assert.ErrorIs(t, f.service.DeleteSale(ctx, id), model.ErrNotFound)
	f.sales.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
