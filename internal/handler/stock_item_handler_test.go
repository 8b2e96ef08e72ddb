package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStockItemHandler_Create(t *testing.T) {
	number := 10

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.StockItem
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"name":"Hagi","number":10,"season":"1994-95","quantity":3}`,
			mockReturn:     &model.StockItem{ID: uuid.New(), Kind: model.EntityNameset, Name: "Hagi", Number: &number, Quantity: 3},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Validation error",
			body:           `{"name":"Hagi","number":10,"season":"1994-95","quantity":3}`,
			mockError:      model.NewValidationError("quantity", "quantity cannot be negative"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           `hagi`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Unknown kit type",
			body:           `{"name":"Hagi","number":10,"season":"1994-95","quantity":3}`,
			mockError:      model.ErrForeignKey,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeForeignKey,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockStockItemService{kind: model.EntityNameset}
			handler := NewStockItemHandler(svc, nil, zerolog.Nop())

			if tt.expectService {
				svc.On("Create", mock.Anything, mock.MatchedBy(func(req *model.StockItemRequest) bool {
					return req.Name == "Hagi" && req.Number != nil && *req.Number == 10 && req.Quantity == 3
				})).Return(tt.mockReturn, tt.mockError)
			}

			w := serve(handler.Create, http.MethodPost, "/api/namesets", "", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			}
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestStockItemHandler_ListAndGet(t *testing.T) {
	badgeID := uuid.New()
	svc := &MockStockItemService{kind: model.EntityBadge}
	handler := NewStockItemHandler(svc, nil, zerolog.Nop())

	svc.On("List", mock.Anything, true).Return([]model.StockItem{{ID: badgeID, Name: "Serie A"}}, nil)
	svc.On("GetByID", mock.Anything, badgeID).Return(nil, model.ErrNotFound)

	w := serve(handler.List, http.MethodGet, "/api/badges?archived=true", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []model.StockItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Serie A", items[0].Name)

	w = serve(handler.List, http.MethodGet, "/api/badges?archived=2", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(handler.GetByID, http.MethodGet, "/api/badges/"+badgeID.String(), badgeID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestStockItemHandler_StockChanges(t *testing.T) {
	badgeID := uuid.New()

	tests := []struct {
		name           string
		restock        bool
		pathID         string
		body           string
		mockReturn     *model.InventoryLog
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Manual adjustment",
			pathID:         badgeID.String(),
			body:           `{"quantityChange":-1,"reason":"damaged"}`,
			mockReturn:     &model.InventoryLog{ChangeType: model.ChangeManualAdjustment, QuantityBefore: 2, QuantityChange: -1, QuantityAfter: 1},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Adjustment below zero",
			pathID:         badgeID.String(),
			body:           `{"quantityChange":-5}`,
			mockError:      model.ErrNegativeStock,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeNegativeStock,
			expectService:  true,
		},
		{
			name:           "Restock",
			restock:        true,
			pathID:         badgeID.String(),
			body:           `{"quantityChange":4}`,
			mockReturn:     &model.InventoryLog{ChangeType: model.ChangeRestock, QuantityBefore: 0, QuantityChange: 4, QuantityAfter: 4},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid UUID format",
			pathID:         "badge",
			body:           `{"quantityChange":1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			restock:        true,
			pathID:         badgeID.String(),
			body:           `{"quantityChange":"many"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockStockItemService{kind: model.EntityBadge}
			handler := NewStockItemHandler(svc, nil, zerolog.Nop())

			method, fn := "AdjustStock", handler.AdjustStock
			if tt.restock {
				method, fn = "Restock", handler.Restock
			}
			if tt.expectService {
				svc.On(method, mock.Anything, badgeID, mock.AnythingOfType("*model.StockAdjustmentRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			w := serve(fn, http.MethodPost, "/api/badges/"+tt.pathID+"/stock", tt.pathID, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			}
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, method, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestStockItemHandler_Lifecycle(t *testing.T) {
	id := uuid.New()
	svc := &MockStockItemService{kind: model.EntityNameset}
	mirror := &spyMirror{}
	handler := NewStockItemHandler(svc, mirror, zerolog.Nop())

	svc.On("Archive", mock.Anything, id).Return(nil)
	svc.On("Restore", mock.Anything, id).Return(nil)
	svc.On("Delete", mock.Anything, id).Return(model.NewCannotDeleteError("archive it first")).Once()

	assert.Equal(t, http.StatusNoContent, serve(handler.Archive, http.MethodPost, "/", id.String(), "").Code)
	assert.Equal(t, http.StatusNoContent, serve(handler.Restore, http.MethodPost, "/", id.String(), "").Code)

	w := serve(handler.Delete, http.MethodDelete, "/", id.String(), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.ErrCodeCannotDelete, decodeError(t, w).Error)

	svc.On("Delete", mock.Anything, id).Return(nil).Once()
	assert.Equal(t, http.StatusNoContent, serve(handler.Delete, http.MethodDelete, "/", id.String(), "").Code)

	assert.Equal(t, []string{
		"archived:namesets:" + id.String(),
		"restored:namesets:" + id.String(),
		"removed:namesets:" + id.String(),
	}, mirror.moves)
}

func TestCatalogHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockReturn     *model.CatalogEntity
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"name":"Home"}`,
			mockReturn:     &model.CatalogEntity{ID: uuid.New(), Kind: model.CatalogKitTypes, Name: "Home"},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Validation error",
			body:           `{"name":"Home"}`,
			mockError:      model.NewValidationError("name", "name is required"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
			expectService:  true,
		},
		{
			name:           "Service internal error",
			body:           `{"name":"Home"}`,
			mockError:      errors.New("pool closed"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           `[`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCatalogService{kind: model.CatalogKitTypes}
			handler := NewCatalogHandler(svc, nil, zerolog.Nop())

			if tt.expectService {
				svc.On("Create", mock.Anything, &model.CatalogRequest{Name: "Home"}).Return(tt.mockReturn, tt.mockError)
			}

			w := serve(handler.Create, http.MethodPost, "/api/kit-types", "", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			}
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCatalogHandler_ListAndLifecycle(t *testing.T) {
	id := uuid.New()
	svc := &MockCatalogService{kind: model.CatalogKitTypes}
	mirror := &spyMirror{}
	handler := NewCatalogHandler(svc, mirror, zerolog.Nop())

	svc.On("List", mock.Anything, false).Return([]model.CatalogEntity{{ID: id, Name: "Away"}}, nil)
	svc.On("Archive", mock.Anything, id).Return(nil)
	svc.On("Restore", mock.Anything, id).Return(model.ErrNotFound)
	svc.On("Delete", mock.Anything, id).Return(model.ErrForeignKey)

	w := serve(handler.List, http.MethodGet, "/api/kit-types", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var entities []model.CatalogEntity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entities))
	assert.Len(t, entities, 1)

	assert.Equal(t, http.StatusNoContent, serve(handler.Archive, http.MethodPost, "/", id.String(), "").Code)
	assert.Equal(t, http.StatusNotFound, serve(handler.Restore, http.MethodPost, "/", id.String(), "").Code)

	w = serve(handler.Delete, http.MethodDelete, "/", id.String(), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.ErrCodeForeignKey, decodeError(t, w).Error)

	assert.Equal(t, http.StatusBadRequest, serve(handler.Archive, http.MethodPost, "/", "team", "").Code)

	assert.Equal(t, []string{"archived:kitTypes:" + id.String()}, mirror.moves)
	svc.AssertExpectations(t)
}
