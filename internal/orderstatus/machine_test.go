package orderstatus

import (
	"errors"
	"testing"
	"time"

	"calcio-stop/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_MatchesTable(t *testing.T) {
	for _, from := range model.OrderStatuses {
		for _, to := range model.OrderStatuses {
			listed := false
			for _, next := range Transitions[from] {
				if next == to {
					listed = true
				}
			}

			err := Transition(from, to)
			if from == to || listed {
				assert.NoError(t, err, "%s -> %s", from, to)
				continue
			}

			require.Error(t, err, "%s -> %s", from, to)
			assert.True(t, errors.Is(err, model.ErrInvalidTransition))

			var transitionErr *InvalidTransitionError
			require.True(t, errors.As(err, &transitionErr))
			assert.Equal(t, from, transitionErr.From)
			assert.Equal(t, to, transitionErr.To)
			assert.Contains(t, err.Error(), string(from))
			assert.Contains(t, err.Error(), string(to))
		}
	}
}

func TestTransition_Specific(t *testing.T) {
	tests := []struct {
		name    string
		from    model.OrderStatus
		to      model.OrderStatus
		allowed bool
	}{
		{"Pending to confirmed", model.OrderStatusPending, model.OrderStatusConfirmed, true},
		{"Pending can be finished directly", model.OrderStatusPending, model.OrderStatusFinished, true},
		{"Confirmed to finished", model.OrderStatusConfirmed, model.OrderStatusFinished, true},
		{"Shipped to finished", model.OrderStatusShipped, model.OrderStatusFinished, true},
		{"Finished is terminal", model.OrderStatusFinished, model.OrderStatusPending, false},
		{"Finished to finished is a no-op", model.OrderStatusFinished, model.OrderStatusFinished, true},
		{"Cancelled can be reopened", model.OrderStatusCancelled, model.OrderStatusPending, true},
		{"Cancelled cannot ship", model.OrderStatusCancelled, model.OrderStatusShipped, false},
		{"Unknown status", model.OrderStatus("LOST"), model.OrderStatus("LOST"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, Allowed(tt.from, tt.to))
		})
	}
}

func TestCanEdit(t *testing.T) {
	assert.True(t, CanEdit(model.OrderStatusPending))
	assert.True(t, CanEdit(model.OrderStatusShipped))
	assert.False(t, CanEdit(model.OrderStatusFinished))
	assert.True(t, IsTerminal(model.OrderStatusFinished))
	assert.False(t, IsTerminal(model.OrderStatusCancelled))
}

func TestArchiveGuards(t *testing.T) {
	now := time.Now()
	saleID := uuid.New()

	active := &model.Order{Status: model.OrderStatusPending}
	archived := &model.Order{Status: model.OrderStatusCancelled, ArchivedAt: &now}
	archivedFinished := &model.Order{Status: model.OrderStatusFinished, ArchivedAt: &now, SaleID: &saleID}

	assert.NoError(t, CanArchive(active))
	assert.True(t, errors.Is(CanArchive(archived), model.ErrValidation))

	assert.NoError(t, CanUnarchive(archived))
	assert.True(t, errors.Is(CanUnarchive(active), model.ErrValidation))
	assert.True(t, errors.Is(CanUnarchive(archivedFinished), model.ErrInvalidTransition))
}

func TestCanChangeStatus(t *testing.T) {
	now := time.Now()

	assert.NoError(t, CanChangeStatus(&model.Order{Status: model.OrderStatusConfirmed}))

	err := CanChangeStatus(&model.Order{Status: model.OrderStatusConfirmed, ArchivedAt: &now})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidTransition))
	assert.Contains(t, err.Error(), "archived")
}

func TestCanDelete(t *testing.T) {
	now := time.Now()
	saleID := uuid.New()

	tests := []struct {
		name    string
		order   *model.Order
		allowed bool
		reason  string
	}{
		{
			name:   "Linked sale blocks delete",
			order:  &model.Order{Status: model.OrderStatusFinished, SaleID: &saleID, ArchivedAt: &now},
			reason: "linked sale exists",
		},
		{
			name:   "Active order must be archived first",
			order:  &model.Order{Status: model.OrderStatusPending},
			reason: "archived first",
		},
		{
			name:    "Archived order without sale",
			order:   &model.Order{Status: model.OrderStatusConfirmed, ArchivedAt: &now},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDelete(tt.order)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrCannotDelete))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}
