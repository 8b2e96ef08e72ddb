// Package orderstatus holds the order lifecycle rules: which status changes
// are legal and what may be done to an order in a given status.
package orderstatus

import (
	"fmt"

	"calcio-stop/internal/model"
)

// Transitions lists, for each status, the statuses it may move to.
// FINISHED is terminal.
var Transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending: {
		model.OrderStatusConfirmed,
		model.OrderStatusFinished,
		model.OrderStatusCancelled,
	},
	model.OrderStatusConfirmed: {
		model.OrderStatusPending,
		model.OrderStatusShipped,
		model.OrderStatusFinished,
		model.OrderStatusCancelled,
	},
	model.OrderStatusShipped: {
		model.OrderStatusConfirmed,
		model.OrderStatusFinished,
		model.OrderStatusCancelled,
	},
	model.OrderStatusFinished: {},
	model.OrderStatusCancelled: {
		model.OrderStatusPending,
	},
}

// InvalidTransitionError names the rejected status change.
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}

// Is lets errors.Is match model.ErrInvalidTransition.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == model.ErrInvalidTransition
}

// Unwrap exposes the rejection as a domain error naming both statuses.
func (e *InvalidTransitionError) Unwrap() error {
	return model.NewDomainError(model.ErrCodeInvalidTransition, e.Error())
}

// Allowed reports whether from may move to to. Staying in place is allowed.
func Allowed(from, to model.OrderStatus) bool {
	if from == to {
		_, known := Transitions[from]
		return known
	}
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status change.
func Transition(from, to model.OrderStatus) error {
	if !Allowed(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// IsTerminal reports whether no further transitions leave status.
func IsTerminal(status model.OrderStatus) bool {
	next, known := Transitions[status]
	return known && len(next) == 0
}

// CanEdit reports whether order items and details may still be changed.
func CanEdit(status model.OrderStatus) bool {
	return !IsTerminal(status)
}

// CanChangeStatus reports whether the order's status may be changed at all.
// Archived orders must be unarchived first.
func CanChangeStatus(order *model.Order) error {
	if order.Archived() {
		return model.NewDomainError(model.ErrCodeInvalidTransition, "archived orders cannot change status")
	}
	return nil
}

// CanArchive reports whether the order may be archived. Finished orders are
// archivable since they can never be deleted.
func CanArchive(order *model.Order) error {
	if order.Archived() {
		return model.NewValidationError("archivedAt", "order is already archived")
	}
	return nil
}

// CanUnarchive reports whether the order may be brought back to the active list.
func CanUnarchive(order *model.Order) error {
	if !order.Archived() {
		return model.NewValidationError("archivedAt", "order is not archived")
	}
	if IsTerminal(order.Status) {
		return model.NewDomainError(model.ErrCodeInvalidTransition,
			fmt.Sprintf("%s orders cannot be unarchived", order.Status))
	}
	return nil
}

// CanDelete reports whether the order may be permanently removed.
func CanDelete(order *model.Order) error {
	if order.SaleID != nil {
		return model.NewCannotDeleteError("linked sale exists")
	}
	if !order.Archived() {
		return model.NewCannotDeleteError("order must be archived first")
	}
	return nil
}
