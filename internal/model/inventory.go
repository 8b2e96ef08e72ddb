package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType names the kind of stock-bearing entity.
type EntityType string

const (
	EntityProduct EntityType = "product"
	EntityNameset EntityType = "nameset"
	EntityBadge   EntityType = "badge"
)

// ParseEntityType converts a raw string into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	switch t := EntityType(strings.ToLower(strings.TrimSpace(s))); t {
	case EntityProduct, EntityNameset, EntityBadge:
		return t, nil
	}
	return "", NewValidationError("entityType", fmt.Sprintf("unknown entity type %q", s))
}

// ChangeType classifies the event that changed a stock quantity.
type ChangeType string

const (
	ChangeSale             ChangeType = "sale"
	ChangeSaleEdit         ChangeType = "sale_edit"
	ChangeSaleReversal     ChangeType = "sale_reversal"
	ChangeReturn           ChangeType = "return"
	ChangeReturnReversal   ChangeType = "return_reversal"
	ChangeManualAdjustment ChangeType = "manual_adjustment"
	ChangeInitialStock     ChangeType = "initial_stock"
	ChangeRestock          ChangeType = "restock"
	ChangeReservation      ChangeType = "reservation"
)

func (c ChangeType) valid() bool {
	switch c {
	case ChangeSale, ChangeSaleEdit, ChangeSaleReversal, ChangeReturn, ChangeReturnReversal,
		ChangeManualAdjustment, ChangeInitialStock, ChangeRestock, ChangeReservation:
		return true
	}
	return false
}

// ReferenceType names the record that caused a stock change.
type ReferenceType string

const (
	ReferenceSale        ReferenceType = "sale"
	ReferenceReturn      ReferenceType = "return"
	ReferenceReservation ReferenceType = "reservation"
	ReferenceOrder       ReferenceType = "order"
)

// Reference links a log entry back to its cause.
type Reference struct {
	ID   uuid.UUID
	Type ReferenceType
}

// StockRef identifies one stock counter: a product size, a nameset or a badge.
type StockRef struct {
	EntityType EntityType
	EntityID   uuid.UUID
	Size       string
}

func (r StockRef) String() string {
	if r.Size != "" {
		return fmt.Sprintf("%s:%s/%s", r.EntityType, r.EntityID, r.Size)
	}
	return fmt.Sprintf("%s:%s", r.EntityType, r.EntityID)
}

// Validate checks that sizes are only used for products.
func (r StockRef) Validate() error {
	if _, err := ParseEntityType(string(r.EntityType)); err != nil {
		return err
	}
	if r.EntityID == uuid.Nil {
		return NewValidationError("entityId", "entity id is required")
	}
	if r.EntityType == EntityProduct && strings.TrimSpace(r.Size) == "" {
		return NewValidationError("size", "size is required for products")
	}
	if r.EntityType != EntityProduct && r.Size != "" {
		return NewValidationError("size", "size is only allowed for products")
	}
	return nil
}

// StockChange describes a single stock movement before it is logged.
type StockChange struct {
	Ref            StockRef
	ChangeType     ChangeType
	QuantityBefore int
	QuantityChange int
	Reason         string
	Reference      *Reference
}

// InventoryLog is an immutable audit record of a stock movement.
type InventoryLog struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	EntityType     EntityType     `json:"entityType" db:"entity_type"`
	EntityID       uuid.UUID      `json:"entityId" db:"entity_id"`
	Size           *string        `json:"size,omitempty" db:"size"`
	ChangeType     ChangeType     `json:"changeType" db:"change_type"`
	QuantityBefore int            `json:"quantityBefore" db:"quantity_before"`
	QuantityChange int            `json:"quantityChange" db:"quantity_change"`
	QuantityAfter  int            `json:"quantityAfter" db:"quantity_after"`
	Reason         *string        `json:"reason,omitempty" db:"reason"`
	ReferenceID    *uuid.UUID     `json:"referenceId,omitempty" db:"reference_id"`
	ReferenceType  *ReferenceType `json:"referenceType,omitempty" db:"reference_type"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
}

// NewInventoryLog validates a stock change and builds its log entry.
// quantityAfter is always quantityBefore + quantityChange and never negative.
func NewInventoryLog(change StockChange, now time.Time) (*InventoryLog, error) {
	if err := change.Ref.Validate(); err != nil {
		return nil, err
	}
	if !change.ChangeType.valid() {
		return nil, NewValidationError("changeType", fmt.Sprintf("unknown change type %q", change.ChangeType))
	}
	if change.QuantityBefore < 0 {
		return nil, NewValidationError("quantityBefore", "quantity before cannot be negative")
	}
	if change.QuantityChange == 0 {
		return nil, NewValidationError("quantityChange", "quantity change cannot be zero")
	}

	after := change.QuantityBefore + change.QuantityChange
	if after < 0 {
		return nil, fmt.Errorf("%s would go from %d to %d: %w",
			change.Ref, change.QuantityBefore, after, ErrNegativeStock)
	}

	log := &InventoryLog{
		ID:             uuid.New(),
		EntityType:     change.Ref.EntityType,
		EntityID:       change.Ref.EntityID,
		ChangeType:     change.ChangeType,
		QuantityBefore: change.QuantityBefore,
		QuantityChange: change.QuantityChange,
		QuantityAfter:  after,
		CreatedAt:      now,
	}
	if change.Ref.Size != "" {
		size := change.Ref.Size
		log.Size = &size
	}
	if reason := strings.TrimSpace(change.Reason); reason != "" {
		log.Reason = &reason
	}
	if change.Reference != nil {
		id, refType := change.Reference.ID, change.Reference.Type
		log.ReferenceID = &id
		log.ReferenceType = &refType
	}

	return log, nil
}

// StockAdjustmentRequest is a manual stock edit coming from the dashboard.
type StockAdjustmentRequest struct {
	Size           string `json:"size,omitempty"`
	QuantityChange int    `json:"quantityChange"`
	Reason         string `json:"reason,omitempty"`
}
