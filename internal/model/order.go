package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusFinished  OrderStatus = "FINISHED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every known order status.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusFinished,
	OrderStatusCancelled,
}

// ParseOrderStatus converts a raw string into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range OrderStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", NewValidationError("status", fmt.Sprintf("unknown order status %q", s))
}

// UnmarshalText rejects unknown statuses while decoding JSON.
func (s *OrderStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SaleType is the channel a sale or order went through.
type SaleType string

const (
	SaleTypeOLX      SaleType = "OLX"
	SaleTypeInPerson SaleType = "IN-PERSON"
	SaleTypeVinted   SaleType = "VINTED"
)

// ParseSaleType converts a raw string into a SaleType.
func ParseSaleType(s string) (SaleType, error) {
	switch t := SaleType(strings.ToUpper(strings.TrimSpace(s))); t {
	case SaleTypeOLX, SaleTypeInPerson, SaleTypeVinted:
		return t, nil
	}
	return "", NewValidationError("saleType", fmt.Sprintf("unknown sale type %q", s))
}

// UnmarshalText rejects unknown sale types while decoding JSON.
func (t *SaleType) UnmarshalText(text []byte) error {
	parsed, err := ParseSaleType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Order represents a customer order that becomes a sale once finished.
type Order struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Items        []OrderItem `json:"items"`
	Status       OrderStatus `json:"status" db:"status"`
	SaleType     SaleType    `json:"saleType" db:"sale_type"`
	CustomerName string      `json:"customerName,omitempty" db:"customer_name"`
	PhoneNumber  string      `json:"phoneNumber,omitempty" db:"phone_number"`
	SaleID       *uuid.UUID  `json:"saleId,omitempty" db:"sale_id"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
	ArchivedAt   *time.Time  `json:"archivedAt,omitempty" db:"archived_at"`
}

// Archived reports whether the order has been soft-deleted.
func (o *Order) Archived() bool {
	return o.ArchivedAt != nil
}

// HasCustomerInfo reports whether both customer name and phone are present.
func (o *Order) HasCustomerInfo() bool {
	return strings.TrimSpace(o.CustomerName) != "" && strings.TrimSpace(o.PhoneNumber) != ""
}

// Total returns the sum of price × quantity over all items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	Position  int             `json:"-" db:"position"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Size      string          `json:"size" db:"size"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// OrderRequest represents the payload for creating or editing an order.
type OrderRequest struct {
	Items        []OrderItemRequest `json:"items"`
	SaleType     SaleType           `json:"saleType"`
	CustomerName string             `json:"customerName,omitempty"`
	PhoneNumber  string             `json:"phoneNumber,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"productId"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// StatusRequest asks for an order status change. Customer fields are only
// consulted when moving to FINISHED.
type StatusRequest struct {
	Status       OrderStatus `json:"status"`
	CustomerName string      `json:"customerName,omitempty"`
	PhoneNumber  string      `json:"phoneNumber,omitempty"`
}

// ValidateLineItems checks the shared constraints of order and sale lines.
func ValidateLineItems(items []OrderItemRequest) error {
	if len(items) == 0 {
		return NewValidationError("items", "at least one item is required")
	}
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductID == uuid.Nil {
			return NewValidationError(field+".productId", "product is required")
		}
		if strings.TrimSpace(item.Size) == "" {
			return NewValidationError(field+".size", "size is required")
		}
		if item.Quantity <= 0 {
			return NewValidationError(field+".quantity", "quantity must be greater than zero")
		}
		if item.Price.IsNegative() {
			return NewValidationError(field+".price", "price cannot be negative")
		}
	}
	return nil
}

// Validate checks the line items and sale type of an order request.
func (r *OrderRequest) Validate() error {
	if err := ValidateLineItems(r.Items); err != nil {
		return err
	}
	if r.SaleType == "" {
		return NewValidationError("saleType", "sale type is required")
	}
	return nil
}
