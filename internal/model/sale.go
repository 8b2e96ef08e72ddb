package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a completed transaction that has taken stock out of the inventory.
type Sale struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Items        []SaleItem `json:"items"`
	SaleType     SaleType   `json:"saleType" db:"sale_type"`
	CustomerName string     `json:"customerName,omitempty" db:"customer_name"`
	PhoneNumber  string     `json:"phoneNumber,omitempty" db:"phone_number"`
	OrderID      *uuid.UUID `json:"orderId,omitempty" db:"order_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	ArchivedAt   *time.Time `json:"archivedAt,omitempty" db:"archived_at"`
}

// Total returns the sum of price × quantity over all items.
func (s *Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// SaleItem is a line of a sale. A nameset printed on the shirt is taken out
// of stock together with the product.
type SaleItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	SaleID    uuid.UUID       `json:"-" db:"sale_id"`
	Position  int             `json:"-" db:"position"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Size      string          `json:"size" db:"size"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	NamesetID *uuid.UUID      `json:"namesetId,omitempty" db:"nameset_id"`
}

// SaleRequest represents the payload for recording or editing a sale.
type SaleRequest struct {
	Items        []SaleItemRequest `json:"items"`
	SaleType     SaleType          `json:"saleType"`
	CustomerName string            `json:"customerName,omitempty"`
	PhoneNumber  string            `json:"phoneNumber,omitempty"`
}

// SaleItemRequest represents a single line in a sale request.
type SaleItemRequest struct {
	OrderItemRequest
	NamesetID *uuid.UUID `json:"namesetId,omitempty"`
}

// Validate checks the sale request.
func (r *SaleRequest) Validate() error {
	lines := make([]OrderItemRequest, len(r.Items))
	for i, item := range r.Items {
		lines[i] = item.OrderItemRequest
	}
	if err := ValidateLineItems(lines); err != nil {
		return err
	}
	if r.SaleType == "" {
		return NewValidationError("saleType", "sale type is required")
	}
	return nil
}

// Return puts previously sold stock back into the inventory.
type Return struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	SaleID    *uuid.UUID   `json:"saleId,omitempty" db:"sale_id"`
	Items     []ReturnItem `json:"items"`
	Reason    string       `json:"reason,omitempty" db:"reason"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// ReturnItem is a returned product size.
type ReturnItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	ReturnID  uuid.UUID `json:"-" db:"return_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Size      string    `json:"size" db:"size"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// ReturnRequest represents the payload for recording a return.
type ReturnRequest struct {
	SaleID *uuid.UUID   `json:"saleId,omitempty"`
	Items  []ReturnItem `json:"items"`
	Reason string       `json:"reason,omitempty"`
}

// Validate checks the return request.
func (r *ReturnRequest) Validate() error {
	if len(r.Items) == 0 {
		return NewValidationError("items", "at least one item is required")
	}
	for i, item := range r.Items {
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
	}
	return nil
}

// ReservationStatus is the state of a stock reservation.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationFulfilled ReservationStatus = "FULFILLED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation holds stock aside for a customer.
type Reservation struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	ProductID    uuid.UUID         `json:"productId" db:"product_id"`
	Size         string            `json:"size" db:"size"`
	Quantity     int               `json:"quantity" db:"quantity"`
	CustomerName string            `json:"customerName" db:"customer_name"`
	PhoneNumber  string            `json:"phoneNumber,omitempty" db:"phone_number"`
	Status       ReservationStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
}

// ReservationRequest represents the payload for reserving stock.
type ReservationRequest struct {
	ProductID    uuid.UUID `json:"productId"`
	Size         string    `json:"size"`
	Quantity     int       `json:"quantity"`
	CustomerName string    `json:"customerName"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
}

// Validate checks the reservation request.
func (r *ReservationRequest) Validate() error {
	if r.ProductID == uuid.Nil {
		return NewValidationError("productId", "product is required")
	}
	if strings.TrimSpace(r.Size) == "" {
		return NewValidationError("size", "size is required")
	}
	if r.Quantity <= 0 {
		return NewValidationError("quantity", "quantity must be greater than zero")
	}
	if strings.TrimSpace(r.CustomerName) == "" {
		return NewValidationError("customerName", "customer name is required")
	}
	return nil
}
