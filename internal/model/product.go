package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a football shirt in the catalogue with per-size stock.
type Product struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	TeamID     *uuid.UUID      `json:"teamId,omitempty" db:"team_id"`
	KitTypeID  *uuid.UUID      `json:"kitTypeId,omitempty" db:"kit_type_id"`
	Season     string          `json:"season,omitempty" db:"season"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Sizes      []ProductSize   `json:"sizes"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	ArchivedAt *time.Time      `json:"archivedAt,omitempty" db:"archived_at"`
}

// ProductSize is the stock held for one size of a product.
type ProductSize struct {
	Size     string `json:"size" db:"size"`
	Quantity int    `json:"quantity" db:"quantity"`
}

// Quantity returns the stock for a size, or zero when the size is unknown.
func (p *Product) Quantity(size string) int {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Quantity
		}
	}
	return 0
}

// ProductRequest represents the payload for creating a product.
type ProductRequest struct {
	Name      string          `json:"name"`
	TeamID    *uuid.UUID      `json:"teamId,omitempty"`
	KitTypeID *uuid.UUID      `json:"kitTypeId,omitempty"`
	Season    string          `json:"season,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Sizes     []ProductSize   `json:"sizes"`
}

// Validate checks the product request.
func (r *ProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if r.Price.IsNegative() {
		return NewValidationError("price", "price cannot be negative")
	}
	seen := make(map[string]struct{}, len(r.Sizes))
	for i, s := range r.Sizes {
		field := fmt.Sprintf("sizes[%d]", i)
		if strings.TrimSpace(s.Size) == "" {
			return NewValidationError(field+".size", "size is required")
		}
		if s.Quantity < 0 {
			return NewValidationError(field+".quantity", "quantity cannot be negative")
		}
		if _, dup := seen[s.Size]; dup {
			return NewValidationError(field+".size", fmt.Sprintf("duplicate size %q", s.Size))
		}
		seen[s.Size] = struct{}{}
	}
	return nil
}

// StockItem is a scalar-stock entity: a nameset or a badge.
type StockItem struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Kind       EntityType `json:"kind" db:"-"`
	Name       string     `json:"name" db:"name"`
	Number     *int       `json:"number,omitempty" db:"number"`
	Season     string     `json:"season,omitempty" db:"season"`
	KitTypeID  *uuid.UUID `json:"kitTypeId,omitempty" db:"kit_type_id"`
	Quantity   int        `json:"quantity" db:"quantity"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty" db:"archived_at"`
}

// StockItemRequest represents the payload for creating a nameset or badge.
type StockItemRequest struct {
	Name      string     `json:"name"`
	Number    *int       `json:"number,omitempty"`
	Season    string     `json:"season,omitempty"`
	KitTypeID *uuid.UUID `json:"kitTypeId,omitempty"`
	Quantity  int        `json:"quantity"`
}

// Validate checks the stock item request.
func (r *StockItemRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if r.Number != nil && *r.Number < 0 {
		return NewValidationError("number", "number cannot be negative")
	}
	if r.Quantity < 0 {
		return NewValidationError("quantity", "quantity cannot be negative")
	}
	return nil
}

// CatalogKind names a reference table without stock.
type CatalogKind string

const (
	CatalogTeams    CatalogKind = "teams"
	CatalogKitTypes CatalogKind = "kit_types"
	CatalogLeagues  CatalogKind = "leagues"
	CatalogSellers  CatalogKind = "sellers"
)

// CatalogEntity is a team, kit type, league or seller.
type CatalogEntity struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	Kind       CatalogKind `json:"kind" db:"-"`
	Name       string      `json:"name" db:"name"`
	URL        string      `json:"url,omitempty" db:"url"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
	ArchivedAt *time.Time  `json:"archivedAt,omitempty" db:"archived_at"`
}

// CatalogRequest represents the payload for creating a catalogue entity.
type CatalogRequest struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Validate checks the catalogue request.
func (r *CatalogRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if r.URL != "" && !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
		return NewValidationError("url", "url must start with http:// or https://")
	}
	return nil
}

// ImageVariant is one of the resized renditions of an uploaded image.
type ImageVariant string

const (
	ImageThumbnail ImageVariant = "thumbnail"
	ImageMedium    ImageVariant = "medium"
	ImageLarge     ImageVariant = "large"
)

// ParseImageVariant converts a raw string into an ImageVariant.
func ParseImageVariant(s string) (ImageVariant, error) {
	switch v := ImageVariant(strings.ToLower(s)); v {
	case ImageThumbnail, ImageMedium, ImageLarge:
		return v, nil
	}
	return "", NewValidationError("variant", fmt.Sprintf("unknown image variant %q", s))
}

// Image is a stored image variant for an entity.
type Image struct {
	EntityID uuid.UUID    `json:"entityId" db:"entity_id"`
	Variant  ImageVariant `json:"variant" db:"variant"`
	URL      string       `json:"url" db:"url"`
}
