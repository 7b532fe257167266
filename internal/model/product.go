package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogue item. Prices are integer minor currency
// units; stock is never allowed below zero.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	SKU         string    `json:"sku" db:"sku"`
	Description string    `json:"description" db:"description"`
	PriceCents  int64     `json:"priceCents" db:"price_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Sizes       []string  `json:"sizes" db:"sizes"`
	Colors      []string  `json:"colors" db:"colors"`
	Stock       int       `json:"stock" db:"stock"`
	Active      bool      `json:"active" db:"active"`
	Images      []string  `json:"images" db:"images"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductFilter narrows a catalogue listing.
type ProductFilter struct {
	Query         string
	Sizes         []string
	Colors        []string
	MinPriceCents *int64
	MaxPriceCents *int64
	Sort          string
	Limit         int
	Offset        int
}

// Catalogue sort orders accepted by the listing endpoint.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
)

// CreateProductRequest is the admin payload for creating or updating a product.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	SKU         string   `json:"sku"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"priceCents"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Stock       *int     `json:"stock"`
}

// Validate checks required fields on the admin product payload.
func (r *CreateProductRequest) Validate() error {
	if r.Name == "" {
		return NewDomainError(ErrCodeInvalidArgument, "Product name is required")
	}
	if r.SKU == "" {
		return NewDomainError(ErrCodeInvalidArgument, "Product SKU is required")
	}
	if r.PriceCents <= 0 {
		return NewDomainError(ErrCodeInvalidArgument, "Product price must be greater than zero")
	}
	if r.Stock != nil && *r.Stock < 0 {
		return NewDomainError(ErrCodeInvalidArgument, "Product stock cannot be negative")
	}
	return nil
}
