package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	maxProductNameLength = 200
	maxProductSKULength  = 50
	minProductPrice      = 1
	maxProductPrice      = 1_000_000_000
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductSKUExists   = errors.New("product sku already exists")
	ErrInvalidProductSKU  = errors.New("invalid product sku")
	ErrInvalidProductName = errors.New("invalid product name")
	ErrInvalidPrice       = errors.New("invalid product price")
	ErrProductInactive    = errors.New("product is inactive")
)

// Product is a catalog entry. Names and descriptions are bilingual; the
// Arabic variants may be empty for imported products.
type Product struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"`
	Category      string    `json:"category"`
	Name          string    `json:"name"`
	NameAr        string    `json:"name_ar,omitempty"`
	Description   string    `json:"description,omitempty"`
	DescriptionAr string    `json:"description_ar,omitempty"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	Region        string    `json:"region,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	SKU           string `json:"sku"`
	Category      string `json:"category"`
	Name          string `json:"name"`
	NameAr        string `json:"name_ar,omitempty"`
	Description   string `json:"description,omitempty"`
	DescriptionAr string `json:"description_ar,omitempty"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency,omitempty"`
	Region        string `json:"region,omitempty"`
	IsActive      bool   `json:"is_active"`
}

type UpdateProductRequest struct {
	Category      *string `json:"category,omitempty"`
	Name          *string `json:"name,omitempty"`
	NameAr        *string `json:"name_ar,omitempty"`
	Description   *string `json:"description,omitempty"`
	DescriptionAr *string `json:"description_ar,omitempty"`
	PriceCents    *int64  `json:"price_cents,omitempty"`
	Region        *string `json:"region,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

func ValidateProductSKU(sku string) error {
	if sku == "" || len(sku) > maxProductSKULength {
		return ErrInvalidProductSKU
	}
	if strings.ContainsAny(sku, " ") {
		return ErrInvalidProductSKU
	}
	return nil
}

func ValidateProductName(name string) error {
	if name == "" || len(name) > maxProductNameLength {
		return ErrInvalidProductName
	}
	return nil
}

func ValidateProductPrice(price int64) error {
	if price < minProductPrice || price > maxProductPrice {
		return ErrInvalidPrice
	}
	return nil
}
