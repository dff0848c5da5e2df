package domain

import (
	"strings"
	"time"
)

type ProductType string

const (
	ProductTypeAvailable ProductType = "available"
	ProductTypePreorder  ProductType = "preorder"
)

// DefaultProductName is shown for products the backend returned without a name.
const DefaultProductName = "Sản phẩm"

// Product is a snapshot of a backend product. Name and Price are optional on
// the wire; use DisplayBase and ListPrice to read them with defaults applied.
type Product struct {
	ID          string      `json:"_id,omitempty"`
	Name        *string     `json:"name,omitempty"`
	Price       *int64      `json:"price,omitempty"`
	Type        ProductType `json:"type,omitempty"`
	Images      []string    `json:"images,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	Stock       int         `json:"stock"`
	Scale       string      `json:"scale,omitempty"`
	ReleaseDate *time.Time  `json:"releaseDate,omitempty"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
}

// Ptr returns a pointer to v. Handy for building products with optional fields.
func Ptr[T any](v T) *T {
	return &v
}

// DisplayBase returns the raw product name, or DefaultProductName when absent.
func (p Product) DisplayBase() string {
	if p.Name == nil || *p.Name == "" {
		return DefaultProductName
	}
	return *p.Name
}

// ListPrice returns the listed price, or 0 when absent.
func (p Product) ListPrice() int64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// Thumbnail returns the first image URL, if any.
func (p Product) Thumbnail() string {
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			return img
		}
	}
	return ""
}

// Key identifies the product inside a cart. Products without an id fall back
// to their name.
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.DisplayBase()
}
