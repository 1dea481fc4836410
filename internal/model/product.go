package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the storefront catalogue.
type Product struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice,omitempty"`
	Category       string           `json:"category,omitempty"`
	Images         []string         `json:"images"`
	SKU            string           `json:"sku,omitempty"`
	Stock          int              `json:"stock"`
	IsActive       bool             `json:"isActive"`
	Attributes     map[string]any   `json:"attributes,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// InStock reports whether qty units can be sold.
func (p *Product) InStock(qty int) bool {
	return p.IsActive && p.Stock >= qty
}

// CreateProductRequest represents the payload for adding a product.
type CreateProductRequest struct {
	Title          string           `json:"title" validate:"required,max=200"`
	Description    string           `json:"description" validate:"max=5000"`
	Price          decimal.Decimal  `json:"price" validate:"gte=0"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice" validate:"omitempty,gte=0"`
	Category       string           `json:"category" validate:"max=100"`
	Images         []string         `json:"images" validate:"omitempty,dive,required"`
	SKU            string           `json:"sku" validate:"max=64"`
	Stock          int              `json:"stock" validate:"gte=0"`
	IsActive       *bool            `json:"isActive"`
	Attributes     map[string]any   `json:"attributes"`
}

// Product builds the entity described by the request. Products are active
// unless the request says otherwise.
func (r *CreateProductRequest) Product() *Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return &Product{
		Title:          r.Title,
		Description:    r.Description,
		Price:          r.Price,
		CompareAtPrice: r.CompareAtPrice,
		Category:       r.Category,
		Images:         images,
		SKU:            r.SKU,
		Stock:          r.Stock,
		IsActive:       active,
		Attributes:     r.Attributes,
	}
}

// ProductPatch lists the product fields an update changes. Absent fields are
// left alone, so stock can be set to zero and products deactivated.
type ProductPatch struct {
	Title          Field[string]          `json:"title" validate:"omitempty,max=200"`
	Description    Field[string]          `json:"description" validate:"omitempty,max=5000"`
	Price          Field[decimal.Decimal] `json:"price" validate:"omitempty,gte=0"`
	CompareAtPrice Field[decimal.Decimal] `json:"compareAtPrice" validate:"omitempty,gte=0"`
	Category       Field[string]          `json:"category" validate:"omitempty,max=100"`
	Images         Field[[]string]        `json:"images"`
	SKU            Field[string]          `json:"sku" validate:"omitempty,max=64"`
	Stock          Field[int]             `json:"stock" validate:"omitempty,gte=0"`
	IsActive       Field[bool]            `json:"isActive"`
	Attributes     Field[map[string]any]  `json:"attributes"`
}

// Product sort orders accepted by ProductFilter.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortTitle     = "title"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Query      string
	Category   string
	ActiveOnly bool
	Sort       string
	Limit      int
	Offset     int
}
