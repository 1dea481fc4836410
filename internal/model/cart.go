package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one product in a user's cart. A user holds at most one row per
// product.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartLine is a cart item joined with its current product.
type CartLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   *Product        `json:"product,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart is the priced view of a user's cart.
type Cart struct {
	UserID string          `json:"userId"`
	Items  []CartLine      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

// AddToCartRequest adds a product to the cart. Quantity defaults to one.
type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// UpdateCartItemRequest sets the quantity of a cart item; zero or less
// removes it.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// WishlistRequest names a product for the wishlist.
type WishlistRequest struct {
	ProductID string `json:"productId" validate:"required"`
}
