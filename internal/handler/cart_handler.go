package handler

import (
	"net/http"

	"stylecore/internal/middleware"
	"stylecore/internal/model"
	"stylecore/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles the shopper's cart and wishlist.
type CartHandler struct {
	cart     service.CartService
	wishlist service.WishlistService
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart service.CartService, wishlist service.WishlistService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		wishlist: wishlist,
		logger:   logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.cart.AddItem(r.Context(), middleware.UserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PUT /api/cart/items/{productId}. A quantity of zero or
// less removes the item.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCartItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.cart.UpdateItem(r.Context(), middleware.UserID(r.Context()), r.PathValue("productId"), req.Quantity)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{productId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.RemoveItem(r.Context(), middleware.UserID(r.Context()), r.PathValue("productId"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// GetWishlist handles GET /api/wishlist.
func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	products, err := h.wishlist.List(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// AddToWishlist handles POST /api/wishlist.
func (h *CartHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req model.WishlistRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	ids, err := h.wishlist.Add(r.Context(), middleware.UserID(r.Context()), req.ProductID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"wishlist": ids})
}

// RemoveFromWishlist handles DELETE /api/wishlist/{productId}.
func (h *CartHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	ids, err := h.wishlist.Remove(r.Context(), middleware.UserID(r.Context()), r.PathValue("productId"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"wishlist": ids})
}
