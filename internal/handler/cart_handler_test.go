package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"stylecore/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCart() *model.Cart {
	return &model.Cart{
		UserID: testUserID,
		Items: []model.CartLine{
			{ProductID: "P001", Quantity: 2, Subtotal: decimal.RequireFromString("59.98")},
		},
		Total: decimal.RequireFromString("59.98"),
	}
}

func TestCartHandler_Get(t *testing.T) {
	cartService := new(MockCartService)
	handler := NewCartHandler(cartService, new(MockWishlistService), zerolog.Nop())
	cartService.On("Get", mock.Anything, testUserID).Return(testCart(), nil)

	w := serve(handler.Get, newRequest(t, http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var cart model.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Len(t, cart.Items, 1)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("59.98")))
	cartService.AssertExpectations(t)
}

func TestCartHandler_Get_RequiresUser(t *testing.T) {
	cartService := new(MockCartService)
	handler := NewCartHandler(cartService, new(MockWishlistService), zerolog.Nop())

	req := newRequest(t, http.MethodGet, "/api/cart", nil)
	req.Header.Set("X-User-ID", " ")
	w := serve(handler.Get, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	cartService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCartHandler_AddItem(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", body: `{"productId": "P001", "quantity": 2}`, expectedStatus: http.StatusOK, expectService: true},
		{name: "Unknown product", body: `{"productId": "P999"}`, mockError: model.ErrProductNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "Over stock", body: `{"productId": "P001", "quantity": 50}`, mockError: model.ErrInsufficientStock, expectedStatus: http.StatusConflict, expectService: true},
		{name: "Invalid JSON", body: `{"productId": `, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cartService := new(MockCartService)
			handler := NewCartHandler(cartService, new(MockWishlistService), zerolog.Nop())
			if tt.expectService {
				var ret *model.Cart
				if tt.mockError == nil {
					ret = testCart()
				}
				cartService.On("AddItem", mock.Anything, testUserID, mock.AnythingOfType("*model.AddToCartRequest")).Return(ret, tt.mockError)
			}

			w := serve(handler.AddItem, newRequest(t, http.MethodPost, "/api/cart/items", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			cartService.AssertExpectations(t)
		})
	}
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	cartService := new(MockCartService)
	handler := NewCartHandler(cartService, new(MockWishlistService), zerolog.Nop())
	cartService.On("UpdateItem", mock.Anything, testUserID, "P001", 5).Return(testCart(), nil)
	cartService.On("UpdateItem", mock.Anything, testUserID, "P001", 0).Return(&model.Cart{UserID: testUserID, Items: []model.CartLine{}}, nil)
	cartService.On("RemoveItem", mock.Anything, testUserID, "P001").Return(&model.Cart{UserID: testUserID, Items: []model.CartLine{}}, nil)

	req := newRequest(t, http.MethodPut, "/api/cart/items/P001", `{"quantity": 5}`)
	req.SetPathValue("productId", "P001")
	assert.Equal(t, http.StatusOK, serve(handler.UpdateItem, req).Code)

	req = newRequest(t, http.MethodPut, "/api/cart/items/P001", `{"quantity": 0}`)
	req.SetPathValue("productId", "P001")
	w := serve(handler.UpdateItem, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	req = newRequest(t, http.MethodDelete, "/api/cart/items/P001", nil)
	req.SetPathValue("productId", "P001")
	assert.Equal(t, http.StatusOK, serve(handler.RemoveItem, req).Code)

	cartService.AssertExpectations(t)
}

func TestCartHandler_Wishlist(t *testing.T) {
	wishlist := new(MockWishlistService)
	handler := NewCartHandler(new(MockCartService), wishlist, zerolog.Nop())

	wishlist.On("List", mock.Anything, testUserID).Return([]model.Product{{ID: "P001"}}, nil)
	wishlist.On("Add", mock.Anything, testUserID, "P002").Return([]string{"P001", "P002"}, nil)
	wishlist.On("Add", mock.Anything, testUserID, "P999").Return(nil, model.ErrProductNotFound)
	wishlist.On("Remove", mock.Anything, testUserID, "P001").Return([]string{"P002"}, nil)

	w := serve(handler.GetWishlist, newRequest(t, http.MethodGet, "/api/wishlist", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var products []model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Equal(t, "P001", products[0].ID)

	w = serve(handler.AddToWishlist, newRequest(t, http.MethodPost, "/api/wishlist", `{"productId": "P002"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"wishlist": ["P001", "P002"]}`, w.Body.String())

	w = serve(handler.AddToWishlist, newRequest(t, http.MethodPost, "/api/wishlist", `{"productId": "P999"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := newRequest(t, http.MethodDelete, "/api/wishlist/P001", nil)
	req.SetPathValue("productId", "P001")
	w = serve(handler.RemoveFromWishlist, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"wishlist": ["P002"]}`, w.Body.String())

	wishlist.AssertExpectations(t)
}
