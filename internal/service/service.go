package service

import (
	"context"

	"stylecore/internal/model"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List retrieves products matching the filter. Limit is clamped to 1..100.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create validates and stores a new product.
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// Update applies a partial update.
	Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error)

	// Delete removes a product.
	Delete(ctx context.Context, id string) error
}

// CartService defines operations on a user's cart. Every mutation returns
// the priced cart.
type CartService interface {
	// Get returns the cart with current product details.
	Get(ctx context.Context, userID string) (*model.Cart, error)

	// AddItem puts a product in the cart, replacing any previous quantity.
	AddItem(ctx context.Context, userID string, req *model.AddToCartRequest) (*model.Cart, error)

	// UpdateItem sets the quantity of a product; zero or less removes it.
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error)

	// RemoveItem removes a product from the cart.
	RemoveItem(ctx context.Context, userID, productID string) (*model.Cart, error)
}

// WishlistService defines operations on a user's wishlist.
type WishlistService interface {
	// List returns the wishlisted products that still exist.
	List(ctx context.Context, userID string) ([]model.Product, error)

	// Add adds a product and returns the wishlist IDs.
	Add(ctx context.Context, userID, productID string) ([]string, error)

	// Remove removes a product and returns the wishlist IDs.
	Remove(ctx context.Context, userID, productID string) ([]string, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder checks out the requested items, or the cart when none are
	// given, in a single transaction.
	CreateOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order. Non-admin callers only see their own orders.
	GetByID(ctx context.Context, userID, id string, admin bool) (*model.Order, error)

	// ListForUser retrieves a user's orders, newest first.
	ListForUser(ctx context.Context, userID string) ([]model.Order, error)

	// List retrieves all orders, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus changes the fulfilment status.
	UpdateStatus(ctx context.Context, id string, req *model.UpdateOrderStatusRequest) (*model.Order, error)

	// RecordPayment stores the outcome of a payment attempt.
	RecordPayment(ctx context.Context, id string, req *model.RecordPaymentRequest) (*model.Order, error)
}

// UserService defines account operations.
type UserService interface {
	// Register creates an account.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// Authenticate checks email and password credentials.
	Authenticate(ctx context.Context, req *model.LoginRequest) (*model.User, error)

	// GetProfile retrieves a user with their addresses.
	GetProfile(ctx context.Context, userID string) (*model.User, error)

	// UpdateProfile applies a profile patch.
	UpdateProfile(ctx context.Context, userID string, patch *model.UserPatch) (*model.User, error)

	// DeleteAccount removes the user with their addresses and cart.
	DeleteAccount(ctx context.Context, userID string) error

	// RequestOTP issues a six-digit phone verification code, replacing any
	// earlier one. Delivery is up to the caller.
	RequestOTP(ctx context.Context, userID string) (string, error)

	// VerifyOTP checks a code and marks the phone verified.
	VerifyOTP(ctx context.Context, userID string, req *model.VerifyOTPRequest) error

	// RequestPasswordReset issues a reset token for the account with the
	// given email. Unknown emails return an empty token and no error.
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	// ResetPassword sets a new password using a reset token.
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error

	// StoreRefreshToken records an issued refresh token.
	StoreRefreshToken(ctx context.Context, userID, token string) error

	// RevokeRefreshToken removes a refresh token.
	RevokeRefreshToken(ctx context.Context, userID, token string) error

	// AddAddress stores a delivery address.
	AddAddress(ctx context.Context, userID string, req *model.AddressRequest) (*model.Address, error)

	// ListAddresses retrieves a user's addresses, newest first.
	ListAddresses(ctx context.Context, userID string) ([]model.Address, error)

	// DeleteAddress removes one of the user's addresses.
	DeleteAddress(ctx context.Context, userID string, id int64) error
}
