package repository

import (
	"context"
	"time"

	"stylecore/internal/model"
	"stylecore/internal/store"

	"github.com/rs/zerolog"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// Create inserts a product, assigning its ID and timestamps.
	Create(ctx context.Context, p *model.Product) error

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDForUpdate retrieves a product and locks it until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs, skipping unknown ones.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// List retrieves products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// Update applies a patch and returns the updated product.
	Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error)

	// SetStock overwrites the stock count.
	SetStock(ctx context.Context, id string, stock int) error

	// Upsert inserts the product or replaces the one with the same ID.
	Upsert(ctx context.Context, p *model.Product) (*model.Product, error)

	// Delete removes a product. Cart rows for it are removed as well.
	Delete(ctx context.Context, id string) error

	// ValidateProductsExist checks if all provided product IDs exist.
	// Returns error if any product ID does not exist.
	ValidateProductsExist(ctx context.Context, ids []string) error
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a user. Returns model.ErrEmailTaken for a duplicate email.
	Create(ctx context.Context, u *model.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByResetToken retrieves the user holding a password reset token.
	GetByResetToken(ctx context.Context, token string) (*model.User, error)

	// Update applies a profile patch.
	Update(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error)

	// Delete removes a user with their addresses and cart.
	Delete(ctx context.Context, id string) error

	// AddRefreshToken stores a refresh token; storing it twice has no effect.
	AddRefreshToken(ctx context.Context, id, token string) error

	// RemoveRefreshToken revokes a refresh token.
	RemoveRefreshToken(ctx context.Context, id, token string) error

	// SetResetToken replaces any outstanding password reset token.
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error

	// ClearResetToken discards the outstanding password reset token.
	ClearResetToken(ctx context.Context, id string) error

	// SetPasswordHash stores a new password hash and clears the reset token.
	SetPasswordHash(ctx context.Context, id, hash string) error

	// SetOTP replaces any outstanding one-time code.
	SetOTP(ctx context.Context, id, code string, expires time.Time) error

	// ClearOTPAndVerifyPhone clears the one-time code and marks the phone verified.
	ClearOTPAndVerifyPhone(ctx context.Context, id string) error

	// AddToWishlist adds a product ID to the wishlist and returns the new list.
	AddToWishlist(ctx context.Context, id, productID string) ([]string, error)

	// RemoveFromWishlist removes a product ID from the wishlist and returns the new list.
	RemoveFromWishlist(ctx context.Context, id, productID string) ([]string, error)
}

// AddressRepository defines the interface for address data access operations.
type AddressRepository interface {
	// Create inserts an address, assigning its sequential ID.
	Create(ctx context.Context, a *model.Address) error

	// GetByID retrieves an address owned by userID.
	GetByID(ctx context.Context, userID string, id int64) (*model.Address, error)

	// ListByUser retrieves a user's addresses, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Address, error)

	// Delete removes an address owned by userID.
	Delete(ctx context.Context, userID string, id int64) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetByUser retrieves the cart items of a user in the order they were added.
	GetByUser(ctx context.Context, userID string) ([]model.CartItem, error)

	// GetItem retrieves a single cart item.
	GetItem(ctx context.Context, userID, productID string) (*model.CartItem, error)

	// SetItem adds a product or replaces its quantity.
	SetItem(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)

	// RemoveItem removes a product from the cart.
	RemoveItem(ctx context.Context, userID, productID string) error

	// Clear empties the cart.
	Clear(ctx context.Context, userID string) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create inserts an order with its item and address snapshots.
	Create(ctx context.Context, o *model.Order) error

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)

	// List retrieves all orders, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus changes the fulfilment status.
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)

	// UpdatePayment records a payment transaction and its status.
	UpdatePayment(ctx context.Context, id, transactionID, paymentStatus string) (*model.Order, error)
}

// Repositories bundles every repository over one executor.
type Repositories struct {
	Products  ProductRepository
	Users     UserRepository
	Addresses AddressRepository
	Cart      CartRepository
	Orders    OrderRepository
}

// New creates the repositories over ex, which is either the dispatcher or a
// transaction.
func New(ex store.Executor, logger zerolog.Logger) *Repositories {
	return &Repositories{
		Products:  NewProductRepository(ex, logger),
		Users:     NewUserRepository(ex, logger),
		Addresses: NewAddressRepository(ex, logger),
		Cart:      NewCartRepository(ex, logger),
		Orders:    NewOrderRepository(ex, logger),
	}
}
