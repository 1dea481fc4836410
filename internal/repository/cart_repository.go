package repository

import (
	"context"
	"fmt"

	"stylecore/internal/model"
	"stylecore/internal/store"

	"github.com/rs/zerolog"
)

type cartRepository struct {
	db     store.Executor
	logger zerolog.Logger
}

// NewCartRepository creates a new cart repository.
func NewCartRepository(db store.Executor, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		db:     db,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetByUser retrieves the cart items of a user in the order they were added.
func (r *cartRepository) GetByUser(ctx context.Context, userID string) ([]model.CartItem, error) {
	rows, err := r.db.Execute(ctx, store.SelectList{
		Table: store.TableCartItems,
		Where: []store.Cond{store.Eq("user_id", userID)},
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	items := make([]model.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, *cartItemFromRecord(row))
	}
	return items, nil
}

// GetItem retrieves a single cart item, or nil when the product is not in
// the cart.
func (r *cartRepository) GetItem(ctx context.Context, userID, productID string) (*model.CartItem, error) {
	rows, err := r.db.Execute(ctx, store.SelectList{
		Table: store.TableCartItems,
		Where: []store.Cond{store.Eq("user_id", userID), store.Eq("product_id", productID)},
		Limit: 1,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return cartItemFromRecord(rows[0]), nil
}

// SetItem adds a product or replaces its quantity. Unknown users or products
// are reported as model.ErrUserNotFound and model.ErrProductNotFound.
func (r *cartRepository) SetItem(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	rows, err := r.db.Execute(ctx, store.Upsert{
		Table: store.TableCartItems,
		Values: store.Record{
			"user_id":    userID,
			"product_id": productID,
			"quantity":   quantity,
		},
		ConflictOn: []string{"user_id", "product_id"},
		Update:     []string{"quantity"},
	})
	if err != nil {
		if isForeignKey(err) {
			return nil, r.missingReference(ctx, userID)
		}
		r.logger.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("failed to set cart item")
		return nil, fmt.Errorf("failed to set cart item: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to set cart item: %w", store.ErrNotPersisted)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("cart item set")
	return cartItemFromRecord(rows[0]), nil
}

// missingReference works out which side of a cart row is missing.
func (r *cartRepository) missingReference(ctx context.Context, userID string) error {
	rows, err := r.db.Execute(ctx, store.SelectByID{Table: store.TableUsers, ID: userID})
	if err == nil && len(rows) == 0 {
		return model.ErrUserNotFound
	}
	return model.ErrProductNotFound
}

// RemoveItem removes a product from the cart. Removing an absent product is
// not an error.
func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := r.db.Execute(ctx, store.Delete{
		Table: store.TableCartItems,
		Where: []store.Cond{store.Eq("user_id", userID), store.Eq("product_id", productID)},
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// Clear empties the cart.
func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.Execute(ctx, store.Delete{
		Table: store.TableCartItems,
		Where: []store.Cond{store.Eq("user_id", userID)},
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
