package repository

import (
	"context"
	"fmt"

	"stylecore/internal/model"
	"stylecore/internal/store"

	"github.com/rs/zerolog"
)

type addressRepository struct {
	db     store.Executor
	logger zerolog.Logger
}

// NewAddressRepository creates a new address repository.
func NewAddressRepository(db store.Executor, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		db:     db,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// Create inserts an address. Returns model.ErrUserNotFound when the owner
// does not exist.
func (r *addressRepository) Create(ctx context.Context, a *model.Address) error {
	rows, err := r.db.Execute(ctx, store.Insert{Table: store.TableAddresses, Values: addressValues(a)})
	if err != nil {
		if isForeignKey(err) {
			return model.ErrUserNotFound
		}
		r.logger.Error().Err(err).Str("user_id", a.UserID).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("failed to create address: %w", store.ErrNotPersisted)
	}
	*a = *addressFromRecord(rows[0])
	return nil
}

// GetByID retrieves an address owned by userID. Addresses of other users are
// reported as missing.
func (r *addressRepository) GetByID(ctx context.Context, userID string, id int64) (*model.Address, error) {
	rows, err := r.db.Execute(ctx, store.SelectByID{Table: store.TableAddresses, ID: id})
	if err != nil {
		r.logger.Error().Err(err).Int64("address_id", id).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}
	if len(rows) == 0 || rows[0].String("user_id") != userID {
		r.logger.Debug().Int64("address_id", id).Str("user_id", userID).Msg("address not found")
		return nil, nil
	}
	return addressFromRecord(rows[0]), nil
}

// ListByUser retrieves a user's addresses, newest first.
func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]model.Address, error) {
	rows, err := r.db.Execute(ctx, store.SelectList{
		Table: store.TableAddresses,
		Where: []store.Cond{store.Eq("user_id", userID)},
	})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}

	addresses := make([]model.Address, 0, len(rows))
	for _, row := range rows {
		addresses = append(addresses, *addressFromRecord(row))
	}
	return addresses, nil
}

// Delete removes an address owned by userID.
func (r *addressRepository) Delete(ctx context.Context, userID string, id int64) error {
	a, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if a == nil {
		return model.ErrAddressNotFound
	}

	if _, err := r.db.Execute(ctx, store.Delete{
		Table: store.TableAddresses,
		ID:    id,
		Where: []store.Cond{store.Eq("user_id", userID)},
	}); err != nil {
		r.logger.Error().Err(err).Int64("address_id", id).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
