package repository

import (
	"context"
	"fmt"
	"time"

	"stylecore/internal/model"
	"stylecore/internal/store"

	"github.com/rs/zerolog"
)

type userRepository struct {
	db     store.Executor
	logger zerolog.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db store.Executor, logger zerolog.Logger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// Create inserts a user. The email is the natural key; a duplicate returns
// model.ErrEmailTaken.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	rows, err := r.db.Execute(ctx, store.Insert{Table: store.TableUsers, Values: userValues(u)})
	if err != nil {
		if isConflict(err) {
			r.logger.Debug().Str("email", u.Email).Msg("email already registered")
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Error().Msg("user insert returned no row")
		return fmt.Errorf("failed to create user: %w", store.ErrNotPersisted)
	}
	*u = *userFromRecord(rows[0])

	r.logger.Info().Str("user_id", u.ID).Msg("user created")
	return nil
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	rows, err := r.db.Execute(ctx, store.SelectByID{Table: store.TableUsers, ID: id})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Debug().Str("user_id", id).Msg("user not found")
		return nil, nil
	}
	return userFromRecord(rows[0]), nil
}

// GetByEmail retrieves a user by email address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, store.Eq("email", email))
}

// GetByResetToken retrieves the user holding a password reset token.
func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(ctx, store.Eq("reset_token", token))
}

func (r *userRepository) findOne(ctx context.Context, cond store.Cond) (*model.User, error) {
	rows, err := r.db.Execute(ctx, store.SelectList{
		Table: store.TableUsers,
		Where: []store.Cond{cond},
		Limit: 1,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("column", cond.Column).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Debug().Str("column", cond.Column).Msg("user not found")
		return nil, nil
	}
	return userFromRecord(rows[0]), nil
}

// Update applies a profile patch. Returns nil when the user does not exist.
func (r *userRepository) Update(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	p := store.Patch{}
	setField(p, "name", patch.Name, nil)
	setField(p, "phone", patch.Phone, nil)
	if patch.Phone.IsSet() {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, nil
		}
		// A changed number has to be verified again.
		if phone, _ := patch.Phone.Value(); phone != current.Phone {
			p["is_phone_verified"] = false
		}
	}

	rows, err := r.db.Execute(ctx, store.Update{Table: store.TableUsers, ID: id, Patch: p})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Debug().Str("user_id", id).Msg("user not found")
		return nil, nil
	}
	return userFromRecord(rows[0]), nil
}

// Delete removes a user. Addresses and cart items go with it; orders keep
// their snapshots without the owner.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return model.ErrUserNotFound
	}
	if _, err := r.db.Execute(ctx, store.Delete{Table: store.TableUsers, ID: id}); err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("failed to delete user: %w", err)
	}

	r.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// AddRefreshToken stores a refresh token.
func (r *userRepository) AddRefreshToken(ctx context.Context, id, token string) error {
	_, err := r.modifyList(ctx, id, "refresh_tokens", func(u *model.User) []string {
		for _, t := range u.RefreshTokens {
			if t == token {
				return u.RefreshTokens
			}
		}
		return append(u.RefreshTokens, token)
	})
	return err
}

// RemoveRefreshToken revokes a refresh token.
func (r *userRepository) RemoveRefreshToken(ctx context.Context, id, token string) error {
	_, err := r.modifyList(ctx, id, "refresh_tokens", func(u *model.User) []string {
		return without(u.RefreshTokens, token)
	})
	return err
}

// AddToWishlist adds a product ID to the wishlist.
func (r *userRepository) AddToWishlist(ctx context.Context, id, productID string) ([]string, error) {
	return r.modifyList(ctx, id, "wishlist", func(u *model.User) []string {
		if u.HasWishlistItem(productID) {
			return u.Wishlist
		}
		return append(u.Wishlist, productID)
	})
}

// RemoveFromWishlist removes a product ID from the wishlist.
func (r *userRepository) RemoveFromWishlist(ctx context.Context, id, productID string) ([]string, error) {
	return r.modifyList(ctx, id, "wishlist", func(u *model.User) []string {
		return without(u.Wishlist, productID)
	})
}

// modifyList rewrites one of the JSON list columns. Callers that need the
// read and write to be atomic run it inside a transaction.
func (r *userRepository) modifyList(ctx context.Context, id, column string, fn func(u *model.User) []string) ([]string, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, model.ErrUserNotFound
	}

	list := fn(u)
	if list == nil {
		list = []string{}
	}
	if err := r.patch(ctx, id, store.Patch{column: jsonValue(list)}); err != nil {
		return nil, err
	}
	return list, nil
}

// SetResetToken replaces any outstanding password reset token.
func (r *userRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.patch(ctx, id, store.Patch{"reset_token": token, "reset_expires": expires})
}

// ClearResetToken discards the outstanding password reset token.
func (r *userRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.patch(ctx, id, store.Patch{"reset_token": nil, "reset_expires": nil})
}

// SetPasswordHash stores a new password hash and clears the reset token.
func (r *userRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.patch(ctx, id, store.Patch{
		"password":      hash,
		"reset_token":   nil,
		"reset_expires": nil,
	})
}

// SetOTP replaces any outstanding one-time code.
func (r *userRepository) SetOTP(ctx context.Context, id, code string, expires time.Time) error {
	return r.patch(ctx, id, store.Patch{"otp_code": code, "otp_expires": expires})
}

// ClearOTPAndVerifyPhone clears the one-time code and marks the phone verified.
func (r *userRepository) ClearOTPAndVerifyPhone(ctx context.Context, id string) error {
	return r.patch(ctx, id, store.Patch{
		"otp_code":          nil,
		"otp_expires":       nil,
		"is_phone_verified": true,
	})
}

func (r *userRepository) patch(ctx context.Context, id string, patch store.Patch) error {
	rows, err := r.db.Execute(ctx, store.Update{Table: store.TableUsers, ID: id, Patch: patch})
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		return fmt.Errorf("failed to update user: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Debug().Str("user_id", id).Msg("user not found")
		return model.ErrUserNotFound
	}
	return nil
}

func without(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
