package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"stylecore/internal/model"
	"stylecore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = time.Hour
)

type userService struct {
	userRepo    repository.UserRepository
	addressRepo repository.AddressRepository
	now         func() time.Time
	newOTP      func() (string, error)
	logger      zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	addressRepo repository.AddressRepository,
	logger zerolog.Logger,
) UserService {
	return &userService{
		userRepo:    userRepo,
		addressRepo: addressRepo,
		now:         time.Now,
		newOTP:      randomOTP,
		logger:      logger.With().Str("service", "user").Logger(),
	}
}

// randomOTP returns a uniformly distributed six-digit code.
func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Register creates an account. Emails are stored lower-cased.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	normalized := *req
	normalized.Name = strings.TrimSpace(req.Name)
	normalized.Email = normalizeEmail(req.Email)
	req = &normalized
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	user := &model.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if existing != nil {
		return nil, model.ErrEmailTaken
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, persistError(err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate checks email and password credentials. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *userService) Authenticate(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	normalized := *req
	normalized.Email = normalizeEmail(req.Email)
	req = &normalized
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	if user == nil || !user.CheckPassword(req.Password) {
		s.logger.Warn().Msg("invalid credentials")
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

// GetProfile retrieves a user with their addresses.
func (s *userService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}
	user.Addresses = addresses
	return user, nil
}

// UpdateProfile applies a profile patch. Changing the phone number resets
// its verification.
func (s *userService) UpdateProfile(ctx context.Context, userID string, patch *model.UserPatch) (*model.User, error) {
	if err := model.Validate(patch); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Update(ctx, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// DeleteAccount removes the user with their addresses and cart. Orders are
// kept without an owner.
func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

// RequestOTP issues a phone verification code valid for ten minutes.
func (s *userService) RequestOTP(ctx context.Context, userID string) (string, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return "", err
	}

	code, err := s.newOTP()
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetOTP(ctx, userID, code, s.now().Add(otpTTL)); err != nil {
		return "", err
	}

	s.logger.Debug().Str("user_id", userID).Msg("otp issued")
	return code, nil
}

// VerifyOTP checks a code against the outstanding one.
func (s *userService) VerifyOTP(ctx context.Context, userID string, req *model.VerifyOTPRequest) error {
	if err := model.Validate(req); err != nil {
		return err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.OTPCode == "" || subtle.ConstantTimeCompare([]byte(user.OTPCode), []byte(req.Code)) != 1 {
		s.logger.Warn().Str("user_id", userID).Msg("invalid otp")
		return model.ErrInvalidOTP
	}
	if user.OTPExpires == nil || s.now().After(*user.OTPExpires) {
		return model.ErrOTPExpired
	}

	return s.userRepo.ClearOTPAndVerifyPhone(ctx, userID)
}

// RequestPasswordReset issues a reset token valid for one hour, replacing
// any earlier token.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("failed to request password reset: %w", err)
	}
	if user == nil {
		s.logger.Debug().Msg("password reset requested for unknown email")
		return "", nil
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, s.now().Add(resetTokenTTL)); err != nil {
		return "", err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset requested")
	return token, nil
}

// ResetPassword sets a new password. The token is consumed.
func (s *userService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if err := model.Validate(req); err != nil {
		return err
	}

	user, err := s.userRepo.GetByResetToken(ctx, req.Token)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if user == nil {
		return model.ErrInvalidResetToken
	}
	if user.ResetExpires == nil || s.now().After(*user.ResetExpires) {
		if err := s.userRepo.ClearResetToken(ctx, user.ID); err != nil {
			return err
		}
		return model.ErrInvalidResetToken
	}

	if err := user.SetPassword(req.Password); err != nil {
		return err
	}
	if err := s.userRepo.SetPasswordHash(ctx, user.ID, user.PasswordHash); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// StoreRefreshToken records an issued refresh token.
func (s *userService) StoreRefreshToken(ctx context.Context, userID, token string) error {
	return s.userRepo.AddRefreshToken(ctx, userID, token)
}

// RevokeRefreshToken removes a refresh token.
func (s *userService) RevokeRefreshToken(ctx context.Context, userID, token string) error {
	return s.userRepo.RemoveRefreshToken(ctx, userID, token)
}

// AddAddress stores a delivery address.
func (s *userService) AddAddress(ctx context.Context, userID string, req *model.AddressRequest) (*model.Address, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	address := &model.Address{
		UserID:   userID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Pincode:  req.Pincode,
		State:    req.State,
		District: req.District,
		City:     req.City,
		Address1: req.Address1,
		Landmark: req.Landmark,
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, persistError(err)
	}
	return address, nil
}

// ListAddresses retrieves a user's addresses, newest first.
func (s *userService) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}
	return addresses, nil
}

// DeleteAddress removes one of the user's addresses.
func (s *userService) DeleteAddress(ctx context.Context, userID string, id int64) error {
	return s.addressRepo.Delete(ctx, userID, id)
}

func (s *userService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
