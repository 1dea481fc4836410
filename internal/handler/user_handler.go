package handler

import (
	"context"
	"net/http"
	"strconv"

	"stylecore/internal/middleware"
	"stylecore/internal/model"
	"stylecore/internal/service"

	"github.com/rs/zerolog"
)

// Notifier delivers one-time codes and reset links to users.
type Notifier interface {
	SendOTP(ctx context.Context, user *model.User, code string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogNotifier writes deliveries to the log at debug level. It stands in
// for the SMS and mail gateways in development.
type LogNotifier struct {
	Logger zerolog.Logger
}

// SendOTP logs the code.
func (n LogNotifier) SendOTP(ctx context.Context, user *model.User, code string) error {
	n.Logger.Debug().Str("user_id", user.ID).Str("phone", user.Phone).Str("code", code).Msg("otp delivery")
	return nil
}

// SendPasswordReset logs the reset token.
func (n LogNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	n.Logger.Debug().Str("email", email).Str("token", token).Msg("password reset delivery")
	return nil
}

// UserHandler handles account requests.
type UserHandler struct {
	service  service.UserService
	notifier Notifier
	logger   zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service service.UserService, notifier Notifier, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		notifier: notifier,
		logger:   logger.With().Str("handler", "user").Logger(),
	}
}

// Register handles POST /api/users/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/users/login. Session tokens are issued by the
// auth proxy from the returned profile.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	user, err := h.service.Authenticate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ForgotPassword handles POST /api/users/password/forgot. The response is
// the same whether or not the email is registered.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if err := model.Validate(&req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	token, err := h.service.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if token != "" {
		if err := h.notifier.SendPasswordReset(r.Context(), req.Email, token); err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the email is registered, a reset link has been sent",
	})
}

// ResetPassword handles POST /api/users/password/reset.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/users/me.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetProfile(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/users/me.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch model.UserPatch
	if !decodeJSON(w, r, &patch, h.logger) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), middleware.UserID(r.Context()), &patch)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteAccount handles DELETE /api/users/me.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAccount(r.Context(), middleware.UserID(r.Context())); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestOTP handles POST /api/users/me/otp.
func (h *UserHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.service.GetProfile(ctx, middleware.UserID(ctx))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if user.Phone == "" {
		writeServiceError(w, model.NewValidationError("phone", "required", "phone is required"), h.logger)
		return
	}

	code, err := h.service.RequestOTP(ctx, user.ID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if err := h.notifier.SendOTP(ctx, user, code); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Verification code sent"})
}

// VerifyOTP handles POST /api/users/me/otp/verify.
func (h *UserHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyOTPRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.service.VerifyOTP(r.Context(), middleware.UserID(r.Context()), &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StoreRefreshToken handles POST /api/users/me/tokens.
func (h *UserHandler) StoreRefreshToken(w http.ResponseWriter, r *http.Request) {
	h.refreshToken(w, r, h.service.StoreRefreshToken)
}

// RevokeRefreshToken handles DELETE /api/users/me/tokens.
func (h *UserHandler) RevokeRefreshToken(w http.ResponseWriter, r *http.Request) {
	h.refreshToken(w, r, h.service.RevokeRefreshToken)
}

func (h *UserHandler) refreshToken(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID, token string) error) {
	var req model.RefreshTokenRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	if err := model.Validate(&req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := apply(r.Context(), middleware.UserID(r.Context()), req.Token); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAddresses handles GET /api/users/me/addresses.
func (h *UserHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.service.ListAddresses(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}

// AddAddress handles POST /api/users/me/addresses.
func (h *UserHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req model.AddressRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	address, err := h.service.AddAddress(r.Context(), middleware.UserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, address)
}

// DeleteAddress handles DELETE /api/users/me/addresses/{id}.
func (h *UserHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid address ID", h.logger)
		return
	}

	if err := h.service.DeleteAddress(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
