package handler

import (
	"errors"
	"net/http"
	"testing"

	"stylecore/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newUserHandler() (*UserHandler, *MockUserService, *mockNotifier) {
	svc := new(MockUserService)
	notifier := new(mockNotifier)
	return NewUserHandler(svc, notifier, zerolog.Nop()), svc, notifier
}

func TestUserHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockReturn     *model.User
		mockError      error
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass"}`,
			mockReturn:     &model.User{ID: testUserID, Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Email taken",
			body:           `{"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass"}`,
			mockError:      model.ErrEmailTaken,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, svc, _ := newUserHandler()
			svc.On("Register", mock.Anything, mock.AnythingOfType("*model.RegisterRequest")).Return(tt.mockReturn, tt.mockError)

			w := serve(handler.Register, newRequest(t, http.MethodPost, "/api/users/register", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "hash")
			svc.AssertExpectations(t)
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	handler, svc, _ := newUserHandler()
	svc.On("Authenticate", mock.Anything, &model.LoginRequest{Email: "asha@example.com", Password: "wrong"}).
		Return(nil, model.ErrInvalidCredentials)

	w := serve(handler.Login, newRequest(t, http.MethodPost, "/api/users/login", `{"email": "asha@example.com", "password": "wrong"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, model.ErrCodeInvalidCredentials, decodeError(t, w).Error)
}

func TestUserHandler_ForgotPassword(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		token          string
		expectService  bool
		expectNotify   bool
		expectedStatus int
	}{
		{name: "Registered email", body: `{"email": "asha@example.com"}`, token: "tok", expectService: true, expectNotify: true, expectedStatus: http.StatusAccepted},
		{name: "Unknown email", body: `{"email": "nobody@example.com"}`, expectService: true, expectedStatus: http.StatusAccepted},
		{name: "Malformed email", body: `{"email": "nope"}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, svc, notifier := newUserHandler()
			if tt.expectService {
				svc.On("RequestPasswordReset", mock.Anything, mock.AnythingOfType("string")).Return(tt.token, nil)
			}
			if tt.expectNotify {
				notifier.On("SendPasswordReset", mock.Anything, "asha@example.com", tt.token).Return(nil)
			}

			w := serve(handler.ForgotPassword, newRequest(t, http.MethodPost, "/api/users/password/forgot", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
			notifier.AssertExpectations(t)
			if !tt.expectNotify {
				notifier.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUserHandler_ResetPassword(t *testing.T) {
	handler, svc, _ := newUserHandler()
	svc.On("ResetPassword", mock.Anything, &model.ResetPasswordRequest{Token: "good", Password: "new-pass-1"}).Return(nil)
	svc.On("ResetPassword", mock.Anything, &model.ResetPasswordRequest{Token: "stale", Password: "new-pass-1"}).Return(model.ErrInvalidResetToken)

	w := serve(handler.ResetPassword, newRequest(t, http.MethodPost, "/api/users/password/reset", `{"token": "good", "password": "new-pass-1"}`))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(handler.ResetPassword, newRequest(t, http.MethodPost, "/api/users/password/reset", `{"token": "stale", "password": "new-pass-1"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeInvalidResetToken, decodeError(t, w).Error)
}

func TestUserHandler_Profile(t *testing.T) {
	handler, svc, _ := newUserHandler()
	svc.On("GetProfile", mock.Anything, testUserID).Return(&model.User{ID: testUserID, Name: "Asha"}, nil)
	svc.On("UpdateProfile", mock.Anything, testUserID, mock.MatchedBy(func(p *model.UserPatch) bool {
		return p.Phone.IsNull() && !p.Name.IsSet()
	})).Return(&model.User{ID: testUserID, Name: "Asha"}, nil)
	svc.On("DeleteAccount", mock.Anything, testUserID).Return(nil)

	w := serve(handler.GetProfile, newRequest(t, http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Asha"`)

	w = serve(handler.UpdateProfile, newRequest(t, http.MethodPatch, "/api/users/me", `{"phone": null}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(handler.DeleteAccount, newRequest(t, http.MethodDelete, "/api/users/me", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.AssertExpectations(t)
}

func TestUserHandler_RequestOTP(t *testing.T) {
	t.Run("Sends code to phone", func(t *testing.T) {
		handler, svc, notifier := newUserHandler()
		user := &model.User{ID: testUserID, Phone: "9876543210"}
		svc.On("GetProfile", mock.Anything, testUserID).Return(user, nil)
		svc.On("RequestOTP", mock.Anything, testUserID).Return("123456", nil)
		notifier.On("SendOTP", mock.Anything, user, "123456").Return(nil)

		w := serve(handler.RequestOTP, newRequest(t, http.MethodPost, "/api/users/me/otp", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.NotContains(t, w.Body.String(), "123456")
		svc.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("Requires a phone", func(t *testing.T) {
		handler, svc, notifier := newUserHandler()
		svc.On("GetProfile", mock.Anything, testUserID).Return(&model.User{ID: testUserID}, nil)

		w := serve(handler.RequestOTP, newRequest(t, http.MethodPost, "/api/users/me/otp", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "phone", decodeError(t, w).Details[0].Field)
		svc.AssertNotCalled(t, "RequestOTP", mock.Anything, mock.Anything)
		notifier.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Delivery failure", func(t *testing.T) {
		handler, svc, notifier := newUserHandler()
		user := &model.User{ID: testUserID, Phone: "9876543210"}
		svc.On("GetProfile", mock.Anything, testUserID).Return(user, nil)
		svc.On("RequestOTP", mock.Anything, testUserID).Return("123456", nil)
		notifier.On("SendOTP", mock.Anything, user, "123456").Return(errors.New("sms gateway down"))

		w := serve(handler.RequestOTP, newRequest(t, http.MethodPost, "/api/users/me/otp", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestUserHandler_VerifyOTP(t *testing.T) {
	handler, svc, _ := newUserHandler()
	svc.On("VerifyOTP", mock.Anything, testUserID, &model.VerifyOTPRequest{Code: "123456"}).Return(nil)
	svc.On("VerifyOTP", mock.Anything, testUserID, &model.VerifyOTPRequest{Code: "000000"}).Return(model.ErrInvalidOTP)

	w := serve(handler.VerifyOTP, newRequest(t, http.MethodPost, "/api/users/me/otp/verify", `{"code": "123456"}`))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(handler.VerifyOTP, newRequest(t, http.MethodPost, "/api/users/me/otp/verify", `{"code": "000000"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeInvalidOTP, decodeError(t, w).Error)
}

func TestUserHandler_RefreshTokens(t *testing.T) {
	handler, svc, _ := newUserHandler()
	svc.On("StoreRefreshToken", mock.Anything, testUserID, "rt-1").Return(nil)
	svc.On("RevokeRefreshToken", mock.Anything, testUserID, "rt-1").Return(nil)

	w := serve(handler.StoreRefreshToken, newRequest(t, http.MethodPost, "/api/users/me/tokens", `{"token": "rt-1"}`))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(handler.RevokeRefreshToken, newRequest(t, http.MethodDelete, "/api/users/me/tokens", `{"token": "rt-1"}`))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(handler.StoreRefreshToken, newRequest(t, http.MethodPost, "/api/users/me/tokens", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeValidation, decodeError(t, w).Error)

	svc.AssertExpectations(t)
}

func TestUserHandler_Addresses(t *testing.T) {
	handler, svc, _ := newUserHandler()
	svc.On("ListAddresses", mock.Anything, testUserID).Return([]model.Address{{ID: 3, FullName: "Asha Rao"}}, nil)
	svc.On("AddAddress", mock.Anything, testUserID, mock.AnythingOfType("*model.AddressRequest")).
		Return(&model.Address{ID: 4, FullName: "Asha Rao"}, nil)
	svc.On("DeleteAddress", mock.Anything, testUserID, int64(3)).Return(nil)
	svc.On("DeleteAddress", mock.Anything, testUserID, int64(99)).Return(model.ErrAddressNotFound)

	w := serve(handler.ListAddresses, newRequest(t, http.MethodGet, "/api/users/me/addresses", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fullName":"Asha Rao"`)

	w = serve(handler.AddAddress, newRequest(t, http.MethodPost, "/api/users/me/addresses", &model.AddressRequest{
		FullName: "Asha Rao", Phone: "9876543210", Pincode: "560001", State: "Karnataka", City: "Bengaluru", Address1: "12 MG Road",
	}))
	assert.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		id             string
		expectedStatus int
	}{
		{id: "3", expectedStatus: http.StatusNoContent},
		{id: "99", expectedStatus: http.StatusNotFound},
		{id: "abc", expectedStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := newRequest(t, http.MethodDelete, "/api/users/me/addresses/"+tt.id, nil)
		req.SetPathValue("id", tt.id)
		assert.Equal(t, tt.expectedStatus, serve(handler.DeleteAddress, req).Code, "address %s", tt.id)
	}

	svc.AssertExpectations(t)
}
