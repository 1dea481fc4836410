package handler

import (
	"context"

	"stylecore/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) cart(args mock.Arguments) (*model.Cart, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID))
}

func (m *MockCartService) AddItem(ctx context.Context, userID string, req *model.AddToCartRequest) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID, req))
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID, productID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, productID string) (*model.Cart, error) {
	return m.cart(m.Called(ctx, userID, productID))
}

// MockWishlistService is a mock implementation of WishlistService.
type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) List(ctx context.Context, userID string) ([]model.Product, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockWishlistService) Add(ctx context.Context, userID, productID string) ([]string, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockWishlistService) Remove(ctx context.Context, userID, productID string) ([]string, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) orders(args mock.Arguments) ([]model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, userID, req))
}

func (m *MockOrderService) GetByID(ctx context.Context, userID, id string, admin bool) (*model.Order, error) {
	return m.order(m.Called(ctx, userID, id, admin))
}

func (m *MockOrderService) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	return m.orders(m.Called(ctx, userID))
}

func (m *MockOrderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	return m.orders(m.Called(ctx, limit, offset))
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id string, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, id, req))
}

func (m *MockOrderService) RecordPayment(ctx context.Context, id string, req *model.RecordPaymentRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, id, req))
}

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) user(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	return m.user(m.Called(ctx, req))
}

func (m *MockUserService) Authenticate(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	return m.user(m.Called(ctx, req))
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return m.user(m.Called(ctx, userID))
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID string, patch *model.UserPatch) (*model.User, error) {
	return m.user(m.Called(ctx, userID, patch))
}

func (m *MockUserService) DeleteAccount(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserService) RequestOTP(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) VerifyOTP(ctx context.Context, userID string, req *model.VerifyOTPRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

func (m *MockUserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockUserService) StoreRefreshToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockUserService) RevokeRefreshToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockUserService) AddAddress(ctx context.Context, userID string, req *model.AddressRequest) (*model.Address, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockUserService) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Address), args.Error(1)
}

func (m *MockUserService) DeleteAddress(ctx context.Context, userID string, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

// mockNotifier records deliveries.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendOTP(ctx context.Context, user *model.User, code string) error {
	return m.Called(ctx, user, code).Error(0)
}

func (m *mockNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}
