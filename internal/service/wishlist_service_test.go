package service

import (
	"context"
	"testing"

	"stylecore/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWishlistService_List(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	productRepo := new(MockProductRepository)
	service := NewWishlistService(userRepo, productRepo, zerolog.Nop())

	userRepo.On("GetByID", ctx, "u1").Return(&model.User{ID: "u1", Wishlist: []string{"P001", "gone"}}, nil)
	userRepo.On("GetByID", ctx, "u2").Return(nil, nil)
	productRepo.On("GetByIDs", ctx, []string{"P001", "gone"}).Return([]model.Product{{ID: "P001"}}, nil)

	products, err := service.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "P001", products[0].ID)

	_, err = service.List(ctx, "u2")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestWishlistService_Add(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		productID   string
		product     *model.Product
		expectedErr error
		errCode     string
	}{
		{name: "Existing product", productID: "P001", product: &model.Product{ID: "P001"}},
		{name: "Unknown product", productID: "P999", expectedErr: model.ErrProductNotFound},
		{name: "Empty product ID", errCode: model.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			productRepo := new(MockProductRepository)
			service := NewWishlistService(userRepo, productRepo, zerolog.Nop())

			if tt.productID != "" {
				productRepo.On("GetByID", ctx, tt.productID).Return(tt.product, nil)
			}
			if tt.product != nil {
				userRepo.On("AddToWishlist", ctx, "u1", tt.productID).Return([]string{tt.productID}, nil)
			}

			list, err := service.Add(ctx, "u1", tt.productID)

			switch {
			case tt.expectedErr != nil:
				assert.ErrorIs(t, err, tt.expectedErr)
				userRepo.AssertNotCalled(t, "AddToWishlist", mock.Anything, mock.Anything, mock.Anything)
			case tt.errCode != "":
				var domainErr *model.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.errCode, domainErr.Code)
			default:
				require.NoError(t, err)
				assert.Equal(t, []string{tt.productID}, list)
			}
			userRepo.AssertExpectations(t)
			productRepo.AssertExpectations(t)
		})
	}
}

func TestWishlistService_Remove(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	service := NewWishlistService(userRepo, new(MockProductRepository), zerolog.Nop())

	userRepo.On("RemoveFromWishlist", ctx, "u1", "P001").Return([]string{}, nil)
	userRepo.On("RemoveFromWishlist", ctx, "u2", "P001").Return(nil, model.ErrUserNotFound)

	list, err := service.Remove(ctx, "u1", "P001")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = service.Remove(ctx, "u2", "P001")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
