package service

import (
	"context"
	"fmt"

	"stylecore/internal/model"
	"stylecore/internal/repository"

	"github.com/rs/zerolog"
)

type wishlistService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) WishlistService {
	return &wishlistService{
		userRepo:    userRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "wishlist").Logger(),
	}
}

// List returns the wishlisted products that still exist, in the order they
// were added.
func (s *wishlistService) List(ctx context.Context, userID string) ([]model.Product, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	products, err := s.productRepo.GetByIDs(ctx, user.Wishlist)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist products: %w", err)
	}
	return products, nil
}

// Add adds a product to the wishlist. Adding it twice has no effect.
func (s *wishlistService) Add(ctx context.Context, userID, productID string) ([]string, error) {
	if productID == "" {
		return nil, model.NewValidationError("productId", "required", "productId is required")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	list, err := s.userRepo.AddToWishlist(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("user_id", userID).Str("product_id", productID).Msg("added to wishlist")
	return list, nil
}

// Remove removes a product from the wishlist.
func (s *wishlistService) Remove(ctx context.Context, userID, productID string) ([]string, error) {
	list, err := s.userRepo.RemoveFromWishlist(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("user_id", userID).Str("product_id", productID).Msg("removed from wishlist")
	return list, nil
}
