package service

import (
	"context"
	"fmt"

	"stylecore/internal/model"
	"stylecore/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the cart with current product details and prices.
func (s *cartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	items, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart products: %w", err)
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	cart := &model.Cart{UserID: userID, Items: make([]model.CartLine, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		line := model.CartLine{ProductID: item.ProductID, Quantity: item.Quantity, Subtotal: decimal.Zero}
		if p, ok := byID[item.ProductID]; ok {
			line.Product = p
			line.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		cart.Total = cart.Total.Add(line.Subtotal)
		cart.Items = append(cart.Items, line)
	}
	return cart, nil
}

// AddItem puts a product in the cart after checking it is in stock.
func (s *cartService) AddItem(ctx context.Context, userID string, req *model.AddToCartRequest) (*model.Cart, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	if err := s.setItem(ctx, userID, req.ProductID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateItem sets the quantity of a product; zero or less removes it.
func (s *cartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if err := s.setItem(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// RemoveItem removes a product from the cart.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (*model.Cart, error) {
	if err := s.cartRepo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.Get(ctx, userID)
}

func (s *cartService) setItem(ctx context.Context, userID, productID string, quantity int) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}
	if !product.InStock(quantity) {
		s.logger.Warn().
			Str("product_id", productID).
			Int("requested", quantity).
			Int("stock", product.Stock).
			Msg("insufficient stock")
		return model.ErrInsufficientStock
	}

	if _, err := s.cartRepo.SetItem(ctx, userID, productID, quantity); err != nil {
		return persistError(err)
	}
	return nil
}
