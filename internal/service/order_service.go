package service

import (
	"context"
	"fmt"
	"slices"

	"stylecore/internal/model"
	"stylecore/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	txm       repository.TxManager
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	txm repository.TxManager,
	orderRepo repository.OrderRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		txm:       txm,
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder checks out in one transaction: every product row is locked and
// its stock verified and decremented, the order is stored with the prices
// charged, and the cart is emptied. Any failure leaves stock and cart as they
// were.
func (s *orderService) CreateOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error) {
	if req == nil {
		return nil, fmt.Errorf("order request is nil")
	}
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	var order *model.Order
	err := s.txm.InTx(ctx, func(repos *repository.Repositories) error {
		lines, err := s.orderLines(ctx, repos, userID, req)
		if err != nil {
			return err
		}

		address, err := s.shippingAddress(ctx, repos, userID, req)
		if err != nil {
			return err
		}

		products, err := s.lockProducts(ctx, repos, lines)
		if err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(lines))
		total := decimal.Zero
		for _, line := range lines {
			product := products[line.ProductID]
			if !product.InStock(line.Quantity) {
				s.logger.Warn().
					Str("product_id", product.ID).
					Int("requested", line.Quantity).
					Int("stock", product.Stock).
					Msg("insufficient stock")
				return model.ErrInsufficientStock
			}
			if err := repos.Products.SetStock(ctx, product.ID, product.Stock-line.Quantity); err != nil {
				return err
			}

			item := model.OrderItem{
				ProductID: product.ID,
				Title:     product.Title,
				Price:     product.Price,
				Quantity:  line.Quantity,
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}
		if req.Total != nil {
			total = *req.Total
		}

		order = &model.Order{
			UserID:          userID,
			Items:           items,
			Total:           total,
			ShippingAddress: address,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   model.PaymentStatusPending,
			Status:          model.OrderStatusPending,
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}

		return repos.Cart.Clear(ctx, userID)
	})
	if err != nil {
		return nil, persistError(err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Int("item_count", len(order.Items)).
		Str("total", order.Total.String()).
		Msg("order created successfully")

	return order, nil
}

// orderLines returns the requested items, or the cart contents when the
// request names none. Repeated products are merged.
func (s *orderService) orderLines(ctx context.Context, repos *repository.Repositories, userID string, req *model.OrderRequest) ([]model.OrderItemRequest, error) {
	lines := req.Items
	if len(lines) == 0 {
		cart, err := repos.Cart.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, item := range cart {
			lines = append(lines, model.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	if len(lines) == 0 {
		return nil, model.ErrEmptyCart
	}

	merged := make([]model.OrderItemRequest, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// lockProducts locks every product named by lines in ID order, so concurrent
// checkouts of overlapping products acquire row locks in the same sequence.
func (s *orderService) lockProducts(ctx context.Context, repos *repository.Repositories, lines []model.OrderItemRequest) (map[string]*model.Product, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	slices.Sort(ids)

	products := make(map[string]*model.Product, len(ids))
	for _, id := range ids {
		product, err := repos.Products.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if product == nil {
			s.logger.Warn().Str("product_id", id).Msg("product validation failed")
			return nil, model.ErrProductNotFound
		}
		products[id] = product
	}
	return products, nil
}

func (s *orderService) shippingAddress(ctx context.Context, repos *repository.Repositories, userID string, req *model.OrderRequest) (*model.ShippingAddress, error) {
	if req.ShippingAddress != nil {
		return req.ShippingAddress, nil
	}
	address, err := repos.Addresses.GetByID(ctx, userID, req.AddressID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}
	return model.ShippingAddressFrom(address), nil
}

// GetByID retrieves an order. Orders of other users are reported as
// forbidden unless the caller is an admin.
func (s *orderService) GetByID(ctx context.Context, userID, id string, admin bool) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !admin && order.UserID != userID {
		s.logger.Warn().Str("order_id", id).Str("user_id", userID).Msg("order access denied")
		return nil, model.ErrForbidden
	}
	return order, nil
}

// ListForUser retrieves a user's orders, newest first.
func (s *orderService) ListForUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// List retrieves all orders, newest first.
func (s *orderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus changes the fulfilment status.
func (s *orderService) UpdateStatus(ctx context.Context, id string, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id).Str("status", string(req.Status)).Msg("order status updated")
	return order, nil
}

// RecordPayment stores the outcome of a payment attempt. A successful
// payment moves a pending order to paid.
func (s *orderService) RecordPayment(ctx context.Context, id string, req *model.RecordPaymentRequest) (*model.Order, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	var order *model.Order
	err := s.txm.InTx(ctx, func(repos *repository.Repositories) error {
		var err error
		order, err = repos.Orders.UpdatePayment(ctx, id, req.TransactionID, req.Status)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		if req.Status == model.PaymentStatusPaid && order.Status == model.OrderStatusPending {
			order, err = repos.Orders.UpdateStatus(ctx, id, model.OrderStatusPaid)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", id).
		Str("payment_status", req.Status).
		Msg("payment recorded")
	return order, nil
}
