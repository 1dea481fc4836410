package repository

import (
	"context"
	"fmt"

	"stylecore/internal/model"
	"stylecore/internal/store"

	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface over a store executor.
type orderRepository struct {
	db     store.Executor
	logger zerolog.Logger
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db store.Executor, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// Create inserts an order. The ID, status and timestamps are filled in when
// absent.
func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	rows, err := r.db.Execute(ctx, store.Insert{Table: store.TableOrders, Values: orderValues(o)})
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", o.UserID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Error().Str("user_id", o.UserID).Msg("order insert returned no row")
		return fmt.Errorf("failed to create order: %w", store.ErrNotPersisted)
	}
	*o = *orderFromRecord(rows[0])

	r.logger.Debug().
		Str("order_id", o.ID).
		Int("items", len(o.Items)).
		Msg("order created successfully")

	return nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	rows, err := r.db.Execute(ctx, store.SelectByID{Table: store.TableOrders, ID: id})
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Debug().Str("order_id", id).Msg("order not found")
		return nil, nil
	}
	return orderFromRecord(rows[0]), nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.list(ctx, store.SelectList{
		Table: store.TableOrders,
		Where: []store.Cond{store.Eq("user_id", userID)},
	})
}

// List retrieves all orders, newest first.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	return r.list(ctx, store.SelectList{Table: store.TableOrders, Limit: limit, Offset: offset})
}

func (r *orderRepository) list(ctx context.Context, op store.SelectList) ([]model.Order, error) {
	rows, err := r.db.Execute(ctx, op)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, *orderFromRecord(row))
	}
	return orders, nil
}

// UpdateStatus changes the fulfilment status. Returns nil when the order does
// not exist.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}
	return r.update(ctx, id, store.Patch{"status": string(status)})
}

// UpdatePayment records a payment transaction. Returns nil when the order
// does not exist.
func (r *orderRepository) UpdatePayment(ctx context.Context, id, transactionID, paymentStatus string) (*model.Order, error) {
	return r.update(ctx, id, store.Patch{
		"payment_transaction_id": transactionID,
		"payment_status":         paymentStatus,
	})
}

func (r *orderRepository) update(ctx context.Context, id string, patch store.Patch) (*model.Order, error) {
	rows, err := r.db.Execute(ctx, store.Update{Table: store.TableOrders, ID: id, Patch: patch})
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Debug().Str("order_id", id).Msg("order not found")
		return nil, nil
	}
	return orderFromRecord(rows[0]), nil
}
