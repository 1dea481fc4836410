package repository

import (
	"context"
	"testing"
	"time"

	"stylecore/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, db Store, email string) *model.User {
	t.Helper()

	u := &model.User{Name: "Test User", Email: email}
	require.NoError(t, NewUserRepository(db, zerolog.Nop()).Create(context.Background(), u))
	return u
}

func testOrder(userID string, createdAt time.Time) *model.Order {
	return &model.Order{
		UserID: userID,
		Items: []model.OrderItem{
			{ProductID: "p1", Title: "Denim Jacket", Price: decimal.RequireFromString("79.50"), Quantity: 2},
		},
		Total: decimal.RequireFromString("159.00"),
		ShippingAddress: &model.ShippingAddress{
			FullName: "Asha Rao",
			Phone:    "9876543210",
			Pincode:  "560001",
			State:    "Karnataka",
			City:     "Bengaluru",
			Address1: "12 MG Road",
		},
		PaymentMethod: model.PaymentMethodCOD,
		CreatedAt:     createdAt,
	}
}

func TestOrderRepository_CreateAndGetByID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		ctx := context.Background()
		repo := NewOrderRepository(db, zerolog.Nop())
		user := createUser(t, db, "orders@example.com")

		order := testOrder(user.ID, time.Time{})
		require.NoError(t, repo.Create(ctx, order))
		require.NotEmpty(t, order.ID)
		assert.Equal(t, model.OrderStatusPending, order.Status)

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.UserID)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "p1", got.Items[0].ProductID)
		assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("79.50")))
		assert.True(t, got.Total.Equal(decimal.RequireFromString("159.00")))
		require.NotNil(t, got.ShippingAddress)
		assert.Equal(t, "Bengaluru", got.ShippingAddress.City)
		assert.Equal(t, model.PaymentMethodCOD, got.PaymentMethod)

		missing, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestOrderRepository_ListByUser(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		ctx := context.Background()
		repo := NewOrderRepository(db, zerolog.Nop())
		alice := createUser(t, db, "alice@example.com")
		bob := createUser(t, db, "bob@example.com")

		first := testOrder(alice.ID, baseTime)
		second := testOrder(alice.ID, baseTime.Add(time.Hour))
		other := testOrder(bob.ID, baseTime.Add(2*time.Hour))
		for _, o := range []*model.Order{first, second, other} {
			require.NoError(t, repo.Create(ctx, o))
		}

		orders, err := repo.ListByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)

		all, err := repo.List(ctx, 2, 0)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, other.ID, all[0].ID)

		none, err := repo.ListByUser(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestOrderRepository_UpdateStatusAndPayment(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		ctx := context.Background()
		repo := NewOrderRepository(db, zerolog.Nop())
		user := createUser(t, db, "pay@example.com")

		order := testOrder(user.ID, time.Time{})
		require.NoError(t, repo.Create(ctx, order))

		shipped, err := repo.UpdateStatus(ctx, order.ID, model.OrderStatusShipped)
		require.NoError(t, err)
		require.NotNil(t, shipped)
		assert.Equal(t, model.OrderStatusShipped, shipped.Status)
		assert.Len(t, shipped.Items, 1)

		_, err = repo.UpdateStatus(ctx, order.ID, model.OrderStatus("Lost"))
		assert.ErrorIs(t, err, model.ErrInvalidStatus)

		paid, err := repo.UpdatePayment(ctx, order.ID, "txn_123", model.PaymentStatusPaid)
		require.NoError(t, err)
		require.NotNil(t, paid)
		assert.Equal(t, "txn_123", paid.PaymentTransactionID)
		assert.Equal(t, model.PaymentStatusPaid, paid.PaymentStatus)
		assert.Equal(t, model.OrderStatusShipped, paid.Status)

		missing, err := repo.UpdateStatus(ctx, "missing", model.OrderStatusPaid)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestOrderRepository_SurvivesUserDeletion(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db Store) {
		ctx := context.Background()
		repo := NewOrderRepository(db, zerolog.Nop())
		user := createUser(t, db, "gone@example.com")

		order := testOrder(user.ID, time.Time{})
		require.NoError(t, repo.Create(ctx, order))
		require.NoError(t, NewUserRepository(db, zerolog.Nop()).Delete(ctx, user.ID))

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.UserID)
		assert.Len(t, got.Items, 1)
	})
}

func TestOrderRepository_ErrorPaths(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewOrderRepository(newFileStore(t), zerolog.Nop())

	t.Run("Create with cancelled context", func(t *testing.T) {
		err := repo.Create(ctx, testOrder("", time.Time{}))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create order")
	})

	t.Run("GetByID with cancelled context", func(t *testing.T) {
		o, err := repo.GetByID(ctx, "1")
		assert.Error(t, err)
		assert.Nil(t, o)
	})

	t.Run("UpdateStatus with cancelled context", func(t *testing.T) {
		o, err := repo.UpdateStatus(ctx, "1", model.OrderStatusPaid)
		assert.Error(t, err)
		assert.Nil(t, o)
	})
}
