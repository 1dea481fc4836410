package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"stylecore/internal/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresBackend starts a PostgreSQL testcontainer and returns a
// backend with the schema applied.
func setupPostgresBackend(t *testing.T) *PostgresBackend {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		Database:        "testdb",
		SSLMode:         "disable",
		MaxConnections:  5,
		MinConnections:  1,
		MaxConnLifetime: 300,
	}

	pool, err := NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)

	b := NewPostgresBackend(pool, zerolog.Nop())
	t.Cleanup(b.Close)

	require.NoError(t, b.EnsureSchema(ctx))
	return b
}

func TestNewPool_InvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		errMatch string
	}{
		{
			name: "Cannot connect to database",
			cfg: config.DatabaseConfig{
				Host: "127.0.0.1", Port: 1, User: "user", Password: "pass", Database: "testdb",
				SSLMode: "disable", MaxConnections: 1, MinConnections: 0,
			},
			errMatch: "failed to ping database",
		},
		{
			name: "Invalid SSL mode",
			cfg: config.DatabaseConfig{
				Host: "localhost", Port: 5432, User: "user", Database: "testdb",
				SSLMode: "sometimes", MaxConnections: 1,
			},
			errMatch: "failed to parse database config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			pool, err := NewPool(ctx, tt.cfg, zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMatch)
			assert.Nil(t, pool)
		})
	}
}

func TestPostgresBackend(t *testing.T) {
	b := setupPostgresBackend(t)
	ctx := context.Background()

	// Schema creation is idempotent.
	require.NoError(t, b.EnsureSchema(ctx))

	t.Run("insert and select round trip", func(t *testing.T) {
		rows, err := b.Execute(ctx, Insert{Table: TableProducts, Values: Record{
			"title":  "Denim Jacket",
			"price":  "2499",
			"stock":  20,
			"images": []string{"front.jpg"},
		}})
		require.NoError(t, err)
		require.Len(t, rows, 1)

		id := rows[0].String("id")
		require.NotEmpty(t, id)
		assert.Equal(t, int64(20), rows[0].Int("stock"))
		assert.True(t, rows[0].Bool("is_active"))
		assert.False(t, rows[0].Time("created_at").IsZero())

		got, err := b.Execute(ctx, SelectByID{Table: TableProducts, ID: id})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, decimal.NewFromInt(2499).Equal(got[0].Decimal("price")))
		assert.JSONEq(t, `["front.jpg"]`, string(got[0].JSON("images")))
		assert.Nil(t, got[0]["attributes"])

		// An explicit patch can zero the stock.
		updated, err := b.Execute(ctx, Update{Table: TableProducts, ID: id, Patch: Patch{"stock": 0}})
		require.NoError(t, err)
		require.Len(t, updated, 1)
		assert.Equal(t, int64(0), updated[0].Int("stock"))
		assert.Equal(t, "Denim Jacket", updated[0].String("title"))

		_, err = b.Execute(ctx, Delete{Table: TableProducts, ID: id})
		require.NoError(t, err)
		got, err = b.Execute(ctx, SelectByID{Table: TableProducts, ID: id})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unique violations map to ErrConflict", func(t *testing.T) {
		_, err := b.Execute(ctx, Insert{Table: TableUsers, Values: Record{"id": "dup-1", "email": "dup@example.com"}})
		require.NoError(t, err)

		_, err = b.Execute(ctx, Insert{Table: TableUsers, Values: Record{"id": "dup-2", "email": "dup@example.com"}})
		assert.ErrorIs(t, err, ErrConflict)

		_, err = b.Execute(ctx, Insert{Table: TableCartItems, Values: Record{"user_id": "dup-1", "product_id": "none"}})
		assert.ErrorIs(t, err, ErrForeignKey)
	})

	t.Run("cart upsert keeps one row", func(t *testing.T) {
		_, err := b.Execute(ctx, Insert{Table: TableUsers, Values: Record{"id": "cart-user", "email": "cart@example.com"}})
		require.NoError(t, err)
		p, err := b.Execute(ctx, Insert{Table: TableProducts, Values: Record{"title": "Socks"}})
		require.NoError(t, err)

		for _, qty := range []int{1, 4} {
			_, err := b.Execute(ctx, Upsert{
				Table:      TableCartItems,
				Values:     Record{"user_id": "cart-user", "product_id": p[0]["id"], "quantity": qty},
				ConflictOn: []string{"user_id", "product_id"},
				Update:     []string{"quantity"},
			})
			require.NoError(t, err)
		}

		rows, err := b.Execute(ctx, SelectList{Table: TableCartItems, Where: []Cond{Eq("user_id", "cart-user")}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(4), rows[0].Int("quantity"))
	})

	t.Run("search strips wildcards", func(t *testing.T) {
		for _, title := range []string{"Plain Shirt", "Wool Scarf"} {
			_, err := b.Execute(ctx, Insert{Table: TableProducts, Values: Record{"title": title}})
			require.NoError(t, err)
		}

		rows, err := b.Execute(ctx, SelectList{Table: TableProducts, Search: &Search{Column: "title", Term: "%sh%irt%"}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Plain Shirt", rows[0].String("title"))
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		var id string
		err := b.WithTx(ctx, func(tx Executor) error {
			rows, err := tx.Execute(ctx, Insert{Table: TableProducts, Values: Record{"title": "Phantom"}})
			if err != nil {
				return err
			}
			id = rows[0].String("id")
			return boom
		})
		require.ErrorIs(t, err, boom)

		rows, err := b.Execute(ctx, SelectByID{Table: TableProducts, ID: id})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("raw query normalises known tables", func(t *testing.T) {
		rows, err := b.Query(ctx, "SELECT * FROM products WHERE title = $1", "Wool Scarf")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.True(t, decimal.Zero.Equal(rows[0].Decimal("price")))
		assert.Equal(t, int64(0), rows[0].Int("stock"))

		rows, err = b.Query(ctx, "SELECT COUNT(*) AS n FROM products")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(3), rows[0]["n"])
	})
}
