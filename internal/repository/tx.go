package repository

import (
	"context"

	"stylecore/internal/store"

	"github.com/rs/zerolog"
)

// Store is the storage handle repositories and transactions run against.
// *store.Dispatcher satisfies it.
type Store interface {
	store.Executor
	WithTx(ctx context.Context, fn func(tx store.Executor) error) error
}

// TxManager runs work against repositories bound to one transaction.
type TxManager interface {
	// InTx commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type txManager struct {
	db     Store
	logger zerolog.Logger
}

// NewTxManager creates a transaction manager over db.
func NewTxManager(db Store, logger zerolog.Logger) TxManager {
	return &txManager{
		db:     db,
		logger: logger,
	}
}

// InTx runs fn with repositories bound to a new transaction.
func (m *txManager) InTx(ctx context.Context, fn func(repos *Repositories) error) error {
	return m.db.WithTx(ctx, func(tx store.Executor) error {
		return fn(New(tx, m.logger))
	})
}
