package store

import (
	"context"
	"time"
)

// Executor runs typed operations.
type Executor interface {
	Execute(ctx context.Context, op Op) ([]Record, error)
}

// Backend is a storage engine the Dispatcher can route to.
type Backend interface {
	Executor

	// Query runs a raw parameterised statement. Placeholders use the $n style.
	Query(ctx context.Context, sqlText string, params ...any) ([]Record, error)

	// WithTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and is rolled back otherwise.
	WithTx(ctx context.Context, fn func(tx Executor) error) error

	// EnsureSchema creates missing tables and indexes. It is safe to call on
	// every start.
	EnsureSchema(ctx context.Context) error

	// Name identifies the backend in logs.
	Name() string

	// Close releases the resources held by the backend.
	Close()
}

// now returns the current time at the precision PostgreSQL stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// nullBackend serves every call with an empty result. The Dispatcher uses it
// when no real backend could be opened.
type nullBackend struct{}

func (nullBackend) Execute(ctx context.Context, op Op) ([]Record, error) {
	return []Record{}, nil
}

func (nullBackend) Query(ctx context.Context, sqlText string, params ...any) ([]Record, error) {
	return []Record{}, nil
}

func (b nullBackend) WithTx(ctx context.Context, fn func(tx Executor) error) error {
	return fn(b)
}

func (nullBackend) EnsureSchema(ctx context.Context) error { return nil }

func (nullBackend) Name() string { return "none" }

func (nullBackend) Close() {}
