package store

import (
	"context"
	"fmt"
	"sync"

	"stylecore/internal/config"

	"github.com/rs/zerolog"
)

// Opener produces a ready backend or fails. Openers are tried in order.
type Opener struct {
	Name string
	Open func(ctx context.Context) (Backend, error)
}

// PostgresOpener opens a PostgreSQL backend from cfg.
func PostgresOpener(cfg config.DatabaseConfig, logger zerolog.Logger) Opener {
	return Opener{
		Name: "postgres",
		Open: func(ctx context.Context) (Backend, error) {
			if !cfg.Configured() {
				return nil, fmt.Errorf("database connection parameters are not configured")
			}
			pool, err := NewPool(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			return NewPostgresBackend(pool, logger), nil
		},
	}
}

// FileOpener opens a file backend over the document at path.
func FileOpener(path string, logger zerolog.Logger) Opener {
	return Opener{
		Name: "file",
		Open: func(ctx context.Context) (Backend, error) {
			return NewFileBackend(NewFileStore(path, logger), logger), nil
		},
	}
}

// Dispatcher routes operations to the first backend that could be opened.
// Resolution happens once, on first use or on Open, and is only repeated
// after Reset. Errors from a resolved backend are returned to the caller;
// they never trigger a fallback. When no backend opens, every call returns
// an empty result and writes are not durable.
type Dispatcher struct {
	openers []Opener
	logger  zerolog.Logger

	mu      sync.Mutex
	backend Backend
}

// NewDispatcher creates a dispatcher trying openers in order.
func NewDispatcher(logger zerolog.Logger, openers ...Opener) *Dispatcher {
	return &Dispatcher{
		openers: openers,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Open resolves the backend now instead of on first use.
func (d *Dispatcher) Open(ctx context.Context) error {
	_, err := d.resolve(ctx)
	return err
}

// Mode returns the name of the resolved backend, or "" before resolution.
func (d *Dispatcher) Mode() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.backend == nil {
		return ""
	}
	return d.backend.Name()
}

// Reset closes the resolved backend. The next call resolves again.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.backend != nil {
		d.backend.Close()
		d.backend = nil
	}
}

// Close releases the resolved backend.
func (d *Dispatcher) Close() {
	d.Reset()
}

func (d *Dispatcher) resolve(ctx context.Context) (Backend, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.backend != nil {
		return d.backend, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, o := range d.openers {
		b, err := o.Open(ctx)
		if err != nil {
			d.logger.Warn().Err(err).Str("backend", o.Name).Msg("backend unavailable, trying next")
			continue
		}
		if err := b.EnsureSchema(ctx); err != nil {
			d.logger.Warn().Err(err).Str("backend", o.Name).Msg("backend schema setup failed, trying next")
			b.Close()
			continue
		}
		d.backend = b
		d.logger.Info().Str("backend", b.Name()).Msg("storage backend resolved")
		return b, nil
	}

	d.logger.Error().Msg("no storage backend available, writes will not be persisted")
	d.backend = nullBackend{}
	return d.backend, nil
}

// Execute runs a typed operation.
func (d *Dispatcher) Execute(ctx context.Context, op Op) ([]Record, error) {
	b, err := d.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return b.Execute(ctx, op)
}

// Query runs a raw parameterised statement.
func (d *Dispatcher) Query(ctx context.Context, sqlText string, params ...any) ([]Record, error) {
	b, err := d.resolve(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := b.Query(ctx, sqlText, params...)
	if err != nil {
		d.logger.Error().Err(err).Str("backend", b.Name()).Msg("query failed")
		return nil, err
	}
	return rows, nil
}

// WithTx runs fn in a transaction on the resolved backend.
func (d *Dispatcher) WithTx(ctx context.Context, fn func(tx Executor) error) error {
	b, err := d.resolve(ctx)
	if err != nil {
		return err
	}
	return b.WithTx(ctx, fn)
}
