package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stylecore/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes mapped to store errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// NewPool creates a new PostgreSQL connection pool and verifies it with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Int("min_connections", cfg.MinConnections).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresBackend runs operations against PostgreSQL.
type PostgresBackend struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresBackend creates a backend over an open pool. The backend owns
// the pool and closes it in Close.
func NewPostgresBackend(pool *pgxpool.Pool, logger zerolog.Logger) *PostgresBackend {
	return &PostgresBackend{
		pool:   pool,
		logger: logger.With().Str("backend", "postgres").Logger(),
	}
}

// Name returns "postgres".
func (b *PostgresBackend) Name() string {
	return "postgres"
}

// Pool exposes the underlying pool.
func (b *PostgresBackend) Pool() *pgxpool.Pool {
	return b.pool
}

// Close closes the pool.
func (b *PostgresBackend) Close() {
	b.pool.Close()
}

// EnsureSchema creates every table and index that does not exist yet.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	for _, stmt := range SchemaStatements() {
		if _, err := b.pool.Exec(ctx, stmt); err != nil {
			b.logger.Error().Err(err).Str("statement", stmt).Msg("failed to apply schema")
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	b.logger.Debug().Int("tables", len(Schema)).Msg("schema ensured")
	return nil
}

// Execute runs op on the pool.
func (b *PostgresBackend) Execute(ctx context.Context, op Op) ([]Record, error) {
	return execute(ctx, b.pool, op)
}

// Query runs sqlText as-is. Result rows are normalised against the schema of
// the statement's target table when it can be determined.
func (b *PostgresBackend) Query(ctx context.Context, sqlText string, params ...any) ([]Record, error) {
	t, _ := tableForStatement(sqlText)

	rows, err := b.pool.Query(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", mapPgError(err))
	}
	records, err := collectRecords(rows, t)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", mapPgError(err))
	}
	return records, nil
}

// WithTx runs fn in a database transaction.
func (b *PostgresBackend) WithTx(ctx context.Context, fn func(tx Executor) error) (err error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				b.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(pgTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		b.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// pgTx is the Executor handed to WithTx callbacks.
type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) Execute(ctx context.Context, op Op) ([]Record, error) {
	return execute(ctx, t.tx, op)
}

func execute(ctx context.Context, q querier, op Op) ([]Record, error) {
	t, prepared, err := prepareOp(op)
	if errors.Is(err, errNoMatch) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	stmt, err := buildStatement(t, prepared)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, stmt.sql, stmt.args...)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", opName(op), t.Name, mapPgError(err))
	}
	records, err := collectRecords(rows, t)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", opName(op), t.Name, mapPgError(err))
	}
	return records, nil
}

// collectRecords reads every row into a Record. With a known table, values
// are normalised to their canonical column types.
func collectRecords(rows pgx.Rows, t *Table) ([]Record, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := []Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		raw := make(map[string]any, len(values))
		for i, v := range values {
			raw[fields[i].Name] = v
		}

		if t == nil {
			rec := make(Record, len(raw))
			for k, v := range raw {
				rec[k] = normalizeGeneric(v)
			}
			records = append(records, rec)
			continue
		}

		rec := t.normalize(raw)
		// Computed columns outside the schema are kept as plain values.
		for k, v := range raw {
			if !t.HasColumn(k) {
				rec[k] = normalizeGeneric(v)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// mapPgError wraps constraint violations with the matching store error.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrForeignKey, err)
	default:
		return err
	}
}
