package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileBackend serves operations from the JSON document of a FileStore.
// A single mutex serialises every read-modify-write cycle, so concurrent
// callers in one process never lose updates. Other processes writing the
// same file are not coordinated with.
type FileBackend struct {
	mu     sync.Mutex
	store  *FileStore
	clock  func() time.Time
	logger zerolog.Logger
}

// NewFileBackend creates a backend over store.
func NewFileBackend(store *FileStore, logger zerolog.Logger) *FileBackend {
	return &FileBackend{
		store:  store,
		clock:  now,
		logger: logger.With().Str("backend", "file").Logger(),
	}
}

// Name returns "file".
func (b *FileBackend) Name() string {
	return "file"
}

// EnsureSchema reads the document, creating the file when it is missing.
func (b *FileBackend) EnsureSchema(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.store.Read(); err != nil {
		return fmt.Errorf("failed to initialise data file: %w", err)
	}
	return nil
}

// Close is a no-op; every write is already on disk.
func (b *FileBackend) Close() {}

// Execute applies op to the document and persists it when it changed.
func (b *FileBackend) Execute(ctx context.Context, op Op) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, prepared, err := prepareOp(op)
	if errors.Is(err, errNoMatch) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.store.Read()
	if err != nil {
		return nil, err
	}

	rows, changed, err := doc.apply(t, prepared, b.clock())
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", opName(op), t.Name, err)
	}
	if changed {
		if err := b.store.Write(doc); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// Query interprets a raw statement with the legacy pattern matcher.
// Statements outside the recognised shapes return an empty result.
func (b *FileBackend) Query(ctx context.Context, sqlText string, params ...any) ([]Record, error) {
	op, err := ParseStatement(sqlText, params)
	if errors.Is(err, ErrUnrecognizedStatement) {
		b.logger.Warn().Str("statement", sqlText).Msg("unrecognised statement, returning no rows")
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	return b.Execute(ctx, op)
}

// WithTx runs fn against a private copy of the document while holding the
// backend lock. The copy is written once when fn succeeds; on error the file
// is left untouched.
func (b *FileBackend) WithTx(ctx context.Context, fn func(tx Executor) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.store.Read()
	if err != nil {
		return err
	}

	tx := &fileTx{doc: doc, clock: b.clock}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}
	if err := b.store.Write(tx.doc); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// fileTx is the Executor handed to WithTx callbacks.
type fileTx struct {
	doc   Document
	clock func() time.Time
	dirty bool
}

func (tx *fileTx) Execute(ctx context.Context, op Op) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, prepared, err := prepareOp(op)
	if errors.Is(err, errNoMatch) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	rows, changed, err := tx.doc.apply(t, prepared, tx.clock())
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", opName(op), t.Name, err)
	}
	tx.dirty = tx.dirty || changed
	return rows, nil
}
