package catalog

import (
	"context"
	"fmt"

	"stylecore/internal/model"
	"stylecore/internal/repository"

	"github.com/rs/zerolog"
)

// Seeder writes catalogue files into the product table.
type Seeder struct {
	loader Loader
	txm    repository.TxManager
	logger zerolog.Logger
}

// NewSeeder creates a seeder reading through loader.
func NewSeeder(loader Loader, txm repository.TxManager, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		txm:    txm,
		logger: logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Seed loads source and upserts every entry in one transaction, returning
// the number of products written. Every entry is validated first; one
// invalid entry aborts the seed with nothing written.
func (s *Seeder) Seed(ctx context.Context, source string) (int, error) {
	entries, err := s.loader.Load(ctx, source)
	if err != nil {
		return 0, err
	}

	products := make([]*model.Product, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		if err := model.Validate(&entries[i]); err != nil {
			s.logger.Warn().Err(err).Int("entry", i).Str("product_id", entries[i].ID).Msg("invalid catalogue entry")
			return 0, fmt.Errorf("invalid catalogue entry %d (%s): %w", i, entries[i].ID, err)
		}
		if seen[entries[i].ID] {
			return 0, fmt.Errorf("duplicate catalogue entry %s", entries[i].ID)
		}
		seen[entries[i].ID] = true
		products = append(products, entries[i].Product())
	}

	err = s.txm.InTx(ctx, func(repos *repository.Repositories) error {
		for _, p := range products {
			if _, err := repos.Products.Upsert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("source", source).Msg("failed to seed catalogue")
		return 0, fmt.Errorf("failed to seed catalogue: %w", err)
	}

	s.logger.Info().Str("source", source).Int("products", len(products)).Msg("catalogue seeded")
	return len(products), nil
}
