package repository

import (
	"context"
	"errors"
	"fmt"

	"stylecore/internal/model"
	"stylecore/internal/store"

	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface over a store executor.
type productRepository struct {
	db     store.Executor
	logger zerolog.Logger
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db store.Executor, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// Create inserts a product, assigning its ID and timestamps.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	rows, err := r.db.Execute(ctx, store.Insert{Table: store.TableProducts, Values: productValues(p)})
	if err != nil {
		r.logger.Error().Err(err).Str("title", p.Title).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Error().Str("title", p.Title).Msg("product insert returned no row")
		return fmt.Errorf("failed to insert product: %w", store.ErrNotPersisted)
	}
	*p = *productFromRecord(rows[0])

	r.logger.Info().Str("product_id", p.ID).Msg("product created")
	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate retrieves a product and locks its row.
func (r *productRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Product, error) {
	return r.get(ctx, id, true)
}

func (r *productRepository) get(ctx context.Context, id string, forUpdate bool) (*model.Product, error) {
	rows, err := r.db.Execute(ctx, store.SelectByID{Table: store.TableProducts, ID: id, ForUpdate: forUpdate})
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, nil
	}
	return productFromRecord(rows[0]), nil
}

// GetByIDs retrieves multiple products by their IDs in the order given.
// Unknown and repeated IDs are skipped.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	products := make([]model.Product, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		p, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			products = append(products, *p)
		}
	}
	return products, nil
}

// List retrieves products matching the filter.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	op := store.SelectList{
		Table:  store.TableProducts,
		Sort:   productSort(filter.Sort),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	if filter.Category != "" {
		op.Where = append(op.Where, store.Eq("category", filter.Category))
	}
	if filter.ActiveOnly {
		op.Where = append(op.Where, store.Eq("is_active", true))
	}
	if filter.Query != "" {
		op.Search = &store.Search{Column: "title", Term: filter.Query}
	}

	rows, err := r.db.Execute(ctx, op)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, *productFromRecord(row))
	}
	return products, nil
}

func productSort(sort string) []store.Sort {
	switch sort {
	case model.SortPriceAsc:
		return []store.Sort{{Column: "price"}}
	case model.SortPriceDesc:
		return []store.Sort{{Column: "price", Desc: true}}
	case model.SortTitle:
		return []store.Sort{{Column: "title"}}
	default:
		return nil
	}
}

// Update applies a patch and returns the updated product, or nil when it
// does not exist.
func (r *productRepository) Update(ctx context.Context, id string, patch *model.ProductPatch) (*model.Product, error) {
	rows, err := r.db.Execute(ctx, store.Update{Table: store.TableProducts, ID: id, Patch: productPatch(patch)})
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if len(rows) == 0 {
		r.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, nil
	}
	return productFromRecord(rows[0]), nil
}

// SetStock overwrites the stock count.
func (r *productRepository) SetStock(ctx context.Context, id string, stock int) error {
	rows, err := r.db.Execute(ctx, store.Update{Table: store.TableProducts, ID: id, Patch: store.Patch{"stock": stock}})
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Int("stock", stock).Msg("failed to update stock")
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if len(rows) == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// Upsert inserts the product or replaces the one with the same ID.
func (r *productRepository) Upsert(ctx context.Context, p *model.Product) (*model.Product, error) {
	rows, err := r.db.Execute(ctx, store.Upsert{
		Table:      store.TableProducts,
		Values:     productValues(p),
		ConflictOn: []string{"id"},
	})
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to upsert product")
		return nil, fmt.Errorf("failed to upsert product: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to upsert product %s: %w", p.ID, store.ErrNotPersisted)
	}
	return productFromRecord(rows[0]), nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return model.ErrProductNotFound
	}

	if _, err := r.db.Execute(ctx, store.Delete{Table: store.TableProducts, ID: id}); err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	r.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// ValidateProductsExist checks if all provided product IDs exist.
// Returns error if any product ID does not exist.
func (r *productRepository) ValidateProductsExist(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	products, err := r.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to validate products exist: %w", err)
	}

	unique := make(map[string]bool, len(ids))
	for _, id := range ids {
		unique[id] = true
	}
	if len(products) != len(unique) {
		r.logger.Warn().
			Int("expected", len(unique)).
			Int("found", len(products)).
			Msg("not all product IDs exist")
		return model.ErrProductNotFound
	}

	return nil
}

// isConflict reports whether err is a uniqueness violation.
func isConflict(err error) bool {
	return errors.Is(err, store.ErrConflict)
}

// isForeignKey reports whether err names a missing referenced row.
func isForeignKey(err error) bool {
	return errors.Is(err, store.ErrForeignKey)
}
