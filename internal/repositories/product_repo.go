package repositories

import (
	"context"

	"produk/internal/models"
)

// ProductRepository defines the data-access boundary for products. Store-level
// failures (unavailability, throttling) propagate unwrapped; only a missing
// item is reported as errs.ErrNotFound.
type ProductRepository interface {
	// GetAll performs an unfiltered scan of the whole table. No ordering
	// guarantee across items.
	GetAll(ctx context.Context) ([]models.Product, error)
	// GetByID is a point lookup by product ID.
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// Put is an idempotent upsert keyed on (productID, category).
	Put(ctx context.Context, product *models.Product) error
	// Delete removes every item stored under the given product ID. Deleting
	// an absent ID is not an error; callers pre-check existence when they
	// need a 404.
	Delete(ctx context.Context, id string) error
}
