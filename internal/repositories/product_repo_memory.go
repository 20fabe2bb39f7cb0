package repositories

import (
	"context"
	"fmt"
	"sync"

	"produk/internal/errs"
	"produk/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository,
// used for local development and unit tests.
type MemoryProductRepository struct {
	products map[string]models.Product // keyed on productID + "\x1f" + category
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func compositeKey(productID, category string) string {
	return productID + "\x1f" + category
}

// GetAll returns all stored products.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ProductID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
}

// Put stores the product, overwriting any entry with the same composite key.
func (r *MemoryProductRepository) Put(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[compositeKey(product.ProductID, product.Category)] = *product
	return nil
}

// Delete removes every entry stored under the given product ID. Removing an
// absent ID is a no-op.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.products {
		if p.ProductID == id {
			delete(r.products, key)
		}
	}
	return nil
}
