package memory

import (
	"context"
	"sync"

	domain "github.com/boutiqa/storefront/internal/domain/catalog"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	order    []string
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]domain.Product),
	}
}

// Seed inserts or replaces products, preserving first-seen ordering for List.
func (r *ProductRepository) Seed(products ...domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		if _, ok := r.products[p.ID]; !ok {
			r.order = append(r.order, p.ID)
		}
		r.products[p.ID] = p
	}
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.products[id])
	}
	return out, nil
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Product
	for _, id := range r.order {
		if p := r.products[id]; p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}
