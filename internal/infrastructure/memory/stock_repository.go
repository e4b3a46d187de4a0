package memory

import (
	"context"
	"sync"

	"github.com/boutiqa/storefront/internal/domain/cart"
)

// StockRepository implements cart.StockLookup over an in-memory stock table.
// A product without a stock record reads as unknown, which the cart treats
// permissively, mirroring a document store with an absent stock field.
type StockRepository struct {
	mu    sync.RWMutex
	units map[string]int
}

func NewStockRepository() *StockRepository {
	return &StockRepository{units: make(map[string]int)}
}

func (r *StockRepository) Set(productID string, units int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[productID] = units
}

func (r *StockRepository) Stock(ctx context.Context, productID string) (cart.Stock, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	units, ok := r.units[productID]
	if !ok {
		return cart.UnknownStock(), nil
	}
	return cart.KnownStock(units), nil
}
