package memory

import (
	"context"
	"sync"

	domain "github.com/boutiqa/storefront/internal/domain/quote"
)

type QuoteRepository struct {
	mu     sync.RWMutex
	quotes map[string]*domain.Request
	order  []string
}

func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{quotes: make(map[string]*domain.Request)}
}

func (r *QuoteRepository) Insert(ctx context.Context, req *domain.Request) error {
	_ = ctx
	if req == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quotes[req.ID]; !ok {
		r.order = append(r.order, req.ID)
	}
	r.quotes[req.ID] = cloneQuote(req)
	return nil
}

func (r *QuoteRepository) FindByID(ctx context.Context, id string) (*domain.Request, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.quotes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneQuote(req), nil
}

func (r *QuoteRepository) List(ctx context.Context) ([]*domain.Request, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Request, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneQuote(r.quotes[id]))
	}
	return out, nil
}

func cloneQuote(req *domain.Request) *domain.Request {
	if req == nil {
		return nil
	}
	clone := *req
	clone.Items = append([]domain.Item(nil), req.Items...)
	return &clone
}
