package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/boutiqa/storefront/internal/domain/reassort"
)

type ReassortRepository struct {
	mu      sync.RWMutex
	configs map[string]*domain.Config
	order   []string
}

func NewReassortRepository() *ReassortRepository {
	return &ReassortRepository{configs: make(map[string]*domain.Config)}
}

func (r *ReassortRepository) Insert(ctx context.Context, cfg *domain.Config) error {
	_ = ctx
	if cfg == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[cfg.ID]; !ok {
		r.order = append(r.order, cfg.ID)
	}
	r.configs[cfg.ID] = cloneConfig(cfg)
	return nil
}

func (r *ReassortRepository) FindByID(ctx context.Context, id string) (*domain.Config, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneConfig(cfg), nil
}

func (r *ReassortRepository) Update(ctx context.Context, cfg *domain.Config) error {
	_ = ctx
	if cfg == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[cfg.ID]; !ok {
		return domain.ErrNotFound
	}
	r.configs[cfg.ID] = cloneConfig(cfg)
	return nil
}

func (r *ReassortRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.configs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ReassortRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Config, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Config
	for _, id := range r.order {
		if cfg := r.configs[id]; cfg.AccountID == accountID {
			out = append(out, cloneConfig(cfg))
		}
	}
	return out, nil
}

func (r *ReassortRepository) ListDue(ctx context.Context, now time.Time) ([]*domain.Config, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Config
	for _, id := range r.order {
		if cfg := r.configs[id]; cfg.Due(now) {
			out = append(out, cloneConfig(cfg))
		}
	}
	return out, nil
}

func cloneConfig(cfg *domain.Config) *domain.Config {
	if cfg == nil {
		return nil
	}
	clone := *cfg
	return &clone
}

// ReassortHistoryRepository stores execution history entries per config.
type ReassortHistoryRepository struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

func NewReassortHistoryRepository() *ReassortHistoryRepository {
	return &ReassortHistoryRepository{}
}

func (r *ReassortHistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

func (r *ReassortHistoryRepository) ListByConfig(ctx context.Context, configID string) ([]domain.HistoryEntry, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.HistoryEntry
	for _, e := range r.entries {
		if e.ConfigID == configID {
			out = append(out, e)
		}
	}
	return out, nil
}
