package memory

import (
	"context"
	"sync"

	domain "github.com/boutiqa/storefront/internal/domain/account"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*domain.Account)}
}

func (r *AccountRepository) Insert(ctx context.Context, acc *domain.Account) error {
	_ = ctx
	if acc == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[acc.ID] = cloneAccount(acc)
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(acc), nil
}

func (r *AccountRepository) Update(ctx context.Context, acc *domain.Account) error {
	_ = ctx
	if acc == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[acc.ID]; !ok {
		return domain.ErrNotFound
	}
	r.accounts[acc.ID] = cloneAccount(acc)
	return nil
}

func cloneAccount(acc *domain.Account) *domain.Account {
	if acc == nil {
		return nil
	}
	clone := *acc
	return &clone
}
