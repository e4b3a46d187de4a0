package memory

import (
	"context"
	"sync"

	domain "github.com/boutiqa/storefront/internal/domain/notification"
)

type NotificationRepository struct {
	mu      sync.RWMutex
	entries []domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Insert(ctx context.Context, n domain.Notification) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, n)
	return nil
}

func (r *NotificationRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Notification, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Notification
	for _, n := range r.entries {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}
