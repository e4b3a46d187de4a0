package notification

import (
	"context"
	"time"
)

type Kind string

const (
	KindQuoteReceived   Kind = "quote_received"
	KindAccountReviewed Kind = "account_reviewed"
	KindReassortDue     Kind = "reassort_due"
)

// Notification is a per-owner message materialized from domain events.
type Notification struct {
	ID        string
	OwnerID   string
	Kind      Kind
	Message   string
	CreatedAt time.Time
	Read      bool
}

type Repository interface {
	Insert(ctx context.Context, n Notification) error
	ListByOwner(ctx context.Context, ownerID string) ([]Notification, error)
}
