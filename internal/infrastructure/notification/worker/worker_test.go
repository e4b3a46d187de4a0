package worker_test

import (
	"context"
	"testing"
	"time"

	domaccount "github.com/boutiqa/storefront/internal/domain/account"
	domevent "github.com/boutiqa/storefront/internal/domain/event"
	domain "github.com/boutiqa/storefront/internal/domain/notification"
	domquote "github.com/boutiqa/storefront/internal/domain/quote"
	domreassort "github.com/boutiqa/storefront/internal/domain/reassort"
	"github.com/boutiqa/storefront/internal/infrastructure/id"
	"github.com/boutiqa/storefront/internal/infrastructure/memory"
	"github.com/boutiqa/storefront/internal/infrastructure/notification/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// directSubscriber invokes handlers synchronously, bypassing the bus.
type directSubscriber struct {
	handlers map[string][]domevent.Handler
}

func newDirectSubscriber() *directSubscriber {
	return &directSubscriber{handlers: make(map[string][]domevent.Handler)}
}

func (s *directSubscriber) Subscribe(eventName string, h domevent.Handler) {
	s.handlers[eventName] = append(s.handlers[eventName], h)
}

func (s *directSubscriber) emit(t *testing.T, e domevent.Event) {
	t.Helper()
	handlers := s.handlers[e.EventName()]
	require.NotEmpty(t, handlers, "no handler subscribed for %s", e.EventName())
	for _, h := range handlers {
		require.NoError(t, h(context.Background(), e))
	}
}

func setup(t *testing.T) (*directSubscriber, *memory.NotificationRepository) {
	t.Helper()
	sub := newDirectSubscriber()
	repo := memory.NewNotificationRepository()
	worker.New(sub, repo, id.NewUUIDGenerator(), nil).Start()
	return sub, repo
}

func TestQuoteSubmittedNotifiesBackOffice(t *testing.T) {
	sub, repo := setup(t)

	sub.emit(t, domquote.SubmittedEvent{
		QuoteID:     "q1",
		CompanyName: "Herboristerie Martin",
		ItemCount:   3,
		OccurredAt:  time.Now().UTC(),
	})

	got, err := repo.ListByOwner(context.Background(), "admin")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.KindQuoteReceived, got[0].Kind)
	assert.Contains(t, got[0].Message, "Herboristerie Martin")
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestAccountValidatedNotifiesOwner(t *testing.T) {
	tests := []struct {
		name     string
		approved bool
		wantMsg  string
	}{
		{name: "approved", approved: true, wantMsg: "approved"},
		{name: "declined", approved: false, wantMsg: "declined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, repo := setup(t)

			sub.emit(t, domaccount.ValidatedEvent{
				AccountID: "acc-1",
				Approved:  tt.approved,
			})

			got, err := repo.ListByOwner(context.Background(), "acc-1")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, domain.KindAccountReviewed, got[0].Kind)
			assert.Contains(t, got[0].Message, tt.wantMsg)
		})
	}
}

func TestReassortDueNotifiesOwner(t *testing.T) {
	sub, repo := setup(t)

	sub.emit(t, domreassort.DueEvent{
		ConfigID:  "cfg-1",
		AccountID: "acc-1",
		ProductID: "savon-lavande-250",
		Quantity:  200,
	})

	got, err := repo.ListByOwner(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.KindReassortDue, got[0].Kind)
	assert.Contains(t, got[0].Message, "savon-lavande-250")
}

func TestNotificationsAreScopedByOwner(t *testing.T) {
	sub, repo := setup(t)

	sub.emit(t, domreassort.DueEvent{AccountID: "acc-1", ProductID: "p1", Quantity: 1})
	sub.emit(t, domreassort.DueEvent{AccountID: "acc-2", ProductID: "p2", Quantity: 1})

	got, err := repo.ListByOwner(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = repo.ListByOwner(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, got)
}
