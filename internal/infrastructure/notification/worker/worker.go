package worker

import (
	"context"
	"fmt"
	"time"

	domaccount "github.com/boutiqa/storefront/internal/domain/account"
	domevent "github.com/boutiqa/storefront/internal/domain/event"
	domain "github.com/boutiqa/storefront/internal/domain/notification"
	domquote "github.com/boutiqa/storefront/internal/domain/quote"
	domreassort "github.com/boutiqa/storefront/internal/domain/reassort"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/boutiqa/storefront/internal/observability/logctx"
)

const adminOwner = "admin"

type IDGenerator interface {
	NewID() string
}

// Worker materializes per-owner notifications from the domain events the
// storefront emits.
type Worker struct {
	subscriber  domevent.Subscriber
	repo        domain.Repository
	idGenerator IDGenerator
	log         observability.Logger
}

func New(subscriber domevent.Subscriber, repo domain.Repository, idGen IDGenerator, tel observability.Telemetry) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		subscriber:  subscriber,
		repo:        repo,
		idGenerator: idGen,
		log:         tel.Logger().With(observability.F("component", "notification_worker")),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(domquote.SubmittedEvent{}.EventName(), w.handleQuoteSubmitted)
	w.subscriber.Subscribe(domaccount.ValidatedEvent{}.EventName(), w.handleAccountValidated)
	w.subscriber.Subscribe(domreassort.DueEvent{}.EventName(), w.handleReassortDue)
}

func (w *Worker) handleQuoteSubmitted(ctx context.Context, e domevent.Event) error {
	evt, ok := e.(domquote.SubmittedEvent)
	if !ok {
		return nil
	}
	// Quote requests are reviewed by the back office, not by the requester.
	return w.insert(ctx, domain.Notification{
		OwnerID: adminOwner,
		Kind:    domain.KindQuoteReceived,
		Message: fmt.Sprintf("Quote request from %s (%d items)", evt.CompanyName, evt.ItemCount),
	})
}

func (w *Worker) handleAccountValidated(ctx context.Context, e domevent.Event) error {
	evt, ok := e.(domaccount.ValidatedEvent)
	if !ok {
		return nil
	}
	message := "Your professional account has been approved"
	if !evt.Approved {
		message = "Your professional account request was declined"
	}
	return w.insert(ctx, domain.Notification{
		OwnerID: evt.AccountID,
		Kind:    domain.KindAccountReviewed,
		Message: message,
	})
}

func (w *Worker) handleReassortDue(ctx context.Context, e domevent.Event) error {
	evt, ok := e.(domreassort.DueEvent)
	if !ok {
		return nil
	}
	return w.insert(ctx, domain.Notification{
		OwnerID: evt.AccountID,
		Kind:    domain.KindReassortDue,
		Message: fmt.Sprintf("Reassort due: %d x %s", evt.Quantity, evt.ProductID),
	})
}

func (w *Worker) insert(ctx context.Context, n domain.Notification) error {
	n.ID = w.idGenerator.NewID()
	n.CreatedAt = time.Now().UTC()

	if err := w.repo.Insert(ctx, n); err != nil {
		logctx.FromOr(ctx, w.log).Warn("notification_insert_failed",
			observability.F("owner_id", n.OwnerID),
			observability.F("kind", string(n.Kind)),
			observability.F("error", err.Error()),
		)
		return err
	}

	logctx.FromOr(ctx, w.log).Info("notification_created",
		observability.F("owner_id", n.OwnerID),
		observability.F("kind", string(n.Kind)),
	)
	return nil
}
