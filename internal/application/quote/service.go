package quote

import (
	"context"
	"fmt"
	"time"

	domevent "github.com/boutiqa/storefront/internal/domain/event"
	domain "github.com/boutiqa/storefront/internal/domain/quote"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/boutiqa/storefront/internal/observability/logctx"
)

const (
	quoteService   = "quote-service"
	publishTimeout = 300 * time.Millisecond
)

type IDGenerator interface {
	NewID() string
}

// Service runs the quote-request workflow: validate, persist, announce.
type Service struct {
	repo        domain.Repository
	idGenerator IDGenerator
	publisher   domevent.Publisher

	log            observability.Logger
	publishFailure observability.Counter
}

func NewService(repo domain.Repository, idGen IDGenerator, publisher domevent.Publisher, tel observability.Telemetry) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:           repo,
		idGenerator:    idGen,
		publisher:      publisher,
		log:            tel.Logger().With(observability.F("service", quoteService)),
		publishFailure: tel.Metrics().Counter(observability.MEventPublishFailures),
	}
}

type SubmitInput struct {
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Message     string
	Locale      string
	Items       []domain.Item
}

// Submit validates and stores a quote request. Validation failures surface as
// domain.ValidationError messages; event publish failures are logged but do
// not fail the submission.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*domain.Request, error) {
	logger := logctx.FromOr(ctx, s.log)

	entity, err := domain.New(
		s.idGenerator.NewID(),
		input.CompanyName,
		input.ContactName,
		input.Email,
		input.Phone,
		input.Message,
		input.Locale,
		input.Items,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, entity); err != nil {
		logger.Error("quote_insert_failed",
			observability.F("quote_id", entity.ID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("quote: insert: %w", err)
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		pubErr := s.publisher.Publish(pubCtx, domain.NewSubmittedEvent(entity))
		cancel()
		if pubErr != nil {
			s.publishFailure.Add(1, observability.L("event", domain.SubmittedEvent{}.EventName()))
			logger.Warn("quote_event_publish_failed",
				observability.F("quote_id", entity.ID),
				observability.F("error", pubErr.Error()),
			)
		}
	}

	logger.Info("quote_submitted",
		observability.F("quote_id", entity.ID),
		observability.F("company", entity.CompanyName),
		observability.F("items", len(entity.Items)),
	)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Request, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.Request, error) {
	return s.repo.List(ctx)
}
