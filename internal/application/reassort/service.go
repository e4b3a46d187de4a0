package reassort

import (
	"context"
	"fmt"
	"time"

	domevent "github.com/boutiqa/storefront/internal/domain/event"
	domain "github.com/boutiqa/storefront/internal/domain/reassort"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/boutiqa/storefront/internal/observability/logctx"
)

const (
	reassortService = "reassort-service"
	outcomeNotified = "notified"
)

type IDGenerator interface {
	NewID() string
}

// Service manages recurring-reorder configurations and their execution
// history, and runs due configs on behalf of the scheduler worker.
type Service struct {
	repo        domain.Repository
	history     domain.HistoryRepository
	idGenerator IDGenerator
	publisher   domevent.Publisher

	log            observability.Logger
	publishFailure observability.Counter
}

func NewService(
	repo domain.Repository,
	history domain.HistoryRepository,
	idGen IDGenerator,
	publisher domevent.Publisher,
	tel observability.Telemetry,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:           repo,
		history:        history,
		idGenerator:    idGen,
		publisher:      publisher,
		log:            tel.Logger().With(observability.F("service", reassortService)),
		publishFailure: tel.Metrics().Counter(observability.MEventPublishFailures),
	}
}

type CreateInput struct {
	AccountID string
	ProductID string
	Quantity  int
	Interval  time.Duration
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Config, error) {
	entity, err := domain.NewConfig(
		s.idGenerator.NewID(),
		input.AccountID,
		input.ProductID,
		input.Quantity,
		input.Interval,
	)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, entity); err != nil {
		return nil, fmt.Errorf("reassort: insert: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("reassort_config_created",
		observability.F("config_id", entity.ID),
		observability.F("account_id", entity.AccountID),
		observability.F("product_id", entity.ProductID),
	)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Config, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]*domain.Config, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

type UpdateInput struct {
	Quantity *int
	Interval *time.Duration
	Active   *bool
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.Config, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		entity.Quantity = *input.Quantity
	}
	if input.Interval != nil {
		if *input.Interval <= 0 {
			return nil, domain.ErrInvalidInterval
		}
		entity.Interval = *input.Interval
	}
	if input.Active != nil {
		entity.Active = *input.Active
	}

	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("reassort: update: %w", err)
	}
	return entity, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) History(ctx context.Context, configID string) ([]domain.HistoryEntry, error) {
	return s.history.ListByConfig(ctx, configID)
}

// RunDue executes every active config whose next run has arrived: records a
// history entry, advances the schedule, and publishes a due event. Returns
// the number of configs run. One failing config does not stop the scan.
func (s *Service) RunDue(ctx context.Context, now time.Time) (int, error) {
	logger := logctx.FromOr(ctx, s.log)

	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("reassort: list due: %w", err)
	}

	ran := 0
	for _, cfg := range due {
		cfg.MarkRun(now)
		if err := s.repo.Update(ctx, cfg); err != nil {
			logger.Error("reassort_reschedule_failed",
				observability.F("config_id", cfg.ID),
				observability.F("error", err.Error()),
			)
			continue
		}

		entry := domain.HistoryEntry{
			ID:       s.idGenerator.NewID(),
			ConfigID: cfg.ID,
			RanAt:    now,
			Quantity: cfg.Quantity,
			Outcome:  outcomeNotified,
		}
		if err := s.history.Append(ctx, entry); err != nil {
			logger.Warn("reassort_history_append_failed",
				observability.F("config_id", cfg.ID),
				observability.F("error", err.Error()),
			)
		}

		if s.publisher != nil {
			if pubErr := s.publisher.Publish(ctx, domain.NewDueEvent(cfg, now)); pubErr != nil {
				s.publishFailure.Add(1, observability.L("event", domain.DueEvent{}.EventName()))
				logger.Warn("reassort_event_publish_failed",
					observability.F("config_id", cfg.ID),
					observability.F("error", pubErr.Error()),
				)
			}
		}
		ran++
	}

	if ran > 0 {
		logger.Info("reassort_scan_done", observability.F("ran", ran))
	}
	return ran, nil
}
