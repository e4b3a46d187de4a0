package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	domain "github.com/boutiqa/storefront/internal/domain/account"
	domevent "github.com/boutiqa/storefront/internal/domain/event"
	"github.com/boutiqa/storefront/internal/infrastructure/assets"
	"github.com/boutiqa/storefront/internal/observability"
	"github.com/boutiqa/storefront/internal/observability/logctx"
)

const (
	accountService = "account-service"
	documentFolder = "professional-documents"
	publishTimeout = 300 * time.Millisecond
)

type IDGenerator interface {
	NewID() string
}

// Service manages storefront accounts: standard signup, professional signup
// with document upload, and back-office validation. It also answers the
// wholesale lookup the cart uses to pick its quantity floor.
type Service struct {
	repo        domain.Repository
	idGenerator IDGenerator
	uploader    assets.Uploader
	publisher   domevent.Publisher

	log            observability.Logger
	publishFailure observability.Counter
}

func NewService(
	repo domain.Repository,
	idGen IDGenerator,
	uploader assets.Uploader,
	publisher domevent.Publisher,
	tel observability.Telemetry,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:           repo,
		idGenerator:    idGen,
		uploader:       uploader,
		publisher:      publisher,
		log:            tel.Logger().With(observability.F("service", accountService)),
		publishFailure: tel.Metrics().Counter(observability.MEventPublishFailures),
	}
}

func (s *Service) RegisterStandard(ctx context.Context, email string) (*domain.Account, error) {
	entity, err := domain.NewStandard(s.idGenerator.NewID(), email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, entity); err != nil {
		return nil, fmt.Errorf("account: insert: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("account_registered",
		observability.F("account_id", entity.ID),
		observability.F("type", string(entity.Type)),
	)
	return entity, nil
}

type RegisterProfessionalInput struct {
	Email        string
	CompanyName  string
	TaxID        string
	DocumentName string
	Document     io.Reader
}

// RegisterProfessional uploads the proof document, then creates the pending
// professional account carrying the document's public URL.
func (s *Service) RegisterProfessional(ctx context.Context, input RegisterProfessionalInput) (*domain.Account, error) {
	if input.Document == nil {
		return nil, domain.ErrMissingDocument
	}

	documentURL, err := s.uploader.Upload(ctx, documentFolder, input.DocumentName, input.Document)
	if err != nil {
		return nil, fmt.Errorf("account: document upload: %w", err)
	}

	entity, err := domain.NewProfessional(
		s.idGenerator.NewID(),
		input.Email,
		input.CompanyName,
		input.TaxID,
		documentURL,
	)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, entity); err != nil {
		return nil, fmt.Errorf("account: insert: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("account_registered",
		observability.F("account_id", entity.ID),
		observability.F("type", string(entity.Type)),
		observability.F("status", string(entity.Status)),
	)
	return entity, nil
}

// Validate approves or rejects a pending professional account and announces
// the decision.
func (s *Service) Validate(ctx context.Context, id string, approved bool) (*domain.Account, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if approved {
		err = entity.Approve()
	} else {
		err = entity.Reject()
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("account: update: %w", err)
	}

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		pubErr := s.publisher.Publish(pubCtx, domain.NewValidatedEvent(entity, approved))
		cancel()
		if pubErr != nil {
			s.publishFailure.Add(1, observability.L("event", domain.ValidatedEvent{}.EventName()))
			logctx.FromOr(ctx, s.log).Warn("account_event_publish_failed",
				observability.F("account_id", entity.ID),
				observability.F("error", pubErr.Error()),
			)
		}
	}

	logctx.FromOr(ctx, s.log).Info("account_validated",
		observability.F("account_id", entity.ID),
		observability.F("approved", approved),
	)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// IsWholesale reports whether the identity is a validated professional
// account. Unknown identities are retail, not errors: carts outlive accounts.
func (s *Service) IsWholesale(ctx context.Context, identityID string) (bool, error) {
	acc, err := s.repo.FindByID(ctx, identityID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return acc.IsWholesale(), nil
}
