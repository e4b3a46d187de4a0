package account

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("account: not found")
	ErrInvalidEmail    = errors.New("account: a valid email is required")
	ErrMissingCompany  = errors.New("account: company name is required for professional accounts")
	ErrMissingTaxID    = errors.New("account: tax id is required for professional accounts")
	ErrMissingDocument = errors.New("account: a proof document is required for professional accounts")
	ErrNotPending      = errors.New("account: only pending accounts can be validated")
)

type Type string

const (
	TypeStandard     Type = "standard"
	TypeProfessional Type = "professional"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
)

type Account struct {
	ID          string
	Email       string
	CompanyName string
	TaxID       string
	DocumentURL string
	Type        Type
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewStandard builds a consumer account, active immediately.
func NewStandard(id, email string) (*Account, error) {
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	now := time.Now().UTC()
	return &Account{
		ID:        id,
		Email:     email,
		Type:      TypeStandard,
		Status:    StatusValidated,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewProfessional builds a professional account pending back-office review.
// The proof document must already be uploaded; its public URL is stored here.
func NewProfessional(id, email, companyName, taxID, documentURL string) (*Account, error) {
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(companyName) == "" {
		return nil, ErrMissingCompany
	}
	if strings.TrimSpace(taxID) == "" {
		return nil, ErrMissingTaxID
	}
	if documentURL == "" {
		return nil, ErrMissingDocument
	}
	now := time.Now().UTC()
	return &Account{
		ID:          id,
		Email:       email,
		CompanyName: companyName,
		TaxID:       taxID,
		DocumentURL: documentURL,
		Type:        TypeProfessional,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (a *Account) Approve() error {
	if a.Status != StatusPending {
		return ErrNotPending
	}
	a.Status = StatusValidated
	a.touch()
	return nil
}

func (a *Account) Reject() error {
	if a.Status != StatusPending {
		return ErrNotPending
	}
	a.Status = StatusRejected
	a.touch()
	return nil
}

// IsWholesale reports whether the wholesale ordering rules (minimum line
// quantity) apply to this identity.
func (a *Account) IsWholesale() bool {
	return a.Type == TypeProfessional && a.Status == StatusValidated
}

func (a *Account) touch() {
	a.UpdatedAt = time.Now().UTC()
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

type Repository interface {
	Insert(ctx context.Context, acc *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	Update(ctx context.Context, acc *Account) error
}
