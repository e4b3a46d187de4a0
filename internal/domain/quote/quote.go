package quote

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("quote: not found")

// ValidationError carries the user-visible message for a rejected submission.
type ValidationError string

func (v ValidationError) Error() string { return string(v) }

func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

type Status string

const (
	StatusReceived Status = "received"
	StatusAnswered Status = "answered"
	StatusDeclined Status = "declined"
)

type Item struct {
	ProductID string
	Reference string
	Quantity  int
}

type Request struct {
	ID          string
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Message     string
	Locale      string
	Items       []Item
	Status      Status
	CreatedAt   time.Time
}

// New validates and builds a quote request. Validation failures come back as
// ValidationError messages, never as wrapped internals.
func New(id, companyName, contactName, email, phone, message, locale string, items []Item) (*Request, error) {
	if strings.TrimSpace(companyName) == "" {
		return nil, ValidationError("company name is required")
	}
	if !strings.Contains(email, "@") {
		return nil, ValidationError("a valid contact email is required")
	}
	if len(items) == 0 {
		return nil, ValidationError("at least one item is required")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return nil, ValidationError("every item needs a product id")
		}
		if it.Quantity <= 0 {
			return nil, ValidationError("item quantities must be greater than zero")
		}
	}

	return &Request{
		ID:          id,
		CompanyName: companyName,
		ContactName: contactName,
		Email:       email,
		Phone:       phone,
		Message:     message,
		Locale:      locale,
		Items:       items,
		Status:      StatusReceived,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

type Repository interface {
	Insert(ctx context.Context, req *Request) error
	FindByID(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context) ([]*Request, error)
}
