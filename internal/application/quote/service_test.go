package quote_test

import (
	"context"
	"errors"
	"testing"

	appquote "github.com/boutiqa/storefront/internal/application/quote"
	domevent "github.com/boutiqa/storefront/internal/domain/event"
	domain "github.com/boutiqa/storefront/internal/domain/quote"
	"github.com/boutiqa/storefront/internal/infrastructure/id"
	"github.com/boutiqa/storefront/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	events []domevent.Event
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, e domevent.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func validInput() appquote.SubmitInput {
	return appquote.SubmitInput{
		CompanyName: "Épicerie Dupont",
		ContactName: "Marie Dupont",
		Email:       "marie@dupont.example",
		Phone:       "+33 1 23 45 67 89",
		Message:     "Demande de tarif en gros",
		Locale:      "fr",
		Items: []domain.Item{
			{ProductID: "savon-lavande-250", Reference: "SAV-LAV-250", Quantity: 200},
		},
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	publisher := &capturingPublisher{}
	svc := appquote.NewService(memory.NewQuoteRepository(), id.NewUUIDGenerator(), publisher, nil)

	req, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, domain.StatusReceived, req.Status)
	assert.False(t, req.CreatedAt.IsZero())

	stored, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.CompanyName, stored.CompanyName)

	require.Len(t, publisher.events, 1)
	submitted, ok := publisher.events[0].(domain.SubmittedEvent)
	require.True(t, ok)
	assert.Equal(t, req.ID, submitted.QuoteID)
	assert.Equal(t, 1, submitted.ItemCount)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*appquote.SubmitInput)
		wantMsg string
	}{
		{
			name:    "missing company",
			mutate:  func(in *appquote.SubmitInput) { in.CompanyName = "  " },
			wantMsg: "company name is required",
		},
		{
			name:    "invalid email",
			mutate:  func(in *appquote.SubmitInput) { in.Email = "not-an-email" },
			wantMsg: "a valid contact email is required",
		},
		{
			name:    "no items",
			mutate:  func(in *appquote.SubmitInput) { in.Items = nil },
			wantMsg: "at least one item is required",
		},
		{
			name:    "item without product id",
			mutate:  func(in *appquote.SubmitInput) { in.Items[0].ProductID = "" },
			wantMsg: "every item needs a product id",
		},
		{
			name:    "non-positive quantity",
			mutate:  func(in *appquote.SubmitInput) { in.Items[0].Quantity = 0 },
			wantMsg: "item quantities must be greater than zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := appquote.NewService(memory.NewQuoteRepository(), id.NewUUIDGenerator(), nil, nil)

			in := validInput()
			tt.mutate(&in)

			_, err := svc.Submit(context.Background(), in)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestSubmit_PublishFailureDoesNotFailSubmission(t *testing.T) {
	ctx := context.Background()
	publisher := &capturingPublisher{err: errors.New("bus closed")}
	svc := appquote.NewService(memory.NewQuoteRepository(), id.NewUUIDGenerator(), publisher, nil)

	req, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	stored, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, stored.ID)
}

func TestGet_NotFound(t *testing.T) {
	svc := appquote.NewService(memory.NewQuoteRepository(), id.NewUUIDGenerator(), nil, nil)

	_, err := svc.Get(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "absent")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc := appquote.NewService(memory.NewQuoteRepository(), id.NewUUIDGenerator(), nil, nil)

	first, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)
	second, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}
