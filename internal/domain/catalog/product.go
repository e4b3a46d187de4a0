package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var ErrNotFound = errors.New("catalog: product not found")

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// Text is the locale-dependent part of a product.
type Text struct {
	Name        string
	Description string
}

// Product carries the denormalized commerce fields copied onto cart lines at
// add time, plus per-locale translations keyed by BCP 47 tag.
type Product struct {
	ID           string
	Reference    string
	Category     string
	Price        Money
	ImageRef     string
	StockUnits   int
	Translations map[string]Text
}

// Localize resolves the product text with the two-level fallback
// translations[locale], then translations[defaultLocale], then zero.
func (p Product) Localize(locale, defaultLocale string) Text {
	if t, ok := p.Translations[locale]; ok {
		return t
	}
	if t, ok := p.Translations[defaultLocale]; ok {
		return t
	}
	return Text{}
}

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
}
