package catalog_test

import (
	"context"
	"testing"

	appcatalog "github.com/boutiqa/storefront/internal/application/catalog"
	domain "github.com/boutiqa/storefront/internal/domain/catalog"
	"github.com/boutiqa/storefront/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func seedProducts() []domain.Product {
	return []domain.Product{
		{
			ID:         "savon-lavande-250",
			Reference:  "SAV-LAV-250",
			Category:   "soins",
			Price:      domain.Money{Amount: decimal.NewFromFloat(6.90), Currency: currency.EUR},
			StockUnits: 240,
			Translations: map[string]domain.Text{
				"fr":    {Name: "Savon à la lavande", Description: "Savon artisanal 250g"},
				"en":    {Name: "Lavender soap", Description: "Handmade soap 250g"},
				"es-PE": {Name: "Jabón de lavanda", Description: "Jabón artesanal 250g"},
			},
		},
		{
			ID:         "huile-argan-100",
			Reference:  "HUI-ARG-100",
			Category:   "soins",
			Price:      domain.Money{Amount: decimal.NewFromFloat(19.50), Currency: currency.EUR},
			StockUnits: 60,
			Translations: map[string]domain.Text{
				"fr": {Name: "Huile d'argan", Description: "Huile pure 100ml"},
				// Deliberately untranslated beyond the default locale.
			},
		},
		{
			ID:        "coffret-decouverte",
			Reference: "COF-DEC",
			Category:  "coffrets",
			Price:     domain.Money{Amount: decimal.NewFromFloat(34.00), Currency: currency.EUR},
			Translations: map[string]domain.Text{
				"fr": {Name: "Coffret découverte", Description: "Assortiment de produits"},
				"en": {Name: "Discovery box", Description: "Product assortment"},
			},
		},
	}
}

func newService(t *testing.T) *appcatalog.Service {
	t.Helper()
	repo := memory.NewProductRepository()
	repo.Seed(seedProducts()...)
	svc, err := appcatalog.NewService(repo, "fr", []string{"fr", "en", "es-PE"}, nil)
	require.NoError(t, err)
	return svc
}

func TestList_LocaleResolution(t *testing.T) {
	tests := []struct {
		name       string
		locale     string
		wantLocale string
		wantName   string // name of savon-lavande-250 in the resolved locale
	}{
		{name: "exact match", locale: "en", wantLocale: "en", wantName: "Lavender soap"},
		{name: "empty falls back to default", locale: "", wantLocale: "fr", wantName: "Savon à la lavande"},
		{name: "region variant negotiates to base", locale: "en-GB", wantLocale: "en", wantName: "Lavender soap"},
		{name: "base language negotiates to regional key", locale: "es", wantLocale: "es-PE", wantName: "Jabón de lavanda"},
		{name: "unsupported language falls back to default", locale: "de", wantLocale: "fr", wantName: "Savon à la lavande"},
		{name: "unparseable locale falls back to default", locale: "not a tag", wantLocale: "fr", wantName: "Savon à la lavande"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)
			views, err := svc.List(context.Background(), "", tt.locale)
			require.NoError(t, err)
			require.Len(t, views, 3)

			assert.Equal(t, tt.wantLocale, views[0].Locale)
			assert.Equal(t, tt.wantName, views[0].Name)
		})
	}
}

func TestList_CategoryFilter(t *testing.T) {
	svc := newService(t)

	views, err := svc.List(context.Background(), "soins", "fr")
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Equal(t, "soins", v.Category)
	}

	views, err = svc.List(context.Background(), "inexistante", "fr")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetProduct_TranslationFallback(t *testing.T) {
	svc := newService(t)

	// huile-argan-100 only carries the default locale: requesting en falls
	// back to the fr text while keeping the negotiated locale in the view.
	view, err := svc.GetProduct(context.Background(), "huile-argan-100", "en")
	require.NoError(t, err)
	assert.Equal(t, "en", view.Locale)
	assert.Equal(t, "Huile d'argan", view.Name)
	assert.Equal(t, "Huile pure 100ml", view.Description)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := newService(t)
	_, err := svc.GetProduct(context.Background(), "absent", "fr")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewService_RejectsInvalidLocale(t *testing.T) {
	repo := memory.NewProductRepository()
	_, err := appcatalog.NewService(repo, "fr", []string{"fr", "!!"}, nil)
	require.Error(t, err)
}

func TestLocalize(t *testing.T) {
	p := seedProducts()[2] // fr + en only

	assert.Equal(t, "Discovery box", p.Localize("en", "fr").Name)
	assert.Equal(t, "Coffret découverte", p.Localize("es-PE", "fr").Name)
	assert.Equal(t, domain.Text{}, p.Localize("es-PE", "de"), "missing default yields zero text")
}
