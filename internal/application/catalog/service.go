package catalog

import (
	"context"
	"fmt"

	domain "github.com/boutiqa/storefront/internal/domain/catalog"
	"github.com/boutiqa/storefront/internal/observability"
	"golang.org/x/text/language"
)

const catalogService = "catalog-service"

// Service serves locale-resolved product views for the storefront listings.
type Service struct {
	repo          domain.Repository
	defaultLocale string
	localeKeys    []string
	matcher       language.Matcher
	log           observability.Logger
}

// NewService builds the catalog service. supported lists the translation keys
// the catalog carries (BCP 47); requests are negotiated against them and fall
// back to defaultLocale.
func NewService(repo domain.Repository, defaultLocale string, supported []string, tel observability.Telemetry) (*Service, error) {
	if tel == nil {
		tel = observability.Nop()
	}

	keys := make([]string, 0, len(supported))
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("catalog: unsupported locale %q: %w", s, err)
		}
		keys = append(keys, s)
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		keys = []string{defaultLocale}
		tags = []language.Tag{language.Make(defaultLocale)}
	}

	return &Service{
		repo:          repo,
		defaultLocale: defaultLocale,
		localeKeys:    keys,
		matcher:       language.NewMatcher(tags),
		log:           tel.Logger().With(observability.F("service", catalogService)),
	}, nil
}

// View is one product rendered for a locale.
type View struct {
	ID          string
	Reference   string
	Category    string
	Name        string
	Description string
	Price       domain.Money
	ImageRef    string
	StockUnits  int
	Locale      string
}

// List returns products, optionally filtered by category, localized for the
// requested locale.
func (s *Service) List(ctx context.Context, category, locale string) ([]View, error) {
	var (
		products []domain.Product
		err      error
	)
	if category != "" {
		products, err = s.repo.ListByCategory(ctx, category)
	} else {
		products, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}

	resolved := s.resolveLocale(locale)
	views := make([]View, 0, len(products))
	for _, p := range products {
		views = append(views, s.view(p, resolved))
	}
	return views, nil
}

// GetProduct returns one localized product.
func (s *Service) GetProduct(ctx context.Context, id, locale string) (View, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(p, s.resolveLocale(locale)), nil
}

func (s *Service) view(p domain.Product, locale string) View {
	text := p.Localize(locale, s.defaultLocale)
	return View{
		ID:          p.ID,
		Reference:   p.Reference,
		Category:    p.Category,
		Name:        text.Name,
		Description: text.Description,
		Price:       p.Price,
		ImageRef:    p.ImageRef,
		StockUnits:  p.StockUnits,
		Locale:      locale,
	}
}

// resolveLocale negotiates the requested locale against the supported set,
// falling back to the default on anything unparseable or unsupported.
func (s *Service) resolveLocale(requested string) string {
	if requested == "" {
		return s.defaultLocale
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return s.defaultLocale
	}
	_, idx, conf := s.matcher.Match(tag)
	if conf == language.No {
		return s.defaultLocale
	}
	return s.localeKeys[idx]
}
