package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

// ErrInvalidProduct is returned when an upsert payload fails validation.
var ErrInvalidProduct = errors.New("invalid product")

type Service struct {
	repo     productrepo.Repository
	currency string
}

func New(repo productrepo.Repository, currency string) *Service {
	if currency == "" {
		currency = "USD"
	}
	return &Service{repo: repo, currency: currency}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// ListByCategory filters the catalog; an empty category returns everything.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(strings.ToLower(category))
	if category == "" {
		return all, nil
	}
	out := []domain.Product{}
	for _, p := range all {
		if strings.ToLower(p.Category) == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// GetByID lets the service stand in wherever a product lookup is needed.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.Get(ctx, id)
}

// Upsert validates and stores a product, keyed by its key.
func (s *Service) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.Key = strings.TrimSpace(p.Key)
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Key == "":
		return nil, fmt.Errorf("%w: key required", ErrInvalidProduct)
	case p.Name == "":
		return nil, fmt.Errorf("%w: name required", ErrInvalidProduct)
	case p.PriceCents < 0:
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = s.currency
	}
	if len(p.Currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrInvalidProduct)
	}
	return s.repo.Upsert(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(id))
}
