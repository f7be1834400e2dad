package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const maxRelated = 4

// Service is the read-only query facade over a Store. Every call waits
// Delay before touching the store, emulating a network round trip, and
// returns copies the caller may mutate freely.
type Service struct {
	Store Store
	Delay time.Duration
}

func NewService(store Store, delay time.Duration) *Service {
	return &Service{Store: store, Delay: delay}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

func (s *Service) All(ctx context.Context) ([]Product, error) {
	return s.filter(ctx, func(Product) bool { return true })
}

func (s *Service) ByID(ctx context.Context, id string) (Product, error) {
	products, err := s.products(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return Product{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

func (s *Service) ByCategory(ctx context.Context, name string) ([]Product, error) {
	return s.filter(ctx, func(p Product) bool { return strings.EqualFold(p.Category, name) })
}

func (s *Service) Featured(ctx context.Context) ([]Product, error) {
	return s.filter(ctx, func(p Product) bool { return p.Featured })
}

func (s *Service) OnSale(ctx context.Context) ([]Product, error) {
	return s.filter(ctx, func(p Product) bool { return p.OnSale })
}

// Search matches query case-insensitively as a substring of the name,
// description, category or any tag. An empty query matches everything.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	q := strings.ToLower(query)
	return s.filter(ctx, func(p Product) bool { return matchesText(p, q) })
}

// Related returns up to four other products in category, in catalog order.
func (s *Service) Related(ctx context.Context, productID, category string) ([]Product, error) {
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, maxRelated)
	for _, p := range products {
		if len(out) == maxRelated {
			break
		}
		if p.ID != productID && strings.EqualFold(p.Category, category) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.filterCategories(ctx, func(Category) bool { return true })
}

func (s *Service) FeaturedCategories(ctx context.Context) ([]Category, error) {
	return s.filterCategories(ctx, func(c Category) bool { return c.Featured })
}

func (s *Service) CategoryByID(ctx context.Context, id string) (Category, error) {
	return s.findCategory(ctx, func(c Category) bool { return c.ID == id }, id)
}

func (s *Service) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	return s.findCategory(ctx, func(c Category) bool { return c.Slug == slug }, slug)
}

func (s *Service) findCategory(ctx context.Context, match func(Category) bool, key string) (Category, error) {
	found, err := s.filterCategories(ctx, match)
	if err != nil {
		return Category{}, err
	}
	if len(found) == 0 {
		return Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, key)
	}
	return found[0], nil
}

func (s *Service) filter(ctx context.Context, keep func(Product) bool) ([]Product, error) {
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *Service) filterCategories(ctx context.Context, keep func(Category) bool) ([]Category, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	categories, err := s.Store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) products(ctx context.Context) ([]Product, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	products, err := s.Store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return products, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func matchesText(p Product, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(p.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Description), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Category), lowerQuery) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), lowerQuery) {
			return true
		}
	}
	return false
}
