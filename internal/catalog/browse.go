package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortName      SortOrder = "name"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortRating    SortOrder = "rating"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortName, SortPriceLow, SortPriceHigh, SortRating:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Query narrows and orders a browse listing. Zero values mean "no
// constraint"; MaxPriceCents of 0 is unbounded.
type Query struct {
	Text          string
	Category      string
	FeaturedOnly  bool
	OnSaleOnly    bool
	MinPriceCents int64
	MaxPriceCents int64
	MinRating     float64
	InStockOnly   bool
	Sort          SortOrder
}

func (q Query) match(p Product, lowerText string) bool {
	if lowerText != "" && !matchesText(p, lowerText) {
		return false
	}
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.FeaturedOnly && !p.Featured {
		return false
	}
	if q.OnSaleOnly && !p.OnSale {
		return false
	}
	if p.PriceCents < q.MinPriceCents {
		return false
	}
	if q.MaxPriceCents > 0 && p.PriceCents > q.MaxPriceCents {
		return false
	}
	if p.Rating < q.MinRating {
		return false
	}
	return !q.InStockOnly || p.InStock
}

// Browse applies q over the whole catalog. Relevance keeps catalog order;
// every sort is stable.
func (s *Service) Browse(ctx context.Context, q Query) ([]Product, error) {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out, err := s.filter(ctx, func(p Product) bool { return q.match(p, text) })
	if err != nil {
		return nil, err
	}

	var less func(a, b Product) bool
	switch q.Sort {
	case SortName:
		less = func(a, b Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortPriceLow:
		less = func(a, b Product) bool { return a.PriceCents < b.PriceCents }
	case SortPriceHigh:
		less = func(a, b Product) bool { return a.PriceCents > b.PriceCents }
	case SortRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out, nil
}
