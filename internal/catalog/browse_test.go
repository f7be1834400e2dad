package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowse(t *testing.T) {
	svc := newSeedService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"everything in catalog order", Query{}, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}},
		{"text and category", Query{Text: "bluetooth", Category: "electronics"}, []string{"1", "4"}},
		{"price window", Query{MinPriceCents: 5000, MaxPriceCents: 8000}, []string{"6", "9", "10"}},
		{"in stock electronics by price", Query{Category: "Electronics", InStockOnly: true, Sort: SortPriceLow}, []string{"4", "1", "2", "3"}},
		{"rating floor by rating", Query{MinRating: 4.7, Sort: SortRating}, []string{"9", "1", "3", "11"}},
		{"on sale highest first", Query{OnSaleOnly: true, Sort: SortPriceHigh}, []string{"1", "7", "4", "10"}},
		{"featured by name", Query{FeaturedOnly: true, Sort: SortName}, []string{"9", "6", "1", "2", "12"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Browse(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortRelevance, o)

	o, err = ParseSortOrder(" Price-High ")
	require.NoError(t, err)
	assert.Equal(t, SortPriceHigh, o)

	_, err = ParseSortOrder("newest")
	assert.Error(t, err)
}
