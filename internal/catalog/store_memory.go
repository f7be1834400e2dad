package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

var (
	//go:embed seed/products.json
	seedProducts []byte
	//go:embed seed/categories.json
	seedCategories []byte
)

// MemStore holds a fixed catalog in memory. It is never written after
// construction, so reads need no locking.
type MemStore struct {
	products   []Product
	categories []Category
}

func NewMemStore(products []Product, categories []Category) *MemStore {
	return &MemStore{
		products:   cloneProducts(products),
		categories: append([]Category(nil), categories...),
	}
}

// NewSeedStore loads the catalog bundled with the binary.
func NewSeedStore() (*MemStore, error) {
	var products []Product
	if err := json.Unmarshal(seedProducts, &products); err != nil {
		return nil, fmt.Errorf("decode seed products: %w", err)
	}
	var categories []Category
	if err := json.Unmarshal(seedCategories, &categories); err != nil {
		return nil, fmt.Errorf("decode seed categories: %w", err)
	}
	return &MemStore{products: products, categories: categories}, nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Products(ctx context.Context) ([]Product, error) {
	return s.products, nil
}

func (s *MemStore) Categories(ctx context.Context) ([]Category, error) {
	return s.categories, nil
}
