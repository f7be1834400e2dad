package catalog

import "context"

// Store is the read-only source of catalog data. Products and Categories
// return records in catalog order; callers must not rely on the returned
// slices being private copies.
type Store interface {
	Ping(ctx context.Context) error
	Products(ctx context.Context) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
}
