package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresStore reads the catalog from the products and categories tables.
// Tags and images are stored as JSON arrays; position fixes catalog order.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Products(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, description, price_cents, original_price_cents,
			       category, tags, featured, on_sale, images,
			       rating, review_count, in_stock
			FROM products
			ORDER BY position ASC, id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 32)
		for rows.Next() {
			var (
				p            Product
				original     sql.NullInt64
				tags, images []byte
			)
			if err := rows.Scan(
				&p.ID, &p.Name, &p.Description, &p.PriceCents, &original,
				&p.Category, &tags, &p.Featured, &p.OnSale, &images,
				&p.Rating, &p.ReviewCount, &p.InStock,
			); err != nil {
				return err
			}
			if original.Valid {
				v := original.Int64
				p.OriginalPriceCents = &v
			}
			if err := unmarshalList(tags, &p.Tags); err != nil {
				return err
			}
			if err := unmarshalList(images, &p.Images); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Categories(ctx context.Context) ([]Category, error) {
	var out []Category

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT c.id, c.name, c.slug, c.description, c.image, c.featured,
			       (SELECT count(*) FROM products p WHERE lower(p.category) = lower(c.name))
			FROM categories c
			ORDER BY c.position ASC, c.id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Category, 0, 8)
		for rows.Next() {
			var c Category
			if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &c.Featured, &c.ProductCount); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func unmarshalList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
