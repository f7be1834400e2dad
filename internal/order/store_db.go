package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"ShopFlow/internal/cart"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second
	pgUniqueCode = "23505"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Create(ctx context.Context, o Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return err
	}
	billing, err := json.Marshal(o.Billing)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, shipping, billing, name_on_card, card_last4,
		                    subtotal_cents, shipping_cents, tax_cents, total_cents,
		                    status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, o.ID, shipping, billing, o.Payment.NameOnCard, o.Payment.CardLast4,
		o.SubtotalCents, o.ShippingCents, o.TaxCents, o.TotalCents,
		o.Status, o.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrOrderExists, o.ID)
	}
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, position, product_id, name, price_cents, image, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range o.Items {
		if _, err := stmt.ExecContext(ctx, o.ID, i, it.ProductID, it.Name, it.PriceCents, it.Image, it.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		o                 Order
		shipping, billing []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, shipping, billing, name_on_card, card_last4,
		       subtotal_cents, shipping_cents, tax_cents, total_cents,
		       status, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &shipping, &billing, &o.Payment.NameOnCard, &o.Payment.CardLast4,
		&o.SubtotalCents, &o.ShippingCents, &o.TaxCents, &o.TotalCents,
		&o.Status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return Order{}, fmt.Errorf("decode shipping: %w", err)
	}
	if err := json.Unmarshal(billing, &o.Billing); err != nil {
		return Order{}, fmt.Errorf("decode billing: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, price_cents, image, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()

	o.Items = make([]cart.LineItem, 0, 8)
	for rows.Next() {
		var it cart.LineItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.PriceCents, &it.Image, &it.Quantity); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return Order{}, err
	}

	return o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
