package order

import (
	"context"
	"errors"
)

var (
	ErrOrderExists = errors.New("order already exists")
	ErrNotFound    = errors.New("order not found")
)

type Store interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	Ping(ctx context.Context) error
}
