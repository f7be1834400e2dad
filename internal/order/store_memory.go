package order

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Order
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]Order{}}
}

func (s *MemStore) Create(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[o.ID]; ok {
		return fmt.Errorf("%w: %s", ErrOrderExists, o.ID)
	}
	o.Items = slices.Clone(o.Items)
	s.m[o.ID] = o
	return nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.m[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	o.Items = slices.Clone(o.Items)
	return o, nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
