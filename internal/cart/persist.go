package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// DefaultSlotKey is the fixed namespace the cart is stored under.
const DefaultSlotKey = "shopflow-cart"

var (
	ErrNoState        = errors.New("no saved cart")
	ErrMalformedState = errors.New("malformed saved cart")
)

// Persister mirrors the cart to storage that outlives the process.
// Load returns ErrNoState when nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// KV is a byte-slot store. Get returns ErrNoState for an absent key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// SlotPersister stores the whole cart as one JSON array under Key.
type SlotPersister struct {
	KV  KV
	Key string
}

// NewSlotPersister stores the cart in kv under key, or under
// DefaultSlotKey when key is empty.
func NewSlotPersister(kv KV, key string) *SlotPersister {
	if key == "" {
		key = DefaultSlotKey
	}
	return &SlotPersister{KV: kv, Key: key}
}

func (p *SlotPersister) Load(ctx context.Context) ([]LineItem, error) {
	raw, err := p.KV.Get(ctx, p.Key)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrNoState
	}

	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return items, nil
}

func (p *SlotPersister) Save(ctx context.Context, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return p.KV.Put(ctx, p.Key, raw)
}

func (p *SlotPersister) Ping(ctx context.Context) error {
	if pg, ok := p.KV.(pinger); ok {
		return pg.Ping(ctx)
	}
	return nil
}

// MemKV is a process-local KV, handy as a test double and as the default
// when no durable backend is configured.
type MemKV struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemKV() *MemKV {
	return &MemKV{m: map[string][]byte{}}
}

func (kv *MemKV) Get(ctx context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	v, ok := kv.m[key]
	if !ok {
		return nil, ErrNoState
	}
	return bytes.Clone(v), nil
}

func (kv *MemKV) Put(ctx context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = bytes.Clone(value)
	return nil
}
