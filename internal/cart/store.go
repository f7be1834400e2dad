package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"ShopFlow/internal/catalog"
)

const defaultSaveTimeout = 3 * time.Second

type Options struct {
	// Persister defaults to an in-memory slot.
	Persister Persister
	Notifier  Notifier
	Log       *zap.Logger
	Metrics   *Metrics

	// AddDelay is an artificial wait before an add is applied, during
	// which Busy reports true. Zero disables it.
	AddDelay    time.Duration
	SaveTimeout time.Duration
}

// Store owns the shopping cart. All mutations are applied under one lock
// against the committed list, and every committed change is written in
// full to the Persister before the lock is released.
type Store struct {
	mu    sync.Mutex
	items []LineItem

	persister   Persister
	notifier    Notifier
	log         *zap.Logger
	metrics     *Metrics
	addDelay    time.Duration
	saveTimeout time.Duration

	pending atomic.Int64
}

// NewStore hydrates a cart from opts.Persister. Missing or unreadable
// state yields an empty cart; the failure is logged, never returned.
func NewStore(ctx context.Context, opts Options) *Store {
	s := &Store{
		persister:   opts.Persister,
		notifier:    opts.Notifier,
		log:         opts.Log,
		metrics:     opts.Metrics,
		addDelay:    opts.AddDelay,
		saveTimeout: opts.SaveTimeout,
	}
	if s.persister == nil {
		s.persister = NewSlotPersister(NewMemKV(), DefaultSlotKey)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.saveTimeout <= 0 {
		s.saveTimeout = defaultSaveTimeout
	}

	s.items = s.hydrate(ctx)
	count, _ := totals(s.items)
	if s.metrics != nil {
		s.metrics.Items.Set(float64(count))
	}
	return s
}

func (s *Store) hydrate(ctx context.Context) []LineItem {
	items, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNoState):
		return []LineItem{}
	case err != nil:
		s.log.Warn("saved cart unreadable, starting empty", zap.Error(err))
		return []LineItem{}
	}

	clean, changed := normalize(items)
	if changed {
		s.log.Warn("saved cart had invalid or duplicate lines",
			zap.Int("stored", len(items)), zap.Int("kept", len(clean)))
	}
	return clean
}

// Add puts qty of p into the cart, merging with an existing line for the
// same product. The merge happens against the cart as it is when the
// add delay ends, so concurrent adds never lose each other's quantity.
// If ctx ends during the delay the cart is left untouched. A line never
// holds more than MaxQuantity; an add that would push it past the cap
// fails with ErrInvalidQuantity and changes nothing.
func (s *Store) Add(ctx context.Context, p catalog.Product, qty int) (LineItem, error) {
	if err := checkQuantity(qty); err != nil {
		return LineItem{}, err
	}
	if p.ID == "" {
		return LineItem{}, errors.New("product id required")
	}

	s.pending.Add(1)
	defer s.pending.Add(-1)

	if err := sleep(ctx, s.addDelay); err != nil {
		return LineItem{}, err
	}

	line, action, err := s.add(ctx, p, qty)
	if err != nil {
		return LineItem{}, err
	}
	s.notify(newNotification(action, p.ID, p.Name))
	return line, nil
}

func (s *Store) add(ctx context.Context, p catalog.Product, qty int) (LineItem, Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(p.ID)
	if i < 0 {
		line := snapshot(p, qty)
		s.items = append(s.items, line)
		s.commitLocked(ctx, string(ActionAdded))
		return line, ActionAdded, nil
	}

	if have := s.items[i].Quantity; qty > MaxQuantity-have {
		return LineItem{}, "", fmt.Errorf("%w: %d more on top of %d exceeds %d", ErrInvalidQuantity, qty, have, MaxQuantity)
	}
	s.items[i].Quantity += qty
	s.commitLocked(ctx, string(ActionUpdated))
	return s.items[i], ActionUpdated, nil
}

// Remove deletes the line for productID. It reports false, and neither
// saves nor notifies, when the product is not in the cart.
func (s *Store) Remove(ctx context.Context, productID string) bool {
	removed, ok := s.remove(ctx, productID)
	if !ok {
		return false
	}
	s.notify(newNotification(ActionRemoved, removed.ProductID, removed.Name))
	return true
}

func (s *Store) remove(ctx context.Context, productID string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(productID)
	if i < 0 {
		return LineItem{}, false
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	s.commitLocked(ctx, string(ActionRemoved))
	return removed, true
}

// UpdateQuantity sets the quantity for productID. A quantity of zero or
// less removes the line; one above MaxQuantity is rejected with
// ErrInvalidQuantity. It reports whether the product was in the cart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, qty int) (bool, error) {
	if qty <= 0 {
		return s.Remove(ctx, productID), nil
	}
	if err := checkQuantity(qty); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(productID)
	if i < 0 {
		return false, nil
	}
	if s.items[i].Quantity != qty {
		s.items[i].Quantity = qty
		s.commitLocked(ctx, "set_quantity")
	}
	return true, nil
}

// Settle passes the current lines to fn while holding the cart lock and
// empties the cart only when fn returns nil. No add, update or remove can
// interleave with fn. An empty cart returns ErrEmpty without calling fn.
// The lock is released even if fn panics.
func (s *Store) Settle(ctx context.Context, fn func(items []LineItem) error) error {
	if err := s.settle(ctx, fn); err != nil {
		return err
	}
	s.notify(newNotification(ActionCleared, "", ""))
	return nil
}

func (s *Store) settle(ctx context.Context, fn func(items []LineItem) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return ErrEmpty
	}
	if err := fn(slices.Clone(s.items)); err != nil {
		return err
	}
	s.items = []LineItem{}
	s.commitLocked(ctx, "settle")
	return nil
}

// Clear empties the cart and saves it. It always notifies "cleared",
// even when the cart was already empty.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = []LineItem{}
	s.commitLocked(ctx, string(ActionCleared))
	s.mu.Unlock()

	s.notify(newNotification(ActionCleared, "", ""))
}

// Items returns a copy of the cart in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Total is the sum of price times quantity over all lines, in cents.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, total := totals(s.items)
	return total
}

// Count is the total quantity across lines, not the number of lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, _ := totals(s.items)
	return count
}

// Summary prices a consistent snapshot of the cart and returns it with
// the lines it was computed from.
func (s *Store) Summary() ([]LineItem, Summary) {
	items := s.Items()
	return items, Price(items)
}

// Busy reports whether an add is waiting out its delay.
func (s *Store) Busy() bool {
	return s.pending.Load() > 0
}

// Ping reports whether the durable slot behind the cart is reachable.
// Persisters that cannot tell are always considered ready.
func (s *Store) Ping(ctx context.Context) error {
	if pg, ok := s.persister.(pinger); ok {
		return pg.Ping(ctx)
	}
	return nil
}

func (s *Store) indexLocked(productID string) int {
	return slices.IndexFunc(s.items, func(it LineItem) bool { return it.ProductID == productID })
}

// commitLocked writes the full cart to the persister. Failures are logged
// and counted; the in-memory cart stays authoritative.
func (s *Store) commitLocked(ctx context.Context, op string) {
	count, _ := totals(s.items)
	s.metrics.observe(op, count)

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()

	if err := s.persister.Save(sctx, slices.Clone(s.items)); err != nil {
		s.metrics.persistFailed()
		s.log.Warn("persist cart failed", zap.String("op", op), zap.Error(err))
	}
}

func (s *Store) notify(n Notification) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("cart notifier panicked", zap.Any("panic", r))
		}
	}()
	s.notifier.Notify(n)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
