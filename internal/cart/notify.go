package cart

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
	ActionCleared Action = "cleared"
)

type Notification struct {
	Action    Action    `json:"action"`
	ProductID string    `json:"product_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

func newNotification(a Action, productID, name string) Notification {
	var msg string
	switch a {
	case ActionAdded:
		msg = fmt.Sprintf("Added %s to cart", name)
	case ActionUpdated:
		msg = fmt.Sprintf("Updated %s quantity in cart", name)
	case ActionRemoved:
		msg = fmt.Sprintf("Removed %s from cart", name)
	case ActionCleared:
		msg = "Cart cleared"
	}
	return Notification{
		Action:    a,
		ProductID: productID,
		Name:      name,
		Message:   msg,
		At:        time.Now().UTC(),
	}
}

// Notifier receives user-facing cart messages. Implementations must not
// block; the store never waits on or fails because of a notifier.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type MultiNotifier []Notifier

func (m MultiNotifier) Notify(n Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(n)
		}
	}
}

type LogNotifier struct {
	Log *zap.Logger
}

func (l LogNotifier) Notify(n Notification) {
	if l.Log == nil {
		return
	}
	l.Log.Info("cart notification",
		zap.String("action", string(n.Action)),
		zap.String("product_id", n.ProductID),
		zap.String("message", n.Message),
	)
}

const defaultFeedSize = 32

// Feed keeps the most recent notifications so a client can poll for
// them. Older entries are dropped once it is full.
type Feed struct {
	mu   sync.Mutex
	size int
	buf  []Notification
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &Feed{size: size}
}

func (f *Feed) Notify(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.buf) == f.size {
		copy(f.buf, f.buf[1:])
		f.buf = f.buf[:len(f.buf)-1]
	}
	f.buf = append(f.buf, n)
}

// Drain returns pending notifications oldest first and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.buf
	f.buf = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
