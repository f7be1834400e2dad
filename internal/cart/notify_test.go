package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFeedKeepsMostRecent(t *testing.T) {
	f := NewFeed(2)
	f.Notify(newNotification(ActionAdded, "1", "A"))
	f.Notify(newNotification(ActionAdded, "2", "B"))
	f.Notify(newNotification(ActionRemoved, "1", "A"))

	got := f.Drain()
	assert.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ProductID)
	assert.Equal(t, ActionRemoved, got[1].Action)

	assert.Empty(t, f.Drain())
	assert.NotNil(t, f.Drain())
}

func TestMultiNotifierFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := MultiNotifier{a, nil, b, LogNotifier{Log: zap.NewNop()}, LogNotifier{}}

	m.Notify(newNotification(ActionCleared, "", ""))

	assert.Equal(t, []Action{ActionCleared}, a.actions())
	assert.Equal(t, []Action{ActionCleared}, b.actions())
	assert.Equal(t, "Cart cleared", a.got[0].Message)
}
