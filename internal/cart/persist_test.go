package cart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kvBackends(t *testing.T) map[string]KV {
	t.Helper()

	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "carts"))
	require.NoError(t, err)

	sqliteKV, err := OpenSQLiteKV(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteKV.Close() })

	return map[string]KV{
		"mem":    NewMemKV(),
		"file":   fileKV,
		"sqlite": sqliteKV,
	}
}

func TestKVBackends(t *testing.T) {
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := kv.Get(ctx, DefaultSlotKey)
			assert.ErrorIs(t, err, ErrNoState)

			require.NoError(t, kv.Put(ctx, DefaultSlotKey, []byte(`[1]`)))
			require.NoError(t, kv.Put(ctx, DefaultSlotKey, []byte(`[1,2]`)))

			got, err := kv.Get(ctx, DefaultSlotKey)
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))

			_, err = kv.Get(ctx, "other")
			assert.ErrorIs(t, err, ErrNoState)
		})
	}
}

func TestSlotPersisterRoundTrip(t *testing.T) {
	items := []LineItem{
		{ProductID: "9", Name: "Pour-Over", PriceCents: 5499, Image: "a.jpg", Quantity: 1},
		{ProductID: "2", Name: "Watch", PriceCents: 39999, Image: "", Quantity: 3},
	}

	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := NewSlotPersister(kv, "")

			_, err := p.Load(ctx)
			assert.ErrorIs(t, err, ErrNoState)

			require.NoError(t, p.Save(ctx, items))
			got, err := p.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, items, got)

			require.NoError(t, p.Save(ctx, nil))
			got, err = p.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestSlotPersisterWireFormat(t *testing.T) {
	kv := NewMemKV()
	p := NewSlotPersister(kv, "")

	require.NoError(t, p.Save(context.Background(), []LineItem{
		{ProductID: "1", Name: "Widget", PriceCents: 1000, Image: "x", Quantity: 2},
	}))

	raw, err := kv.Get(context.Background(), "shopflow-cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product_id":"1","name":"Widget","price_cents":1000,"image":"x","quantity":2}]`, string(raw))
}

func TestSlotPersisterMalformed(t *testing.T) {
	kv := NewMemKV()
	require.NoError(t, kv.Put(context.Background(), DefaultSlotKey, []byte(`[{"quantity":"two"}]`)))

	_, err := NewSlotPersister(kv, "").Load(context.Background())
	assert.ErrorIs(t, err, ErrMalformedState)
}

func TestFileKVSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Put(context.Background(), "../escape/me", []byte("v")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".._escape_me.json", entries[0].Name())
	assert.NoError(t, kv.Ping(context.Background()))
}

func TestStoreSurvivesRestartOnSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	ctx := context.Background()

	kv, err := OpenSQLiteKV(path)
	require.NoError(t, err)
	s := NewStore(ctx, Options{Persister: NewSlotPersister(kv, "")})
	_, err = s.Add(ctx, widget, 2)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, kv.Close())

	kv, err = OpenSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()

	restarted := NewStore(ctx, Options{Persister: NewSlotPersister(kv, "")})
	assert.Equal(t, s.Items(), restarted.Items())
}
