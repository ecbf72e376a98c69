package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Items []string `json:"items"`
}

func newTestNamespace(store Store) *Namespace {
	return NewNamespace(store, "products", time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	ns := newTestNamespace(NewMemoryStore())

	rows := []string{"a"}
	loads := 0
	load := func(context.Context) (page, error) {
		loads++
		return page{Items: append([]string(nil), rows...)}, nil
	}

	first, err := Fetch(ctx, ns, "list:1", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, first.Items)

	rows = append(rows, "b")

	second, err := Fetch(ctx, ns, "list:1", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, second.Items)
	assert.Equal(t, 1, loads)

	require.NoError(t, ns.Invalidate(ctx))

	third, err := Fetch(ctx, ns, "list:1", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, third.Items)
	assert.Equal(t, 2, loads)
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	ns := newTestNamespace(NewMemoryStore())
	boom := errors.New("db down")

	calls := 0
	_, err := Fetch(ctx, ns, "k", func(context.Context) (page, error) {
		calls++
		return page{}, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := Fetch(ctx, ns, "k", func(context.Context) (page, error) {
		calls++
		return page{Items: []string{"ok"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, got.Items)
	assert.Equal(t, 2, calls)
}

func TestNamespacesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	products := NewNamespace(store, "products", time.Minute, nil)
	blogs := NewNamespace(store, "blogs", time.Minute, nil)

	_, err := Fetch(ctx, blogs, "k", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	require.NoError(t, products.Invalidate(ctx))

	got, err := Fetch(ctx, blogs, "k", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Second))

	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(2 * time.Second)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("unreachable")
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("unreachable")
}
func (brokenStore) Incr(context.Context, string) (int64, error) { return 0, errors.New("unreachable") }
func (brokenStore) Counter(context.Context, string) (int64, error) {
	return 0, errors.New("unreachable")
}

func TestFetchFallsThroughWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	ns := newTestNamespace(brokenStore{})

	got, err := Fetch(ctx, ns, "k", func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	assert.Error(t, ns.Invalidate(ctx))
}
