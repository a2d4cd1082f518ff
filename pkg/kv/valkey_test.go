package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ValkeyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewValkeyStore(ValkeyConfig{Addrs: []string{mr.Addr()}, Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestValkeyStore_SetGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 10*time.Second))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 10*time.Second, mr.TTL("k"))
}

func TestValkeyStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValkeyStore_ReplaceExisting(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("old"), 5*time.Second))

	prev, err := store.Replace(ctx, "k", []byte("new"), 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), prev)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
	assert.Equal(t, 30*time.Second, mr.TTL("k"))
}

func TestValkeyStore_ReplaceMissingIsNoop(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Replace(ctx, "k", []byte("new"), 30*time.Second)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("k"))
}

func TestValkeyStore_Take(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	prev, err := store.Take(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), prev)
	assert.False(t, mr.Exists("k"))

	_, err = store.Take(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValkeyStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), 2*time.Second))

	mr.FastForward(3 * time.Second)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValkeyStore_DeleteAndPing(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Delete(ctx, "never-set"))
}

func TestNewValkeyStore_Errors(t *testing.T) {
	_, err := NewValkeyStore(ValkeyConfig{})
	assert.Error(t, err)

	_, err = NewValkeyStore(ValkeyConfig{Addrs: []string{"a:1", "b:2"}})
	assert.ErrorContains(t, err, "sentinel master name")
}

func TestNewValkeyStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewValkeyStore(ValkeyConfig{Addrs: []string{addr}, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
