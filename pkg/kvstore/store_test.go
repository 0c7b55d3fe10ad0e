package kvstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/campuskart/storefront/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryBackend().Open()
	ctx := context.Background()

	_, err := store.Get(ctx, KeyCart)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyCart, `[{"id":"used-textbook"}]`))

	got, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"used-textbook"}]`, got)

	require.NoError(t, store.Delete(ctx, KeyCart))
	_, err = store.Get(ctx, KeyCart)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryWatchSkipsOwnWrites(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	tabA := backend.Open()
	tabB := backend.Open()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feedA, err := tabA.Watch(ctx)
	require.NoError(t, err)
	feedB, err := tabB.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, tabA.Set(ctx, KeyUser, `{"fullName":"Asha Rao"}`))

	select {
	case ev := <-feedB:
		assert.Equal(t, KeyUser, ev.Key)
		assert.Equal(t, `{"fullName":"Asha Rao"}`, ev.NewValue)
		assert.False(t, ev.Deleted)
		assert.Equal(t, tabA.Origin(), ev.Origin)
	case <-time.After(time.Second):
		t.Fatal("expected tab B to receive the change event")
	}

	select {
	case ev := <-feedA:
		t.Fatalf("writer must not receive its own event, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryDeleteAbsentKeyFiresNoEvent(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	tabA := backend.Open()
	tabB := backend.Open()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feedB, err := tabB.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, tabA.Delete(ctx, KeyTheme))

	select {
	case ev := <-feedB:
		t.Fatalf("unexpected event for absent key: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSQLiteStoreRoundTripAndUpsert(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kv.db")
	store, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	_, err = store.Get(ctx, KeyTheme)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyTheme, "light"))
	require.NoError(t, store.Set(ctx, KeyTheme, "dark"))

	got, err := store.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", got)

	require.NoError(t, store.Delete(ctx, KeyTheme))
	_, err = store.Get(ctx, KeyTheme)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteHandlesShareChangeFeed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bus := NewBroadcaster()

	tabA, err := OpenSQLite(filepath.Join(dir, "kv.db"), bus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tabA.Close() })

	tabB, err := OpenSQLite(filepath.Join(dir, "kv.db"), bus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tabB.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feedB, err := tabB.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, tabA.Set(ctx, KeyCart, `[]`))

	select {
	case ev := <-feedB:
		assert.Equal(t, KeyCart, ev.Key)
		assert.Equal(t, `[]`, ev.NewValue)
	case <-time.After(time.Second):
		t.Fatal("expected sqlite handle B to receive the change event")
	}
}

func TestWatchFeedClosesOnCancel(t *testing.T) {
	t.Parallel()

	store := NewMemoryBackend().Open()
	ctx, cancel := context.WithCancel(context.Background())

	feed, err := store.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-feed:
		assert.False(t, open, "feed should close after cancellation")
	case <-time.After(time.Second):
		t.Fatal("feed did not close")
	}
}

func TestRedisOptionsFromConfig(t *testing.T) {
	t.Parallel()

	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@localhost:6380/2"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = optionsFromConfig(config.RedisConfig{
		Address:      "127.0.0.1:6379",
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, 4, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
}

func TestChangeEventEncoding(t *testing.T) {
	t.Parallel()

	ev := Event{Key: KeyCart, NewValue: `[]`, Origin: uuid.New()}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, ev, decoded)

	assert.Equal(t, "storefront:kv:cart", buildKey(KeyCart))
}
