package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"tickerbrief/internal/model"
)

func TestMemoryStore_FreshAfterPut(t *testing.T) {
	now := time.Now()
	store := NewMemoryStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	err := store.Put(ctx, "AAPL", model.KindNews, []byte(`{"a":1}`), 4*time.Hour)
	assert.Equal(t, nil, err)

	entry, err := store.Get(ctx, "AAPL", model.KindNews)
	assert.Equal(t, nil, err)
	assert.NotEqual(t, nil, entry)
	assert.Equal(t, []byte(`{"a":1}`), entry.Payload)
	assert.Equal(t, true, entry.Fresh(now))
}

func TestMemoryStore_StaleAfterTTL(t *testing.T) {
	now := time.Now()
	store := NewMemoryStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	store.Put(ctx, "AAPL", model.KindNews, []byte("old"), 8*time.Hour)

	// 10 hours later the payload is still served, just not fresh.
	later := now.Add(10 * time.Hour)
	entry, err := store.Get(ctx, "AAPL", model.KindNews)
	assert.Equal(t, nil, err)
	assert.NotEqual(t, nil, entry)
	assert.Equal(t, []byte("old"), entry.Payload)
	assert.Equal(t, false, entry.Fresh(later))
}

func TestMemoryStore_AbsentWithoutPut(t *testing.T) {
	store := NewMemoryStore()

	entry, err := store.Get(context.Background(), "MSFT", model.KindQuote)
	assert.Equal(t, nil, err)
	assert.Equal(t, (*Entry)(nil), entry)
}

func TestMemoryStore_Invalidate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "AAPL", model.KindNews, []byte("x"), time.Hour)
	store.Invalidate(ctx, "AAPL", model.KindNews)

	entry, _ := store.Get(ctx, "AAPL", model.KindNews)
	assert.Equal(t, (*Entry)(nil), entry)
}

func TestMemoryStore_InvalidateAll(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, kind := range model.Kinds {
		store.Put(ctx, "AAPL", kind, []byte("x"), time.Hour)
	}
	store.Put(ctx, "MSFT", model.KindNews, []byte("y"), time.Hour)

	store.InvalidateAll(ctx, "AAPL")

	for _, kind := range model.Kinds {
		entry, _ := store.Get(ctx, "AAPL", kind)
		assert.Equal(t, (*Entry)(nil), entry)
	}

	// Other tickers are untouched.
	entry, _ := store.Get(ctx, "MSFT", model.KindNews)
	assert.NotEqual(t, nil, entry)
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Put(ctx, "AAPL", model.KindNews, []byte("first"), time.Hour)
	store.Put(ctx, "AAPL", model.KindNews, []byte("second"), time.Hour)

	entry, _ := store.Get(ctx, "AAPL", model.KindNews)
	assert.Equal(t, []byte("second"), entry.Payload)
}

func TestMemoryStore_CleanupExpired(t *testing.T) {
	now := time.Now()
	clock := now
	store := NewMemoryStoreWithClock(func() time.Time { return clock })
	ctx := context.Background()

	store.Put(ctx, "AAPL", model.KindQuote, []byte("q"), 10*time.Minute)

	clock = now.Add(2 * time.Hour)
	removed := store.CleanupExpired(time.Hour)
	assert.Equal(t, 1, removed)

	entry, _ := store.Get(ctx, "AAPL", model.KindQuote)
	assert.Equal(t, (*Entry)(nil), entry)
}

func TestTTLConfigFor(t *testing.T) {
	cfg := DefaultTTLConfig()

	assert.Equal(t, 4*time.Hour, cfg.For(model.KindNews))
	assert.Equal(t, 2*time.Hour, cfg.For(model.KindSummary))
	assert.Equal(t, 10*time.Minute, cfg.For(model.KindQuote))
	assert.Equal(t, 7*24*time.Hour, cfg.For(model.KindLogo))
}

func TestTTLConfigFromEnv(t *testing.T) {
	t.Setenv("TTL_NEWS", "6h")
	t.Setenv("TTL_QUOTE", "bogus")

	cfg := TTLConfigFromEnv()
	assert.Equal(t, 6*time.Hour, cfg.News)
	assert.Equal(t, 10*time.Minute, cfg.Quote)
}
