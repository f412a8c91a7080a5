package cache

import (
	"context"
	"sync"
	"time"

	"tickerbrief/internal/model"
)

// MemoryStore is the fallback store used when Redis is not configured, and
// the store tests substitute for the persistent backend. Writers replace
// entries wholesale; last write wins.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// NewMemoryStoreWithClock lets tests control freshness without sleeping.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	s.now = now
	return s
}

func (s *MemoryStore) Get(ctx context.Context, symbol string, kind model.DataKind) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[entryKey(symbol, kind)]
	if !ok {
		return nil, nil
	}
	out := e
	return &out, nil
}

func (s *MemoryStore) Put(ctx context.Context, symbol string, kind model.DataKind, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(payload))
	copy(buf, payload)
	s.entries[entryKey(symbol, kind)] = Entry{
		Payload:   buf,
		FetchedAt: s.now(),
		TTL:       ttl,
	}
	return nil
}

func (s *MemoryStore) Invalidate(ctx context.Context, symbol string, kind model.DataKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, entryKey(symbol, kind))
	return nil
}

func (s *MemoryStore) InvalidateAll(ctx context.Context, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range model.Kinds {
		delete(s.entries, entryKey(symbol, kind))
	}
	return nil
}

// CleanupExpired drops entries past their stale retention window. Redis
// handles expiry natively; the memory store needs periodic sweeping.
func (s *MemoryStore) CleanupExpired(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if now.Sub(e.FetchedAt) > e.TTL+retention {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
