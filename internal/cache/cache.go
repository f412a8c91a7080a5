package cache

import (
	"context"
	"fmt"
	"os"
	"time"

	"tickerbrief/internal/model"
)

// Entry is an immutable snapshot of fetched data. Freshness is computed at
// read time so a store can keep expired entries around for degraded serving.
type Entry struct {
	Payload   []byte        `json:"payload"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
}

func (e *Entry) Fresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}

// Store holds at most one entry per (ticker, kind). Get returns (nil, nil)
// when no entry exists; an expired entry is still returned so callers can
// serve it as stale.
type Store interface {
	Get(ctx context.Context, symbol string, kind model.DataKind) (*Entry, error)
	Put(ctx context.Context, symbol string, kind model.DataKind, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, symbol string, kind model.DataKind) error
	InvalidateAll(ctx context.Context, symbol string) error
}

// TTLConfig maps each data kind to its freshness window. The classes are
// configuration, not per-entry values.
type TTLConfig struct {
	News    time.Duration
	Summary time.Duration
	Quote   time.Duration
	Logo    time.Duration
}

func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		News:    4 * time.Hour,
		Summary: 2 * time.Hour,
		Quote:   10 * time.Minute,
		Logo:    7 * 24 * time.Hour,
	}
}

// TTLConfigFromEnv applies TTL_NEWS, TTL_SUMMARY, TTL_QUOTE and TTL_LOGO
// overrides (Go duration strings) on top of the defaults.
func TTLConfigFromEnv() TTLConfig {
	cfg := DefaultTTLConfig()
	for env, target := range map[string]*time.Duration{
		"TTL_NEWS":    &cfg.News,
		"TTL_SUMMARY": &cfg.Summary,
		"TTL_QUOTE":   &cfg.Quote,
		"TTL_LOGO":    &cfg.Logo,
	} {
		if v := os.Getenv(env); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				*target = d
			}
		}
	}
	return cfg
}

func (c TTLConfig) For(kind model.DataKind) time.Duration {
	switch kind {
	case model.KindNews:
		return c.News
	case model.KindSummary:
		return c.Summary
	case model.KindQuote:
		return c.Quote
	case model.KindLogo:
		return c.Logo
	}
	return c.News
}

func entryKey(symbol string, kind model.DataKind) string {
	return fmt.Sprintf("%s:%s", kind, symbol)
}
