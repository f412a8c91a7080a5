// Package orchestrator decides, per (ticker, kind), whether to serve cache,
// fetch live, fall back to a lower-priority provider, or return a labeled
// stale/absent result, without ever exceeding provider budgets.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"tickerbrief/internal/cache"
	"tickerbrief/internal/diff"
	"tickerbrief/internal/model"
	"tickerbrief/internal/provider"
	"tickerbrief/internal/quota"
)

var (
	// ErrInvalidTicker rejects a symbol before any provider is contacted.
	ErrInvalidTicker = errors.New("invalid ticker symbol")
	// ErrNoData means the cache is empty and every chain candidate was
	// exhausted, skipped or failed.
	ErrNoData = errors.New("no data available from any source")
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// ValidTicker reports whether symbol is a plausible uppercase ticker.
func ValidTicker(symbol string) bool {
	return tickerPattern.MatchString(symbol)
}

type Freshness string

const (
	FreshnessLive   Freshness = "live"
	FreshnessCached Freshness = "cached"
	FreshnessStale  Freshness = "stale"
)

// Result labels where a payload came from so callers can render degraded
// data honestly.
type Result struct {
	Payload   *provider.Payload
	Provider  string
	Freshness Freshness
	Degraded  bool
}

type Orchestrator struct {
	store cache.Store
	ttl   cache.TTLConfig
	quota *quota.Tracker
	chain *provider.Chain

	attemptTimeout time.Duration
	retryBase      time.Duration
	retryCap       time.Duration
	sleep          func(time.Duration)
}

type Option func(*Orchestrator)

// WithAttemptTimeout bounds each provider call.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.attemptTimeout = d }
}

// WithRetryBackoff sets the base delay and its cap for the single retry a
// transient provider failure gets.
func WithRetryBackoff(base, cap time.Duration) Option {
	return func(o *Orchestrator) { o.retryBase = base; o.retryCap = cap }
}

func withSleep(fn func(time.Duration)) Option {
	return func(o *Orchestrator) { o.sleep = fn }
}

func New(store cache.Store, ttl cache.TTLConfig, tracker *quota.Tracker, chain *provider.Chain, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:          store,
		ttl:            ttl,
		quota:          tracker,
		chain:          chain,
		attemptTimeout: 8 * time.Second,
		retryBase:      500 * time.Millisecond,
		retryCap:       4 * time.Second,
		sleep:          time.Sleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Resolve serves (symbol, kind) per the freshness policy. Side effects are
// confined to quota counters and cache entries.
func (o *Orchestrator) Resolve(ctx context.Context, symbol string, kind model.DataKind, forceRefresh bool) (*Result, error) {
	if !ValidTicker(symbol) {
		return nil, ErrInvalidTicker
	}

	if forceRefresh {
		if err := o.store.Invalidate(ctx, symbol, kind); err != nil {
			slog.Warn("cache invalidate failed", "ticker", symbol, "kind", kind, "error", err)
		}
	} else {
		if res := o.fromCache(ctx, symbol, kind, true); res != nil {
			return res, nil
		}
	}

	if res := o.fetchLive(ctx, symbol, kind); res != nil {
		return res, nil
	}

	// Chain exhausted: the most recent stale entry, if any, is better than
	// nothing.
	if res := o.fromCache(ctx, symbol, kind, false); res != nil {
		res.Freshness = FreshnessStale
		res.Degraded = true
		return res, nil
	}

	return nil, ErrNoData
}

// fromCache returns a result when a usable entry exists. With freshOnly set,
// expired entries are ignored. Undecodable payloads count as a miss and are
// dropped.
func (o *Orchestrator) fromCache(ctx context.Context, symbol string, kind model.DataKind, freshOnly bool) *Result {
	entry, err := o.store.Get(ctx, symbol, kind)
	if err != nil {
		slog.Warn("cache read failed", "ticker", symbol, "kind", kind, "error", err)
		return nil
	}
	if entry == nil {
		return nil
	}
	if freshOnly && !entry.Fresh(time.Now()) {
		return nil
	}

	payload, err := provider.UnmarshalPayload(entry.Payload)
	if err != nil {
		slog.Warn("discarding undecodable cache payload", "ticker", symbol, "kind", kind, "error", err)
		o.store.Invalidate(ctx, symbol, kind)
		return nil
	}

	return &Result{Payload: payload, Provider: "cache", Freshness: FreshnessCached}
}

// fetchLive walks the fallback chain in priority order. A provider is skipped
// without consuming quota when its interval watermark or budget denies it; a
// transient failure gets one bounded-backoff retry before the chain advances.
func (o *Orchestrator) fetchLive(ctx context.Context, symbol string, kind model.DataKind) *Result {
	for _, spec := range o.chain.ProvidersFor(kind) {
		if !o.quota.Eligible(spec.Name) {
			slog.Debug("provider not yet eligible", "provider", spec.Name, "ticker", symbol)
			continue
		}

		fetcher := o.chain.FetcherFor(spec.Name)
		if fetcher == nil {
			continue
		}

		payload, err := o.attempt(ctx, fetcher, spec.Name, symbol, kind)
		if err != nil {
			slog.Warn("provider failed, advancing chain", "provider", spec.Name, "ticker", symbol, "kind", kind, "error", err)
			continue
		}
		if payload == nil {
			// Quota denied mid-walk; move to the next candidate.
			continue
		}

		if kind == model.KindNews {
			payload.Articles = diff.DedupeArticles(payload.Articles, o.chain.SourcePriority)
		}

		if raw, err := payload.Marshal(); err == nil {
			if err := o.store.Put(ctx, symbol, kind, raw, o.ttl.For(kind)); err != nil {
				slog.Warn("cache write failed", "ticker", symbol, "kind", kind, "error", err)
			}
		}

		return &Result{Payload: payload, Provider: spec.Name, Freshness: FreshnessLive}
	}
	return nil
}

// attempt performs up to two quota-counted calls to one provider. A nil, nil
// return means the budget denied the call.
func (o *Orchestrator) attempt(ctx context.Context, fetcher provider.Fetcher, name, symbol string, kind model.DataKind) (*provider.Payload, error) {
	delay := o.retryBase
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		if !o.quota.Allow(name) {
			if attempt == 0 {
				return nil, nil
			}
			return nil, lastErr
		}

		callCtx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
		payload, err := fetcher.Fetch(callCtx, symbol, kind)
		cancel()

		if err == nil {
			return payload, nil
		}
		lastErr = err

		if attempt == 0 {
			o.sleep(delay)
			delay *= 2
			if delay > o.retryCap {
				delay = o.retryCap
			}
		}
	}
	return nil, lastErr
}
