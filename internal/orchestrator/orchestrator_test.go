package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"tickerbrief/internal/cache"
	"tickerbrief/internal/model"
	"tickerbrief/internal/provider"
	"tickerbrief/internal/quota"
)

type fakeFetcher struct {
	name    string
	payload *provider.Payload
	errs    []error // consumed per call; nil means success
	calls   int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context, symbol string, kind model.DataKind) (*provider.Payload, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if f.payload != nil {
		return f.payload, nil
	}
	return &provider.Payload{
		Kind:     model.KindNews,
		Articles: []model.NewsArticle{{Ticker: symbol, Title: "headline from " + f.name, URL: "https://" + f.name + ".example/a", Source: f.name}},
	}, nil
}

func newsSpec(name string, priority, limit int) provider.Spec {
	return provider.Spec{
		Name:     name,
		Kinds:    []model.DataKind{model.KindNews},
		Priority: priority,
		Limit:    limit,
		Window:   quota.WindowDaily,
	}
}

func newTestOrchestrator(chain *provider.Chain, tracker *quota.Tracker, store cache.Store) *Orchestrator {
	return New(store, cache.DefaultTTLConfig(), tracker, chain,
		WithRetryBackoff(time.Millisecond, 2*time.Millisecond),
		withSleep(func(time.Duration) {}),
	)
}

func TestResolve_InvalidTicker(t *testing.T) {
	o := newTestOrchestrator(provider.NewChain(), quota.NewTracker(nil), cache.NewMemoryStore())

	for _, symbol := range []string{"", "aapl", "TOOLONG", "BRK.B", "12"} {
		_, err := o.Resolve(context.Background(), symbol, model.KindNews, false)
		assert.Equal(t, ErrInvalidTicker, err)
	}
}

func TestResolve_FreshCacheSkipsProviders(t *testing.T) {
	chain := provider.NewChain()
	alpha := &fakeFetcher{name: "Alpha"}
	chain.Register(newsSpec("Alpha", 1, 10), alpha)

	store := cache.NewMemoryStore()
	o := newTestOrchestrator(chain, quota.NewTracker(chain.QuotaLimits()), store)

	payload := &provider.Payload{Kind: model.KindNews, Articles: []model.NewsArticle{{Title: "cached"}}}
	raw, _ := payload.Marshal()
	store.Put(context.Background(), "AAPL", model.KindNews, raw, time.Hour)

	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)

	assert.Equal(t, nil, err)
	assert.Equal(t, FreshnessCached, res.Freshness)
	assert.Equal(t, false, res.Degraded)
	assert.Equal(t, "cached", res.Payload.Articles[0].Title)
	assert.Equal(t, 0, alpha.calls)
}

func TestResolve_QuotaExhaustedFallsToNextProvider(t *testing.T) {
	// Alpha is at its 2/day limit; Beta succeeds; Alpha's counter is
	// untouched by the denied attempt.
	chain := provider.NewChain()
	alpha := &fakeFetcher{name: "Alpha"}
	beta := &fakeFetcher{name: "Beta"}
	chain.Register(newsSpec("Alpha", 1, 2), alpha)
	chain.Register(newsSpec("Beta", 2, 10), beta)

	tracker := quota.NewTracker(chain.QuotaLimits())
	tracker.Allow("Alpha")
	tracker.Allow("Alpha")

	o := newTestOrchestrator(chain, tracker, cache.NewMemoryStore())

	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)

	assert.Equal(t, nil, err)
	assert.Equal(t, "Beta", res.Provider)
	assert.Equal(t, FreshnessLive, res.Freshness)
	assert.Equal(t, 0, alpha.calls)
	assert.Equal(t, 0, tracker.Remaining("Alpha"))
}

func TestResolve_AllProvidersFailServesStale(t *testing.T) {
	// Chain fails; a 10-hour-old entry with an 8-hour TTL is served with
	// degraded=true.
	chain := provider.NewChain()
	chain.Register(newsSpec("Alpha", 1, 10), &fakeFetcher{
		name: "Alpha",
		errs: []error{errors.New("timeout"), errors.New("timeout")},
	})

	clock := time.Now().Add(-10 * time.Hour)
	store := cache.NewMemoryStoreWithClock(func() time.Time { return clock })
	payload := &provider.Payload{Kind: model.KindNews, Articles: []model.NewsArticle{{Title: "old news"}}}
	raw, _ := payload.Marshal()
	store.Put(context.Background(), "AAPL", model.KindNews, raw, 8*time.Hour)

	o := newTestOrchestrator(chain, quota.NewTracker(chain.QuotaLimits()), store)

	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)

	assert.Equal(t, nil, err)
	assert.Equal(t, FreshnessStale, res.Freshness)
	assert.Equal(t, true, res.Degraded)
	assert.Equal(t, "old news", res.Payload.Articles[0].Title)
}

func TestResolve_NoCacheAllFail(t *testing.T) {
	// Empty cache plus total chain failure is a typed result, not a panic
	// or provider error.
	chain := provider.NewChain()
	chain.Register(newsSpec("Alpha", 1, 10), &fakeFetcher{
		name: "Alpha",
		errs: []error{errors.New("boom"), errors.New("boom")},
	})

	o := newTestOrchestrator(chain, quota.NewTracker(chain.QuotaLimits()), cache.NewMemoryStore())

	_, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)
	assert.Equal(t, ErrNoData, err)
}

func TestResolve_TransientFailureRetriedOnce(t *testing.T) {
	chain := provider.NewChain()
	alpha := &fakeFetcher{name: "Alpha", errs: []error{errors.New("connection reset"), nil}}
	chain.Register(newsSpec("Alpha", 1, 10), alpha)

	o := newTestOrchestrator(chain, quota.NewTracker(chain.QuotaLimits()), cache.NewMemoryStore())

	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)

	assert.Equal(t, nil, err)
	assert.Equal(t, "Alpha", res.Provider)
	assert.Equal(t, 2, alpha.calls)
}

func TestResolve_LiveFetchWritesBack(t *testing.T) {
	chain := provider.NewChain()
	chain.Register(newsSpec("Alpha", 1, 10), &fakeFetcher{name: "Alpha"})

	store := cache.NewMemoryStore()
	o := newTestOrchestrator(chain, quota.NewTracker(chain.QuotaLimits()), store)

	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)
	assert.Equal(t, nil, err)
	assert.Equal(t, FreshnessLive, res.Freshness)

	entry, _ := store.Get(context.Background(), "AAPL", model.KindNews)
	assert.NotEqual(t, nil, entry)
	assert.Equal(t, true, entry.Fresh(time.Now()))
}

func TestResolve_ForceRefreshBypassesCache(t *testing.T) {
	chain := provider.NewChain()
	alpha := &fakeFetcher{name: "Alpha"}
	chain.Register(newsSpec("Alpha", 1, 10), alpha)

	store := cache.NewMemoryStore()
	payload := &provider.Payload{Kind: model.KindNews, Articles: []model.NewsArticle{{Title: "cached"}}}
	raw, _ := payload.Marshal()
	store.Put(context.Background(), "AAPL", model.KindNews, raw, time.Hour)

	o := newTestOrchestrator(chain, quota.NewTracker(chain.QuotaLimits()), store)

	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, true)

	assert.Equal(t, nil, err)
	assert.Equal(t, FreshnessLive, res.Freshness)
	assert.Equal(t, 1, alpha.calls)
}

func TestResolve_DedupesNewsPayload(t *testing.T) {
	// The same story twice in one payload, differing only in title case and
	// URL: one entry survives the write-back.
	chain := provider.NewChain()
	duplicated := &provider.Payload{
		Kind: model.KindNews,
		Articles: []model.NewsArticle{
			{Title: "Apple Beats Estimates", Source: "Reuters", URL: "https://alpha.example/a"},
			{Title: "apple beats estimates", Source: "Reuters", URL: "https://beta.example/a"},
			{Title: "Unrelated Launch", Source: "Reuters", URL: "https://alpha.example/b"},
		},
	}
	chain.Register(newsSpec("Alpha", 1, 10), &fakeFetcher{name: "Alpha", payload: duplicated})

	o := newTestOrchestrator(chain, quota.NewTracker(chain.QuotaLimits()), cache.NewMemoryStore())

	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(res.Payload.Articles))
	assert.Equal(t, "https://alpha.example/a", res.Payload.Articles[0].URL)
}

func TestResolve_CorruptCacheEntryTreatedAsMiss(t *testing.T) {
	chain := provider.NewChain()
	alpha := &fakeFetcher{name: "Alpha"}
	chain.Register(newsSpec("Alpha", 1, 10), alpha)

	store := cache.NewMemoryStore()
	store.Put(context.Background(), "AAPL", model.KindNews, []byte("{not json"), time.Hour)

	o := newTestOrchestrator(chain, quota.NewTracker(chain.QuotaLimits()), store)

	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)

	assert.Equal(t, nil, err)
	assert.Equal(t, FreshnessLive, res.Freshness)
	assert.Equal(t, 1, alpha.calls)
}

func TestResolve_IntervalGateSkipsWithoutQuota(t *testing.T) {
	chain := provider.NewChain()
	alpha := &fakeFetcher{name: "Alpha"}
	beta := &fakeFetcher{name: "Beta"}
	spec := newsSpec("Alpha", 1, 10)
	spec.MinInterval = time.Minute
	chain.Register(spec, alpha)
	chain.Register(newsSpec("Beta", 2, 10), beta)

	tracker := quota.NewTracker(chain.QuotaLimits())
	o := newTestOrchestrator(chain, tracker, cache.NewMemoryStore())

	// First resolve consumes Alpha and sets its watermark.
	res, err := o.Resolve(context.Background(), "AAPL", model.KindNews, false)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Alpha", res.Provider)

	// Immediately after, Alpha is ineligible and Beta serves, with Alpha's
	// budget untouched by the skip.
	remainingBefore := tracker.Remaining("Alpha")
	res, err = o.Resolve(context.Background(), "MSFT", model.KindNews, false)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Beta", res.Provider)
	assert.Equal(t, remainingBefore, tracker.Remaining("Alpha"))
	assert.Equal(t, 1, alpha.calls)
}
