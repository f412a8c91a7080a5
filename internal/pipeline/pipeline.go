// Package pipeline turns resolved news into the persisted daily summary for
// each watched ticker. It owns the LLM budget and the cached-summary
// short-circuit; the orchestrator below it owns provider budgets.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tickerbrief/internal/cache"
	"tickerbrief/internal/diff"
	"tickerbrief/internal/model"
	"tickerbrief/internal/orchestrator"
	"tickerbrief/internal/provider"
	"tickerbrief/internal/quota"
	"tickerbrief/pkg/llm"
)

// maxDegradedArticles caps the fallback digest when the LLM budget is spent.
const maxDegradedArticles = 5

// historyDays is how many prior summaries feed the what-changed comparison.
const historyDays = 7

type Resolver interface {
	Resolve(ctx context.Context, symbol string, kind model.DataKind, forceRefresh bool) (*orchestrator.Result, error)
}

type ArticleStore interface {
	SaveArticles(articles []model.NewsArticle) (int, int, error)
}

type SummaryStore interface {
	UpsertDaily(s *model.DailySummary) error
	GetHistory(ticker string, limit int) ([]model.DailySummary, error)
}

// Report describes one ticker's run for logging and API responses.
type Report struct {
	Summary       *model.DailySummary
	FromCache     bool
	Degraded      bool
	NewsProvider  string
	ArticlesSaved int
}

type Pipeline struct {
	resolver  Resolver
	store     cache.Store
	ttl       cache.TTLConfig
	tracker   *quota.Tracker
	llm       llm.SummaryClient
	articles  ArticleStore
	summaries SummaryStore

	tickerDelay time.Duration
	now         func() time.Time
	sleep       func(time.Duration)
}

type Option func(*Pipeline)

// WithTickerDelay sets the pause between tickers in a batch run.
func WithTickerDelay(d time.Duration) Option {
	return func(p *Pipeline) { p.tickerDelay = d }
}

func withClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func withSleep(fn func(time.Duration)) Option {
	return func(p *Pipeline) { p.sleep = fn }
}

func New(resolver Resolver, store cache.Store, ttl cache.TTLConfig, tracker *quota.Tracker, client llm.SummaryClient, articles ArticleStore, summaries SummaryStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver:    resolver,
		store:       store,
		ttl:         ttl,
		tracker:     tracker,
		llm:         client,
		articles:    articles,
		summaries:   summaries,
		tickerDelay: 2 * time.Second,
		now:         time.Now,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessTicker produces today's summary for one symbol. When the news came
// from cache and a fresh cached summary exists, that summary is returned
// without touching the LLM budget. Force refresh bypasses both caches.
func (p *Pipeline) ProcessTicker(ctx context.Context, symbol string, force bool) (*Report, error) {
	newsRes, err := p.resolver.Resolve(ctx, symbol, model.KindNews, force)
	if err != nil {
		return nil, err
	}

	if !force && newsRes.Freshness == orchestrator.FreshnessCached {
		if cached := p.cachedSummary(ctx, symbol); cached != nil {
			return &Report{Summary: cached, FromCache: true, NewsProvider: newsRes.Provider}, nil
		}
	}
	if force {
		if err := p.store.Invalidate(ctx, symbol, model.KindSummary); err != nil {
			slog.Warn("summary cache invalidate failed", "ticker", symbol, "error", err)
		}
	}

	// Quote is decorative for the digest; a miss never blocks the summary.
	if _, err := p.resolver.Resolve(ctx, symbol, model.KindQuote, false); err != nil && !errors.Is(err, orchestrator.ErrNoData) {
		slog.Warn("quote resolve failed", "ticker", symbol, "error", err)
	}

	articles := newsRes.Payload.Articles
	saved, skipped, err := p.articles.SaveArticles(articles)
	if err != nil {
		slog.Error("persisting articles failed", "ticker", symbol, "error", err)
	} else {
		slog.Info("articles persisted", "ticker", symbol, "saved", saved, "skipped", skipped)
	}

	history, err := p.summaries.GetHistory(symbol, historyDays)
	if err != nil {
		slog.Warn("loading summary history failed", "ticker", symbol, "error", err)
		history = nil
	}

	summary, degraded := p.summarize(symbol, articles, history)
	summary.Ticker = symbol
	summary.Date = p.today()

	changed, suppressed := diff.WhatChanged(history, summary.WhatChanged)
	summary.WhatChanged = changed
	if suppressed {
		slog.Info("what-changed repeats prior day, suppressed", "ticker", symbol)
	}

	if err := p.summaries.UpsertDaily(summary); err != nil {
		return nil, fmt.Errorf("upserting summary for %s: %w", symbol, err)
	}

	p.cacheSummary(ctx, symbol, summary)

	return &Report{
		Summary:       summary,
		Degraded:      degraded || newsRes.Degraded,
		NewsProvider:  newsRes.Provider,
		ArticlesSaved: saved,
	}, nil
}

// RunBatch processes symbols sequentially with a fixed pause between them so
// a large watchlist cannot burst through provider budgets. Failures are
// logged and counted, never fatal for the rest of the batch.
func (p *Pipeline) RunBatch(ctx context.Context, symbols []string, force bool) (processed, failed int) {
	for i, symbol := range symbols {
		if i > 0 {
			p.sleep(p.tickerDelay)
		}
		if err := ctx.Err(); err != nil {
			slog.Warn("batch canceled", "remaining", len(symbols)-i)
			failed += len(symbols) - i
			return processed, failed
		}

		report, err := p.ProcessTicker(ctx, symbol, force)
		if err != nil {
			slog.Error("ticker failed", "ticker", symbol, "error", err)
			failed++
			continue
		}
		slog.Info("ticker processed",
			"ticker", symbol,
			"from_cache", report.FromCache,
			"degraded", report.Degraded,
			"provider", report.NewsProvider,
		)
		processed++
	}
	return processed, failed
}

// summarize runs the two-stage LLM flow behind the model budget. When the
// budget denies the call or the model errors, it falls back to a template
// digest over the first few articles and marks the run degraded.
func (p *Pipeline) summarize(symbol string, articles []model.NewsArticle, history []model.DailySummary) (*model.DailySummary, bool) {
	if len(articles) == 0 {
		return &model.DailySummary{
			SummaryText: fmt.Sprintf("No recent news coverage found for %s.", symbol),
			WhatChanged: "",
			RiskFactors: "Insufficient coverage to assess risks.",
			ModelUsed:   "none",
		}, true
	}

	if p.llm == nil || !p.tracker.Allow(provider.LLMProvider) {
		slog.Warn("model budget unavailable, using degraded summary", "ticker", symbol)
		return degradedSummary(articles), true
	}

	inputs := make([]llm.ArticleInput, len(articles))
	for i, a := range articles {
		inputs[i] = llm.ArticleInput{Title: a.Title, Source: a.Source, Content: a.Content}
	}

	selected := inputs
	used := articles
	if indices, err := p.llm.SelectTop(symbol, inputs); err != nil {
		slog.Warn("article selection failed, summarizing all", "ticker", symbol, "error", err)
	} else if len(indices) > 0 {
		selected = selected[:0:0]
		used = used[:0:0]
		for _, idx := range indices {
			if idx >= 0 && idx < len(inputs) {
				selected = append(selected, inputs[idx])
				used = append(used, articles[idx])
			}
		}
	}

	var entries []llm.HistoryEntry
	for i, h := range history {
		if i >= historyDays {
			break
		}
		entries = append(entries, llm.HistoryEntry{
			Date:        h.Date.Format("2006-01-02"),
			WhatChanged: h.WhatChanged,
		})
	}

	result, err := p.llm.Summarize(symbol, selected, entries)
	if err != nil {
		slog.Warn("summarization failed, using degraded summary", "ticker", symbol, "error", err)
		return degradedSummary(articles), true
	}

	return &model.DailySummary{
		SummaryText:  result.Summary,
		WhatChanged:  result.WhatChanged,
		RiskFactors:  result.RiskFactors,
		ArticlesUsed: toRefs(used),
		ModelUsed:    result.ModelUsed,
	}, false
}

// degradedSummary lists headlines verbatim so the day is never blank.
func degradedSummary(articles []model.NewsArticle) *model.DailySummary {
	top := articles
	if len(top) > maxDegradedArticles {
		top = top[:maxDegradedArticles]
	}

	var b strings.Builder
	b.WriteString("Latest headlines:")
	for _, a := range top {
		b.WriteString("\n- ")
		b.WriteString(a.Title)
		if a.Source != "" {
			b.WriteString(" (")
			b.WriteString(a.Source)
			b.WriteString(")")
		}
	}

	return &model.DailySummary{
		SummaryText:  b.String(),
		WhatChanged:  "",
		RiskFactors:  "Automated digest unavailable; review headlines directly.",
		ArticlesUsed: toRefs(top),
		ModelUsed:    "none",
	}
}

func toRefs(articles []model.NewsArticle) []model.ArticleRef {
	refs := make([]model.ArticleRef, len(articles))
	for i, a := range articles {
		refs[i] = model.ArticleRef{Title: a.Title, URL: a.URL, Source: a.Source}
	}
	return refs
}

// cachedSummary returns the fresh cached summary for symbol, if one exists.
func (p *Pipeline) cachedSummary(ctx context.Context, symbol string) *model.DailySummary {
	entry, err := p.store.Get(ctx, symbol, model.KindSummary)
	if err != nil || entry == nil || !entry.Fresh(p.now()) {
		return nil
	}
	payload, err := provider.UnmarshalPayload(entry.Payload)
	if err != nil || payload.Summary == nil {
		return nil
	}
	return payload.Summary
}

func (p *Pipeline) cacheSummary(ctx context.Context, symbol string, s *model.DailySummary) {
	payload := provider.Payload{Kind: model.KindSummary, Summary: s}
	raw, err := payload.Marshal()
	if err != nil {
		return
	}
	if err := p.store.Put(ctx, symbol, model.KindSummary, raw, p.ttl.Summary); err != nil {
		slog.Warn("summary cache write failed", "ticker", symbol, "error", err)
	}
}

func (p *Pipeline) today() time.Time {
	y, m, d := p.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
