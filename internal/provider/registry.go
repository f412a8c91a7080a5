package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tickerbrief/internal/model"
	"tickerbrief/internal/quota"
	"tickerbrief/pkg/logo"
	"tickerbrief/pkg/news"
	"tickerbrief/pkg/quote"
)

// LLMProvider is the quota name the summary pipeline charges model calls to.
// It never appears in the fetch chain.
const LLMProvider = "LLM"

// LLMQuotaLimit is the model budget: conservative daily cap plus a burst
// guard between calls.
func LLMQuotaLimit() quota.Limit {
	return quota.Limit{
		Provider:    LLMProvider,
		Limit:       800,
		Window:      quota.WindowDaily,
		MinInterval: 4 * time.Second,
	}
}

// FromEnv builds the fallback chain from whichever provider keys are
// configured. Priorities, intervals and budgets live here as the ordered
// configuration table; changing a fallback order is an edit to this table.
func FromEnv() *Chain {
	chain := NewChain()

	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		// Unlimited monthly but burst-limited per minute.
		chain.Register(Spec{
			Name:        "FinnHub",
			Kinds:       []model.DataKind{model.KindNews},
			Priority:    1,
			MinInterval: time.Second,
			Limit:       0,
			Window:      quota.WindowMonthly,
		}, NewNewsFetcher(news.NewFinnHubClient(key)))
	}

	if key := os.Getenv("ALPHA_VANTAGE_API_KEY"); key != "" {
		chain.Register(Spec{
			Name:        "AlphaVantage",
			Kinds:       []model.DataKind{model.KindNews, model.KindQuote},
			Priority:    2,
			MinInterval: 12 * time.Second,
			Limit:       25,
			Window:      quota.WindowDaily,
		}, &multiKindFetcher{
			name:  "AlphaVantage",
			news:  NewNewsFetcher(news.NewAlphaVantageClient(key)),
			quote: NewQuoteFetcher(quote.NewAlphaVantageClient(key)),
		})
	}

	if key := os.Getenv("MASSIVE_API_KEY"); key != "" {
		chain.Register(Spec{
			Name:        "Massive",
			Kinds:       []model.DataKind{model.KindNews},
			Priority:    3,
			MinInterval: 12 * time.Second,
			Limit:       7200,
			Window:      quota.WindowDaily,
		}, NewNewsFetcher(news.NewMassiveClient(key)))
	}

	if key := os.Getenv("TWELVE_DATA_API_KEY"); key != "" {
		chain.Register(Spec{
			Name:        "TwelveData",
			Kinds:       []model.DataKind{model.KindQuote},
			Priority:    3,
			MinInterval: 8 * time.Second,
			Limit:       800,
			Window:      quota.WindowDaily,
		}, NewQuoteFetcher(quote.NewTwelveDataClient(key)))
	}

	// Logo endpoint needs no key.
	chain.Register(Spec{
		Name:        "Clearbit",
		Kinds:       []model.DataKind{model.KindLogo},
		Priority:    1,
		MinInterval: time.Second,
		Limit:       0,
		Window:      quota.WindowMonthly,
	}, NewLogoFetcher(logo.NewClient()))

	if len(chain.ProvidersFor(model.KindNews)) == 0 {
		slog.Warn("no news provider API keys configured")
	}

	return chain
}

// multiKindFetcher routes one provider's kinds to their adapters so a single
// quota budget covers both.
type multiKindFetcher struct {
	name  string
	news  *NewsFetcher
	quote *QuoteFetcher
}

func (f *multiKindFetcher) Name() string { return f.name }

func (f *multiKindFetcher) Fetch(ctx context.Context, symbol string, kind model.DataKind) (*Payload, error) {
	switch kind {
	case model.KindNews:
		return f.news.Fetch(ctx, symbol, kind)
	case model.KindQuote:
		return f.quote.Fetch(ctx, symbol, kind)
	}
	return nil, fmt.Errorf("%s: unsupported kind %q", f.name, kind)
}
