package provider

import (
	"context"
	"fmt"
	"time"

	"tickerbrief/internal/model"
	"tickerbrief/pkg/logo"
	"tickerbrief/pkg/news"
	"tickerbrief/pkg/quote"
)

// NewsFetcher adapts a news.NewsClient into the uniform Fetcher surface.
type NewsFetcher struct {
	client news.NewsClient
}

func NewNewsFetcher(client news.NewsClient) *NewsFetcher {
	return &NewsFetcher{client: client}
}

func (f *NewsFetcher) Name() string { return f.client.Name() }

func (f *NewsFetcher) Fetch(ctx context.Context, symbol string, kind model.DataKind) (*Payload, error) {
	if kind != model.KindNews {
		return nil, fmt.Errorf("%s: unsupported kind %q", f.Name(), kind)
	}

	fetched, err := f.client.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	articles := make([]model.NewsArticle, 0, len(fetched))
	for _, a := range fetched {
		// Source is the publisher when the upstream reports one, so the same
		// story arriving via two providers carries the same dedup key.
		source := a.Publisher
		if source == "" {
			source = a.Source
		}
		articles = append(articles, model.NewsArticle{
			Ticker:      symbol,
			Title:       a.Headline,
			URL:         a.URL,
			Source:      source,
			Content:     a.Detail,
			PublishedAt: a.PublishedAt,
		})
	}

	return &Payload{Kind: model.KindNews, Articles: articles}, nil
}

// QuoteFetcher adapts a quote.QuoteClient.
type QuoteFetcher struct {
	client quote.QuoteClient
}

func NewQuoteFetcher(client quote.QuoteClient) *QuoteFetcher {
	return &QuoteFetcher{client: client}
}

func (f *QuoteFetcher) Name() string { return f.client.Name() }

func (f *QuoteFetcher) Fetch(ctx context.Context, symbol string, kind model.DataKind) (*Payload, error) {
	if kind != model.KindQuote {
		return nil, fmt.Errorf("%s: unsupported kind %q", f.Name(), kind)
	}

	q, err := f.client.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Kind: model.KindQuote,
		Quote: &model.Quote{
			Symbol:        q.Symbol,
			Price:         q.Price,
			Change:        q.Change,
			ChangePercent: q.ChangePercent,
			Volume:        q.Volume,
			Source:        f.Name(),
			FetchedAt:     time.Now(),
		},
	}, nil
}

// LogoFetcher adapts the reference-data logo client.
type LogoFetcher struct {
	client *logo.Client
}

func NewLogoFetcher(client *logo.Client) *LogoFetcher {
	return &LogoFetcher{client: client}
}

func (f *LogoFetcher) Name() string { return f.client.Name() }

func (f *LogoFetcher) Fetch(ctx context.Context, symbol string, kind model.DataKind) (*Payload, error) {
	if kind != model.KindLogo {
		return nil, fmt.Errorf("%s: unsupported kind %q", f.Name(), kind)
	}

	url, err := f.client.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Kind: model.KindLogo,
		Logo: &model.Logo{
			Ticker:    symbol,
			URL:       url,
			UpdatedAt: time.Now(),
		},
	}, nil
}
