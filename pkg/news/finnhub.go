package news

import (
	"context"
	"strconv"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// newsLookback is how far back company news is requested per fetch.
const newsLookback = 7 * 24 * time.Hour

type FinnHubClient struct {
	client *finnhub.DefaultApiService
}

func NewFinnHubClient(apiKey string) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{client: client}
}

func (c *FinnHubClient) Fetch(ctx context.Context, symbol string) ([]Article, error) {
	to := time.Now()
	from := to.Add(-newsLookback)

	res, _, err := c.client.CompanyNews(ctx).
		Symbol(symbol).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	if err != nil {
		return nil, err
	}

	var articles []Article

	for _, item := range res {
		a := Article{
			Source: c.Name(),
		}

		if item.Id != nil {
			a.ExternalID = strconv.FormatInt(*item.Id, 10)
		}

		if item.Headline != nil {
			a.Headline = *item.Headline
		}

		if item.Summary != nil {
			a.Detail = *item.Summary
		}

		if item.Url != nil {
			a.URL = *item.Url
		}

		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0)
		}

		if item.Source != nil {
			a.Publisher = *item.Source
		}

		articles = append(articles, a)
	}

	return articles, nil
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}
