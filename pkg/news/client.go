package news

import (
	"context"
	"time"
)

type Article struct {
	ExternalID  string
	Headline    string
	Detail      string
	URL         string
	Source      string
	PublishedAt time.Time
	Publisher   string
}

// NewsClient fetches recent company news for one ticker symbol.
type NewsClient interface {
	Fetch(ctx context.Context, symbol string) ([]Article, error)
	Name() string
}
