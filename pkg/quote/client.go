package quote

import "context"

type Quote struct {
	Symbol        string
	Price         float64
	Change        float64
	ChangePercent string
	Volume        int64
}

// QuoteClient fetches a delayed or real-time quote for one symbol.
type QuoteClient interface {
	Fetch(ctx context.Context, symbol string) (*Quote, error)
	Name() string
}
