package model

import "time"

// DataKind is the category of information requested for a ticker.
type DataKind string

const (
	KindNews    DataKind = "news"
	KindSummary DataKind = "summary"
	KindQuote   DataKind = "quote"
	KindLogo    DataKind = "logo"
)

// Kinds lists every data kind the cache can hold for a ticker.
var Kinds = []DataKind{KindNews, KindSummary, KindQuote, KindLogo}

type Ticker struct {
	Symbol  string
	AddedAt time.Time
}
