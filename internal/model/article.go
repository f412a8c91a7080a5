package model

import "time"

type NewsArticle struct {
	Ticker      string    `json:"ticker"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
}

type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent string    `json:"change_percent"`
	Volume        int64     `json:"volume"`
	Source        string    `json:"source"`
	FetchedAt     time.Time `json:"fetched_at"`
}

type Logo struct {
	Ticker      string    `json:"ticker"`
	URL         string    `json:"url"`
	CompanyName string    `json:"company_name"`
	UpdatedAt   time.Time `json:"updated_at"`
}
