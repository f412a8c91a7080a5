package handler

import "tickerbrief/internal/quota"

type TickerResponse struct {
	Symbol  string `json:"symbol"`
	AddedAt string `json:"added_at"`
}

type TickerListResponse struct {
	Tickers []TickerResponse `json:"tickers"`
	Total   int              `json:"total"`
}

type AddTickerRequest struct {
	Symbol string `json:"symbol"`
}

// DataResponse wraps a resolved payload with its provenance so clients can
// tell live data from cached or stale data.
type DataResponse struct {
	Ticker    string `json:"ticker"`
	Kind      string `json:"kind"`
	Provider  string `json:"provider"`
	Freshness string `json:"freshness"`
	Degraded  bool   `json:"degraded"`
	Data      any    `json:"data"`
}

type SummaryResponse struct {
	Ticker       string       `json:"ticker"`
	Date         string       `json:"date"`
	SummaryText  string       `json:"summary_text"`
	WhatChanged  string       `json:"what_changed"`
	RiskFactors  string       `json:"risk_factors"`
	ArticlesUsed []ArticleRef `json:"articles_used"`
	ModelUsed    string       `json:"model_used"`
	CreatedAt    string       `json:"created_at"`
}

type ArticleRef struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

type SummaryHistoryResponse struct {
	Ticker    string            `json:"ticker"`
	Summaries []SummaryResponse `json:"summaries"`
}

type RefreshResponse struct {
	Ticker   string           `json:"ticker"`
	Degraded bool             `json:"degraded"`
	Summary  *SummaryResponse `json:"summary"`
}

type QuotaStatusResponse struct {
	Providers []quota.Usage `json:"providers"`
}
