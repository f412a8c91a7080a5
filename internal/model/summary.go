package model

import "time"

// ArticleRef identifies an article that contributed to a daily summary.
type ArticleRef struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// DailySummary is the one-per-(ticker, date) digest. A manual refresh of the
// same day supersedes the row instead of appending a second one.
type DailySummary struct {
	ID           int64        `json:"id"`
	Ticker       string       `json:"ticker"`
	Date         time.Time    `json:"date"`
	SummaryText  string       `json:"summary_text"`
	WhatChanged  string       `json:"what_changed"`
	RiskFactors  string       `json:"risk_factors"`
	ArticlesUsed []ArticleRef `json:"articles_used"`
	ModelUsed    string       `json:"model_used"`
	CreatedAt    time.Time    `json:"created_at"`
}
