package repository

import (
	"database/sql"
	"encoding/json"

	"tickerbrief/internal/model"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// UpsertDaily writes the one summary row per (ticker, date). A refresh of
// the same day supersedes the existing row.
func (r *SummaryRepository) UpsertDaily(s *model.DailySummary) error {
	articlesUsed, err := json.Marshal(s.ArticlesUsed)
	if err != nil {
		return err
	}

	return r.db.QueryRow(`
		INSERT INTO daily_summaries(ticker, date, summary_text, what_changed, risk_factors, articles_used, model_used)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ticker, date) DO UPDATE SET
			summary_text = EXCLUDED.summary_text,
			what_changed = EXCLUDED.what_changed,
			risk_factors = EXCLUDED.risk_factors,
			articles_used = EXCLUDED.articles_used,
			model_used = EXCLUDED.model_used
		RETURNING id
	`, s.Ticker, s.Date, s.SummaryText, s.WhatChanged, s.RiskFactors, articlesUsed, s.ModelUsed).Scan(&s.ID)
}

func (r *SummaryRepository) GetLatest(ticker string) (*model.DailySummary, error) {
	row := r.db.QueryRow(`
		SELECT id, ticker, date, summary_text, what_changed, risk_factors, articles_used, model_used, created_at
		FROM daily_summaries
		WHERE ticker = $1
		ORDER BY date DESC
		LIMIT 1
	`, ticker)

	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetHistory returns the read-only window over the most recent summaries,
// newest first. Callers never mutate it.
func (r *SummaryRepository) GetHistory(ticker string, limit int) ([]model.DailySummary, error) {
	rows, err := r.db.Query(`
		SELECT id, ticker, date, summary_text, what_changed, risk_factors, articles_used, model_used, created_at
		FROM daily_summaries
		WHERE ticker = $1
		ORDER BY date DESC
		LIMIT $2
	`, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.DailySummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*model.DailySummary, error) {
	var s model.DailySummary
	var articlesJSON []byte

	err := row.Scan(&s.ID, &s.Ticker, &s.Date, &s.SummaryText, &s.WhatChanged, &s.RiskFactors, &articlesJSON, &s.ModelUsed, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(articlesJSON) > 0 {
		if err := json.Unmarshal(articlesJSON, &s.ArticlesUsed); err != nil {
			return nil, err
		}
	}

	return &s, nil
}
