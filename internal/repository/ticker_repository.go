package repository

import (
	"database/sql"
	"time"

	"tickerbrief/internal/model"
)

type TickerRepository struct {
	db *sql.DB
}

func NewTickerRepository(db *sql.DB) *TickerRepository {
	return &TickerRepository{db: db}
}

func (r *TickerRepository) List() ([]model.Ticker, error) {
	rows, err := r.db.Query(`
		SELECT symbol, added_at
		FROM tickers
		ORDER BY symbol ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []model.Ticker
	for rows.Next() {
		var t model.Ticker
		if err := rows.Scan(&t.Symbol, &t.AddedAt); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickers, nil
}

func (r *TickerRepository) Exists(symbol string) (bool, error) {
	var found string
	err := r.db.QueryRow(`
		SELECT symbol FROM tickers WHERE symbol = $1
	`, symbol).Scan(&found)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add inserts the symbol and reports false when it already exists.
func (r *TickerRepository) Add(symbol string) (bool, error) {
	var inserted string
	err := r.db.QueryRow(`
		INSERT INTO tickers(symbol, added_at)
		VALUES($1, $2)
		ON CONFLICT (symbol) DO NOTHING
		RETURNING symbol
	`, symbol, time.Now()).Scan(&inserted)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the ticker and every row that references it in one
// transaction. Complete cleanup is required, not housekeeping.
func (r *TickerRepository) Remove(symbol string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM daily_summaries WHERE ticker = $1`, symbol); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM news_articles WHERE ticker = $1`, symbol); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM tickers WHERE symbol = $1`, symbol); err != nil {
		return err
	}

	return tx.Commit()
}
