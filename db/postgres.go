package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func Connect() error {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		fmt.Println("DATABASE_URL environment variable is not set")
	}

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	return DB.Ping()
}

// EnsureSchema creates the tables the service needs when they do not exist
// yet. It runs at startup so a fresh database works without a migration step.
func EnsureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tickers (
			symbol TEXT PRIMARY KEY,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS news_articles (
			id BIGSERIAL PRIMARY KEY,
			ticker TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			source TEXT NOT NULL,
			content TEXT,
			published_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (ticker, url)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_summaries (
			id BIGSERIAL PRIMARY KEY,
			ticker TEXT NOT NULL,
			date DATE NOT NULL,
			summary_text TEXT NOT NULL,
			what_changed TEXT NOT NULL,
			risk_factors TEXT NOT NULL,
			articles_used JSONB,
			model_used TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (ticker, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_articles_ticker_published
			ON news_articles (ticker, published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_summaries_ticker_date
			ON daily_summaries (ticker, date DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}
