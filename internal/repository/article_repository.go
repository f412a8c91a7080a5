package repository

import (
	"database/sql"

	"tickerbrief/internal/model"
)

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// SaveArticle inserts one article and reports false when its URL already
// exists for the ticker.
func (r *ArticleRepository) SaveArticle(a *model.NewsArticle) (bool, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO news_articles(ticker, title, url, source, content, published_at)
		VALUES($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ticker, url) DO NOTHING
		RETURNING id
	`, a.Ticker, a.Title, a.URL, a.Source, a.Content, a.PublishedAt).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveArticles persists a batch, counting saved and skipped duplicates.
func (r *ArticleRepository) SaveArticles(articles []model.NewsArticle) (int, int, error) {
	var saved, skipped int
	for i := range articles {
		ok, err := r.SaveArticle(&articles[i])
		if err != nil {
			return saved, skipped, err
		}
		if ok {
			saved++
		} else {
			skipped++
		}
	}
	return saved, skipped, nil
}

func (r *ArticleRepository) GetRecent(ticker string, limit int) ([]model.NewsArticle, error) {
	rows, err := r.db.Query(`
		SELECT ticker, title, url, source, content, published_at
		FROM news_articles
		WHERE ticker = $1
		ORDER BY published_at DESC
		LIMIT $2
	`, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []model.NewsArticle
	for rows.Next() {
		var a model.NewsArticle
		if err := rows.Scan(&a.Ticker, &a.Title, &a.URL, &a.Source, &a.Content, &a.PublishedAt); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return articles, nil
}
