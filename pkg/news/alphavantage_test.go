package news

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestGenerateExternalID(t *testing.T) {
	url := "https://example.com/article/123"

	id1 := generateExternalID(url)
	id2 := generateExternalID(url)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 16, len(id1))

	other := generateExternalID("https://example.com/article/456")
	assert.NotEqual(t, id1, other)
}

func TestAlphaVantageFetch(t *testing.T) {
	payload := map[string]interface{}{
		"feed": []map[string]interface{}{
			{
				"title":          "Apple Expands Services Revenue",
				"summary":        "Services hit a new quarterly record.",
				"url":            "https://example.com/apple-services",
				"source":         "Reuters",
				"time_published": "20260820T120000",
			},
		},
	}

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	client := &AlphaVantageClient{
		apiKey:     "test-key",
		baseURL:    srv.URL,
		httpClient: srv.Client(),
	}

	articles, err := client.Fetch(context.Background(), "AAPL")

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))

	a := articles[0]
	assert.Equal(t, "Apple Expands Services Revenue", a.Headline)
	assert.Equal(t, "Services hit a new quarterly record.", a.Detail)
	assert.Equal(t, "https://example.com/apple-services", a.URL)
	assert.Equal(t, "Reuters", a.Publisher)
	assert.Equal(t, "AlphaVantage", a.Source)
	assert.Equal(t, generateExternalID("https://example.com/apple-services"), a.ExternalID)
	assert.NotEqual(t, time.Time{}, a.PublishedAt)

	// The ticker filter must be part of the request.
	assert.MatchRegex(t, gotQuery, `tickers=AAPL`)
}

func TestMassiveFetch(t *testing.T) {
	payload := map[string]interface{}{
		"results": []map[string]interface{}{
			{
				"id":            "abc123",
				"title":         "Chipmaker Raises Guidance",
				"description":   "Full-year outlook lifted on data center demand.",
				"article_url":   "https://example.com/chips",
				"published_utc": "2026-08-20T09:30:00Z",
				"publisher":     map[string]interface{}{"name": "Benzinga"},
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	client := &MassiveClient{
		apiKey:     "test-key",
		baseURL:    srv.URL,
		httpClient: srv.Client(),
	}

	articles, err := client.Fetch(context.Background(), "NVDA")

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))
	assert.Equal(t, "abc123", articles[0].ExternalID)
	assert.Equal(t, "Chipmaker Raises Guidance", articles[0].Headline)
	assert.Equal(t, "Benzinga", articles[0].Publisher)
	assert.Equal(t, "Massive", articles[0].Source)
}
