package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type AlphaVantageClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAlphaVantageClient(apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:     apiKey,
		baseURL:    "https://www.alphavantage.co",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *AlphaVantageClient) Name() string {
	return "AlphaVantage"
}

func (c *AlphaVantageClient) Fetch(ctx context.Context, symbol string) (*Quote, error) {
	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw struct {
		GlobalQuote struct {
			Symbol        string `json:"01. symbol"`
			Price         string `json:"05. price"`
			Volume        string `json:"06. volume"`
			Change        string `json:"09. change"`
			ChangePercent string `json:"10. change percent"`
		} `json:"Global Quote"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage quote decode: %w", err)
	}

	if raw.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("alphavantage quote: empty response for %s", symbol)
	}

	price, err := strconv.ParseFloat(raw.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote price parse: %w", err)
	}

	change, _ := strconv.ParseFloat(raw.GlobalQuote.Change, 64)
	volume, _ := strconv.ParseInt(raw.GlobalQuote.Volume, 10, 64)

	return &Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: strings.TrimSuffix(raw.GlobalQuote.ChangePercent, "%"),
		Volume:        volume,
	}, nil
}
