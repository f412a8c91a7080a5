package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

type TwelveDataClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewTwelveDataClient(apiKey string) *TwelveDataClient {
	return &TwelveDataClient{
		apiKey:     apiKey,
		baseURL:    "https://api.twelvedata.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *TwelveDataClient) Name() string {
	return "TwelveData"
}

func (c *TwelveDataClient) Fetch(ctx context.Context, symbol string) (*Quote, error) {
	url := fmt.Sprintf("%s/quote?symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("twelvedata request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw struct {
		Symbol        string `json:"symbol"`
		Close         string `json:"close"`
		Change        string `json:"change"`
		PercentChange string `json:"percent_change"`
		Volume        string `json:"volume"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("twelvedata decode: %w", err)
	}

	if raw.Close == "" {
		return nil, fmt.Errorf("twelvedata: empty response for %s", symbol)
	}

	price, err := strconv.ParseFloat(raw.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("twelvedata price parse: %w", err)
	}

	change, _ := strconv.ParseFloat(raw.Change, 64)
	volume, _ := strconv.ParseInt(raw.Volume, 10, 64)

	return &Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: raw.PercentChange,
		Volume:        volume,
	}, nil
}
