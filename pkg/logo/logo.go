// Package logo resolves a company logo URL for a ticker. Logos are reference
// data: the resolved URL changes rarely and is cached for days.
package logo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:    "https://logo.clearbit.com",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string {
	return "Clearbit"
}

// Fetch probes the logo endpoint and returns the URL when the image exists.
// The domain guess is ticker.com lowercased, which covers most large caps;
// misses surface as a provider failure and fall through the chain.
func (c *Client) Fetch(ctx context.Context, symbol string) (string, error) {
	url := fmt.Sprintf("%s/%s.com", c.baseURL, strings.ToLower(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", fmt.Errorf("logo request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("logo fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("logo fetch: status %d for %s", resp.StatusCode, symbol)
	}

	return url, nil
}
