// Package recommender is the HTTP client for the external semantic search
// service. The service indexes book descriptions and answers free-text
// queries with the closest matches, keyed by ISBN.
package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Recommendation is one entry of the service's search result. Only the fields
// the catalog needs are decoded; the service returns more.
type Recommendation struct {
	ISBN13  int64  `json:"isbn13"`
	Title   string `json:"title"`
	Authors string `json:"authors"`
}

type searchResponse struct {
	Query  string           `json:"query"`
	Count  int              `json:"count"`
	Result []Recommendation `json:"result"`
}

// Client talks to one recommender instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the service at baseURL (no trailing slash
// required). Requests are bounded by the given timeout in addition to any
// caller context deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search returns the recommendations for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]Recommendation, error) {
	u := fmt.Sprintf("%s/search/%s", c.baseURL, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("recommender request error: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommender call error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recommender status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("recommender decode error: %w", err)
	}

	return out.Result, nil
}

// Healthy reports whether the service answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
