// Package exa is the Exa web search client.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/search"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/transport/guard"
	"github.com/kailas-cloud/creatorscout/internal/transport/retry"
	"github.com/kailas-cloud/creatorscout/internal/transport/websearch"
)

const (
	// ProviderName labels metrics, logs and the guard.
	ProviderName   = "exa"
	defaultBaseURL = "https://api.exa.ai"
	maxErrorBody   = 512
)

// Config holds Exa client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	NumResults int // 0 lets the API choose
	Workers    int
	HTTPClient *http.Client
	Retry      retry.Config
}

// Client implements discovery.SearchProvider.
type Client struct {
	apiKey     string
	baseURL    string
	numResults int
	workers    int
	http       *http.Client
	retry      retry.Config
	guard      *guard.Guard
}

type searchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults,omitempty"`
}

type searchResponse struct {
	Results []struct {
		ID    string `json:"id"`
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"results"`
}

// New creates an Exa client. A missing API key is a configuration error.
func New(cfg Config, g *guard.Guard) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: exa api key is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultConfig()
	}
	if g == nil {
		g = guard.New(ProviderName, guard.Config{})
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		numResults: cfg.NumResults,
		workers:    cfg.Workers,
		http:       cfg.HTTPClient,
		retry:      cfg.Retry,
		guard:      g,
	}, nil
}

// Search runs one query with retries.
func (c *Client) Search(ctx context.Context, q search.Query) ([]search.Hit, error) {
	logger.FromContext(ctx).Debug("exa search", zap.String("query_id", q.ID), zap.String("query", q.Text))
	return retry.Value(ctx, c.retry, func(ctx context.Context) ([]search.Hit, error) {
		var hits []search.Hit
		err := c.guard.Do(ctx, func(ctx context.Context) error {
			start := time.Now()
			var err error
			hits, err = c.search(ctx, q)
			websearch.Observe(ProviderName, start, len(hits), err)
			return err
		})
		return hits, err
	})
}

// BulkSearch runs queries in parallel. Failed queries are absent from the result.
func (c *Client) BulkSearch(ctx context.Context, qs []search.Query) (map[string][]search.Hit, error) {
	return websearch.Bulk(ctx, ProviderName, c.workers, qs, c.Search)
}

func (c *Client) search(ctx context.Context, q search.Query) ([]search.Hit, error) {
	body, err := json.Marshal(searchRequest{Query: q.Text, NumResults: c.numResults})
	if err != nil {
		return nil, fmt.Errorf("marshal exa request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build exa request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exa request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ProviderError{Provider: ProviderName, StatusCode: resp.StatusCode, Message: string(msg)}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode exa response: %w", err)
	}
	hits := make([]search.Hit, 0, len(out.Results))
	for _, r := range out.Results {
		hits = append(hits, search.Hit{URL: r.URL, ID: r.ID, Title: r.Title, QueryID: q.ID})
	}
	return hits, nil
}
