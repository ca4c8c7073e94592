// Package google is the Google Programmable Search (Custom Search JSON API)
// client, an alternative web search provider.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/search"
	"github.com/kailas-cloud/creatorscout/internal/transport/guard"
	"github.com/kailas-cloud/creatorscout/internal/transport/retry"
	"github.com/kailas-cloud/creatorscout/internal/transport/websearch"
)

// ProviderName labels metrics, logs and the guard.
const ProviderName = "google"

// maxNum is the API's per-request result cap.
const maxNum = 10

// Config holds Custom Search settings.
type Config struct {
	APIKey     string
	CX         string // search engine id
	NumResults int
	Workers    int
	Endpoint   string // overrides the API base URL
	Transport  http.RoundTripper
	Timeout    time.Duration
	Retry      retry.Config
}

// Client implements discovery.SearchProvider.
type Client struct {
	svc     *customsearch.Service
	cx      string
	num     int64
	workers int
	retry   retry.Config
	guard   *guard.Guard
}

// New creates a Custom Search client.
func New(ctx context.Context, cfg Config, g *guard.Guard) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.CX) == "" {
		return nil, fmt.Errorf("%w: google api key and cx are required", domain.ErrConfiguration)
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	hc := &http.Client{Timeout: cfg.Timeout, Transport: &transport.APIKey{Key: cfg.APIKey, Transport: base}}

	opts := []option.ClientOption{option.WithHTTPClient(hc)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}

	num := int64(cfg.NumResults)
	if num <= 0 || num > maxNum {
		num = maxNum
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultConfig()
	}
	if g == nil {
		g = guard.New(ProviderName, guard.Config{})
	}
	return &Client{svc: svc, cx: cfg.CX, num: num, workers: cfg.Workers, retry: cfg.Retry, guard: g}, nil
}

// Search runs one query with retries.
func (c *Client) Search(ctx context.Context, q search.Query) ([]search.Hit, error) {
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
	res, err := c.svc.Cse.List().Cx(c.cx).Q(q.Text).Num(c.num).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	hits := make([]search.Hit, 0, len(res.Items))
	for _, it := range res.Items {
		if it == nil {
			continue
		}
		hits = append(hits, search.Hit{URL: it.Link, ID: it.CacheId, Title: it.Title, QueryID: q.ID})
	}
	return hits, nil
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &domain.ProviderError{Provider: ProviderName, StatusCode: gerr.Code, Message: gerr.Message}
	}
	return fmt.Errorf("custom search request: %w", err)
}
