// Package ensemble is the EnsembleData client used to crawl Instagram and
// TikTok creators. Every call is charged in provider units, which are
// reported to the crawl budget.
package ensemble

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
	"github.com/kailas-cloud/creatorscout/internal/transport/guard"
	"github.com/kailas-cloud/creatorscout/internal/transport/retry"
)

const (
	// ProviderName labels metrics, logs, the guard and the crawl budget.
	ProviderName   = "ensemble"
	defaultBaseURL = "https://ensembledata.com/apis"
	maxErrorBody   = 512
)

// Endpoints.
const (
	epInstagramUser = "/instagram/user/detailed-info"
	epTikTokSearch  = "/tt/keyword/search"
	epTikTokPosts   = "/tt/user/posts"
	epTikTokInfo    = "/tt/user/info"
)

// Budget gates calls on the remaining crawl units.
type Budget interface {
	Check(ctx context.Context) error
	Record(units int64)
}

// Config holds EnsembleData settings.
type Config struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.Config
}

// Client implements creatorsync.Fetcher and discovery.TikTokSearcher.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	retry   retry.Config
	guard   *guard.Guard
	budget  Budget
	now     func() time.Time
}

type envelope struct {
	Data         json.RawMessage `json:"data"`
	UnitsCharged int64           `json:"units_charged"`
}

// New creates a client. A missing token is a configuration error.
func New(cfg Config, g *guard.Guard) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("%w: ensemble token is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultConfig()
	}
	if g == nil {
		g = guard.New(ProviderName, guard.Config{})
	}
	return &Client{
		token:   cfg.Token,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		retry:   cfg.Retry,
		guard:   g,
		now:     time.Now,
	}, nil
}

// WithBudget charges calls against b.
func (c *Client) WithBudget(b Budget) *Client {
	c.budget = b
	return c
}

// FetchProfile crawls one creator's profile. Instagram profiles come with
// their recent posts; TikTok content needs FetchContent.
func (c *Client) FetchProfile(ctx context.Context, p platform.Platform, username string) (profile.Profile, error) {
	username = profile.NormalizeUsername(username)
	switch p {
	case platform.Instagram:
		raw, err := c.call(ctx, epInstagramUser, url.Values{"username": {username}})
		if err != nil {
			return profile.Profile{}, err
		}
		return parseInstagramUser(raw, c.now())
	case platform.TikTok:
		raw, err := c.call(ctx, epTikTokInfo, url.Values{"username": {username}})
		if err != nil {
			return profile.Profile{}, err
		}
		return parseTikTokInfo(raw, username, c.now())
	default:
		return profile.Profile{}, fmt.Errorf("%w: %s is not crawlable", domain.ErrInvalidPlatform, p)
	}
}

// FetchContent crawls depth pages of a creator's recent content.
func (c *Client) FetchContent(
	ctx context.Context, p platform.Platform, username string, depth int,
) ([]profile.ContentItem, error) {
	username = profile.NormalizeUsername(username)
	switch p {
	case platform.TikTok:
		raw, err := c.call(ctx, epTikTokPosts, url.Values{
			"username": {username},
			"depth":    {fmt.Sprint(max(1, depth))},
		})
		if err != nil {
			return nil, err
		}
		return parseTikTokPosts(raw)
	case platform.Instagram:
		prof, err := c.FetchProfile(ctx, p, username)
		if err != nil {
			return nil, err
		}
		return prof.Posts(), nil
	default:
		return nil, fmt.Errorf("%w: %s is not crawlable", domain.ErrInvalidPlatform, p)
	}
}

// SearchAccounts runs a TikTok keyword search and returns one profile per
// result in result order, each carrying the matching video as its only post.
// The same account can appear more than once.
func (c *Client) SearchAccounts(ctx context.Context, phrase, period string) ([]profile.Profile, error) {
	q := url.Values{"name": {phrase}}
	if period != "" {
		q.Set("period", period)
	}
	raw, err := c.call(ctx, epTikTokSearch, q)
	if err != nil {
		return nil, err
	}
	return parseTikTokSearch(ctx, raw, c.now())
}

// call runs a GET with budget check, guard and retries, and returns the
// payload under "data".
func (c *Client) call(ctx context.Context, endpoint string, q url.Values) (json.RawMessage, error) {
	if c.budget != nil {
		if err := c.budget.Check(ctx); err != nil {
			return nil, err
		}
	}
	env, err := retry.Value(ctx, c.retry, func(ctx context.Context) (envelope, error) {
		var env envelope
		err := c.guard.Do(ctx, func(ctx context.Context) error {
			var err error
			env, err = c.get(ctx, endpoint, q)
			return err
		})
		return env, err
	})
	if err != nil {
		return nil, err
	}

	metrics.CrawlUnitsTotal.WithLabelValues(ProviderName, endpoint).Add(float64(env.UnitsCharged))
	if c.budget != nil {
		c.budget.Record(env.UnitsCharged)
	}
	logger.FromContext(ctx).Info("ensemble call",
		zap.String("endpoint", endpoint), zap.Int64("units_charged", env.UnitsCharged))
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (envelope, error) {
	params := url.Values{}
	for k, v := range q {
		params[k] = v
	}
	params.Set("token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return envelope{}, fmt.Errorf("build ensemble request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("ensemble %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return envelope{}, &domain.ProviderError{Provider: ProviderName, StatusCode: resp.StatusCode, Message: string(msg)}
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("decode ensemble %s: %w", endpoint, err)
	}
	return env, nil
}
