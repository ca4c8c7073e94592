// Package searchcache keeps web search results in Redis so repeated
// formulations do not hit the paid search API again.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/search"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
)

const (
	keyPrefix  = domain.KeyPrefix + "search:"
	defaultTTL = 24 * time.Hour
)

// Provider is the wrapped search provider.
type Provider interface {
	Search(ctx context.Context, q search.Query) ([]search.Hit, error)
	BulkSearch(ctx context.Context, qs []search.Query) (map[string][]search.Hit, error)
}

// Backend stores serialized results with a TTL. Get reports a miss as found=false.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

type cachedHit struct {
	URL   string `json:"url,omitempty"`
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

// Cached decorates a Provider with a result cache. Cache errors never fail a search.
type Cached struct {
	inner   Provider
	backend Backend
	name    string
	ttl     time.Duration
}

// New wraps inner. name separates the key spaces of different providers.
func New(inner Provider, backend Backend, name string, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cached{inner: inner, backend: backend, name: name, ttl: ttl}
}

// Search returns cached hits for q or runs it against the provider.
func (c *Cached) Search(ctx context.Context, q search.Query) ([]search.Hit, error) {
	if hits, ok := c.lookup(ctx, q); ok {
		return hits, nil
	}
	hits, err := c.inner.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	c.store(ctx, q, hits)
	return hits, nil
}

// BulkSearch serves cached queries and sends only the misses to the provider.
// A context marked with search.WithFresh skips the cache lookup.
func (c *Cached) BulkSearch(ctx context.Context, qs []search.Query) (map[string][]search.Hit, error) {
	out := make(map[string][]search.Hit, len(qs))
	var misses []search.Query
	for _, q := range qs {
		if hits, ok := c.lookup(ctx, q); ok {
			out[q.ID] = hits
			continue
		}
		misses = append(misses, q)
	}
	if len(misses) == 0 {
		return out, nil
	}

	fresh, err := c.inner.BulkSearch(ctx, misses)
	if err != nil {
		if len(out) > 0 {
			logger.FromContext(ctx).Warn("search provider failed, serving cached queries only",
				zap.Int("cached", len(out)), zap.Error(err))
			return out, nil
		}
		return nil, err
	}
	for _, q := range misses {
		hits, ok := fresh[q.ID]
		if !ok {
			continue
		}
		out[q.ID] = hits
		c.store(ctx, q, hits)
	}
	return out, nil
}

func (c *Cached) lookup(ctx context.Context, q search.Query) ([]search.Hit, bool) {
	if search.IsFresh(ctx) {
		metrics.SearchCacheTotal.WithLabelValues("bypass").Inc()
		return nil, false
	}
	data, found, err := c.backend.Get(ctx, c.key(q))
	if err != nil {
		logger.FromContext(ctx).Debug("search cache read failed", zap.String("query", q.Text), zap.Error(err))
	}
	if err != nil || !found {
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	var cached []cachedHit
	if err := json.Unmarshal(data, &cached); err != nil {
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
	hits := make([]search.Hit, len(cached))
	for i, h := range cached {
		hits[i] = search.Hit{URL: h.URL, ID: h.ID, Title: h.Title, QueryID: q.ID}
	}
	return hits, true
}

// store skips empty results; an empty answer is worth asking again.
func (c *Cached) store(ctx context.Context, q search.Query, hits []search.Hit) {
	if len(hits) == 0 {
		return
	}
	cached := make([]cachedHit, len(hits))
	for i, h := range hits {
		cached[i] = cachedHit{URL: h.URL, ID: h.ID, Title: h.Title}
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.backend.Set(ctx, c.key(q), data, c.ttl); err != nil {
		logger.FromContext(ctx).Debug("search cache write failed", zap.String("query", q.Text), zap.Error(err))
	}
}

// key hashes the normalized query text; query ids are per formulation and not part of it.
func (c *Cached) key(q search.Query) string {
	text := strings.Join(strings.Fields(strings.ToLower(q.Text)), " ")
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + c.name + ":" + hex.EncodeToString(sum[:16])
}

// RedisBackend stores entries with go-redis.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend parses a redis:// URL and creates the backend.
func NewRedisBackend(url string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBackend{client: redis.NewClient(opts)}, nil
}

// Get returns the stored bytes for key.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key for ttl.
func (r *RedisBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, data, ttl).Err()
}

// Ping checks the connection.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
