package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/creatorscout/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// ErrJSONUnsupported means the server lacks the RedisJSON commands the
// creator store is built on.
var ErrJSONUnsupported = errors.New("redis: JSON commands unavailable (need Redis 8+ or Redis Stack)")

// jsonProbeKey is read once at startup to detect RedisJSON.
const jsonProbeKey = "creatorscout:probe:json"

const (
	defaultDialTimeout = 5 * time.Second
	readyPollInterval  = 200 * time.Millisecond
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	ClientName  string // shown in CLIENT LIST
	DialTimeout time.Duration
}

// Store implements db.Store via rueidis. Server-assisted client caching is
// off: profiles are read once per sync and must reflect the latest crawl.
type Store struct {
	client rueidis.Client
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   cfg.ClientName,
		Dialer:       net.Dialer{Timeout: cfg.DialTimeout},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", strings.Join(cfg.Addrs, ","), err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w: %w", db.ErrUnavailable, err)
	}
	return nil
}

// CheckJSON verifies that JSON.GET is served. A missing key is fine; an
// unknown command is not.
func (s *Store) CheckJSON(ctx context.Context) error {
	err := s.do(ctx, s.b().Arbitrary("JSON.GET").Keys(jsonProbeKey).Build()).Error()
	switch {
	case err == nil, rueidis.IsRedisNil(err):
		return nil
	case strings.Contains(strings.ToLower(err.Error()), "unknown command"):
		return ErrJSONUnsupported
	default:
		return &db.Error{Op: db.OpJSONGet, Err: err}
	}
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until the store responds or timeout expires. The
// first ping is immediate; the timeout error carries the last ping failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		lastErr := s.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis after %s: %w", timeout, lastErr)
		case <-ticker.C:
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
