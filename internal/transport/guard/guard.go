// Package guard throttles calls to an upstream provider and stops calling
// it for a while after repeated failures.
package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
	"github.com/kailas-cloud/creatorscout/internal/transport/retry"
)

const (
	failureThreshold = 3
	blockBase        = 2 * time.Minute
	blockMax         = 15 * time.Minute
)

// Config sets the sustained call rate. Zero RequestsPerSecond disables throttling.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

// Guard wraps calls to one provider.
type Guard struct {
	name    string
	limiter *rate.Limiter
	now     func() time.Time

	mu           sync.Mutex
	failures     int
	blockedUntil time.Time
	lastErr      string
}

// New creates a guard for the named provider.
func New(name string, cfg Config) *Guard {
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, cfg.Burst))
	}
	metrics.ProviderAvailable.WithLabelValues(name).Set(1)
	return &Guard{name: name, limiter: lim, now: time.Now}
}

// Name returns the provider name.
func (g *Guard) Name() string { return g.name }

// Available reports whether the provider is currently accepting calls.
func (g *Guard) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.blockedLocked(g.now())
}

// LastError returns the message of the most recent counted failure.
func (g *Guard) LastError() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Do waits for a rate slot and runs fn. While the provider is blocked it
// fails fast with domain.ErrProviderUnavailable.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	now := g.now()
	if g.blockedLocked(now) {
		until := g.blockedUntil
		g.mu.Unlock()
		return fmt.Errorf("%w: %s blocked until %s", domain.ErrProviderUnavailable, g.name, until.Format(time.RFC3339))
	}
	g.mu.Unlock()

	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	err := fn(ctx)
	g.record(err)
	return err
}

func (g *Guard) blockedLocked(now time.Time) bool {
	return !g.blockedUntil.IsZero() && now.Before(g.blockedUntil)
}

// record counts transient failures only; a 404 for one username says
// nothing about the provider's health.
func (g *Guard) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil || !countable(err) {
		if err == nil {
			g.failures = 0
			g.blockedUntil = time.Time{}
			g.lastErr = ""
			metrics.ProviderAvailable.WithLabelValues(g.name).Set(1)
		}
		return
	}

	g.failures++
	g.lastErr = err.Error()
	if g.failures >= failureThreshold {
		g.blockedUntil = g.now().Add(blockDuration(g.failures))
		metrics.ProviderAvailable.WithLabelValues(g.name).Set(0)
	}
}

func countable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return retry.Transient(err)
}

// blockDuration is blockBase doubled per failure past the threshold, capped at blockMax.
func blockDuration(failures int) time.Duration {
	d := blockBase
	for i := failureThreshold; i < failures; i++ {
		d *= 2
		if d >= blockMax {
			return blockMax
		}
	}
	return d
}
