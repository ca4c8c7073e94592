// Package crawlbudget tracks crawl units charged by the data provider
// against daily and monthly limits.
package crawlbudget

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
)

// Action defines behavior when the unit budget is exceeded.
type Action string

const (
	// ActionWarn logs a warning but allows the call.
	ActionWarn Action = "warn"
	// ActionReject blocks the call.
	ActionReject Action = "reject"
)

// Store is the persistence interface for budget counters.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

type counters struct {
	units    int64
	requests int64
}

// Tracker is an in-memory unit budget with optional write-behind persistence.
// Check never leaves the process.
type Tracker struct {
	mu             sync.Mutex
	daily          counters
	monthly        counters
	dailyLimit     int64
	monthlyLimit   int64
	action         Action
	provider       string
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          Store
	logger         *zap.Logger
}

// New creates a tracker. A zero limit means unlimited.
func New(provider string, dailyLimit, monthlyLimit int64, action Action, logger *zap.Logger) *Tracker {
	now := time.Now().UTC()
	return &Tracker{
		dailyLimit:     dailyLimit,
		monthlyLimit:   monthlyLimit,
		action:         action,
		provider:       provider,
		lastDayReset:   truncateToDay(now),
		lastMonthReset: truncateToMonth(now),
		logger:         logger,
	}
}

// WithStore attaches a persistence store and loads the current counters.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.store = store
	t.load(ctx)
	return t
}

func (t *Tracker) load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	for _, k := range []struct {
		key string
		dst *int64
	}{
		{t.dailyKey(now, "units"), &t.daily.units},
		{t.dailyKey(now, "requests"), &t.daily.requests},
		{t.monthlyKey(now, "units"), &t.monthly.units},
		{t.monthlyKey(now, "requests"), &t.monthly.requests},
	} {
		val, err := t.store.Get(ctx, k.key)
		if err != nil {
			t.logger.Warn("failed to load crawl budget counter", zap.String("key", k.key), zap.Error(err))
			continue
		}
		*k.dst = val
	}

	t.logger.Info("crawl budget loaded",
		zap.String("provider", t.provider),
		zap.Int64("daily_units", t.daily.units),
		zap.Int64("monthly_units", t.monthly.units),
	)
}

func (t *Tracker) dailyKey(at time.Time, counter string) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s:%s", domain.KeyPrefix, t.provider, at.Format("2006-01-02"), counter)
}

func (t *Tracker) monthlyKey(at time.Time, counter string) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s:%s", domain.KeyPrefix, t.provider, at.Format("2006-01"), counter)
}

// Check reports whether a new provider call is allowed.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()

	dailyExceeded := t.dailyLimit > 0 && t.daily.units >= t.dailyLimit
	monthlyExceeded := t.monthlyLimit > 0 && t.monthly.units >= t.monthlyLimit
	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if t.action == ActionReject {
		return fmt.Errorf("%w: %s", domain.ErrCrawlBudgetExceeded, t.provider)
	}

	t.logger.Warn("crawl budget exceeded",
		zap.String("provider", t.provider),
		zap.Int64("daily_units", t.daily.units),
		zap.Int64("daily_limit", t.dailyLimit),
		zap.Int64("monthly_units", t.monthly.units),
		zap.Int64("monthly_limit", t.monthlyLimit),
	)
	return nil
}

// Record registers one provider call that charged units.
func (t *Tracker) Record(units int64) {
	t.mu.Lock()
	t.resetIfNeeded()
	t.daily.units += units
	t.daily.requests++
	t.monthly.units += units
	t.monthly.requests++
	store := t.store
	now := time.Now().UTC()
	t.mu.Unlock()

	metrics.CrawlBudgetUnitsRemaining.WithLabelValues(t.provider, "daily").Set(float64(t.RemainingDaily()))
	metrics.CrawlBudgetUnitsRemaining.WithLabelValues(t.provider, "monthly").Set(float64(t.RemainingMonthly()))

	if store == nil {
		return
	}

	// Write-behind with a detached context so callers never wait on the store.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, inc := range []struct {
		key string
		val int64
	}{
		{t.dailyKey(now, "units"), units},
		{t.dailyKey(now, "requests"), 1},
		{t.monthlyKey(now, "units"), units},
		{t.monthlyKey(now, "requests"), 1},
	} {
		if inc.val == 0 {
			continue
		}
		if err := store.IncrBy(ctx, inc.key, inc.val); err != nil {
			t.logger.Warn("failed to persist crawl budget", zap.String("key", inc.key), zap.Error(err))
		}
	}
}

// Provider returns the tracked provider name.
func (t *Tracker) Provider() string { return t.provider }

// RemainingDaily returns units left today, -1 when unlimited.
func (t *Tracker) RemainingDaily() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return remaining(t.dailyLimit, t.daily.units)
}

// RemainingMonthly returns units left this month, -1 when unlimited.
func (t *Tracker) RemainingMonthly() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return remaining(t.monthlyLimit, t.monthly.units)
}

// DailyLimit returns the daily unit cap.
func (t *Tracker) DailyLimit() int64 { return t.dailyLimit }

// MonthlyLimit returns the monthly unit cap.
func (t *Tracker) MonthlyLimit() int64 { return t.monthlyLimit }

// DailyUsed returns units charged today.
func (t *Tracker) DailyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.daily.units
}

// MonthlyUsed returns units charged this month.
func (t *Tracker) MonthlyUsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.monthly.units
}

// DailyRequests returns calls recorded today.
func (t *Tracker) DailyRequests() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.daily.requests
}

// MonthlyRequests returns calls recorded this month.
func (t *Tracker) MonthlyRequests() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNeeded()
	return t.monthly.requests
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	return max(limit-used, 0)
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (t *Tracker) resetIfNeeded() {
	now := time.Now().UTC()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(t.lastDayReset) {
		t.daily = counters{}
		t.lastDayReset = today
	}
	if thisMonth.After(t.lastMonthReset) {
		t.monthly = counters{}
		t.lastMonthReset = thisMonth
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
