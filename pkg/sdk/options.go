package creatorscout

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/creatorscout/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg config.Config

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores crawled creators and budget counters in Redis.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.CreatorStore.Driver = config.DriverRedis
		c.cfg.CreatorStore.Addrs = []string{addr}
		c.cfg.CreatorStore.Password = password
	})
}

// WithSQLite stores crawled creators in a local database file.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.CreatorStore.Driver = config.DriverSQLite
		c.cfg.CreatorStore.SQLitePath = path
	})
}

// WithCacheMaxAge sets how many days a crawled creator is served without a re-crawl.
// Default: 7.
func WithCacheMaxAge(days int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.CreatorStore.MaxAgeDays = days
	})
}

// WithEnsemble sets the crawl provider token. Required outside fixture mode.
func WithEnsemble(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Ensemble.Token = token
	})
}

// WithCrawlBudget caps the crawl units spent per day and month (0 = unlimited).
// With reject set, calls past the cap fail with ErrCrawlBudgetExceeded;
// otherwise they are logged and allowed.
func WithCrawlBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Ensemble.Budget.DailyUnitLimit = daily
		c.cfg.Ensemble.Budget.MonthlyUnitLimit = monthly
		c.cfg.Ensemble.Budget.Action = "warn"
		if reject {
			c.cfg.Ensemble.Budget.Action = "reject"
		}
	})
}

// WithExa uses Exa for web search. This is the default provider.
func WithExa(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.Provider = config.ProviderExa
		c.cfg.Search.ExaAPIKey = apiKey
	})
}

// WithGoogle uses Google Programmable Search for web search.
func WithGoogle(apiKey, cx string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Search.Provider = config.ProviderGoogle
		c.cfg.Search.GoogleAPIKey = apiKey
		c.cfg.Search.GoogleCX = cx
	})
}

// WithSearchCache caches web search results in the Redis database at url
// (redis://host:port/db).
func WithSearchCache(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.SearchCache.URL = url
	})
}

// WithOpenAI enables keyword suggestions for searches without keywords.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.OpenAI.APIKey = apiKey
	})
}

// WithMongoLedger records the creators shown per session in MongoDB.
// Required for SessionInfluencers.
func WithMongoLedger(uri string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Ledger.URI = uri
	})
}

// WithFixtures serves every provider call from recorded responses in dir.
// Credentials become optional.
func WithFixtures(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Mode = config.ModeFixture
		c.cfg.Fixtures.Dir = dir
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
