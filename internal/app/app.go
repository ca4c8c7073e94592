// Package app is the composition root: it wires stores, providers and use
// cases from a Config. The CLI and the embedded SDK both build on it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/config"
	dbRedis "github.com/kailas-cloud/creatorscout/internal/db/redis"
	"github.com/kailas-cloud/creatorscout/internal/domain"
	logpkg "github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
	budgetrepo "github.com/kailas-cloud/creatorscout/internal/repository/budget"
	creatorrepo "github.com/kailas-cloud/creatorscout/internal/repository/creator"
	ledgerrepo "github.com/kailas-cloud/creatorscout/internal/repository/ledger"
	"github.com/kailas-cloud/creatorscout/internal/repository/searchcache"
	"github.com/kailas-cloud/creatorscout/internal/telemetry"
	"github.com/kailas-cloud/creatorscout/internal/transport/ensemble"
	"github.com/kailas-cloud/creatorscout/internal/transport/exa"
	"github.com/kailas-cloud/creatorscout/internal/transport/fixture"
	"github.com/kailas-cloud/creatorscout/internal/transport/google"
	"github.com/kailas-cloud/creatorscout/internal/transport/guard"
	openaiSugg "github.com/kailas-cloud/creatorscout/internal/transport/openai"
	"github.com/kailas-cloud/creatorscout/internal/usecase/crawlbudget"
	"github.com/kailas-cloud/creatorscout/internal/usecase/creatorsync"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/creatorscout/internal/usecase/health"
	ledgeruc "github.com/kailas-cloud/creatorscout/internal/usecase/ledger"
	usageuc "github.com/kailas-cloud/creatorscout/internal/usecase/usage"
)

// fixtureCredential stands in for provider keys in fixture mode, where no
// request leaves the process.
const fixtureCredential = "fixture"

// App holds the wired services.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Discovery *discovery.Service
	Sessions  *ledgeruc.Service // nil without a ledger
	Usage     *usageuc.Service
	Health    *healthuc.Service

	closers []func(context.Context) error
}

// Load reads config/<env>.yaml, builds the environment's logger and wires
// every service.
func Load(ctx context.Context, env string) (*App, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, err
	}
	logger, err := logpkg.NewLogger(env, logpkg.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return New(ctx, cfg, logger)
}

// New wires every service from cfg. A nil logger discards logs. On error
// everything acquired so far is released.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}
	if err := a.wire(ctx); err != nil {
		a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config
	a.Logger.Info("Starting creatorscout",
		zap.String("mode", cfg.Mode),
		zap.String("creator_store", cfg.CreatorStore.Driver),
		zap.String("search_provider", cfg.Search.Provider),
	)

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, a.Logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.closers = append(a.closers, shutdownTracing)

	// Register metrics explicitly (no init())
	metrics.RegisterCreatorMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	httpClient, err := a.httpClients()
	if err != nil {
		return err
	}

	// Creator store
	var (
		creators  creatorsync.CreatorStore
		storePing healthuc.Pinger
		kv        *dbRedis.Store
	)
	switch cfg.CreatorStore.Driver {
	case config.DriverSQLite:
		repo, err := creatorrepo.OpenSQLite(ctx, cfg.CreatorStore.SQLitePath)
		if err != nil {
			return fmt.Errorf("open creator store: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return repo.Close() })
		creators = repo.WithCallTimeout(cfg.CreatorStore.CallTimeout())
		storePing = repo
	default:
		kv, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.CreatorStore.Addrs,
			Username:   cfg.CreatorStore.Username,
			Password:   cfg.CreatorStore.Password,
			DB:         cfg.CreatorStore.DB,
			ClientName: cfg.Telemetry.ServiceName,
		})
		if err != nil {
			return fmt.Errorf("create redis store: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { kv.Close(); return nil })
		readiness := time.Duration(cfg.CreatorStore.ReadinessTimeout) * time.Second
		if err := kv.WaitForReady(ctx, readiness); err != nil {
			return fmt.Errorf("creator store not ready: %w", err)
		}
		if err := kv.CheckJSON(ctx); err != nil {
			return fmt.Errorf("creator store: %w", err)
		}
		creators = creatorrepo.New(kv, cfg.CreatorStore.KeyPrefix).
			WithCallTimeout(cfg.CreatorStore.CallTimeout())
		storePing = kv
	}
	a.Logger.Info("Connected to creator store")

	// Crawl budget: single tracker shared by the crawl client and usage service.
	var tracker *crawlbudget.Tracker
	budgetCfg := cfg.Ensemble.Budget
	if budgetCfg.DailyUnitLimit > 0 || budgetCfg.MonthlyUnitLimit > 0 {
		action := crawlbudget.ActionWarn
		if budgetCfg.Action == string(crawlbudget.ActionReject) {
			action = crawlbudget.ActionReject
		}
		tracker = crawlbudget.New(ensemble.ProviderName,
			budgetCfg.DailyUnitLimit, budgetCfg.MonthlyUnitLimit, action, a.Logger)
		if kv != nil {
			tracker.WithStore(ctx, budgetrepo.New(kv, 0, 0))
		}
	}

	// Providers
	ensembleGuard := guard.New(ensemble.ProviderName, guard.Config(cfg.Ensemble.RateLimit))
	crawler, err := ensemble.New(ensemble.Config{
		Token:      a.credential(cfg.Ensemble.Token),
		BaseURL:    cfg.Ensemble.BaseURL,
		HTTPClient: httpClient(time.Duration(cfg.Ensemble.TimeoutSec) * time.Second),
	}, ensembleGuard)
	if err != nil {
		return err
	}
	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	if tracker != nil {
		crawler.WithBudget(tracker)
	}

	searchGuard, provider, err := a.searchProvider(ctx, httpClient)
	if err != nil {
		return err
	}

	health := healthuc.New(storePing).WithProviders(ensembleGuard, searchGuard)

	if cfg.SearchCache.URL != "" {
		backend, err := searchcache.NewRedisBackend(cfg.SearchCache.URL)
		if err != nil {
			return fmt.Errorf("create search cache: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return backend.Close() })
		provider = searchcache.New(provider, backend, cfg.Search.Provider, cfg.SearchCache.TTL())
		health = health.WithComponent("search_cache", backend)
	}

	syncer := creatorsync.New(creators, crawler, domain.CacheConfig{
		MaxAge:  cfg.CreatorStore.MaxAge(),
		Workers: cfg.CreatorStore.Workers,
	})

	disc := discovery.New(provider, crawler, syncer, discovery.Config{
		DefaultLimit:  cfg.Search.DefaultLimit,
		MaxLimit:      cfg.Search.MaxLimit,
		TikTokPeriod:  cfg.Ensemble.TikTokPeriod,
		TikTokWorkers: cfg.Ensemble.TikTokWorkers,
	})

	if cfg.Ledger.URI != "" {
		client, err := ledgerrepo.Connect(ctx, cfg.Ledger.URI,
			options.Client().SetMonitor(otelmongo.NewMonitor()))
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Disconnect)
		repo := ledgerrepo.New(client, cfg.Ledger.Database, cfg.Ledger.Collection)
		a.Sessions = ledgeruc.New(repo, syncer)
		disc = disc.WithLedger(a.Sessions)
		health = health.WithComponent("ledger", repo)
	}

	if cfg.OpenAI.APIKey != "" {
		sugg, err := openaiSugg.NewSuggester(&openaiSugg.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			MaxKeywords: cfg.OpenAI.MaxKeywords,
		})
		if err != nil {
			return err
		}
		disc = disc.WithSuggester(sugg)
	}

	var budgetReader usageuc.BudgetReader
	if tracker != nil {
		budgetReader = tracker
	}

	a.Discovery = disc
	a.Usage = usageuc.New(budgetReader)
	a.Health = health
	return nil
}

// httpClients returns the outbound client factory. Fixture mode serves
// every provider call from disk.
func (a *App) httpClients() (func(time.Duration) *http.Client, error) {
	if a.Config.Mode != config.ModeFixture {
		return telemetry.HTTPClient, nil
	}
	fx, err := fixture.New(a.Config.Fixtures.Dir)
	if err != nil {
		return nil, err
	}
	a.Logger.Info("Fixture mode: provider calls are served from disk",
		zap.String("dir", a.Config.Fixtures.Dir))
	return func(time.Duration) *http.Client { return telemetry.WrapClient(fx.Client()) }, nil
}

func (a *App) credential(v string) string {
	if v == "" && a.Config.Mode == config.ModeFixture {
		return fixtureCredential
	}
	return v
}

func (a *App) searchProvider(
	ctx context.Context,
	httpClient func(time.Duration) *http.Client,
) (*guard.Guard, discovery.SearchProvider, error) {
	cfg := a.Config.Search
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	if cfg.Provider == config.ProviderGoogle {
		g := guard.New(google.ProviderName, guard.Config(cfg.RateLimit))
		c, err := google.New(ctx, google.Config{
			APIKey:     a.credential(cfg.GoogleAPIKey),
			CX:         a.credential(cfg.GoogleCX),
			NumResults: cfg.MaxResults,
			Workers:    cfg.Workers,
			Transport:  httpClient(timeout).Transport,
			Timeout:    timeout,
		}, g)
		if err != nil {
			return nil, nil, err
		}
		return g, c, nil
	}

	g := guard.New(exa.ProviderName, guard.Config(cfg.RateLimit))
	c, err := exa.New(exa.Config{
		APIKey:     a.credential(cfg.ExaAPIKey),
		BaseURL:    cfg.ExaBaseURL,
		NumResults: cfg.MaxResults,
		Workers:    cfg.Workers,
		HTTPClient: httpClient(timeout),
	}, g)
	if err != nil {
		return nil, nil, err
	}
	return g, c, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Logger.Warn("Error during close", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}
