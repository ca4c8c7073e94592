package creatorscout

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/creatorscout/internal/app"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	domusage "github.com/kailas-cloud/creatorscout/internal/domain/usage"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/creatorscout/internal/usecase/health"
)

// Internal interfaces, swapped in tests.
type discoveryUseCase interface {
	Search(ctx context.Context, req discovery.Request) (discovery.Result, error)
	Lookup(ctx context.Context, req discovery.LookupRequest) ([]profile.Profile, error)
}

type sessionUseCase interface {
	Lookup(ctx context.Context, ref session.Ref, usernames []string) ([]profile.Profile, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// Client is the creatorscout SDK entry point.
type Client struct {
	app       *app.App
	discovery discoveryUseCase
	sessions  sessionUseCase // nil without a ledger
	health    healthUseCase
	usage     usageUseCase
	obs       *observer
}

// New creates a Client and connects to its stores.
// The provided context is used for the initial connections.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}
	if cc.cfg.CreatorStore.Driver == "" {
		return nil, errors.New("creatorscout: creator store required (use WithRedis or WithSQLite)")
	}
	cc.cfg.ApplyDefaults()

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cc.cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("creatorscout: %w", err)
	}

	c := &Client{
		app:       a,
		discovery: a.Discovery,
		health:    a.Health,
		usage:     a.Usage,
		obs:       obs,
	}
	// Go gotcha: a nil *ledger.Service stored in the interface is not nil.
	if a.Sessions != nil {
		c.sessions = a.Sessions
	}
	return c, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.app != nil {
		c.app.Close(context.Background())
	}
}
