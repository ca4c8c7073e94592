package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	domusage "github.com/kailas-cloud/creatorscout/internal/domain/usage"
	"github.com/kailas-cloud/creatorscout/internal/domain/usage/budget"
	usagemetrics "github.com/kailas-cloud/creatorscout/internal/domain/usage/metrics"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/creatorscout/internal/usecase/health"
)

type mockDiscovery struct {
	searchFn func(ctx context.Context, req discovery.Request) (discovery.Result, error)
	lookupFn func(ctx context.Context, req discovery.LookupRequest) ([]profile.Profile, error)
}

func (m *mockDiscovery) Search(ctx context.Context, req discovery.Request) (discovery.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return discovery.Result{}, nil
}

func (m *mockDiscovery) Lookup(ctx context.Context, req discovery.LookupRequest) ([]profile.Profile, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, req)
	}
	return nil, nil
}

type mockSessions struct {
	lookupFn func(ctx context.Context, ref session.Ref, usernames []string) ([]profile.Profile, error)
}

func (m *mockSessions) Lookup(ctx context.Context, ref session.Ref, usernames []string) ([]profile.Profile, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, ref, usernames)
	}
	return nil, nil
}

type mockUsage struct {
	period domusage.Period
}

func (m *mockUsage) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	m.period = period
	return domusage.NewReport(period, 1_773_100_800_000, 1_773_187_200_000, "ensemble",
		usagemetrics.New(12, 340), budget.New(1000, 660, false, 1_773_187_200_000))
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testEnv struct {
	disc     *mockDiscovery
	sessions *mockSessions
	usage    *mockUsage
	health   *mockHealth
	handler  http.Handler
}

func newTestEnv(t *testing.T, apiKeys ...string) *testEnv {
	t.Helper()
	env := &testEnv{
		disc:     &mockDiscovery{},
		sessions: &mockSessions{},
		usage:    &mockUsage{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"creator_store": healthuc.CheckOK},
		}},
	}
	srv := NewServer(env.disc, env.sessions, env.usage, env.health, zap.NewNop())
	env.handler = NewRouter(srv, RouterConfig{APIKeys: apiKeys, Logger: zap.NewNop()})
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func testProfile(p platform.Platform, username string, followers int64) profile.Profile {
	pr, err := profile.New(p, username, profile.Attributes{Followers: followers}, []byte(`{}`), testTime)
	if err != nil {
		panic(err)
	}
	return pr
}
