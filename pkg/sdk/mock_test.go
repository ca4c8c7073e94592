package creatorscout

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	domusage "github.com/kailas-cloud/creatorscout/internal/domain/usage"
	"github.com/kailas-cloud/creatorscout/internal/domain/usage/budget"
	"github.com/kailas-cloud/creatorscout/internal/domain/usage/metrics"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/creatorscout/internal/usecase/health"
)

// --- discoveryUseCase mock ---

type mockDiscoveryUC struct {
	searchFn func(ctx context.Context, req discovery.Request) (discovery.Result, error)
	lookupFn func(ctx context.Context, req discovery.LookupRequest) ([]profile.Profile, error)
}

func (m *mockDiscoveryUC) Search(ctx context.Context, req discovery.Request) (discovery.Result, error) {
	return m.searchFn(ctx, req)
}

func (m *mockDiscoveryUC) Lookup(ctx context.Context, req discovery.LookupRequest) ([]profile.Profile, error) {
	return m.lookupFn(ctx, req)
}

// --- sessionUseCase mock ---

type mockSessionUC struct {
	lookupFn func(ctx context.Context, ref session.Ref, usernames []string) ([]profile.Profile, error)
}

func (m *mockSessionUC) Lookup(ctx context.Context, ref session.Ref, usernames []string) ([]profile.Profile, error) {
	return m.lookupFn(ctx, ref, usernames)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- usageUseCase mock ---

type mockUsageUC struct {
	period domusage.Period
}

func (m *mockUsageUC) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	m.period = period
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return domusage.NewReport(domusage.PeriodMonth, start.UnixMilli(), end.UnixMilli(), "ensemble",
		metrics.New(12, 340), budget.New(1000, 660, false, end.UnixMilli()))
}

// --- helpers ---

func testProfile(t *testing.T, p platform.Platform, username string, followers int64) profile.Profile {
	t.Helper()
	likes := int64(120)
	prof, err := profile.New(p, username, profile.Attributes{
		FullName:  "Test " + username,
		Followers: followers,
		Links:     []string{"https://example.com/" + username},
	}, []byte(`{}`), time.Unix(1760000000, 0))
	if err != nil {
		t.Fatalf("profile.New: %v", err)
	}
	return prof.WithContent([]profile.ContentItem{{ID: "1", Caption: "hello", Likes: &likes, Comments: 4}}, nil)
}

func testClient(disc discoveryUseCase, sessions sessionUseCase) *Client {
	return &Client{
		discovery: disc,
		sessions:  sessions,
		health:    &mockHealthUC{},
		usage:     &mockUsageUC{},
	}
}
