package mcp

import (
	"context"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/usecase/discovery"
)

var testTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

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

func testProfile(p platform.Platform, username string, followers int64) profile.Profile {
	pr, err := profile.New(p, username, profile.Attributes{Followers: followers}, []byte(`{}`), testTime)
	if err != nil {
		panic(err)
	}
	return pr
}
