package creatorsync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	dombatch "github.com/kailas-cloud/creatorscout/internal/domain/batch"
	"github.com/kailas-cloud/creatorscout/internal/domain/lookup"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

// mockStore implements CreatorStore for tests.
type mockStore struct {
	mu         sync.Mutex
	getManyFn  func(ctx context.Context, keys []profile.Key, maxAge time.Duration, workers int) ([]lookup.Result, error)
	saveManyFn func(ctx context.Context, profiles []profile.Profile, workers int) ([]dombatch.Result, error)
	saveFn     func(ctx context.Context, p profile.Profile) error

	getManyWorkers int
	saveManyCalls  int
	saveCalls      []profile.Key
}

func (m *mockStore) GetMany(
	ctx context.Context, keys []profile.Key, maxAge time.Duration, workers int,
) ([]lookup.Result, error) {
	m.getManyWorkers = workers
	if m.getManyFn != nil {
		return m.getManyFn(ctx, keys, maxAge, workers)
	}
	out := make([]lookup.Result, len(keys))
	for i, k := range keys {
		out[i] = lookup.NewMiss(k)
	}
	return out, nil
}

func (m *mockStore) SaveMany(ctx context.Context, profiles []profile.Profile, workers int) ([]dombatch.Result, error) {
	m.saveManyCalls++
	if m.saveManyFn != nil {
		return m.saveManyFn(ctx, profiles, workers)
	}
	out := make([]dombatch.Result, len(profiles))
	for i, p := range profiles {
		out[i] = dombatch.NewOK(p.Key())
	}
	return out, nil
}

func (m *mockStore) Save(ctx context.Context, p profile.Profile) error {
	m.mu.Lock()
	m.saveCalls = append(m.saveCalls, p.Key())
	m.mu.Unlock()
	if m.saveFn != nil {
		return m.saveFn(ctx, p)
	}
	return nil
}

// mockFetcher implements Fetcher for tests.
type mockFetcher struct {
	mu             sync.Mutex
	fetchProfileFn func(ctx context.Context, p platform.Platform, username string) (profile.Profile, error)
	fetchContentFn func(ctx context.Context, p platform.Platform, username string, depth int) ([]profile.ContentItem, error)

	profileCalls []string
	contentCalls []string
	depths       []int
}

func (m *mockFetcher) FetchProfile(ctx context.Context, p platform.Platform, username string) (profile.Profile, error) {
	m.mu.Lock()
	m.profileCalls = append(m.profileCalls, username)
	m.mu.Unlock()
	if m.fetchProfileFn != nil {
		return m.fetchProfileFn(ctx, p, username)
	}
	return fullProfile(p, username), nil
}

func (m *mockFetcher) FetchContent(
	ctx context.Context, p platform.Platform, username string, depth int,
) ([]profile.ContentItem, error) {
	m.mu.Lock()
	m.contentCalls = append(m.contentCalls, username)
	m.depths = append(m.depths, depth)
	m.mu.Unlock()
	if m.fetchContentFn != nil {
		return m.fetchContentFn(ctx, p, username, depth)
	}
	return []profile.ContentItem{{ID: username + "-v1"}}, nil
}

func (m *mockFetcher) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profileCalls) + len(m.contentCalls)
}

func fullProfile(p platform.Platform, username string) profile.Profile {
	var posts []profile.ContentItem
	if p.RequiresContent() {
		posts = []profile.ContentItem{{ID: username + "-v0"}}
	}
	return profile.Reconstruct(p, username, profile.Attributes{Followers: 100},
		posts, nil, json.RawMessage(`{"username":"`+username+`"}`), nil, time.Now())
}

func bareProfile(p platform.Platform, username string) profile.Profile {
	return profile.Reconstruct(p, username, profile.Attributes{}, nil, nil, nil, nil, time.Now())
}

func keysOf(p platform.Platform, names ...string) []Candidate {
	out := make([]Candidate, len(names))
	for i, n := range names {
		out[i] = Candidate{Key: profile.NewKey(n, p)}
	}
	return out
}

func hitsFor(keys []profile.Key, build func(profile.Key) lookup.Result) []lookup.Result {
	out := make([]lookup.Result, len(keys))
	for i, k := range keys {
		out[i] = build(k)
	}
	return out
}
