package discovery

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/domain/search"
	"github.com/kailas-cloud/creatorscout/internal/domain/session"
	"github.com/kailas-cloud/creatorscout/internal/usecase/creatorsync"
)

// mockProvider implements SearchProvider for tests.
type mockProvider struct {
	mu     sync.Mutex
	bulkFn func(ctx context.Context, qs []search.Query) (map[string][]search.Hit, error)
	calls  int
}

func (m *mockProvider) Search(ctx context.Context, q search.Query) ([]search.Hit, error) {
	res, err := m.BulkSearch(ctx, []search.Query{q})
	return res[q.ID], err
}

func (m *mockProvider) BulkSearch(ctx context.Context, qs []search.Query) (map[string][]search.Hit, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.bulkFn != nil {
		return m.bulkFn(ctx, qs)
	}
	return map[string][]search.Hit{}, nil
}

// mockTikTok implements TikTokSearcher for tests.
type mockTikTok struct {
	mu       sync.Mutex
	searchFn func(ctx context.Context, phrase, period string) ([]profile.Profile, error)
	periods  []string
}

func (m *mockTikTok) SearchAccounts(ctx context.Context, phrase, period string) ([]profile.Profile, error) {
	m.mu.Lock()
	m.periods = append(m.periods, period)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, phrase, period)
	}
	return nil, nil
}

// mockSyncer implements Syncer. Seeds come back as is, other candidates
// as profiles with the follower count from followers.
type mockSyncer struct {
	mu        sync.Mutex
	followers map[string]int64
	calls     [][]creatorsync.Candidate
}

func (m *mockSyncer) Sync(_ context.Context, cands []creatorsync.Candidate, _ creatorsync.Options) creatorsync.Report {
	m.mu.Lock()
	m.calls = append(m.calls, cands)
	m.mu.Unlock()

	var rep creatorsync.Report
	for _, c := range cands {
		var p profile.Profile
		if c.Seed != nil {
			p = *c.Seed
		} else {
			p = mkProfile(c.Key.Platform, c.Key.Username, m.followers[c.Key.Username])
		}
		rep.Profiles = append(rep.Profiles, p)
		rep.Resolutions = append(rep.Resolutions, creatorsync.Resolution{
			Key: c.Key, Source: creatorsync.SourceFetch, Profile: &p,
		})
	}
	return rep
}

func (m *mockSyncer) candidates() []creatorsync.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []creatorsync.Candidate
	for _, c := range m.calls {
		out = append(out, c...)
	}
	return out
}

// mockLedger implements Ledger.
type mockLedger struct {
	appendErr error
	appended  map[string][]profile.Profile
	resolveFn func(ctx context.Context, ref session.Ref, p platform.Platform, usernames []string) ([]profile.Profile, error)
}

func (m *mockLedger) Append(_ context.Context, ref session.Ref, entries []profile.Profile) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	if m.appended == nil {
		m.appended = map[string][]profile.Profile{}
	}
	m.appended[ref.DocID()] = append(m.appended[ref.DocID()], entries...)
	return nil
}

func (m *mockLedger) Resolve(
	ctx context.Context, ref session.Ref, p platform.Platform, usernames []string,
) ([]profile.Profile, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, ref, p, usernames)
	}
	return nil, nil
}

// mockSuggester implements KeywordSuggester.
type mockSuggester struct {
	keywords []string
	err      error
	calls    int
}

func (m *mockSuggester) SuggestKeywords(context.Context, string, string, platform.Platform) ([]string, error) {
	m.calls++
	return m.keywords, m.err
}

func mkProfile(p platform.Platform, username string, followers int64) profile.Profile {
	return profile.Reconstruct(p, username, profile.Attributes{Followers: followers},
		nil, nil, json.RawMessage(`{"id":"`+username+`"}`), nil, time.Now())
}

func withPost(p profile.Profile, likes int64) profile.Profile {
	return p.WithContent([]profile.ContentItem{{ID: p.Username() + "-1", Likes: &likes}}, nil)
}

func igHit(q search.Query, path string) search.Hit {
	return search.Hit{URL: "https://www.instagram.com/" + path, QueryID: q.ID}
}

func usernames(ps []profile.Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Username()
	}
	return out
}
