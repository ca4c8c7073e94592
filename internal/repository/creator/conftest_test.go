package creator

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/db"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

// mockStore implements the consumer interface for tests. Without fn
// overrides it behaves like an in-memory JSON store.
type mockStore struct {
	mu   sync.Mutex
	docs map[string][]byte

	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonGetMultiFn func(ctx context.Context, keys []string) ([][]byte, []error)
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) []error
	multiCalls     int
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = data
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) []error {
	m.mu.Lock()
	m.multiCalls++
	m.mu.Unlock()
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	errs := make([]error, len(items))
	for i, it := range items {
		errs[i] = m.JSONSet(ctx, it.Key, it.Path, it.Data)
	}
	return errs
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string) ([][]byte, []error) {
	m.mu.Lock()
	m.multiCalls++
	m.mu.Unlock()
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys)
	}
	out := make([][]byte, len(keys))
	errs := make([]error, len(keys))
	for i, k := range keys {
		out[i], errs[i] = m.JSONGet(ctx, k)
	}
	return out, errs
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{docs: map[string][]byte{}}
	repo := New(ms, "")
	repo.now = func() time.Time { return testNow }
	return repo, ms
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testProfile(p platform.Platform, username string, fetchedAt time.Time) profile.Profile {
	likes := int64(120)
	rate := 2.5
	return profile.Reconstruct(p, username,
		profile.Attributes{FullName: "Test " + username, Followers: 5000, Following: 10, Links: []string{"https://x.y"}},
		[]profile.ContentItem{{ID: username + "-1", Caption: "hello", Likes: &likes, Comments: 4, Views: 900}},
		nil, json.RawMessage(`{"pk":"1"}`), &rate, fetchedAt)
}
