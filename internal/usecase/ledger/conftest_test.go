package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/usecase/creatorsync"
)

// memStore is an in-memory Store.
type memStore struct {
	docs      map[string][]profile.Profile
	getErr    error
	upsertErr error
	upserts   int
}

func newMemStore() *memStore { return &memStore{docs: map[string][]profile.Profile{}} }

func (m *memStore) Get(_ context.Context, docID string) ([]profile.Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	entries, ok := m.docs[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return entries, nil
}

func (m *memStore) Upsert(_ context.Context, docID string, entries []profile.Profile) error {
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.docs[docID] = entries
	return nil
}

// mockSyncer implements Syncer for tests.
type mockSyncer struct {
	calls [][]creatorsync.Candidate
}

func (m *mockSyncer) Sync(_ context.Context, cands []creatorsync.Candidate, _ creatorsync.Options) creatorsync.Report {
	m.calls = append(m.calls, cands)
	var rep creatorsync.Report
	for _, c := range cands {
		p := mkProfile(c.Key.Platform, c.Key.Username)
		rep.Profiles = append(rep.Profiles, p)
		rep.Resolutions = append(rep.Resolutions, creatorsync.Resolution{
			Key: c.Key, Source: creatorsync.SourceFetch, Profile: &p,
		})
	}
	return rep
}

func mkProfile(p platform.Platform, username string) profile.Profile {
	return profile.Reconstruct(p, username, profile.Attributes{}, nil, nil,
		json.RawMessage(`{"u":"`+username+`"}`), nil, time.Time{})
}
