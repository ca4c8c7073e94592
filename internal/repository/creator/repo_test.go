package creator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/db"
	"github.com/kailas-cloud/creatorscout/internal/domain"
	dombatch "github.com/kailas-cloud/creatorscout/internal/domain/batch"
	"github.com/kailas-cloud/creatorscout/internal/domain/lookup"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

// --- Save / Get ---

func TestSave_KeyAndPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	var gotKey, gotPath string
	ms.jsonSetFn = func(_ context.Context, key, path string, _ []byte) error {
		gotKey, gotPath = key, path
		return nil
	}

	if err := repo.Save(context.Background(), testProfile(platform.Instagram, "Alice", testNow)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "creatorscout:creator:instagram:alice" {
		t.Errorf("key = %q", gotKey)
	}
	if gotPath != "$" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestSave_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetFn = func(context.Context, string, string, []byte) error { return errors.New("OOM") }

	if err := repo.Save(context.Background(), testProfile(platform.TikTok, "bob", testNow)); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet_RoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	in := testProfile(platform.Instagram, "alice", testNow)
	if err := repo.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, profile.NewKey("ALICE", platform.Instagram))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username() != "alice" || got.Followers() != 5000 {
		t.Errorf("got %s with %d followers", got.Username(), got.Followers())
	}
	if len(got.Posts()) != 1 || *got.Posts()[0].Likes != 120 {
		t.Errorf("posts = %+v", got.Posts())
	}
	if got.EngagementRate() == nil || *got.EngagementRate() != 2.5 {
		t.Errorf("engagement = %v", got.EngagementRate())
	}
	if !got.FetchedAt().Equal(testNow) {
		t.Errorf("fetched_at = %v", got.FetchedAt())
	}
	if string(got.Raw()) != `{"pk":"1"}` {
		t.Errorf("raw = %s", got.Raw())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Get(context.Background(), profile.NewKey("ghost", platform.TikTok))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- GetMany ---

func TestGetMany_HitMissStale(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	_ = repo.Save(ctx, testProfile(platform.Instagram, "fresh", testNow.Add(-time.Hour)))
	_ = repo.Save(ctx, testProfile(platform.Instagram, "old", testNow.Add(-8*24*time.Hour)))

	keys := []profile.Key{
		profile.NewKey("fresh", platform.Instagram),
		profile.NewKey("old", platform.Instagram),
		profile.NewKey("absent", platform.Instagram),
	}
	res, err := repo.GetMany(ctx, keys, 7*24*time.Hour, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []lookup.Outcome{lookup.OutcomeHit, lookup.OutcomeMiss, lookup.OutcomeMiss}
	if len(res) != len(want) {
		t.Fatalf("got %d results, want %d", len(res), len(want))
	}
	for i, r := range res {
		if r.Key() != keys[i] {
			t.Errorf("result %d key = %v, want %v", i, r.Key(), keys[i])
		}
		if r.Outcome() != want[i] {
			t.Errorf("result %d outcome = %s, want %s", i, r.Outcome(), want[i])
		}
	}
}

func TestGetMany_ChunksByWorkers(t *testing.T) {
	repo, ms := newTestRepo(t)
	keys := make([]profile.Key, 10)
	for i := range keys {
		keys[i] = profile.NewKey(string(rune('a'+i))+"x", platform.TikTok)
	}

	if _, err := repo.GetMany(context.Background(), keys, time.Hour, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.multiCalls != 3 {
		t.Errorf("pipelined calls = %d, want 3", ms.multiCalls)
	}
}

func TestGetMany_PerKeyError(t *testing.T) {
	repo, ms := newTestRepo(t)
	_ = repo.Save(context.Background(), testProfile(platform.Instagram, "good", testNow))
	ms.jsonGetMultiFn = func(_ context.Context, keys []string) ([][]byte, []error) {
		out := make([][]byte, len(keys))
		errs := make([]error, len(keys))
		for i, k := range keys {
			if k == "creatorscout:creator:instagram:bad" {
				errs[i] = &db.Error{Op: db.OpJSONGet, Err: errors.New("WRONGTYPE")}
				continue
			}
			out[i] = ms.docs[k]
		}
		return out, errs
	}

	keys := []profile.Key{profile.NewKey("good", platform.Instagram), profile.NewKey("bad", platform.Instagram)}
	res, err := repo.GetMany(context.Background(), keys, time.Hour, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res[0].Outcome() != lookup.OutcomeHit || res[1].Outcome() != lookup.OutcomeError {
		t.Errorf("outcomes = %s, %s", res[0].Outcome(), res[1].Outcome())
	}
}

func TestGetMany_AllFailed(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetMultiFn = func(_ context.Context, keys []string) ([][]byte, []error) {
		errs := make([]error, len(keys))
		for i := range errs {
			errs[i] = db.ErrUnavailable
		}
		return make([][]byte, len(keys)), errs
	}

	keys := []profile.Key{profile.NewKey("a1", platform.Instagram), profile.NewKey("b1", platform.Instagram)}
	_, err := repo.GetMany(context.Background(), keys, time.Hour, 2)
	if !errors.Is(err, db.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGetMany_CorruptDocument(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.docs["creatorscout:creator:tiktok:broken"] = []byte("{not json")
	_ = repo.Save(context.Background(), testProfile(platform.TikTok, "fine", testNow))

	keys := []profile.Key{profile.NewKey("broken", platform.TikTok), profile.NewKey("fine", platform.TikTok)}
	res, err := repo.GetMany(context.Background(), keys, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res[0].Outcome() != lookup.OutcomeError {
		t.Errorf("broken outcome = %s", res[0].Outcome())
	}
	if res[1].Outcome() != lookup.OutcomeHit {
		t.Errorf("fine outcome = %s", res[1].Outcome())
	}
}

func TestGetMany_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	res, err := repo.GetMany(context.Background(), nil, time.Hour, 5)
	if err != nil || res != nil {
		t.Fatalf("got %v, %v", res, err)
	}
	if ms.multiCalls != 0 {
		t.Error("store should not be called")
	}
}

// --- SaveMany ---

func TestSaveMany_PerItemResults(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetMultiFn = func(_ context.Context, items []db.JSONSetItem) []error {
		errs := make([]error, len(items))
		for i, it := range items {
			if it.Key == "creatorscout:creator:tiktok:bad" {
				errs[i] = errors.New("OOM")
			}
		}
		return errs
	}

	ps := []profile.Profile{
		testProfile(platform.TikTok, "good", testNow),
		testProfile(platform.TikTok, "bad", testNow),
	}
	res, err := repo.SaveMany(context.Background(), ps, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res[0].Status() != dombatch.StatusOK {
		t.Errorf("good status = %s", res[0].Status())
	}
	if res[1].Status() != dombatch.StatusError || res[1].Key().Username != "bad" {
		t.Errorf("bad result = %s %v", res[1].Status(), res[1].Key())
	}
}

func TestSaveMany_AllFailed(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetMultiFn = func(_ context.Context, items []db.JSONSetItem) []error {
		errs := make([]error, len(items))
		for i := range errs {
			errs[i] = db.ErrUnavailable
		}
		return errs
	}

	ps := []profile.Profile{testProfile(platform.Instagram, "a1", testNow)}
	if _, err := repo.SaveMany(context.Background(), ps, 3); err == nil {
		t.Fatal("expected batch error")
	}
}

func TestSaveMany_ThenGetMany(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	ps := []profile.Profile{
		testProfile(platform.Instagram, "one", testNow),
		testProfile(platform.Instagram, "two", testNow),
		testProfile(platform.TikTok, "one", testNow),
	}
	if _, err := repo.SaveMany(ctx, ps, 2); err != nil {
		t.Fatalf("save: %v", err)
	}

	keys := []profile.Key{ps[0].Key(), ps[1].Key(), ps[2].Key()}
	res, err := repo.GetMany(ctx, keys, time.Hour, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i, r := range res {
		p, ok := r.Profile()
		if !ok {
			t.Fatalf("result %d: %s", i, r.Outcome())
		}
		if p.Platform() != keys[i].Platform {
			t.Errorf("result %d platform = %s", i, p.Platform())
		}
	}
}

// --- chunk ---

func TestChunk(t *testing.T) {
	tests := []struct {
		n, workers int
		want       []int
	}{
		{10, 3, []int{4, 4, 2}},
		{3, 5, []int{1, 1, 1}},
		{4, 0, []int{4}},
		{6, 2, []int{3, 3}},
	}
	for _, tt := range tests {
		items := make([]int, tt.n)
		got := chunk(items, tt.workers)
		if len(got) != len(tt.want) {
			t.Errorf("chunk(%d, %d) = %d parts, want %d", tt.n, tt.workers, len(got), len(tt.want))
			continue
		}
		for i, c := range got {
			if len(c) != tt.want[i] {
				t.Errorf("chunk(%d, %d)[%d] = %d items, want %d", tt.n, tt.workers, i, len(c), tt.want[i])
			}
		}
	}
}
