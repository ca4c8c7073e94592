package ensemble

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
	"github.com/kailas-cloud/creatorscout/internal/transport/guard"
	"github.com/kailas-cloud/creatorscout/internal/transport/retry"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type mockBudget struct {
	mu       sync.Mutex
	checkErr error
	recorded []int64
}

func (b *mockBudget) Check(context.Context) error { return b.checkErr }

func (b *mockBudget) Record(units int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recorded = append(b.recorded, units)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{
		Token:   "tok",
		BaseURL: srv.URL,
		Retry:   retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
	}, guard.New("ensemble-test-"+t.Name(), guard.Config{}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.now = func() time.Time { return testNow }
	return c
}

const instagramUser = `{"units_charged":2,"data":{
 "id":"17841","username":"Cafe.Lisboa","full_name":"Cafe Lisboa",
 "biography":"plain","biography_with_entities":{"raw_text":"coffee in lisbon"},
 "bio_links":["https://a.example",{"url":"https://b.example"},{"link":{"url":"https://a.example"}}],
 "external_url":"https://c.example",
 "edge_followed_by":{"count":12000},"edge_follow":{"count":"150"},
 "overall_category_name":"Cafe","is_verified":true,"profile_pic_url_hd":"https://pic",
 "edge_owner_to_timeline_media":{"count":42,"edges":[
  {"node":{"id":"p1","is_video":false,"taken_at_timestamp":1773100000,
   "edge_liked_by":{"count":300},"edge_media_to_comment":{"count":12},
   "edge_media_to_caption":{"edges":[{"node":{"text":"flat white"}}]}}},
  {"node":{"id":"p2","is_video":true,"video_view_count":900,
   "edge_liked_by":{"count":-1},"edge_media_to_comment":{"count":3}}}
 ]},
 "edge_felix_video_timeline":{"edges":[{"node":{"id":"tv1","is_video":true}}]}
}}`

func TestNew_RequiresToken(t *testing.T) {
	if _, err := New(Config{Token: " "}, nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestFetchProfile_Instagram(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != epInstagramUser {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "tok" || r.URL.Query().Get("username") != "Cafe.Lisboa" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(instagramUser))
	})

	p, err := c.FetchProfile(context.Background(), platform.Instagram, "@Cafe.Lisboa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := p.Attributes()
	if p.Username() != "Cafe.Lisboa" || a.PlatformID != "17841" {
		t.Errorf("identity = %s/%s", p.Username(), a.PlatformID)
	}
	if a.Bio != "coffee in lisbon" || a.Category != "Cafe" || !a.Verified || a.AvatarURL != "https://pic" {
		t.Errorf("attrs = %+v", a)
	}
	if a.Followers != 12000 || a.Following != 150 || a.ContentCount != 42 {
		t.Errorf("counts = %d/%d/%d", a.Followers, a.Following, a.ContentCount)
	}
	wantLinks := []string{"https://a.example", "https://b.example", "https://c.example"}
	if len(a.Links) != len(wantLinks) {
		t.Fatalf("links = %v", a.Links)
	}
	for i := range wantLinks {
		if a.Links[i] != wantLinks[i] {
			t.Errorf("links[%d] = %s, want %s", i, a.Links[i], wantLinks[i])
		}
	}

	posts := p.Posts()
	if len(posts) != 2 {
		t.Fatalf("posts = %d", len(posts))
	}
	if posts[0].Likes == nil || *posts[0].Likes != 300 || posts[0].Caption != "flat white" || posts[0].TakenAt.IsZero() {
		t.Errorf("post[0] = %+v", posts[0])
	}
	if posts[1].Likes != nil || posts[1].Views != 900 || !posts[1].TakenAt.IsZero() {
		t.Errorf("post[1] = %+v", posts[1])
	}
	if len(p.Secondary()) != 1 {
		t.Errorf("secondary = %d", len(p.Secondary()))
	}
	if !p.HasRawPayload() || !p.FetchedAt().Equal(testNow) {
		t.Errorf("raw/fetchedAt not set")
	}
}

func TestFetchProfile_TikTokInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != epTikTokInfo {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"units_charged":1,"data":{
		 "user":{"id":"99","uniqueId":"dancer","nickname":"D","signature":"moves","verified":true,"avatarMedium":"https://m"},
		 "stats":{"followerCount":5000,"followingCount":10,"heart":80000,"videoCount":120}}}`))
	})

	p, err := c.FetchProfile(context.Background(), platform.TikTok, "Dancer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := p.Attributes()
	if p.Username() != "dancer" || a.Followers != 5000 || a.TotalLikes != 80000 || a.ContentCount != 120 {
		t.Errorf("profile = %s %+v", p.Username(), a)
	}
	if a.AvatarURL != "https://m" || !a.Verified {
		t.Errorf("attrs = %+v", a)
	}
}

func TestFetchContent_TikTokDepth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != epTikTokPosts || r.URL.Query().Get("depth") != "1" {
			t.Errorf("request = %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"units_charged":1,"data":{"data":[
		 {"aweme_id":"v1","desc":"hi","create_time":1773000000,
		  "statistics":{"digg_count":40,"comment_count":4,"share_count":2,"play_count":1000}},
		 {"aweme_id":"v2","statistics":{"play_count":"10"}}]}}`))
	})

	items, err := c.FetchContent(context.Background(), platform.TikTok, "dancer", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	v := items[0]
	if v.Likes == nil || *v.Likes != 40 || v.Shares == nil || *v.Shares != 2 || v.Views != 1000 || !v.IsVideo {
		t.Errorf("item[0] = %+v", v)
	}
	if items[1].Likes != nil || items[1].Views != 10 {
		t.Errorf("item[1] = %+v", items[1])
	}
}

func TestSearchAccounts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != epTikTokSearch || q.Get("name") != "street food" || q.Get("period") != "180" {
			t.Errorf("request = %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"units_charged":3,"data":{"data":[
		 {"aweme_info":{"aweme_id":"a1","desc":"tacos","statistics":{"digg_count":5},
		   "author":{"uid":"1","unique_id":"Chef_A","follower_count":2000,"verification_type":1,
		   "avatar_larger":{"url_list":["https://av"]}}}},
		 {"aweme_info":{"aweme_id":"a2","author":{"uid":"2"}}},
		 {"other":{}},
		 {"aweme_info":{"aweme_id":"a3","author":{"uid":"1","unique_id":"chef_a","follower_count":2000}}}]}}`))
	})

	got, err := c.SearchAccounts(context.Background(), "street food", "180")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("profiles = %d", len(got))
	}
	first := got[0]
	if first.Username() != "Chef_A" || first.Followers() != 2000 || !first.Attributes().Verified {
		t.Errorf("first = %s %+v", first.Username(), first.Attributes())
	}
	if first.Attributes().AvatarURL != "https://av" {
		t.Errorf("avatar = %s", first.Attributes().AvatarURL)
	}
	if len(first.Posts()) != 1 || first.Posts()[0].ID != "a1" {
		t.Errorf("posts = %+v", first.Posts())
	}
	if got[1].Posts()[0].ID != "a3" {
		t.Errorf("second post = %+v", got[1].Posts())
	}
}

func TestCall_RecordsUnits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(instagramUser))
	})
	b := &mockBudget{}
	c.WithBudget(b)

	counter := metrics.CrawlUnitsTotal.WithLabelValues(ProviderName, epInstagramUser)
	before := testutil.ToFloat64(counter)

	if _, err := c.FetchProfile(context.Background(), platform.Instagram, "cafe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.recorded) != 1 || b.recorded[0] != 2 {
		t.Errorf("recorded = %v", b.recorded)
	}
	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("units metric delta = %v", got)
	}
}

func TestCall_BudgetExceeded(t *testing.T) {
	called := false
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })
	c.WithBudget(&mockBudget{checkErr: domain.ErrCrawlBudgetExceeded})

	_, err := c.FetchProfile(context.Background(), platform.TikTok, "x")
	if !errors.Is(err, domain.ErrCrawlBudgetExceeded) {
		t.Fatalf("expected ErrCrawlBudgetExceeded, got %v", err)
	}
	if called {
		t.Error("provider called despite exhausted budget")
	}
}

func TestCall_ProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"user not found"}`))
	})

	_, err := c.FetchProfile(context.Background(), platform.Instagram, "ghost")
	var pe *domain.ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 ProviderError, got %v", err)
	}
}

func TestFetchProfile_UnsupportedPlatform(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	if _, err := c.FetchProfile(context.Background(), platform.Combined, "x"); !errors.Is(err, domain.ErrInvalidPlatform) {
		t.Fatalf("expected ErrInvalidPlatform, got %v", err)
	}
}
