package engagement

import (
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

func i64(v int64) *int64 { return &v }

func build(p platform.Platform, followers int64, posts, secondary []profile.ContentItem) profile.Profile {
	return profile.Reconstruct(p, "jane", profile.Attributes{Followers: followers},
		posts, secondary, nil, nil, time.Time{})
}

func items(n int, likes, comments int64) []profile.ContentItem {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]profile.ContentItem, n)
	for i := range out {
		out[i] = profile.ContentItem{
			ID:       fmt.Sprintf("p%d", i),
			TakenAt:  base.Add(time.Duration(i) * time.Hour),
			Likes:    i64(likes),
			Comments: comments,
		}
	}
	return out
}

func TestRate_TwelvePosts(t *testing.T) {
	got := Rate(build(platform.Instagram, 1000, items(12, 100, 50), nil))
	if got == nil || *got != 15.0 {
		t.Fatalf("Rate = %v, want 15.0", got)
	}
}

func TestRate_ZeroFollowers(t *testing.T) {
	if got := Rate(build(platform.Instagram, 0, items(3, 10, 1), nil)); got != nil {
		t.Fatalf("Rate = %v, want nil", *got)
	}
}

func TestRate_NoLikeCounts(t *testing.T) {
	posts := []profile.ContentItem{{ID: "a", Comments: 10}, {ID: "b", Comments: 5}}
	if got := Rate(build(platform.Instagram, 100, posts, nil)); got != nil {
		t.Fatalf("Rate = %v, want nil", *got)
	}
}

func TestRate_SkipsItemsWithoutLikes(t *testing.T) {
	posts := []profile.ContentItem{
		{ID: "a", Likes: i64(10)},
		{ID: "b", Comments: 1000},
		{ID: "c", Likes: i64(30)},
	}
	got := Rate(build(platform.Instagram, 100, posts, nil))
	if got == nil || *got != 20.0 {
		t.Fatalf("Rate = %v, want 20.0", got)
	}
}

func TestRate_UsesMostRecentTwelve(t *testing.T) {
	old := items(12, 0, 0)
	base := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := make([]profile.ContentItem, 12)
	for i := range fresh {
		fresh[i] = profile.ContentItem{
			ID: fmt.Sprintf("n%d", i), TakenAt: base.Add(time.Duration(i) * time.Minute), Likes: i64(10),
		}
	}
	got := Rate(build(platform.Instagram, 100, append(old, fresh...), nil))
	if got == nil || *got != 10.0 {
		t.Fatalf("Rate = %v, want 10.0", got)
	}
}

func TestRate_MissingTimestampsSortLast(t *testing.T) {
	posts := items(12, 10, 0)
	undated := profile.ContentItem{ID: "undated", Likes: i64(1000)}
	got := Rate(build(platform.Instagram, 100, append([]profile.ContentItem{undated}, posts...), nil))
	if got == nil || *got != 10.0 {
		t.Fatalf("Rate = %v, want 10.0 (undated item excluded)", got)
	}
}

func TestRate_MergesSecondaryAndDedupes(t *testing.T) {
	posts := []profile.ContentItem{{ID: "a", Likes: i64(10)}}
	igtv := []profile.ContentItem{{ID: "a", Likes: i64(90)}, {ID: "b", Likes: i64(30)}, {Likes: i64(500)}}
	got := Rate(build(platform.Instagram, 100, posts, igtv))
	if got == nil || *got != 20.0 {
		t.Fatalf("Rate = %v, want 20.0", got)
	}
}

func TestRate_TikTokCountsShares(t *testing.T) {
	videos := []profile.ContentItem{{ID: "v", Likes: i64(10), Comments: 5, Shares: i64(5)}}
	got := Rate(build(platform.TikTok, 100, videos, nil))
	if got == nil || *got != 20.0 {
		t.Fatalf("tiktok Rate = %v, want 20.0", got)
	}
	ig := Rate(build(platform.Instagram, 100, videos, nil))
	if ig == nil || *ig != 15.0 {
		t.Fatalf("instagram Rate = %v, want 15.0", ig)
	}
}

func TestRate_Rounding(t *testing.T) {
	posts := []profile.ContentItem{{ID: "a", Likes: i64(1)}, {ID: "b", Likes: i64(2)}}
	got := Rate(build(platform.Instagram, 3, posts, nil))
	if got == nil || *got != 50.0 {
		t.Fatalf("Rate = %v, want 50.0", got)
	}
	got = Rate(build(platform.Instagram, 7, []profile.ContentItem{{ID: "a", Likes: i64(1)}}, nil))
	if got == nil || *got != 14.29 {
		t.Fatalf("Rate = %v, want 14.29", got)
	}
}

func TestAnnotateAndSort(t *testing.T) {
	low := build(platform.Instagram, 100, []profile.ContentItem{{ID: "a", Likes: i64(1)}}, nil)
	high := build(platform.Instagram, 100, []profile.ContentItem{{ID: "a", Likes: i64(50)}}, nil)
	none := build(platform.Instagram, 0, nil, nil)

	out := Annotate([]profile.Profile{none, low, high})
	SortByRate(out)

	if *out[0].EngagementRate() != 50 || *out[1].EngagementRate() != 1 || out[2].EngagementRate() != nil {
		t.Fatalf("unexpected order: %v %v %v", out[0].EngagementRate(), out[1].EngagementRate(), out[2].EngagementRate())
	}
}
