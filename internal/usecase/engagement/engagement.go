// Package engagement derives engagement rates from recent creator content.
package engagement

import (
	"math"
	"slices"

	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

// MaxItems is the number of most recent items that take part in a rate.
const MaxItems = 12

// Rate returns the mean per-item engagement in percent of followers,
// rounded to 2 decimals. Items without a like count are skipped. Returns
// nil when the profile has no followers or no item qualifies.
func Rate(p profile.Profile) *float64 {
	followers := p.Followers()
	if followers <= 0 {
		return nil
	}
	shares := p.Platform().ReportsShares()

	var (
		sum float64
		n   int
	)
	for _, item := range recent(p) {
		if n == MaxItems {
			break
		}
		if item.Likes == nil {
			continue
		}
		eng := *item.Likes + item.Comments
		if shares && item.Shares != nil {
			eng += *item.Shares
		}
		sum += float64(eng) / float64(followers) * 100
		n++
	}
	if n == 0 {
		return nil
	}
	rate := math.Round(sum/float64(n)*100) / 100
	return &rate
}

// Annotate returns copies of the profiles with their engagement rate set.
func Annotate(profiles []profile.Profile) []profile.Profile {
	out := make([]profile.Profile, len(profiles))
	for i, p := range profiles {
		out[i] = p.WithEngagement(Rate(p))
	}
	return out
}

// SortByRate orders profiles by engagement rate descending, unknown rates
// last. The sort is stable.
func SortByRate(profiles []profile.Profile) {
	slices.SortStableFunc(profiles, func(a, b profile.Profile) int {
		ra, rb := a.EngagementRate(), b.EngagementRate()
		switch {
		case ra == nil && rb == nil:
			return 0
		case ra == nil:
			return 1
		case rb == nil:
			return -1
		case *ra > *rb:
			return -1
		case *ra < *rb:
			return 1
		}
		return 0
	})
}

// recent merges posts and the secondary bucket, drops items without id and
// repeated ids, and orders by timestamp descending with zero times last.
func recent(p profile.Profile) []profile.ContentItem {
	all := make([]profile.ContentItem, 0, len(p.Posts())+len(p.Secondary()))
	seen := make(map[string]struct{})
	for _, bucket := range [][]profile.ContentItem{p.Posts(), p.Secondary()} {
		for _, item := range bucket {
			if item.ID == "" {
				continue
			}
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			all = append(all, item)
		}
	}
	slices.SortStableFunc(all, func(a, b profile.ContentItem) int {
		switch {
		case a.TakenAt.IsZero() && b.TakenAt.IsZero():
			return 0
		case a.TakenAt.IsZero():
			return 1
		case b.TakenAt.IsZero():
			return -1
		}
		return b.TakenAt.Compare(a.TakenAt)
	})
	return all
}
