// Package record holds the stored shape of creator profiles shared by the
// creator store drivers and the session ledger.
package record

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

// Profile is the persisted profile document.
type Profile struct {
	Platform       string          `json:"platform" bson:"platform"`
	Username       string          `json:"username" bson:"username"`
	PlatformID     string          `json:"platform_id,omitempty" bson:"platform_id,omitempty"`
	FullName       string          `json:"full_name,omitempty" bson:"full_name,omitempty"`
	Bio            string          `json:"bio,omitempty" bson:"bio,omitempty"`
	AvatarURL      string          `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
	Category       string          `json:"category,omitempty" bson:"category,omitempty"`
	Region         string          `json:"region,omitempty" bson:"region,omitempty"`
	Links          []string        `json:"links,omitempty" bson:"links,omitempty"`
	Followers      int64           `json:"followers" bson:"followers"`
	Following      int64           `json:"following" bson:"following"`
	TotalLikes     int64           `json:"total_likes,omitempty" bson:"total_likes,omitempty"`
	ContentCount   int64           `json:"content_count,omitempty" bson:"content_count,omitempty"`
	Verified       bool            `json:"verified" bson:"verified"`
	Posts          []Content       `json:"posts,omitempty" bson:"posts,omitempty"`
	Secondary      []Content       `json:"secondary,omitempty" bson:"secondary,omitempty"`
	Raw            json.RawMessage `json:"raw,omitempty" bson:"-"`
	RawText        string          `json:"-" bson:"raw,omitempty"`
	EngagementRate *float64        `json:"engagement_rate,omitempty" bson:"engagement_rate,omitempty"`
	FetchedAt      time.Time       `json:"fetched_at" bson:"fetched_at"`
}

// Content is one persisted post or video.
type Content struct {
	ID       string    `json:"id" bson:"id"`
	Caption  string    `json:"caption,omitempty" bson:"caption,omitempty"`
	TakenAt  time.Time `json:"taken_at,omitzero" bson:"taken_at,omitempty"`
	Likes    *int64    `json:"likes,omitempty" bson:"likes,omitempty"`
	Comments int64     `json:"comments" bson:"comments"`
	Shares   *int64    `json:"shares,omitempty" bson:"shares,omitempty"`
	Views    int64     `json:"views" bson:"views"`
	IsVideo  bool      `json:"is_video" bson:"is_video"`
}

// FromDomain converts a profile into its stored form.
func FromDomain(p profile.Profile) Profile {
	a := p.Attributes()
	r := Profile{
		Platform:       string(p.Platform()),
		Username:       p.Username(),
		PlatformID:     a.PlatformID,
		FullName:       a.FullName,
		Bio:            a.Bio,
		AvatarURL:      a.AvatarURL,
		Category:       a.Category,
		Region:         a.Region,
		Links:          a.Links,
		Followers:      a.Followers,
		Following:      a.Following,
		TotalLikes:     a.TotalLikes,
		ContentCount:   a.ContentCount,
		Verified:       a.Verified,
		Posts:          fromItems(p.Posts()),
		Secondary:      fromItems(p.Secondary()),
		Raw:            p.Raw(),
		EngagementRate: p.EngagementRate(),
		FetchedAt:      p.FetchedAt().UTC(),
	}
	if len(r.Raw) > 0 {
		r.RawText = string(r.Raw)
	}
	return r
}

// ToDomain hydrates the stored form back into a profile.
func (r Profile) ToDomain() profile.Profile {
	raw := r.Raw
	if len(raw) == 0 && r.RawText != "" {
		raw = json.RawMessage(r.RawText)
	}
	return profile.Reconstruct(
		platform.Platform(r.Platform), r.Username,
		profile.Attributes{
			PlatformID:   r.PlatformID,
			FullName:     r.FullName,
			Bio:          r.Bio,
			AvatarURL:    r.AvatarURL,
			Category:     r.Category,
			Region:       r.Region,
			Links:        r.Links,
			Followers:    r.Followers,
			Following:    r.Following,
			TotalLikes:   r.TotalLikes,
			ContentCount: r.ContentCount,
			Verified:     r.Verified,
		},
		toItems(r.Posts), toItems(r.Secondary), raw, r.EngagementRate, r.FetchedAt,
	)
}

// FromDomainList converts profiles in order.
func FromDomainList(ps []profile.Profile) []Profile {
	out := make([]Profile, len(ps))
	for i, p := range ps {
		out[i] = FromDomain(p)
	}
	return out
}

// ToDomainList hydrates records in order.
func ToDomainList(rs []Profile) []profile.Profile {
	out := make([]profile.Profile, len(rs))
	for i, r := range rs {
		out[i] = r.ToDomain()
	}
	return out
}

func fromItems(items []profile.ContentItem) []Content {
	if len(items) == 0 {
		return nil
	}
	out := make([]Content, len(items))
	for i, it := range items {
		out[i] = Content{
			ID: it.ID, Caption: it.Caption, TakenAt: it.TakenAt.UTC(),
			Likes: it.Likes, Comments: it.Comments, Shares: it.Shares,
			Views: it.Views, IsVideo: it.IsVideo,
		}
	}
	return out
}

func toItems(cs []Content) []profile.ContentItem {
	if len(cs) == 0 {
		return nil
	}
	out := make([]profile.ContentItem, len(cs))
	for i, c := range cs {
		out[i] = profile.ContentItem{
			ID: c.ID, Caption: c.Caption, TakenAt: c.TakenAt,
			Likes: c.Likes, Comments: c.Comments, Shares: c.Shares,
			Views: c.Views, IsVideo: c.IsVideo,
		}
	}
	return out
}
