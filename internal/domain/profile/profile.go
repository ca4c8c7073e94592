package profile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
)

// ContentItem is one post or video of a creator.
type ContentItem struct {
	ID       string
	Caption  string
	TakenAt  time.Time // zero when missing or unparsable
	Likes    *int64    // nil when hidden by the platform
	Comments int64
	Shares   *int64
	Views    int64
	IsVideo  bool
}

// Attributes holds the descriptive profile fields.
type Attributes struct {
	PlatformID   string
	FullName     string
	Bio          string
	AvatarURL    string
	Category     string
	Region       string
	Links        []string
	Followers    int64
	Following    int64
	TotalLikes   int64
	ContentCount int64
	Verified     bool
}

// Profile is the creator profile aggregate. Profiles are replaced wholesale,
// With* methods return copies.
type Profile struct {
	platform   platform.Platform
	username   string
	attrs      Attributes
	posts      []ContentItem
	secondary  []ContentItem
	raw        json.RawMessage
	engagement *float64
	fetchedAt  time.Time
}

// New validates and creates a freshly fetched Profile.
func New(p platform.Platform, username string, attrs Attributes, raw json.RawMessage, fetchedAt time.Time) (Profile, error) {
	if !p.Valid() || p == platform.Combined {
		return Profile{}, fmt.Errorf("%w: %q", domain.ErrInvalidPlatform, p)
	}
	username = NormalizeUsername(username)
	if username == "" {
		return Profile{}, fmt.Errorf("%w: username is required", domain.ErrInvalidUsername)
	}
	attrs.Links = cloneStrings(attrs.Links)
	return Profile{
		platform:  p,
		username:  username,
		attrs:     attrs,
		raw:       cloneRaw(raw),
		fetchedAt: fetchedAt,
	}, nil
}

// Reconstruct creates a Profile without validation (storage hydration).
func Reconstruct(
	p platform.Platform, username string, attrs Attributes,
	posts, secondary []ContentItem, raw json.RawMessage, engagement *float64, fetchedAt time.Time,
) Profile {
	return Profile{
		platform: p, username: username, attrs: attrs,
		posts: posts, secondary: secondary, raw: raw,
		engagement: engagement, fetchedAt: fetchedAt,
	}
}

// Platform returns the platform the profile lives on.
func (p Profile) Platform() platform.Platform { return p.platform }

// Username returns the Instagram username or TikTok unique_id.
func (p Profile) Username() string { return p.username }

// Key returns the cache identity of the profile.
func (p Profile) Key() Key { return Key{Username: p.username, Platform: p.platform} }

// Attributes returns the descriptive fields.
func (p Profile) Attributes() Attributes { return p.attrs }

// Followers returns the follower count.
func (p Profile) Followers() int64 { return p.attrs.Followers }

// Posts returns the recent content items.
func (p Profile) Posts() []ContentItem { return p.posts }

// Secondary returns the secondary content bucket (IGTV on Instagram).
func (p Profile) Secondary() []ContentItem { return p.secondary }

// Raw returns the provider payload as received.
func (p Profile) Raw() json.RawMessage { return p.raw }

// EngagementRate returns the engagement rate in percent, nil when unknown.
func (p Profile) EngagementRate() *float64 { return p.engagement }

// FetchedAt returns when the profile was fetched from the provider.
func (p Profile) FetchedAt() time.Time { return p.fetchedAt }

// WithContent returns a copy with the content lists replaced.
func (p Profile) WithContent(posts, secondary []ContentItem) Profile {
	c := p
	c.posts = posts
	c.secondary = secondary
	return c
}

// WithEngagement returns a copy with the engagement rate set.
func (p Profile) WithEngagement(rate *float64) Profile {
	c := p
	c.engagement = rate
	return c
}

// HasRawPayload reports whether the provider payload is a non-empty JSON object.
func (p Profile) HasRawPayload() bool {
	if len(p.raw) == 0 {
		return false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(p.raw, &m); err != nil {
		return false
	}
	return len(m) > 0
}

// Usable reports whether a stored profile can be served without a re-crawl:
// it needs a raw payload and, on platforms that require it, content.
func (p Profile) Usable() bool {
	if !p.HasRawPayload() {
		return false
	}
	if p.platform.RequiresContent() && len(p.posts) == 0 {
		return false
	}
	return true
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	return append(json.RawMessage(nil), r...)
}
