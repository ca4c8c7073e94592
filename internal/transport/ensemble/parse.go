package ensemble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
	"github.com/kailas-cloud/creatorscout/internal/logger"
)

// flexInt accepts JSON numbers, numeric strings and null.
type flexInt struct {
	v     int64
	valid bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
		f.v, f.valid = n, true
		return nil
	}
	fl, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return nil // unparsable counts read as missing
	}
	f.v, f.valid = int64(fl), true
	return nil
}

type countEdge struct {
	Count flexInt `json:"count"`
}

// --- Instagram ---

type igUser struct {
	ID                    json.Number `json:"id"`
	Username              string      `json:"username"`
	FullName              string      `json:"full_name"`
	Biography             string      `json:"biography"`
	BiographyWithEntities struct {
		RawText string `json:"raw_text"`
	} `json:"biography_with_entities"`
	BioLinks           []json.RawMessage `json:"bio_links"`
	ExternalURL        string            `json:"external_url"`
	Category           string            `json:"category_name"`
	OverallCategory    string            `json:"overall_category_name"`
	BusinessCategory   string            `json:"business_category_name"`
	IsVerified         bool              `json:"is_verified"`
	ProfilePicURLHD    string            `json:"profile_pic_url_hd"`
	ProfilePicURL      string            `json:"profile_pic_url"`
	FollowedBy         countEdge         `json:"edge_followed_by"`
	Follow             countEdge         `json:"edge_follow"`
	Timeline           igTimeline        `json:"edge_owner_to_timeline_media"`
	FelixVideoTimeline igTimeline        `json:"edge_felix_video_timeline"`
}

type igTimeline struct {
	Count flexInt `json:"count"`
	Edges []struct {
		Node igNode `json:"node"`
	} `json:"edges"`
}

type igNode struct {
	ID             string     `json:"id"`
	IsVideo        bool       `json:"is_video"`
	TakenAt        flexInt    `json:"taken_at_timestamp"`
	VideoViewCount flexInt    `json:"video_view_count"`
	LikedBy        *countEdge `json:"edge_liked_by"`
	PreviewLike    *countEdge `json:"edge_media_preview_like"`
	MediaToComment countEdge  `json:"edge_media_to_comment"`
	MediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
}

func parseInstagramUser(raw json.RawMessage, fetchedAt time.Time) (profile.Profile, error) {
	var u igUser
	if err := json.Unmarshal(raw, &u); err != nil {
		return profile.Profile{}, fmt.Errorf("decode instagram user: %w", err)
	}
	bio := u.BiographyWithEntities.RawText
	if bio == "" {
		bio = u.Biography
	}
	avatar := u.ProfilePicURLHD
	if avatar == "" {
		avatar = u.ProfilePicURL
	}
	attrs := profile.Attributes{
		PlatformID:   u.ID.String(),
		FullName:     u.FullName,
		Bio:          bio,
		AvatarURL:    avatar,
		Category:     firstNonEmpty(u.Category, u.OverallCategory, u.BusinessCategory),
		Links:        instagramLinks(u),
		Followers:    u.FollowedBy.Count.v,
		Following:    u.Follow.Count.v,
		ContentCount: u.Timeline.Count.v,
		Verified:     u.IsVerified,
	}
	p, err := profile.New(platform.Instagram, u.Username, attrs, raw, fetchedAt)
	if err != nil {
		return profile.Profile{}, err
	}
	return p.WithContent(igItems(u.Timeline), igItems(u.FelixVideoTimeline)), nil
}

func igItems(t igTimeline) []profile.ContentItem {
	if len(t.Edges) == 0 {
		return nil
	}
	out := make([]profile.ContentItem, 0, len(t.Edges))
	for _, e := range t.Edges {
		n := e.Node
		item := profile.ContentItem{
			ID:       n.ID,
			IsVideo:  n.IsVideo,
			Comments: n.MediaToComment.Count.v,
			Views:    n.VideoViewCount.v,
			TakenAt:  unixTime(n.TakenAt),
		}
		if len(n.MediaToCaption.Edges) > 0 {
			item.Caption = n.MediaToCaption.Edges[0].Node.Text
		}
		item.Likes = likeCount(n.LikedBy, n.PreviewLike)
		out = append(out, item)
	}
	return out
}

// likeCount is nil when the count is absent or hidden (negative).
func likeCount(edges ...*countEdge) *int64 {
	for _, e := range edges {
		if e == nil || !e.Count.valid || e.Count.v < 0 {
			continue
		}
		v := e.Count.v
		return &v
	}
	return nil
}

func instagramLinks(u igUser) []string {
	var links []string
	for _, raw := range u.BioLinks {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			links = append(links, s)
			continue
		}
		var obj struct {
			URL  string `json:"url"`
			Link struct {
				URL string `json:"url"`
			} `json:"link"`
		}
		if json.Unmarshal(raw, &obj) == nil {
			links = append(links, firstNonEmpty(obj.URL, obj.Link.URL))
		}
	}
	links = append(links, u.ExternalURL)
	return dedupeLinks(links)
}

// --- TikTok ---

type ttAuthor struct {
	UID              string  `json:"uid"`
	UniqueID         string  `json:"unique_id"`
	Nickname         string  `json:"nickname"`
	Signature        string  `json:"signature"`
	FollowerCount    flexInt `json:"follower_count"`
	FollowingCount   flexInt `json:"following_count"`
	TotalFavorited   flexInt `json:"total_favorited"`
	AwemeCount       flexInt `json:"aweme_count"`
	Region           string  `json:"region"`
	VerificationType flexInt `json:"verification_type"`
	AvatarLarger     struct {
		URLList []string `json:"url_list"`
	} `json:"avatar_larger"`
}

type ttAweme struct {
	AwemeID    string  `json:"aweme_id"`
	Desc       string  `json:"desc"`
	CreateTime flexInt `json:"create_time"`
	Statistics struct {
		DiggCount    *flexInt `json:"digg_count"`
		CommentCount flexInt  `json:"comment_count"`
		ShareCount   *flexInt `json:"share_count"`
		PlayCount    flexInt  `json:"play_count"`
	} `json:"statistics"`
	Author json.RawMessage `json:"author"`
}

type ttList struct {
	Data []json.RawMessage `json:"data"`
}

func (a ttAweme) item() profile.ContentItem {
	return profile.ContentItem{
		ID:       a.AwemeID,
		Caption:  a.Desc,
		TakenAt:  unixTime(a.CreateTime),
		Likes:    optional(a.Statistics.DiggCount),
		Comments: a.Statistics.CommentCount.v,
		Shares:   optional(a.Statistics.ShareCount),
		Views:    a.Statistics.PlayCount.v,
		IsVideo:  true,
	}
}

func parseTikTokSearch(ctx context.Context, raw json.RawMessage, fetchedAt time.Time) ([]profile.Profile, error) {
	var list struct {
		Data []struct {
			AwemeInfo json.RawMessage `json:"aweme_info"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode tiktok search: %w", err)
	}
	log := logger.FromContext(ctx)

	out := make([]profile.Profile, 0, len(list.Data))
	for _, entry := range list.Data {
		if len(entry.AwemeInfo) == 0 {
			continue
		}
		var aweme ttAweme
		if err := json.Unmarshal(entry.AwemeInfo, &aweme); err != nil {
			log.Warn("skipping unparsable tiktok search item", zap.Error(err))
			continue
		}
		var author ttAuthor
		if err := json.Unmarshal(aweme.Author, &author); err != nil {
			log.Warn("skipping tiktok search item without author", zap.Error(err))
			continue
		}
		p, err := profile.New(platform.TikTok, author.UniqueID, author.attributes(), aweme.Author, fetchedAt)
		if err != nil {
			log.Debug("skipping tiktok search item", zap.Error(err))
			continue
		}
		out = append(out, p.WithContent([]profile.ContentItem{aweme.item()}, nil))
	}
	return out, nil
}

func (a ttAuthor) attributes() profile.Attributes {
	attrs := profile.Attributes{
		PlatformID:   a.UID,
		FullName:     a.Nickname,
		Bio:          a.Signature,
		Region:       a.Region,
		Followers:    a.FollowerCount.v,
		Following:    a.FollowingCount.v,
		TotalLikes:   a.TotalFavorited.v,
		ContentCount: a.AwemeCount.v,
		Verified:     a.VerificationType.v > 0,
	}
	if len(a.AvatarLarger.URLList) > 0 {
		attrs.AvatarURL = a.AvatarLarger.URLList[0]
	}
	return attrs
}

func parseTikTokPosts(raw json.RawMessage) ([]profile.ContentItem, error) {
	var list ttList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode tiktok posts: %w", err)
	}
	out := make([]profile.ContentItem, 0, len(list.Data))
	for _, r := range list.Data {
		var a ttAweme
		if err := json.Unmarshal(r, &a); err != nil {
			continue
		}
		out = append(out, a.item())
	}
	return out, nil
}

type ttInfo struct {
	User struct {
		ID            string  `json:"id"`
		UniqueID      string  `json:"uniqueId"`
		UniqueIDSnake string  `json:"unique_id"`
		Nickname      string  `json:"nickname"`
		Signature     string  `json:"signature"`
		Verified      bool    `json:"verified"`
		Region        string  `json:"region"`
		AvatarLarger  string  `json:"avatarLarger"`
		AvatarMedium  string  `json:"avatarMedium"`
		FollowerCount flexInt `json:"followerCount"`
	} `json:"user"`
	Stats struct {
		FollowerCount  flexInt `json:"followerCount"`
		FollowingCount flexInt `json:"followingCount"`
		HeartCount     flexInt `json:"heartCount"`
		Heart          flexInt `json:"heart"`
		VideoCount     flexInt `json:"videoCount"`
	} `json:"stats"`
}

func parseTikTokInfo(raw json.RawMessage, requested string, fetchedAt time.Time) (profile.Profile, error) {
	var info ttInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return profile.Profile{}, fmt.Errorf("decode tiktok user: %w", err)
	}
	u, s := info.User, info.Stats
	followers := s.FollowerCount
	if !followers.valid {
		followers = u.FollowerCount
	}
	likes := s.HeartCount
	if !likes.valid {
		likes = s.Heart
	}
	attrs := profile.Attributes{
		PlatformID:   u.ID,
		FullName:     u.Nickname,
		Bio:          u.Signature,
		AvatarURL:    firstNonEmpty(u.AvatarLarger, u.AvatarMedium),
		Region:       u.Region,
		Followers:    followers.v,
		Following:    s.FollowingCount.v,
		TotalLikes:   likes.v,
		ContentCount: s.VideoCount.v,
		Verified:     u.Verified,
	}
	return profile.New(platform.TikTok, firstNonEmpty(u.UniqueID, u.UniqueIDSnake, requested), attrs, raw, fetchedAt)
}

// --- helpers ---

func unixTime(f flexInt) time.Time {
	if !f.valid || f.v <= 0 {
		return time.Time{}
	}
	return time.Unix(f.v, 0).UTC()
}

func optional(f *flexInt) *int64 {
	if f == nil || !f.valid {
		return nil
	}
	v := f.v
	return &v
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func dedupeLinks(links []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
