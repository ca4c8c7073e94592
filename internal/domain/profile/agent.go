package profile

import "github.com/kailas-cloud/creatorscout/internal/domain/platform"

// AgentPostLimit caps the number of content items in an agent view.
const AgentPostLimit = 6

// AgentView is the compact profile shape handed to a conversational assistant.
type AgentView struct {
	Username       string      `json:"username"`
	FullName       string      `json:"full_name,omitempty"`
	Bio            string      `json:"bio,omitempty"`
	Links          []string    `json:"links,omitempty"`
	Followers      int64       `json:"followers"`
	Following      int64       `json:"following"`
	Category       string      `json:"category,omitempty"`
	Region         string      `json:"region,omitempty"`
	Verified       bool        `json:"is_verified"`
	PostsCount     int         `json:"posts_count"`
	EngagementRate *float64    `json:"engagementRate"`
	Posts          []AgentPost `json:"posts"`
}

// AgentPost is one content item inside an AgentView.
type AgentPost struct {
	Caption   string `json:"caption"`
	TakenAt   int64  `json:"taken_at_timestamp,omitempty"`
	IsVideo   bool   `json:"is_video"`
	Likes     *int64 `json:"like_count"`
	Comments  int64  `json:"comment_count"`
	Shares    *int64 `json:"share_count,omitempty"`
	Views     int64  `json:"video_view_count"`
	OwnerName string `json:"owner_username"`
}

// AgentView renders the profile for assistant consumption with trimmed captions.
func (p Profile) AgentView() AgentView {
	limit := 400
	if p.platform == platform.TikTok {
		limit = 300
	}

	posts := make([]AgentPost, 0, min(len(p.posts), AgentPostLimit))
	for i, item := range p.posts {
		if i == AgentPostLimit {
			break
		}
		var ts int64
		if !item.TakenAt.IsZero() {
			ts = item.TakenAt.Unix()
		}
		posts = append(posts, AgentPost{
			Caption:   Truncate(item.Caption, limit),
			TakenAt:   ts,
			IsVideo:   item.IsVideo,
			Likes:     item.Likes,
			Comments:  item.Comments,
			Shares:    item.Shares,
			Views:     item.Views,
			OwnerName: p.username,
		})
	}

	return AgentView{
		Username:       p.username,
		FullName:       p.attrs.FullName,
		Bio:            p.attrs.Bio,
		Links:          p.attrs.Links,
		Followers:      p.attrs.Followers,
		Following:      p.attrs.Following,
		Category:       p.attrs.Category,
		Region:         p.attrs.Region,
		Verified:       p.attrs.Verified,
		PostsCount:     len(p.posts),
		EngagementRate: p.engagement,
		Posts:          posts,
	}
}

// Truncate shortens s to at most limit runes, keeping its head and tail
// around an ellipsis.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	half := (limit - 3) / 2
	return string(r[:half]) + "..." + string(r[len(r)-half:])
}
