package creatorscout

import (
	"slices"

	"github.com/kailas-cloud/creatorscout/internal/domain/profile"
)

func creatorsFromDomain(ps []profile.Profile) []Creator {
	out := make([]Creator, 0, len(ps))
	for _, p := range ps {
		out = append(out, creatorFromDomain(p))
	}
	return out
}

func creatorFromDomain(p profile.Profile) Creator {
	a := p.Attributes()
	c := Creator{
		Platform:       Platform(p.Platform()),
		Username:       p.Username(),
		FullName:       a.FullName,
		Bio:            a.Bio,
		AvatarURL:      a.AvatarURL,
		Category:       a.Category,
		Region:         a.Region,
		Links:          slices.Clone(a.Links),
		Followers:      a.Followers,
		Following:      a.Following,
		TotalLikes:     a.TotalLikes,
		ContentCount:   a.ContentCount,
		Verified:       a.Verified,
		EngagementRate: p.EngagementRate(),
		FetchedAt:      p.FetchedAt(),
	}
	posts := p.Posts()
	if len(posts) == 0 {
		posts = p.Secondary()
	}
	if len(posts) > 0 {
		c.Posts = make([]Post, len(posts))
		for i, it := range posts {
			c.Posts[i] = Post{
				ID:       it.ID,
				Caption:  it.Caption,
				TakenAt:  it.TakenAt,
				Likes:    it.Likes,
				Comments: it.Comments,
				Shares:   it.Shares,
				Views:    it.Views,
				IsVideo:  it.IsVideo,
			}
		}
	}
	return c
}
