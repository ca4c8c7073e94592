package platform

// PathFilter narrows web search to profile pages of one platform.
type PathFilter struct {
	Site     string   // site: token
	Excludes []string // first path segments that are never profiles
	Includes string   // extra inurl: constraint
}

var filters = map[Platform]PathFilter{
	Instagram: {
		Site: "site:instagram.com",
		Excludes: []string{
			"p", "reel", "reels", "stories", "explore", "tags", "tv", "about", "legal",
			"privacy", "help", "developers", "accounts", "directory", "web", "emailsignup",
		},
	},
	TikTok: {
		Site: "site:tiktok.com",
		Excludes: []string{
			"video", "discover", "tag", "music", "privacy", "legal", "tos", "about",
			"login", "signup", "press",
		},
		Includes: "inurl:@",
	},
	X: {
		Site: "site:x.com",
		Excludes: []string{
			"status", "search", "hashtag", "home", "i", "explore", "intent", "notifications",
			"settings", "messages", "tos", "privacy", "login", "signup",
		},
	},
	YouTube: {
		Site:     "site:youtube.com",
		Excludes: []string{"watch", "playlist", "shorts", "feed", "results", "embed", "live"},
		Includes: "(inurl:/channel/ OR inurl:/user/)",
	},
	LinkedIn: {
		Site: "site:linkedin.com/in",
		Excludes: []string{
			"jobs", "company", "learning", "feed", "pulse", "groups", "signup", "login",
			"legal", "help", "posts", "school",
		},
	},
	Facebook: {
		Site: "site:facebook.com",
		Excludes: []string{
			"groups", "events", "marketplace", "help", "policies", "privacy", "legal",
			"login", "watch", "gaming",
		},
		Includes: "(inurl:/people/ OR inurl:profile.php)",
	},
}

// Filter returns the path filter for p. Combined has none.
func (p Platform) Filter() PathFilter {
	return filters[p]
}

func (p Platform) reserved(segment string) bool {
	for _, e := range filters[p].Excludes {
		if e == segment {
			return true
		}
	}
	return false
}
